// ABOUTME: Tests for the fsnotify config watcher
// ABOUTME: Validates change and removal detection, bursts, and stop behavior

package config

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func startWatcher(t *testing.T, path string, called *atomic.Int32) *Watcher {
	t.Helper()
	w := NewWatcher([]string{path}, func() { called.Add(1) })
	w.SetInterval(20 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("theme: dark\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var called atomic.Int32
	startWatcher(t, path, &called)

	if err := os.WriteFile(path, []byte("theme: light\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return called.Load() > 0 }) {
		t.Error("expected onChange to be called after file modification")
	}
}

func TestWatcher_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var called atomic.Int32
	startWatcher(t, path, &called)

	if err := os.WriteFile(path, []byte("theme: light\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return called.Load() > 0 }) {
		t.Error("expected onChange to be called after file creation")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var called atomic.Int32
	startWatcher(t, path, &called)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if called.Load() != 0 {
		t.Errorf("expected no onChange calls for unrelated files, got %d", called.Load())
	}
}

func TestWatcher_DetectsFileRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	var called atomic.Int32
	startWatcher(t, path, &called)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, func() bool { return called.Load() > 0 }) {
		t.Error("expected onChange to be called after file removal")
	}
}

func TestWatcher_NoCallbackAfterStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	var called atomic.Int32
	w := startWatcher(t, path, &called)
	w.Stop()

	if err := os.WriteFile(path, []byte("theme: light\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if called.Load() != 0 {
		t.Errorf("expected no onChange after Stop, got %d", called.Load())
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(nil, func() {})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop() // should not panic
}

func TestWatcher_ConcurrentStop(t *testing.T) {
	w := NewWatcher(nil, func() {})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Stop()
		}()
	}
	wg.Wait()
}

func TestWatcher_StartIsIdempotent(t *testing.T) {
	w := NewWatcher(nil, func() {})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
}

func TestWatcher_MissingDirNoError(t *testing.T) {
	w := NewWatcher([]string{"/nonexistent/dir/config.yaml"}, func() {})
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()
}
