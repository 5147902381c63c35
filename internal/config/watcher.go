// ABOUTME: fsnotify-based file watcher for config hot-reload
// ABOUTME: Watches parent directories so editor renames and late-created files are seen

package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls onChange once a burst of changes to any watched file has
// settled.
type Watcher struct {
	paths    map[string]bool
	dirs     []string
	onChange func()
	settle   time.Duration

	mu       sync.Mutex
	fs       *fsnotify.Watcher
	timer    *time.Timer
	running  bool
	stopped  bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher that calls onChange when any monitored file changes.
func NewWatcher(paths []string, onChange func()) *Watcher {
	w := &Watcher{
		paths:    make(map[string]bool, len(paths)),
		onChange: onChange,
		settle:   200 * time.Millisecond,
		done:     make(chan struct{}),
	}
	seen := map[string]bool{}
	for _, p := range paths {
		p = filepath.Clean(p)
		w.paths[p] = true
		if d := filepath.Dir(p); !seen[d] {
			seen[d] = true
			w.dirs = append(w.dirs, d)
		}
	}
	return w
}

// SetInterval overrides the default settle delay (200ms).
func (w *Watcher) SetInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settle = d
}

// Start begins watching. Directories that do not exist are skipped. Safe to
// call multiple times; subsequent calls are no-ops.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopped {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	for _, d := range w.dirs {
		// Missing directories are not an error: there is just nothing to reload.
		_ = fw.Add(d)
	}
	w.fs = fw
	w.running = true
	go w.loop(fw)
	return nil
}

// Stop halts the watcher. Safe to call multiple times and concurrently.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.running = false
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		close(w.done)
		if w.fs != nil {
			w.fs.Close()
		}
	})
}

func (w *Watcher) loop(fw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.schedule()
			}
		case _, ok := <-fw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !w.paths[filepath.Clean(ev.Name)] {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// schedule restarts the settle timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, w.onChange)
}
