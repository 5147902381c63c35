// ABOUTME: Tests for the notice bus and per-reason throttling
// ABOUTME: Covers subscription order, unsubscribe, burst limits and refill

package notify

import (
	"errors"
	"testing"
	"time"
)

func TestBus_PublishInOrder(t *testing.T) {
	t.Parallel()

	bus := New[string]()
	var got []string
	bus.Subscribe(func(s string) { got = append(got, "a:"+s) })
	bus.Subscribe(func(s string) { got = append(got, "b:"+s) })

	bus.Publish("x")

	if len(got) != 2 || got[0] != "a:x" || got[1] != "b:x" {
		t.Errorf("got %v, want [a:x b:x]", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	called := 0
	unsub := bus.Subscribe(func(int) { called++ })
	bus.Subscribe(func(int) {})

	unsub()
	unsub()
	bus.Publish(1)

	if called != 0 {
		t.Error("handler should not be called after unsubscribe")
	}
	if bus.Count() != 1 {
		t.Errorf("Count() = %d, want 1", bus.Count())
	}
}

func TestBus_SelfUnsubscribe(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	calls := 0
	var unsub func()
	unsub = bus.Subscribe(func(int) {
		calls++
		unsub()
	})
	bus.Publish(1)
	bus.Publish(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNotifier_ThrottlesPerReason(t *testing.T) {
	t.Parallel()

	now := time.Unix(100, 0)
	n := NewNotifier(time.Second, 2)
	n.SetClock(func() time.Time { return now })

	var got []Notice
	n.Subscribe(func(x Notice) { got = append(got, x) })

	limit := Notice{Level: LevelWarning, Reason: "image/limit", Message: "at most 9 images per message"}
	for range 5 {
		n.Publish(limit)
	}
	if !n.Publish(Notice{Reason: "file/too-large", Err: errors.New("big")}) {
		t.Error("other reason should not be throttled")
	}

	if len(got) != 3 {
		t.Fatalf("delivered %d notices, want 3", len(got))
	}
	if n.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", n.Dropped())
	}

	now = now.Add(time.Second)
	if !n.Publish(limit) {
		t.Error("limiter should refill after the interval")
	}
}

func TestLevelString(t *testing.T) {
	t.Parallel()

	tests := map[Level]string{LevelInfo: "info", LevelWarning: "warning", LevelError: "error"}
	for l, want := range tests {
		if l.String() != want {
			t.Errorf("%d.String() = %q; want %q", l, l.String(), want)
		}
	}
}
