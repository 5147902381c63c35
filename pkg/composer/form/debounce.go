// ABOUTME: Trailing-edge debouncer that only posts a sequence number when it fires
// ABOUTME: The receiver reads live state when the tick arrives; stale ticks are dropped

package form

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into one fire call.
type Debouncer struct {
	delay time.Duration
	fire  func(seq uint64)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
}

// NewDebouncer returns a debouncer calling fire on its own goroutine after
// delay has passed without another Trigger. fire may be nil when the owner
// drains with Flush.
func NewDebouncer(delay time.Duration, fire func(seq uint64)) *Debouncer {
	return &Debouncer{delay: delay, fire: fire}
}

// Trigger restarts the wait.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.fire == nil {
		return
	}
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Take consumes the tick for seq. It reports false for superseded ticks and
// for ticks already drained by Flush.
func (d *Debouncer) Take(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq || !d.pending {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a Trigger is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush cancels the timer and reports whether a Trigger was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	was := d.pending
	d.pending = false
	return was
}

// Stop cancels any pending fire.
func (d *Debouncer) Stop() { d.Flush() }
