// ABOUTME: User-visible notices raised by the composer, throttled per reason
// ABOUTME: Repeated rejections (e.g. a paste of 20 images) collapse to a few notices

// Package notify carries user-visible notices from the composer to the UI.
package notify

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Level of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one message for the user. Reason groups notices for throttling.
type Notice struct {
	Level   Level
	Reason  string
	Message string
	Err     error
}

// Defaults for NewNotifier.
const (
	DefaultInterval = 2 * time.Second
	DefaultBurst    = 2
)

// Notifier publishes notices on a bus, dropping a reason once it exceeds
// burst notices per interval.
type Notifier struct {
	bus      *Bus[Notice]
	limit    rate.Limit
	burst    int
	now      func() time.Time
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	dropped  int
}

// NewNotifier returns a notifier. Non-positive arguments select the defaults.
func NewNotifier(interval time.Duration, burst int) *Notifier {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &Notifier{
		bus:      New[Notice](),
		limit:    rate.Every(interval),
		burst:    burst,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// SetClock replaces the time source.
func (n *Notifier) SetClock(now func() time.Time) { n.now = now }

// Subscribe registers h for every notice that passes the throttle.
func (n *Notifier) Subscribe(h Handler[Notice]) func() { return n.bus.Subscribe(h) }

// Publish delivers x unless its reason is being throttled. It reports
// whether the notice was delivered.
func (n *Notifier) Publish(x Notice) bool {
	n.mu.Lock()
	lim, ok := n.limiters[x.Reason]
	if !ok {
		lim = rate.NewLimiter(n.limit, n.burst)
		n.limiters[x.Reason] = lim
	}
	allowed := lim.AllowN(n.now(), 1)
	if !allowed {
		n.dropped++
	}
	n.mu.Unlock()

	if allowed {
		n.bus.Publish(x)
	}
	return allowed
}

// Dropped returns how many notices were throttled.
func (n *Notifier) Dropped() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}
