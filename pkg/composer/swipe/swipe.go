// ABOUTME: Swipe gesture detector with five sensitivity levels and axis locking
// ABOUTME: Feed Start/Move/End from pointer events; the clock is injectable for tests

// Package swipe recognizes directional swipes from pointer positions.
package swipe

import (
	"math"
	"time"
)

// Direction of a recognized swipe.
type Direction string

const (
	None  Direction = "none"
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Thresholds for one sensitivity level. Velocity is in pixels per millisecond.
type Thresholds struct {
	MinDistance float64
	MinVelocity float64
	// AngleThreshold is the maximum deviation from the axis, in degrees.
	AngleThreshold float64
}

// DefaultSensitivity is the level used when none is configured.
const DefaultSensitivity = 3

var levels = [...]Thresholds{
	1: {MinDistance: 30, MinVelocity: 0.1, AngleThreshold: 50},
	2: {MinDistance: 50, MinVelocity: 0.2, AngleThreshold: 45},
	3: {MinDistance: 80, MinVelocity: 0.3, AngleThreshold: 40},
	4: {MinDistance: 120, MinVelocity: 0.4, AngleThreshold: 35},
	5: {MinDistance: 150, MinVelocity: 0.5, AngleThreshold: 30},
}

// Level returns the thresholds for sensitivity 1 (most sensitive) through 5.
// Out-of-range values use DefaultSensitivity.
func Level(sensitivity int) Thresholds {
	if sensitivity < 1 || sensitivity > 5 {
		sensitivity = DefaultSensitivity
	}
	return levels[sensitivity]
}

// Point is a pointer position in pixels.
type Point struct {
	X, Y float64
}

// Options configures a Detector.
type Options struct {
	Sensitivity    int
	OnlyHorizontal bool
	OnlyVertical   bool
	// Now defaults to time.Now.
	Now func() time.Time
	// OnSwipe is called from End with the recognized direction, or None.
	OnSwipe func(Direction)
}

// Detector tracks one gesture at a time.
type Detector struct {
	opts     Options
	cfg      Thresholds
	disabled bool

	swiping   bool
	start     Point
	startAt   time.Time
	direction Direction
	distance  Point
}

// New returns a detector for opts.
func New(opts Options) *Detector {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Detector{opts: opts, cfg: Level(opts.Sensitivity), direction: None}
}

// SetDisabled turns event handling off or on. Disabling cancels a gesture.
func (d *Detector) SetDisabled(v bool) {
	d.disabled = v
	if v {
		d.Cancel()
	}
}

// Swiping reports whether a gesture is in progress.
func (d *Detector) Swiping() bool { return d.swiping }

// Direction is the live direction of the gesture in progress.
func (d *Detector) Direction() Direction { return d.direction }

// Distance is the live displacement of the gesture in progress.
func (d *Detector) Distance() Point { return d.distance }

// Start begins a gesture at p.
func (d *Detector) Start(p Point) {
	if d.disabled {
		return
	}
	d.swiping = true
	d.start = p
	d.startAt = d.opts.Now()
	d.direction = None
	d.distance = Point{}
}

// Move updates the live displacement and direction. A move that does not
// classify keeps the last known direction.
func (d *Detector) Move(p Point) {
	if d.disabled || !d.swiping {
		return
	}
	dx, dy := p.X-d.start.X, p.Y-d.start.Y
	d.distance = Point{X: dx, Y: dy}
	if dir := d.classify(dx, dy); dir != None {
		d.direction = dir
	}
}

// End finishes the gesture at p and returns the recognized direction.
func (d *Detector) End(p Point) Direction {
	if d.disabled || !d.swiping {
		return None
	}
	dx, dy := p.X-d.start.X, p.Y-d.start.Y
	elapsed := float64(d.opts.Now().Sub(d.startAt)) / float64(time.Millisecond)
	d.Cancel()

	dist := math.Hypot(dx, dy)
	velocity := math.Inf(1)
	if elapsed > 0 {
		velocity = dist / elapsed
	}

	dir := None
	if math.Max(math.Abs(dx), math.Abs(dy)) >= d.cfg.MinDistance && velocity >= d.cfg.MinVelocity {
		dir = d.classify(dx, dy)
	}
	if d.opts.OnSwipe != nil {
		d.opts.OnSwipe(dir)
	}
	return dir
}

// Cancel drops the gesture without reporting.
func (d *Detector) Cancel() {
	d.swiping = false
	d.direction = None
	d.distance = Point{}
}

func (d *Detector) classify(dx, dy float64) Direction {
	ax, ay := math.Abs(dx), math.Abs(dy)
	angle := math.Atan2(ay, ax) * 180 / math.Pi
	if ax > ay {
		if angle > d.cfg.AngleThreshold || d.opts.OnlyVertical {
			return None
		}
		if dx > 0 {
			return Right
		}
		return Left
	}
	if angle < 90-d.cfg.AngleThreshold || d.opts.OnlyHorizontal {
		return None
	}
	if dy > 0 {
		return Down
	}
	return Up
}
