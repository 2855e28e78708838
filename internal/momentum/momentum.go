// Package momentum continues a released pan with decaying velocity.
//
// The simulator is a recurring scheduled task. Every Start and Cancel bumps a
// generation counter and each scheduled tick carries the generation it was created
// with, so a tick that fires after cancellation does nothing.
package momentum

import (
	"math"
	"time"

	"storeplan/internal/domain"
)

// Options tunes the simulation
type Options struct {
	// Friction multiplies the velocity after every tick
	Friction float64
	// StopThreshold ends the simulation once both velocity components are below it
	StopThreshold float64
	// Interval is the tick period
	Interval time.Duration
}

// DefaultOptions returns the reference tuning (60 Hz, 0.95 friction)
func DefaultOptions() Options {
	return Options{
		Friction:      0.95,
		StopThreshold: 0.1,
		Interval:      16 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Friction > 0 && o.Friction < 1 {
		d.Friction = o.Friction
	}
	if o.StopThreshold > 0 {
		d.StopThreshold = o.StopThreshold
	}
	if o.Interval > 0 {
		d.Interval = o.Interval
	}
	return d
}

// Simulator animates pan offsets after a release.
//
// It is not safe for concurrent use on its own. The guard passed to New wraps
// every tick so the owner can serialize ticks with its other state changes.
type Simulator struct {
	opts  Options
	sched Scheduler
	guard func(func())

	// apply moves the pan by delta, settle runs once when coasting ends on its own
	apply  func(delta domain.Point)
	settle func()

	velocity domain.Point
	gen      uint64
	running  bool
	stop     func()
}

// New creates a simulator. apply receives each per-tick pan delta. guard may be nil.
func New(sched Scheduler, opts Options, guard func(func()), apply func(domain.Point)) *Simulator {
	if sched == nil {
		sched = TickerScheduler{}
	}
	if guard == nil {
		guard = func(fn func()) { fn() }
	}
	return &Simulator{
		opts:  opts.withDefaults(),
		sched: sched,
		guard: guard,
		apply: apply,
	}
}

// OnSettle registers a callback run when the simulation stops by itself
func (s *Simulator) OnSettle(fn func()) {
	s.settle = fn
}

// Options returns the effective options
func (s *Simulator) Options() Options {
	return s.opts
}

// Running reports whether a simulation is in progress
func (s *Simulator) Running() bool {
	return s.running
}

// Velocity returns the current velocity in screen units per tick
func (s *Simulator) Velocity() domain.Point {
	return s.velocity
}

// Generation returns the current generation counter
func (s *Simulator) Generation() uint64 {
	return s.gen
}

// Start cancels any running simulation and coasts with velocity v.
// It returns false, after settling, when v is already below the stop threshold.
func (s *Simulator) Start(v domain.Point) bool {
	s.Cancel()
	if s.stopped(v) {
		if s.settle != nil {
			s.settle()
		}
		return false
	}

	gen := s.gen
	s.velocity = v
	s.running = true
	s.stop = s.sched.Every(s.opts.Interval, func() {
		s.guard(func() { s.tick(gen) })
	})
	return true
}

// Cancel halts the simulation and zeroes the velocity. Ticks already in flight
// become no-ops.
func (s *Simulator) Cancel() {
	s.gen++
	s.halt()
}

func (s *Simulator) halt() {
	s.velocity = domain.Point{}
	s.running = false
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *Simulator) tick(gen uint64) {
	if gen != s.gen || !s.running {
		return
	}

	if s.apply != nil {
		s.apply(s.velocity)
	}
	s.velocity = Decay(s.velocity, s.opts.Friction)

	if s.stopped(s.velocity) {
		s.gen++
		s.halt()
		if s.settle != nil {
			s.settle()
		}
	}
}

func (s *Simulator) stopped(v domain.Point) bool {
	return math.Abs(v.X) < s.opts.StopThreshold && math.Abs(v.Y) < s.opts.StopThreshold
}

// Decay applies one tick of friction to a velocity
func Decay(v domain.Point, friction float64) domain.Point {
	return v.Mul(friction)
}

// TicksToStop returns how many ticks a velocity needs to drop below threshold
func TicksToStop(v domain.Point, friction, threshold float64) int {
	peak := math.Max(math.Abs(v.X), math.Abs(v.Y))
	if peak < threshold {
		return 0
	}
	return int(math.Floor(math.Log(peak/threshold)/math.Log(1/friction))) + 1
}
