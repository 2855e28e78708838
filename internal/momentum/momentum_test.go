package momentum

import (
	"math"
	"testing"
	"time"

	"storeplan/internal/domain"
)

type recorder struct {
	pan     domain.Point
	ticks   int
	settled int
}

func newTestSimulator(sched Scheduler, rec *recorder) *Simulator {
	sim := New(sched, Options{}, nil, func(d domain.Point) {
		rec.pan = rec.pan.Add(d)
		rec.ticks++
	})
	sim.OnSettle(func() { rec.settled++ })
	return sim
}

func TestDefaultOptions(t *testing.T) {
	opts := Options{Friction: 2, StopThreshold: -1}.withDefaults()
	if opts.Friction != 0.95 || opts.StopThreshold != 0.1 || opts.Interval.Milliseconds() != 16 {
		t.Errorf("withDefaults() = %+v", opts)
	}
}

func TestCoastTerminates(t *testing.T) {
	tests := []struct {
		name string
		v    domain.Point
	}{
		{"horizontal", domain.Pt(10, 0)},
		{"diagonal", domain.Pt(-7, 3)},
		{"fast", domain.Pt(120, -80)},
		{"just above threshold", domain.Pt(0.11, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := &ManualScheduler{}
			rec := &recorder{}
			sim := newTestSimulator(sched, rec)

			if !sim.Start(tt.v) {
				t.Fatal("Start() = false, want true")
			}
			want := TicksToStop(tt.v, 0.95, 0.1)
			for i := 0; i < want+10 && sched.Active() > 0; i++ {
				sched.Tick()
			}

			if sim.Running() {
				t.Fatal("simulation still running")
			}
			if rec.ticks != want {
				t.Errorf("ticks = %d, want %d", rec.ticks, want)
			}
			if rec.settled != 1 {
				t.Errorf("settled = %d, want 1", rec.settled)
			}
			// Total displacement is bounded by the geometric series v/(1-f)
			bound := math.Max(math.Abs(tt.v.X), math.Abs(tt.v.Y)) / 0.05
			if math.Abs(rec.pan.X) > bound || math.Abs(rec.pan.Y) > bound {
				t.Errorf("pan %v exceeds bound %v", rec.pan, bound)
			}
		})
	}
}

func TestTicksToStop(t *testing.T) {
	if n := TicksToStop(domain.Pt(0.05, 0.05), 0.95, 0.1); n != 0 {
		t.Errorf("TicksToStop(below threshold) = %d, want 0", n)
	}
	// 10 * 0.95^n < 0.1 first holds at n = 90
	if n := TicksToStop(domain.Pt(10, 0), 0.95, 0.1); n != 90 {
		t.Errorf("TicksToStop(10) = %d, want 90", n)
	}
}

func TestStartBelowThreshold(t *testing.T) {
	sched := &ManualScheduler{}
	rec := &recorder{}
	sim := newTestSimulator(sched, rec)

	if sim.Start(domain.Pt(0.05, -0.09)) {
		t.Fatal("Start() = true for a velocity below threshold")
	}
	if sched.Active() != 0 {
		t.Errorf("active tasks = %d, want 0", sched.Active())
	}
	if rec.settled != 1 {
		t.Errorf("settled = %d, want 1", rec.settled)
	}
}

func TestCancelStopsTicks(t *testing.T) {
	sched := &ManualScheduler{}
	rec := &recorder{}
	sim := newTestSimulator(sched, rec)

	sim.Start(domain.Pt(20, 20))
	sched.Tick()
	sched.Tick()
	sim.Cancel()

	before := rec.pan
	for i := 0; i < 5; i++ {
		sched.Tick()
	}
	if rec.pan != before {
		t.Errorf("pan moved after cancel: %v -> %v", before, rec.pan)
	}
	if sim.Velocity() != (domain.Point{}) {
		t.Errorf("velocity = %v, want zero", sim.Velocity())
	}
	if rec.settled != 0 {
		t.Errorf("settled = %d, want 0 after cancel", rec.settled)
	}
}

func TestStaleTickIgnored(t *testing.T) {
	// A scheduler that never stops its tasks, so the generation check is the only guard
	var captured []func()
	sched := schedulerFunc(func(fn func()) func() {
		captured = append(captured, fn)
		return func() {}
	})
	rec := &recorder{}
	sim := newTestSimulator(sched, rec)

	sim.Start(domain.Pt(10, 0))
	sim.Start(domain.Pt(0, 10))

	captured[0]()
	if rec.ticks != 0 {
		t.Fatalf("stale tick applied %d deltas", rec.ticks)
	}
	captured[1]()
	if rec.pan != domain.Pt(0, 10) {
		t.Errorf("pan = %v, want (0, 10)", rec.pan)
	}
}

func TestGuardWrapsTicks(t *testing.T) {
	sched := &ManualScheduler{}
	guarded := 0
	sim := New(sched, Options{}, func(fn func()) {
		guarded++
		fn()
	}, func(domain.Point) {})

	sim.Start(domain.Pt(5, 5))
	sched.Tick()
	sched.Tick()
	if guarded != 2 {
		t.Errorf("guarded = %d, want 2", guarded)
	}
}

type schedulerFunc func(fn func()) func()

func (f schedulerFunc) Every(_ time.Duration, fn func()) func() {
	return f(fn)
}
