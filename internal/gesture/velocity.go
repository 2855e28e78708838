package gesture

import (
	"time"

	"storeplan/internal/domain"
)

// Velocity estimates pan velocity in screen units per frame from consecutive
// move samples.
//
// Samples that arrive with no elapsed time since the previous one are accumulated
// and folded into the next timed sample, so bursts of coalesced moves neither
// divide by zero nor drop distance.
type Velocity struct {
	frame   time.Duration
	v       domain.Point
	pending domain.Point
	last    time.Time
}

// NewVelocity creates an estimator for the given frame duration
func NewVelocity(frame time.Duration) *Velocity {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	return &Velocity{frame: frame}
}

// Reset clears the estimate and starts timing from t
func (v *Velocity) Reset(t time.Time) {
	v.v = domain.Point{}
	v.pending = domain.Point{}
	v.last = t
}

// Add records a move of delta at time t
func (v *Velocity) Add(delta domain.Point, t time.Time) {
	v.pending = v.pending.Add(delta)
	elapsed := t.Sub(v.last)
	if elapsed <= 0 {
		return
	}
	v.v = v.pending.Mul(float64(v.frame) / float64(elapsed))
	v.pending = domain.Point{}
	v.last = t
}

// Current returns the latest estimate
func (v *Velocity) Current() domain.Point {
	return v.v
}

// At returns the estimate as seen at time t. A sample older than maxIdle means the
// pointer came to rest before release, so the velocity is zero.
func (v *Velocity) At(t time.Time, maxIdle time.Duration) domain.Point {
	if maxIdle > 0 && t.Sub(v.last) > maxIdle {
		return domain.Point{}
	}
	return v.v
}
