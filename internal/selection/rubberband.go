// Package selection implements the two-phase rubber-band selection used to define a
// framed view.
package selection

import (
	"math"

	"storeplan/internal/domain"
)

// RubberBand tracks a pending rectangle selection in world space.
// The first press anchors it, moves update the live corner, and a second press
// (or the release of a drag) finishes it.
type RubberBand struct {
	minSize float64
	anchor  *domain.Point
	current domain.Point
}

// New creates a selector whose results are at least minSize on each side
func New(minSize float64) *RubberBand {
	if minSize <= 0 {
		minSize = domain.MinFramedViewSize
	}
	return &RubberBand{minSize: minSize}
}

// Pending reports whether an anchor has been placed
func (rb *RubberBand) Pending() bool {
	return rb.anchor != nil
}

// Begin anchors a new selection at p. It returns false and leaves the selection
// unchanged if one is already pending, so a repeated press continues it.
func (rb *RubberBand) Begin(p domain.Point) bool {
	if rb.anchor != nil {
		return false
	}
	a := p
	rb.anchor = &a
	rb.current = p
	return true
}

// Update moves the live corner
func (rb *RubberBand) Update(p domain.Point) {
	if rb.anchor == nil {
		return
	}
	rb.current = p
}

// Live returns the raw rectangle between the anchor and the live corner
func (rb *RubberBand) Live() (domain.Rect, bool) {
	if rb.anchor == nil {
		return domain.Rect{}, false
	}
	return domain.RectFromPoints(*rb.anchor, rb.current), true
}

// Extent returns how far the live corner is from the anchor
func (rb *RubberBand) Extent() float64 {
	if rb.anchor == nil {
		return 0
	}
	return rb.anchor.Dist(rb.current)
}

// Finish completes the selection at p and clears it. The rectangle is normalized
// and at least minSize wide and tall, even when both corners coincide.
func (rb *RubberBand) Finish(p domain.Point) (domain.Rect, bool) {
	if rb.anchor == nil {
		return domain.Rect{}, false
	}
	a := *rb.anchor
	rb.anchor = nil
	rb.current = p

	return domain.Rect{
		X:      math.Min(a.X, p.X),
		Y:      math.Min(a.Y, p.Y),
		Width:  math.Max(rb.minSize, math.Abs(p.X-a.X)),
		Height: math.Max(rb.minSize, math.Abs(p.Y-a.Y)),
	}, true
}

// Cancel drops any pending selection
func (rb *RubberBand) Cancel() {
	rb.anchor = nil
}
