package manipulate

import (
	"math"

	"storeplan/internal/domain"
)

// Handle identifies one of the eight resize handles of a selected entity
type Handle string

const (
	HandleNone        Handle = ""
	HandleTopLeft     Handle = "top-left"
	HandleTop         Handle = "top"
	HandleTopRight    Handle = "top-right"
	HandleRight       Handle = "right"
	HandleBottomRight Handle = "bottom-right"
	HandleBottom      Handle = "bottom"
	HandleBottomLeft  Handle = "bottom-left"
	HandleLeft        Handle = "left"
)

// Handles lists every handle, corners first
var Handles = []Handle{
	HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight,
	HandleTop, HandleRight, HandleBottom, HandleLeft,
}

// edges reports which edges a handle drags
func (h Handle) edges() (left, right, top, bottom bool) {
	switch h {
	case HandleTopLeft:
		return true, false, true, false
	case HandleTop:
		return false, false, true, false
	case HandleTopRight:
		return false, true, true, false
	case HandleRight:
		return false, true, false, false
	case HandleBottomRight:
		return false, true, false, true
	case HandleBottom:
		return false, false, false, true
	case HandleBottomLeft:
		return true, false, false, true
	case HandleLeft:
		return true, false, false, false
	}
	return
}

// IsCorner returns true for the four corner handles
func (h Handle) IsCorner() bool {
	l, r, t, b := h.edges()
	return (l || r) && (t || b)
}

// Anchor returns the handle's position on a rectangle
func (h Handle) Anchor(r domain.Rect) domain.Point {
	l, rt, t, b := h.edges()
	p := r.Center()
	if l {
		p.X = r.X
	}
	if rt {
		p.X = r.X + r.Width
	}
	if t {
		p.Y = r.Y
	}
	if b {
		p.Y = r.Y + r.Height
	}
	return p
}

// Resize applies a raw screen delta to the edges dragged by handle.
//
// Right and bottom edges grow by d*k. Left and top edges compute
// widthDelta = -dx*k, grow the size by it (never below MinSize) and shift the
// origin by the size change that was actually applied, never below 0.
// Corner handles combine the two edge rules independently.
func (m *Manipulator) Resize(e domain.Entity, handle Handle, dx, dy float64) domain.Entity {
	left, right, top, bottom := handle.edges()
	k := m.opts.ResizeSensitivity

	switch {
	case right:
		e.Rect.Width = math.Max(m.opts.MinSize, e.Rect.Width+dx*k)
	case left:
		e.Rect.X, e.Rect.Width = m.growFromStart(e.Rect.X, e.Rect.Width, -dx*k)
	}

	switch {
	case bottom:
		e.Rect.Height = math.Max(m.opts.MinSize, e.Rect.Height+dy*k)
	case top:
		e.Rect.Y, e.Rect.Height = m.growFromStart(e.Rect.Y, e.Rect.Height, -dy*k)
	}

	return e
}

// growFromStart grows a span from its start edge, keeping its end edge in place
// until the origin hits 0 or the size hits the minimum.
func (m *Manipulator) growFromStart(origin, size, delta float64) (float64, float64) {
	newSize := math.Max(m.opts.MinSize, size+delta)
	applied := newSize - size
	return math.Max(0, origin-applied), newSize
}
