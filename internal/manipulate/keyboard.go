package manipulate

import (
	"math"

	"storeplan/internal/domain"
)

// Key is a keyboard key relevant to entity manipulation
type Key string

const (
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
)

// IsArrow returns true for the four arrow keys
func (k Key) IsArrow() bool {
	switch k {
	case KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight:
		return true
	}
	return false
}

// Nudge applies a keyboard arrow to an entity.
//
// Without the precision modifier the entity moves by NudgeStep in the arrow's
// direction, clamped inside the world. With it the entity is resized by ResizeStep:
// Right/Down grow width/height, Left/Up shrink them, never below MinSize.
// The second result is false when the key is not an arrow.
func (m *Manipulator) Nudge(e domain.Entity, key Key, precision bool) (domain.Entity, bool) {
	if !key.IsArrow() {
		return e, false
	}

	if precision {
		step := m.opts.ResizeStep
		switch key {
		case KeyArrowRight:
			e.Rect.Width += step
		case KeyArrowLeft:
			e.Rect.Width = math.Max(m.opts.MinSize, e.Rect.Width-step)
		case KeyArrowDown:
			e.Rect.Height += step
		case KeyArrowUp:
			e.Rect.Height = math.Max(m.opts.MinSize, e.Rect.Height-step)
		}
		return e, true
	}

	step := m.opts.NudgeStep
	switch key {
	case KeyArrowRight:
		e.Rect.X = m.clampX(e.Rect, e.Rect.X+step)
	case KeyArrowLeft:
		e.Rect.X = m.clampX(e.Rect, e.Rect.X-step)
	case KeyArrowDown:
		e.Rect.Y = m.clampY(e.Rect, e.Rect.Y+step)
	case KeyArrowUp:
		e.Rect.Y = m.clampY(e.Rect, e.Rect.Y-step)
	}
	return e, true
}
