// Package gesture defines the raw input events of a plan view and classifies the
// start of a gesture into exactly one session kind.
//
// Mouse and touch input share one pointer model: a mouse is a single pointer with
// buttons, each touch is a pointer of its own.
package gesture

import (
	"time"

	"storeplan/internal/domain"
)

// PointerType is the device that produced a pointer event
type PointerType string

const (
	PointerMouse PointerType = "mouse"
	PointerTouch PointerType = "touch"
	PointerPen   PointerType = "pen"
)

// Button is a mouse button, numbered like DOM pointer events
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// Modifiers holds the keyboard modifier state of an event
type Modifiers struct {
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Alt   bool `json:"alt,omitempty"`
	Meta  bool `json:"meta,omitempty"`
}

// Any returns true when any modifier is held
func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl || m.Alt || m.Meta
}

// Precision returns true when the keyboard precision modifier is held
func (m Modifiers) Precision() bool {
	return m.Shift
}

// Phase is the lifecycle step of a pointer
type Phase string

const (
	PhaseDown   Phase = "down"
	PhaseMove   Phase = "move"
	PhaseUp     Phase = "up"
	PhaseCancel Phase = "cancel"
)

// PointerEvent is a mouse, pen or touch event in screen space
type PointerEvent struct {
	Phase     Phase        `json:"phase"`
	ID        int          `json:"id"`
	Type      PointerType  `json:"pointer_type"`
	Button    Button       `json:"button"`
	Pos       domain.Point `json:"pos"`
	Modifiers Modifiers    `json:"modifiers"`
	// Time is when the event happened. A zero time means "now".
	Time time.Time `json:"time"`
}

// IsPrimaryPress returns true for a touch or pen contact, or a primary mouse button
// press without modifiers
func (e PointerEvent) IsPrimaryPress() bool {
	if e.Type != PointerMouse {
		return true
	}
	return e.Button == ButtonPrimary && !e.Modifiers.Any()
}

// WheelEvent is a mouse wheel or trackpad scroll
type WheelEvent struct {
	Pos       domain.Point `json:"pos"`
	DeltaY    float64      `json:"delta_y"`
	Modifiers Modifiers    `json:"modifiers"`
}

// KeyEvent is a key press
type KeyEvent struct {
	Key       string    `json:"key"`
	Modifiers Modifiers `json:"modifiers"`
}
