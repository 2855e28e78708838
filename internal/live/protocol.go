package live

import (
	"storeplan/internal/domain"
	"storeplan/internal/gesture"
	"storeplan/internal/render"
	"storeplan/internal/viewport"
)

// Client message types
const (
	MsgPointer  = "pointer"
	MsgWheel    = "wheel"
	MsgKey      = "key"
	MsgResize   = "resize"
	MsgMode     = "mode"
	MsgRecenter = "recenter"
)

// Server message types
const (
	MsgHello  = "hello"
	MsgLayout = "layout"
	MsgFrame  = "frame"
	MsgHover  = "hover"
	MsgSelect = "select"
	MsgError  = "error"
)

// ClientMessage is one JSON text frame sent by a viewer
type ClientMessage struct {
	Type    string                `json:"type"`
	Pointer *gesture.PointerEvent `json:"pointer,omitempty"`
	Wheel   *gesture.WheelEvent   `json:"wheel,omitempty"`
	Key     *gesture.KeyEvent     `json:"key,omitempty"`

	// resize
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// mode; nil fields are left unchanged
	Edit   *bool   `json:"edit,omitempty"`
	Select *bool   `json:"select,omitempty"`
	Create *string `json:"create,omitempty"`
}

// ServerMessage is one JSON text frame sent to a viewer
type ServerMessage struct {
	Type     string          `json:"type"`
	Session  string          `json:"session,omitempty"`
	Layout   *domain.Layout  `json:"layout,omitempty"`
	Frame    *render.Model   `json:"frame,omitempty"`
	Viewport *viewport.State `json:"viewport,omitempty"`
	Entity   *domain.Entity  `json:"entity,omitempty"`
	Point    *domain.Point   `json:"point,omitempty"`
	// Handled reports whether a key message was consumed
	Handled bool   `json:"handled,omitempty"`
	Error   string `json:"error,omitempty"`
}
