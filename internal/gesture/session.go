package gesture

import "storeplan/internal/manipulate"

// Kind is the classification of an in-progress interaction
type Kind string

const (
	KindNone         Kind = "none"
	KindPan          Kind = "pan"
	KindPinch        Kind = "pinch"
	KindEntityDrag   Kind = "entity-drag"
	KindHandleResize Kind = "handle-resize"
	KindGraphicDrag  Kind = "graphic-drag"
	KindRubberBand   Kind = "rubber-band-select"
)

// Target is what lies under a pointer at press time
type Target struct {
	Handle    manipulate.Handle
	EntityID  string
	ElementID string
}

// Empty returns true when nothing was hit
func (t Target) Empty() bool {
	return t.Handle == manipulate.HandleNone && t.EntityID == "" && t.ElementID == ""
}

// Input is everything classification needs to know at the moment a pointer goes down
type Input struct {
	Event PointerEvent
	// Touches is the number of touch contacts including the new one
	Touches int
	Target  Target

	EditMode        bool
	RubberBandArmed bool
	CreateArmed     bool
}

// Decision is the outcome of classification
type Decision struct {
	Kind Kind
	// Create is set when the press should create an entity at the pointer
	Create bool
}

// Classify picks the session a pointer press starts, in priority order:
//
//  1. two touches pinch, three or more are ignored
//  2. an armed rubber band
//  3. a resize handle of the selected entity (edit mode)
//  4. an entity body (edit mode)
//  5. a graphic element (edit mode)
//  6. create on empty space when create mode is armed (edit mode)
//  7. a single touch, or a mouse with a secondary button or a modifier, pans
//  8. anything else only hovers
//
// Steps 2 through 6 need a primary press; secondary mouse buttons always pan.
func Classify(in Input) Decision {
	switch {
	case in.Touches == 2:
		return Decision{Kind: KindPinch}
	case in.Touches > 2:
		return Decision{Kind: KindNone}
	}

	e := in.Event
	if e.IsPrimaryPress() {
		switch {
		case in.RubberBandArmed:
			return Decision{Kind: KindRubberBand}
		case in.EditMode && in.Target.Handle != manipulate.HandleNone:
			return Decision{Kind: KindHandleResize}
		case in.EditMode && in.Target.EntityID != "":
			return Decision{Kind: KindEntityDrag}
		case in.EditMode && in.Target.ElementID != "":
			return Decision{Kind: KindGraphicDrag}
		case in.EditMode && in.CreateArmed && in.Target.Empty():
			return Decision{Kind: KindNone, Create: true}
		}
	}

	if e.Type == PointerTouch {
		return Decision{Kind: KindPan}
	}
	if e.Type == PointerMouse && (e.Button != ButtonPrimary || e.Modifiers.Any()) {
		return Decision{Kind: KindPan}
	}
	return Decision{Kind: KindNone}
}
