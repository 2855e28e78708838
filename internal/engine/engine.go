// Package engine is the viewport and gesture state machine of a plan view.
//
// An Engine owns the pan/zoom state, at most one gesture session, the momentum
// simulator and the rubber-band selector. Hosts feed it raw pointer, wheel and key
// events and receive entity, element, framed view and viewport changes through
// Callbacks. Every entry point is serialized by one mutex because momentum ticks
// fire on a timer goroutine.
package engine

import (
	"sync"

	"storeplan/internal/domain"
	"storeplan/internal/gesture"
	"storeplan/internal/manipulate"
	"storeplan/internal/momentum"
	"storeplan/internal/render"
	"storeplan/internal/selection"
	"storeplan/internal/viewport"
)

// Engine is the gesture engine of one view instance
type Engine struct {
	mu   sync.Mutex
	opts Options
	cb   Callbacks

	view     *viewport.Viewport
	manip    *manipulate.Manipulator
	band     *selection.RubberBand
	momentum *momentum.Simulator
	tracker  *gesture.Tracker
	sess     session

	entities []domain.Entity
	elements []domain.GraphicElement
	framed   *domain.Rect

	editMode   bool
	selectMode bool
	createKind domain.EntityKind

	selectedEntity  string
	selectedElement string
	hovered         string
}

// New creates an engine
func New(opts Options, cb Callbacks) *Engine {
	opts = opts.withDefaults()
	en := &Engine{
		opts:    opts,
		cb:      cb,
		view:    viewport.New(opts.World, opts.Screen, opts.Limits),
		manip:   manipulate.New(opts.World, opts.Manipulation),
		band:    selection.New(opts.MinFramedView),
		tracker: gesture.NewTracker(),
	}
	en.momentum = momentum.New(opts.Scheduler, opts.Momentum, en.guard, en.coast)
	en.momentum.OnSettle(en.settle)
	en.opts.Momentum = en.momentum.Options()
	return en
}

func (en *Engine) guard(fn func()) {
	en.mu.Lock()
	defer en.mu.Unlock()
	fn()
}

// coast applies one momentum tick
func (en *Engine) coast(delta domain.Point) {
	en.view.PanBy(delta)
	en.viewportChanged()
}

// settle pulls any overscroll back inside the hard bounds
func (en *Engine) settle() {
	before := en.view.Snapshot()
	en.view.ClampHard()
	if en.view.Snapshot() != before {
		en.viewportChanged()
	}
}

func (en *Engine) viewportChanged() {
	if en.cb.OnViewportChanged != nil {
		en.cb.OnViewportChanged(en.view.Snapshot())
	}
}

// SetEntities replaces the entity list. An entity being dragged or resized keeps
// the engine's working copy until the gesture ends.
func (en *Engine) SetEntities(entities []domain.Entity) {
	en.mu.Lock()
	defer en.mu.Unlock()

	en.entities = append(en.entities[:0:0], entities...)
	if en.sess.holdsEntity() {
		if !en.replaceEntity(en.sess.entity) {
			en.endSession()
		}
	}
	if en.selectedEntity != "" {
		if _, ok := en.entity(en.selectedEntity); !ok {
			en.selectedEntity = ""
		}
	}
}

// SetGraphicElements replaces the graphic element list
func (en *Engine) SetGraphicElements(elements []domain.GraphicElement) {
	en.mu.Lock()
	defer en.mu.Unlock()

	en.elements = append(en.elements[:0:0], elements...)
	if en.sess.kind == gesture.KindGraphicDrag {
		if !en.replaceElement(en.sess.element) {
			en.endSession()
		}
	}
	if en.selectedElement != "" {
		if _, ok := en.element(en.selectedElement); !ok {
			en.selectedElement = ""
		}
	}
}

// SetEditMode switches between editing and viewing. Leaving edit mode ends any
// manipulation and applies the framed view.
func (en *Engine) SetEditMode(on bool) {
	en.mu.Lock()
	defer en.mu.Unlock()

	if en.editMode == on {
		return
	}
	en.editMode = on
	if !on {
		switch en.sess.kind {
		case gesture.KindEntityDrag, gesture.KindHandleResize, gesture.KindGraphicDrag:
			en.endSession()
		}
		en.selectedElement = ""
	}
	en.applyFrame()
}

// SetFramedView sets or clears (nil) the framed view used in viewer mode
func (en *Engine) SetFramedView(r *domain.Rect) {
	en.mu.Lock()
	defer en.mu.Unlock()

	if r == nil {
		en.framed = nil
	} else {
		fr := domain.NormalizeFramedView(*r)
		en.framed = &fr
	}
	en.applyFrame()
}

// SetSelectMode arms or disarms the rubber-band selector. Disarming drops a
// pending selection.
func (en *Engine) SetSelectMode(on bool) {
	en.mu.Lock()
	defer en.mu.Unlock()

	en.selectMode = on
	if !on {
		en.band.Cancel()
		if en.sess.kind == gesture.KindRubberBand {
			en.endSession()
		}
	}
}

// SetCreateKind arms create mode for a kind. An empty kind disarms it.
func (en *Engine) SetCreateKind(kind domain.EntityKind) {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.createKind = kind
}

// SetScreenSize updates the drawing surface size and refits a framed view
func (en *Engine) SetScreenSize(s domain.Size) {
	en.mu.Lock()
	defer en.mu.Unlock()

	en.view.SetScreen(s)
	if en.view.Framed != nil {
		en.view.Frame(en.view.Framed)
	} else {
		en.view.ClampHard()
	}
	en.viewportChanged()
}

// Recenter resets zoom and pan, or refits the framed view in viewer mode
func (en *Engine) Recenter() {
	en.mu.Lock()
	defer en.mu.Unlock()

	en.momentum.Cancel()
	if en.view.Framed != nil {
		en.view.Frame(en.view.Framed)
	} else {
		en.view.Recenter()
	}
	en.viewportChanged()
}

// applyFrame puts the viewport in or out of framed mode
func (en *Engine) applyFrame() {
	en.momentum.Cancel()
	switch {
	case !en.editMode && en.framed != nil:
		en.view.Frame(en.framed)
	case en.view.Framed != nil:
		en.view.Frame(nil)
	default:
		return
	}
	en.viewportChanged()
}

// HandleWheel zooms about the pointer
func (en *Engine) HandleWheel(ev gesture.WheelEvent) {
	en.mu.Lock()
	defer en.mu.Unlock()

	en.stopMomentum()
	en.view.Zoom(-ev.DeltaY*en.opts.WheelSensitivity, ev.Pos)
	en.viewportChanged()
}

// HandleKey applies arrow keys to the selected entity in edit mode and returns
// whether the key was used. Escape drops a pending rubber band and the selection.
func (en *Engine) HandleKey(ev gesture.KeyEvent) bool {
	en.mu.Lock()
	defer en.mu.Unlock()

	if ev.Key == "Escape" {
		handled := en.band.Pending() || en.selectedEntity != "" || en.selectedElement != ""
		en.band.Cancel()
		en.selectedElement = ""
		en.selectEntity("")
		return handled
	}

	if !en.editMode || en.selectedEntity == "" {
		return false
	}
	e, ok := en.entity(en.selectedEntity)
	if !ok {
		return false
	}
	updated, ok := en.manip.Nudge(e, manipulate.Key(ev.Key), ev.Modifiers.Precision())
	if !ok {
		return false
	}
	if updated != e {
		en.replaceEntity(updated)
		if en.sess.holdsEntity() && en.sess.entity.ID == updated.ID {
			en.sess.entity = updated
		}
		en.entityChanged(updated)
	}
	return true
}

// RenderModel builds the current frame
func (en *Engine) RenderModel() *render.Model {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.renderModel()
}

func (en *Engine) renderModel() *render.Model {
	in := render.Input{
		Entities:        en.entities,
		Elements:        en.elements,
		View:            en.view.Snapshot(),
		Screen:          en.view.Screen,
		World:           en.view.World,
		Framed:          en.view.Framed,
		EditMode:        en.editMode,
		SelectedEntity:  en.selectedEntity,
		SelectedElement: en.selectedElement,
		HoveredEntity:   en.hovered,
	}
	if r, ok := en.band.Live(); ok {
		in.RubberBand = &r
	}
	return render.Build(in)
}

// Viewport returns the current transform
func (en *Engine) Viewport() viewport.State {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.view.Snapshot()
}

// Session returns the kind of the active gesture session
func (en *Engine) Session() gesture.Kind {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.sess.kind
}

// Coasting reports whether momentum is running
func (en *Engine) Coasting() bool {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.momentum.Running()
}

// Entities returns a copy of the engine's entity list
func (en *Engine) Entities() []domain.Entity {
	en.mu.Lock()
	defer en.mu.Unlock()
	return append([]domain.Entity(nil), en.entities...)
}

// GraphicElements returns a copy of the engine's graphic elements
func (en *Engine) GraphicElements() []domain.GraphicElement {
	en.mu.Lock()
	defer en.mu.Unlock()
	return append([]domain.GraphicElement(nil), en.elements...)
}

// Layout returns a snapshot of the plan as the engine currently holds it
func (en *Engine) Layout() *domain.Layout {
	en.mu.Lock()
	defer en.mu.Unlock()

	layout := domain.NewLayout()
	layout.Entities = append(layout.Entities, en.entities...)
	layout.Elements = append(layout.Elements, en.elements...)
	if en.framed != nil {
		r := *en.framed
		layout.FramedView = &r
	}
	return layout
}

// Selected returns the selected entity
func (en *Engine) Selected() (domain.Entity, bool) {
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.entity(en.selectedEntity)
}

// FramedView returns the current framed view
func (en *Engine) FramedView() *domain.Rect {
	en.mu.Lock()
	defer en.mu.Unlock()
	if en.framed == nil {
		return nil
	}
	r := *en.framed
	return &r
}

// Close stops momentum
func (en *Engine) Close() {
	en.mu.Lock()
	defer en.mu.Unlock()
	en.momentum.Cancel()
}

func (en *Engine) entity(id string) (domain.Entity, bool) {
	if id == "" {
		return domain.Entity{}, false
	}
	for _, e := range en.entities {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Entity{}, false
}

func (en *Engine) element(id string) (domain.GraphicElement, bool) {
	for _, el := range en.elements {
		if el.ID == id {
			return el, true
		}
	}
	return domain.GraphicElement{}, false
}

func (en *Engine) replaceEntity(e domain.Entity) bool {
	for i := range en.entities {
		if en.entities[i].ID == e.ID {
			en.entities[i] = e
			return true
		}
	}
	return false
}

func (en *Engine) replaceElement(el domain.GraphicElement) bool {
	for i := range en.elements {
		if en.elements[i].ID == el.ID {
			en.elements[i] = el
			return true
		}
	}
	return false
}

func (en *Engine) entityChanged(e domain.Entity) {
	if en.cb.OnEntityChanged != nil {
		en.cb.OnEntityChanged(e)
	}
}

// selectEntity changes the entity selection and reports it when it changed
func (en *Engine) selectEntity(id string) {
	if id == en.selectedEntity {
		return
	}
	en.selectedEntity = id
	if en.cb.OnSelect == nil {
		return
	}
	if e, ok := en.entity(id); ok {
		en.cb.OnSelect(&e)
		return
	}
	en.cb.OnSelect(nil)
}
