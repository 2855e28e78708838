package engine

import (
	"math"

	"storeplan/internal/domain"
	"storeplan/internal/gesture"
	"storeplan/internal/manipulate"
)

// session is the single live gesture
type session struct {
	kind gesture.Kind
	// pointer owns single-pointer sessions
	pointer int
	start   domain.Point
	last    domain.Point
	// moved is set once the pointer left the drag threshold
	moved bool

	velocity *gesture.Velocity

	pinchIDs [2]int
	lastDist float64
	lastMid  domain.Point

	entity  domain.Entity
	handle  manipulate.Handle
	element domain.GraphicElement
}

func (s *session) holdsEntity() bool {
	return s.kind == gesture.KindEntityDrag || s.kind == gesture.KindHandleResize
}

func (s *session) owns(id int) bool {
	if s.kind == gesture.KindPinch {
		return id == s.pinchIDs[0] || id == s.pinchIDs[1]
	}
	return s.kind != gesture.KindNone && id == s.pointer
}

// HandlePointer feeds a pointer or touch event to the engine
func (en *Engine) HandlePointer(ev gesture.PointerEvent) {
	en.mu.Lock()
	defer en.mu.Unlock()

	if ev.Time.IsZero() {
		ev.Time = en.opts.Now()
	}
	switch ev.Phase {
	case gesture.PhaseDown:
		en.pointerDown(ev)
	case gesture.PhaseMove:
		en.pointerMove(ev)
	case gesture.PhaseUp:
		en.pointerUp(ev, false)
	case gesture.PhaseCancel:
		en.pointerUp(ev, true)
	}
}

// endSession tears down the live session without side effects
func (en *Engine) endSession() {
	en.sess = session{kind: gesture.KindNone}
}

// stopMomentum cancels coasting and pulls the view back inside the hard bounds
func (en *Engine) stopMomentum() {
	if !en.momentum.Running() {
		return
	}
	en.momentum.Cancel()
	en.settle()
}

func (en *Engine) pointerDown(ev gesture.PointerEvent) {
	en.tracker.Down(ev)
	en.stopMomentum()

	touches := en.tracker.Touches()
	if ev.Type == gesture.PointerTouch && touches >= 2 {
		if touches == 2 {
			en.startPinch(ev)
		}
		return
	}
	if en.tracker.Count() > 1 {
		return
	}

	model := en.renderModel()
	hit := model.HitTest(ev.Pos)
	decision := gesture.Classify(gesture.Input{
		Event:   ev,
		Touches: touches,
		Target: gesture.Target{
			Handle:    hit.Handle,
			EntityID:  hit.EntityID,
			ElementID: hit.ElementID,
		},
		EditMode:        en.editMode,
		RubberBandArmed: en.selectMode,
		CreateArmed:     en.createKind != "",
	})

	en.endSession()
	world := en.view.ToWorld(ev.Pos)

	switch decision.Kind {
	case gesture.KindRubberBand:
		if !en.band.Begin(world) {
			// a pending selection is finished by the second press
			en.finishBand(world)
			return
		}
		en.beginSingle(gesture.KindRubberBand, ev)

	case gesture.KindHandleResize:
		e, ok := en.entity(en.selectedEntity)
		if !ok {
			return
		}
		en.beginSingle(gesture.KindHandleResize, ev)
		en.sess.entity = e
		en.sess.handle = hit.Handle

	case gesture.KindEntityDrag:
		e, ok := en.entity(hit.EntityID)
		if !ok {
			return
		}
		en.selectedElement = ""
		en.selectEntity(e.ID)
		en.beginSingle(gesture.KindEntityDrag, ev)
		en.sess.entity = e

	case gesture.KindGraphicDrag:
		el, ok := en.element(hit.ElementID)
		if !ok {
			return
		}
		en.selectEntity("")
		en.selectedElement = el.ID
		en.beginSingle(gesture.KindGraphicDrag, ev)
		en.sess.element = el

	case gesture.KindPan:
		en.beginSingle(gesture.KindPan, ev)
		en.sess.velocity = gesture.NewVelocity(en.opts.Momentum.Interval)
		en.sess.velocity.Reset(ev.Time)

	default:
		if decision.Create {
			en.create(world)
			return
		}
		if ev.IsPrimaryPress() {
			en.selectAt(ev.Pos)
		}
	}
}

func (en *Engine) beginSingle(kind gesture.Kind, ev gesture.PointerEvent) {
	en.sess = session{
		kind:    kind,
		pointer: ev.ID,
		start:   ev.Pos,
		last:    ev.Pos,
	}
}

// startPinch replaces any session with a pinch between the first two touches
func (en *Engine) startPinch(ev gesture.PointerEvent) {
	var touches []gesture.Pointer
	for _, p := range en.tracker.Active() {
		if p.Type == gesture.PointerTouch {
			touches = append(touches, p)
		}
	}
	if len(touches) < 2 {
		return
	}
	a, b := touches[0], touches[1]
	en.sess = session{
		kind:     gesture.KindPinch,
		pinchIDs: [2]int{a.ID, b.ID},
		lastDist: a.Pos.Dist(b.Pos),
		lastMid:  a.Pos.Mid(b.Pos),
	}
}

// restartPan continues with a pan from the remaining touch after a pinch
func (en *Engine) restartPan(p gesture.Pointer, ev gesture.PointerEvent) {
	en.sess = session{
		kind:     gesture.KindPan,
		pointer:  p.ID,
		start:    p.Pos,
		last:     p.Pos,
		moved:    true,
		velocity: gesture.NewVelocity(en.opts.Momentum.Interval),
	}
	en.sess.velocity.Reset(ev.Time)
}

func (en *Engine) pointerMove(ev gesture.PointerEvent) {
	if _, ok := en.tracker.Move(ev); !ok || en.sess.kind == gesture.KindNone {
		en.hover(ev.Pos)
		return
	}
	if !en.sess.owns(ev.ID) {
		return
	}

	if en.sess.kind == gesture.KindPinch {
		en.pinchMove()
		return
	}

	delta := ev.Pos.Sub(en.sess.last)
	en.sess.last = ev.Pos
	if !en.sess.moved && ev.Pos.Dist(en.sess.start) > en.opts.DragThreshold {
		en.sess.moved = true
	}

	switch en.sess.kind {
	case gesture.KindPan:
		en.view.PanBy(delta)
		en.sess.velocity.Add(delta, ev.Time)
		en.viewportChanged()

	case gesture.KindEntityDrag:
		en.updateEntity(en.manip.MoveBy(en.sess.entity, delta.X, delta.Y))

	case gesture.KindHandleResize:
		en.updateEntity(en.manip.Resize(en.sess.entity, en.sess.handle, delta.X, delta.Y))

	case gesture.KindGraphicDrag:
		el := en.sess.element
		moved := delta.Mul(1 / en.view.Scale)
		el.Position = domain.Point{
			X: math.Max(0, el.Position.X+moved.X),
			Y: math.Max(0, el.Position.Y+moved.Y),
		}
		if el.Position == en.sess.element.Position {
			return
		}
		en.sess.element = el
		en.replaceElement(el)
		if en.cb.OnGraphicElementChanged != nil {
			en.cb.OnGraphicElementChanged(el)
		}

	case gesture.KindRubberBand:
		en.band.Update(en.view.ToWorld(ev.Pos))
	}
}

func (en *Engine) pinchMove() {
	a, okA := en.tracker.Get(en.sess.pinchIDs[0])
	b, okB := en.tracker.Get(en.sess.pinchIDs[1])
	if !okA || !okB {
		return
	}
	dist := a.Pos.Dist(b.Pos)
	mid := a.Pos.Mid(b.Pos)

	en.view.Zoom((dist-en.sess.lastDist)*en.opts.PinchSensitivity, mid)
	if shift := mid.Sub(en.sess.lastMid); shift != (domain.Point{}) {
		en.view.PanBy(shift.Mul(en.opts.PinchPanFactor))
	}
	en.sess.lastDist = dist
	en.sess.lastMid = mid
	en.viewportChanged()
}

func (en *Engine) updateEntity(e domain.Entity) {
	if e == en.sess.entity {
		return
	}
	en.sess.entity = e
	en.replaceEntity(e)
	en.entityChanged(e)
}

func (en *Engine) pointerUp(ev gesture.PointerEvent, cancelled bool) {
	if _, ok := en.tracker.Up(ev.ID); !ok {
		return
	}
	if !en.sess.owns(ev.ID) {
		return
	}

	switch en.sess.kind {
	case gesture.KindPinch:
		var touches []gesture.Pointer
		for _, p := range en.tracker.Active() {
			if p.Type == gesture.PointerTouch {
				touches = append(touches, p)
			}
		}
		switch len(touches) {
		case 0:
			en.endSession()
			en.settle()
		case 1:
			en.restartPan(touches[0], ev)
		default:
			en.startPinch(ev)
		}

	case gesture.KindPan:
		s := en.sess
		en.endSession()
		if !s.moved && !cancelled {
			en.selectAt(ev.Pos)
		}
		if cancelled {
			en.settle()
			return
		}
		en.momentum.Start(s.velocity.At(ev.Time, en.opts.MaxVelocityAge))

	case gesture.KindRubberBand:
		moved := en.sess.moved
		en.endSession()
		switch {
		case cancelled:
			en.band.Cancel()
		case moved:
			en.finishBand(en.view.ToWorld(ev.Pos))
		}

	default:
		en.endSession()
	}
}

// finishBand completes a rubber-band selection as the new framed view
func (en *Engine) finishBand(world domain.Point) {
	r, ok := en.band.Finish(world)
	if !ok {
		return
	}
	en.framed = &r
	if en.cb.OnFramedViewChanged != nil {
		en.cb.OnFramedViewChanged(r)
	}
	en.applyFrame()
}

// create adds an entity of the armed kind centered on a world point and selects it
func (en *Engine) create(world domain.Point) {
	e := en.manip.Create(en.createKind, world, en.entities)
	en.entities = append(en.entities, e)
	if en.cb.OnEntityCreated != nil {
		en.cb.OnEntityCreated(e)
	}
	en.selectedElement = ""
	en.selectEntity(e.ID)
}

// selectAt selects the entity under a screen point, or clears the selection
func (en *Engine) selectAt(p domain.Point) {
	en.selectedElement = ""
	if e, ok := en.renderModel().EntityAt(p); ok {
		en.selectEntity(e.ID)
		return
	}
	en.selectEntity("")
}

func (en *Engine) hover(p domain.Point) {
	if en.band.Pending() {
		en.band.Update(en.view.ToWorld(p))
	}

	e, ok := en.renderModel().EntityAt(p)
	if ok {
		en.hovered = e.ID
	} else {
		en.hovered = ""
	}
	if en.cb.OnHover == nil {
		return
	}
	if ok {
		en.cb.OnHover(&e, p)
		return
	}
	en.cb.OnHover(nil, p)
}
