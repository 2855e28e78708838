package service

import (
	"context"
	"log"
	"sync"

	"storeplan/internal/domain"
	"storeplan/internal/engine"
)

type pendingEntity struct {
	entity  domain.Entity
	created bool
	origin  string
}

type pendingElement struct {
	element domain.GraphicElement
	origin  string
}

type pendingFrame struct {
	rect   domain.Rect
	origin string
}

// Writer persists engine output in the background.
// Queued values are coalesced per id; only the latest one is written.
type Writer struct {
	svc *LayoutService

	mu       sync.Mutex
	entities map[string]pendingEntity
	order    []string
	elements map[string]pendingElement
	elOrder  []string
	frame    *pendingFrame

	wake chan struct{}
}

// NewWriter creates a writer for the service. Call Run to start it.
func NewWriter(svc *LayoutService) *Writer {
	return &Writer{
		svc:      svc,
		entities: make(map[string]pendingEntity),
		elements: make(map[string]pendingElement),
		wake:     make(chan struct{}, 1),
	}
}

// Run writes queued values until ctx is cancelled, then flushes what is left
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Flush(context.WithoutCancel(ctx))
			return
		case <-w.wake:
			w.Flush(context.WithoutCancel(ctx))
		}
	}
}

// SaveEntity queues an entity update
func (w *Writer) SaveEntity(e domain.Entity, origin string) {
	w.queueEntity(e, false, origin)
}

// CreateEntity queues a new entity
func (w *Writer) CreateEntity(e domain.Entity, origin string) {
	w.queueEntity(e, true, origin)
}

func (w *Writer) queueEntity(e domain.Entity, created bool, origin string) {
	w.mu.Lock()
	prev, ok := w.entities[e.ID]
	if !ok {
		w.order = append(w.order, e.ID)
	}
	w.entities[e.ID] = pendingEntity{entity: e, created: created || prev.created, origin: origin}
	w.mu.Unlock()
	w.notify()
}

// SaveElement queues a graphic element update
func (w *Writer) SaveElement(el domain.GraphicElement, origin string) {
	w.mu.Lock()
	if _, ok := w.elements[el.ID]; !ok {
		w.elOrder = append(w.elOrder, el.ID)
	}
	w.elements[el.ID] = pendingElement{element: el, origin: origin}
	w.mu.Unlock()
	w.notify()
}

// SaveFramedView queues a framed view update
func (w *Writer) SaveFramedView(r domain.Rect, origin string) {
	w.mu.Lock()
	w.frame = &pendingFrame{rect: domain.NormalizeFramedView(r), origin: origin}
	w.mu.Unlock()
	w.notify()
}

// Pending returns the number of queued writes
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := len(w.entities) + len(w.elements)
	if w.frame != nil {
		n++
	}
	return n
}

func (w *Writer) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush writes everything queued so far. Failures are logged and published
// as persist_failed events.
func (w *Writer) Flush(ctx context.Context) {
	w.mu.Lock()
	entities, order := w.entities, w.order
	elements, elOrder := w.elements, w.elOrder
	frame := w.frame
	w.entities = make(map[string]pendingEntity)
	w.order = nil
	w.elements = make(map[string]pendingElement)
	w.elOrder = nil
	w.frame = nil
	w.mu.Unlock()

	for _, id := range order {
		p := entities[id]
		e := p.entity
		if err := w.svc.saveEntity(ctx, &e, p.created, p.origin); err != nil {
			w.failed("entity", id, p.origin, err)
		}
	}
	for _, id := range elOrder {
		p := elements[id]
		el := p.element
		if err := w.svc.saveElement(ctx, &el, p.origin); err != nil {
			w.failed("element", id, p.origin, err)
		}
	}
	if frame != nil {
		r := frame.rect
		if err := w.svc.setFramedView(ctx, &r, frame.origin); err != nil {
			w.failed("framed_view", "", frame.origin, err)
		}
	}
}

func (w *Writer) failed(kind, id, origin string, err error) {
	log.Printf("Writer: failed to persist %s %s: %v", kind, id, err)
	w.svc.eventBus.Publish(Event{
		Type: EventPersistFailed,
		Payload: map[string]string{
			"kind":  kind,
			"id":    id,
			"error": err.Error(),
		},
		Origin: origin,
	})
}

// EngineCallbacks returns engine callbacks that persist every mutation
// through the writer, tagged with origin. Host-only callbacks are left nil.
func (w *Writer) EngineCallbacks(origin string) engine.Callbacks {
	return engine.Callbacks{
		OnEntityChanged: func(e domain.Entity) {
			w.SaveEntity(e, origin)
		},
		OnEntityCreated: func(e domain.Entity) {
			w.CreateEntity(e, origin)
		},
		OnGraphicElementChanged: func(el domain.GraphicElement) {
			w.SaveElement(el, origin)
		},
		OnFramedViewChanged: func(r domain.Rect) {
			w.SaveFramedView(r, origin)
		},
	}
}
