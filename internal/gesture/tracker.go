package gesture

import (
	"sort"
	"time"

	"storeplan/internal/domain"
)

// Pointer is an active contact
type Pointer struct {
	ID     int
	Type   PointerType
	Button Button
	Start  domain.Point
	Pos    domain.Point
	Since  time.Time
	// seq orders pointers by arrival
	seq uint64
}

// Tracker keeps the set of active pointers
type Tracker struct {
	pointers map[int]*Pointer
	seq      uint64
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{pointers: make(map[int]*Pointer)}
}

// Down registers a new contact. A repeated down for a known id replaces it.
func (t *Tracker) Down(e PointerEvent) Pointer {
	t.seq++
	p := &Pointer{
		ID:     e.ID,
		Type:   e.Type,
		Button: e.Button,
		Start:  e.Pos,
		Pos:    e.Pos,
		Since:  e.Time,
		seq:    t.seq,
	}
	t.pointers[e.ID] = p
	return *p
}

// Move updates a contact's position and returns its previous position
func (t *Tracker) Move(e PointerEvent) (domain.Point, bool) {
	p, ok := t.pointers[e.ID]
	if !ok {
		return domain.Point{}, false
	}
	prev := p.Pos
	p.Pos = e.Pos
	return prev, true
}

// Up removes a contact
func (t *Tracker) Up(id int) (Pointer, bool) {
	p, ok := t.pointers[id]
	if !ok {
		return Pointer{}, false
	}
	delete(t.pointers, id)
	return *p, true
}

// Get returns an active contact
func (t *Tracker) Get(id int) (Pointer, bool) {
	p, ok := t.pointers[id]
	if !ok {
		return Pointer{}, false
	}
	return *p, true
}

// Count returns the number of active contacts
func (t *Tracker) Count() int {
	return len(t.pointers)
}

// Touches returns the number of active touch contacts
func (t *Tracker) Touches() int {
	n := 0
	for _, p := range t.pointers {
		if p.Type == PointerTouch {
			n++
		}
	}
	return n
}

// Active returns the contacts in arrival order
func (t *Tracker) Active() []Pointer {
	out := make([]Pointer, 0, len(t.pointers))
	for _, p := range t.pointers {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Reset forgets every contact
func (t *Tracker) Reset() {
	t.pointers = make(map[int]*Pointer)
}
