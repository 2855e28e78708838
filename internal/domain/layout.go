package domain

import "sort"

// DefaultWorldSize is the logical plan size shared by every consumer of persisted layouts
var DefaultWorldSize = Size{Width: 1000, Height: 700}

// MinFramedViewSize is the smallest width or height of a framed view
const MinFramedViewSize = 100.0

// Layout is the complete persisted state of a plan
type Layout struct {
	Entities   []Entity         `json:"entities" yaml:"entities"`
	Elements   []GraphicElement `json:"elements" yaml:"elements"`
	FramedView *Rect            `json:"framed_view,omitempty" yaml:"framed_view,omitempty"`
}

// NewLayout creates an empty layout
func NewLayout() *Layout {
	return &Layout{
		Entities: make([]Entity, 0),
		Elements: make([]GraphicElement, 0),
	}
}

// Entity returns the entity with the given id
func (l *Layout) Entity(id string) (*Entity, bool) {
	for i := range l.Entities {
		if l.Entities[i].ID == id {
			return &l.Entities[i], true
		}
	}
	return nil, false
}

// Element returns the graphic element with the given id
func (l *Layout) Element(id string) (*GraphicElement, bool) {
	for i := range l.Elements {
		if l.Elements[i].ID == id {
			return &l.Elements[i], true
		}
	}
	return nil, false
}

// Sort orders entities by id and elements by z-index then id, for stable exports
func (l *Layout) Sort() {
	sort.Slice(l.Entities, func(i, j int) bool {
		return l.Entities[i].ID < l.Entities[j].ID
	})
	sort.SliceStable(l.Elements, func(i, j int) bool {
		if l.Elements[i].ZIndex != l.Elements[j].ZIndex {
			return l.Elements[i].ZIndex < l.Elements[j].ZIndex
		}
		return l.Elements[i].ID < l.Elements[j].ID
	})
}

// NormalizeFramedView enforces the minimum framed view size
func NormalizeFramedView(r Rect) Rect {
	if r.Width < MinFramedViewSize {
		r.Width = MinFramedViewSize
	}
	if r.Height < MinFramedViewSize {
		r.Height = MinFramedViewSize
	}
	return r
}
