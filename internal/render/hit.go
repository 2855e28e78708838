package render

import (
	"storeplan/internal/domain"
	"storeplan/internal/manipulate"
)

// HitKind is the layer a hit test landed on
type HitKind string

const (
	HitNone    HitKind = ""
	HitHandle  HitKind = "handle"
	HitEntity  HitKind = "entity"
	HitElement HitKind = "element"
)

// Hit is the topmost item under a screen point
type Hit struct {
	Kind      HitKind
	Handle    manipulate.Handle
	EntityID  string
	ElementID string
}

// HitTest returns the topmost item at screen point p. Handles are above entities,
// entities above graphic elements, and later items above earlier ones.
func (m *Model) HitTest(p domain.Point) Hit {
	for i := len(m.Handles) - 1; i >= 0; i-- {
		if m.Handles[i].Screen.Contains(p) {
			h := Hit{Kind: HitHandle, Handle: m.Handles[i].Handle}
			if sel, ok := m.SelectedEntity(); ok {
				h.EntityID = sel.Entity.ID
			}
			return h
		}
	}

	for i := len(m.Entities) - 1; i >= 0; i-- {
		if m.Entities[i].Screen.Contains(p) {
			return Hit{Kind: HitEntity, EntityID: m.Entities[i].Entity.ID}
		}
	}

	if id, ok := m.ElementAt(p); ok {
		return Hit{Kind: HitElement, ElementID: id}
	}
	return Hit{}
}

// EntityAt returns the topmost entity at screen point p
func (m *Model) EntityAt(p domain.Point) (domain.Entity, bool) {
	for i := len(m.Entities) - 1; i >= 0; i-- {
		if m.Entities[i].Screen.Contains(p) {
			return m.Entities[i].Entity, true
		}
	}
	return domain.Entity{}, false
}

// ElementAt returns the id of the topmost visible graphic element at screen point p
func (m *Model) ElementAt(p domain.Point) (string, bool) {
	if m.View.Scale <= 0 {
		return "", false
	}
	world := m.View.ToWorld(p)
	tol := LineTolerance / m.View.Scale
	for i := len(m.Elements) - 1; i >= 0; i-- {
		el := m.Elements[i].Element
		if el.HitTest(world, tol) {
			return el.ID, true
		}
	}
	return "", false
}

// SelectedEntity returns the selected entity item
func (m *Model) SelectedEntity() (EntityItem, bool) {
	for _, e := range m.Entities {
		if e.Selected {
			return e, true
		}
	}
	return EntityItem{}, false
}
