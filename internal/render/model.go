// Package render computes the screen-space draw list of a plan view and answers
// hit tests against it.
//
// Draw order, bottom to top: background, visible graphic elements by ascending
// z-index, entities, resize handles of the selected entity, live rubber band.
package render

import (
	"sort"

	"storeplan/internal/domain"
	"storeplan/internal/manipulate"
	"storeplan/internal/viewport"
)

const (
	// HandleSize is the side of a resize handle square in screen pixels
	HandleSize = 10.0
	// LineTolerance is how far from a line or arrow a press still hits it, in pixels
	LineTolerance = 6.0
)

// EntityItem is an entity placed on screen
type EntityItem struct {
	Entity   domain.Entity `json:"entity"`
	Screen   domain.Rect   `json:"screen"`
	Selected bool          `json:"selected,omitempty"`
	Hovered  bool          `json:"hovered,omitempty"`
}

// ElementItem is a visible graphic element placed on screen
type ElementItem struct {
	Element domain.GraphicElement `json:"element"`
	// Screen is the unrotated bounding box
	Screen domain.Rect `json:"screen"`
	// Start and End are the screen endpoints of lines and arrows
	Start    domain.Point `json:"start"`
	End      domain.Point `json:"end"`
	Selected bool         `json:"selected,omitempty"`
}

// HandleItem is a resize handle of the selected entity
type HandleItem struct {
	Handle manipulate.Handle `json:"handle"`
	Screen domain.Rect       `json:"screen"`
}

// Model is one frame of the plan view
type Model struct {
	View     viewport.State `json:"view"`
	Screen   domain.Size    `json:"screen"`
	EditMode bool           `json:"edit_mode"`
	// Background is the screen rectangle of the world, or of the framed view in viewer mode
	Background domain.Rect   `json:"background"`
	Elements   []ElementItem `json:"elements"`
	Entities   []EntityItem  `json:"entities"`
	Handles    []HandleItem  `json:"handles,omitempty"`
	RubberBand *domain.Rect  `json:"rubber_band,omitempty"`
}

// Input is the state a frame is built from
type Input struct {
	Entities []domain.Entity
	Elements []domain.GraphicElement
	View     viewport.State
	Screen   domain.Size
	World    domain.Size
	// Framed restricts drawing in viewer mode
	Framed   *domain.Rect
	EditMode bool

	SelectedEntity  string
	SelectedElement string
	HoveredEntity   string
	// RubberBand is the live selection in world space
	RubberBand *domain.Rect
}

// Build computes a frame
func Build(in Input) *Model {
	m := &Model{
		View:     in.View,
		Screen:   in.Screen,
		EditMode: in.EditMode,
		Elements: make([]ElementItem, 0, len(in.Elements)),
		Entities: make([]EntityItem, 0, len(in.Entities)),
	}

	var clip *domain.Rect
	if !in.EditMode && in.Framed != nil {
		clip = in.Framed
		m.Background = in.View.RectToScreen(*in.Framed)
	} else {
		m.Background = in.View.RectToScreen(domain.Rect{Width: in.World.Width, Height: in.World.Height})
	}

	for _, el := range in.Elements {
		if !el.Visible {
			continue
		}
		if clip != nil && !clip.Intersects(el.Bounds()) {
			continue
		}
		m.Elements = append(m.Elements, ElementItem{
			Element:  el,
			Screen:   in.View.RectToScreen(el.Bounds()),
			Start:    in.View.ToScreen(el.Position),
			End:      in.View.ToScreen(el.End()),
			Selected: in.EditMode && el.ID == in.SelectedElement,
		})
	}
	sort.SliceStable(m.Elements, func(i, j int) bool {
		return m.Elements[i].Element.ZIndex < m.Elements[j].Element.ZIndex
	})

	for _, e := range in.Entities {
		if clip != nil && !clip.Intersects(e.Rect) {
			continue
		}
		item := EntityItem{
			Entity:   e,
			Screen:   in.View.RectToScreen(e.Rect),
			Selected: e.ID == in.SelectedEntity,
			Hovered:  e.ID == in.HoveredEntity,
		}
		m.Entities = append(m.Entities, item)
		if item.Selected && in.EditMode {
			m.Handles = handlesFor(item.Screen)
		}
	}

	if in.RubberBand != nil {
		r := in.View.RectToScreen(*in.RubberBand)
		m.RubberBand = &r
	}
	return m
}

func handlesFor(r domain.Rect) []HandleItem {
	out := make([]HandleItem, 0, len(manipulate.Handles))
	for _, h := range manipulate.Handles {
		c := h.Anchor(r)
		out = append(out, HandleItem{
			Handle: h,
			Screen: domain.Rect{
				X:      c.X - HandleSize/2,
				Y:      c.Y - HandleSize/2,
				Width:  HandleSize,
				Height: HandleSize,
			},
		})
	}
	return out
}
