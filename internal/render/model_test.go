package render

import (
	"testing"

	"storeplan/internal/domain"
	"storeplan/internal/manipulate"
	"storeplan/internal/viewport"
)

func testInput() Input {
	line := *domain.NewGraphicElement("line1", domain.GraphicLine, domain.Pt(0, 400))
	line.Width = 200
	line.ZIndex = 5

	low := *domain.NewGraphicElement("low", domain.GraphicRectangle, domain.Pt(50, 50))
	low.Width, low.Height = 200, 200
	low.ZIndex = 1

	high := *domain.NewGraphicElement("high", domain.GraphicRectangle, domain.Pt(150, 150))
	high.Width, high.Height = 200, 200
	high.ZIndex = 2

	hidden := *domain.NewGraphicElement("hidden", domain.GraphicRectangle, domain.Pt(0, 0))
	hidden.Width, hidden.Height = 1000, 700
	hidden.ZIndex = 9
	hidden.Visible = false

	return Input{
		Entities: []domain.Entity{
			*domain.NewEntity("g1", domain.EntityKindGondola, domain.Rect{X: 100, Y: 100, Width: 140, Height: 60}),
			*domain.NewEntity("g2", domain.EntityKindGondola, domain.Rect{X: 800, Y: 600, Width: 140, Height: 60}),
		},
		Elements:       []domain.GraphicElement{high, line, hidden, low},
		View:           viewport.State{Scale: 1},
		Screen:         domain.Size{Width: 1000, Height: 700},
		World:          domain.Size{Width: 1000, Height: 700},
		EditMode:       true,
		SelectedEntity: "g1",
	}
}

func TestBuildOrder(t *testing.T) {
	m := Build(testInput())

	var ids []string
	for _, el := range m.Elements {
		ids = append(ids, el.Element.ID)
	}
	want := []string{"low", "high", "line1"}
	if len(ids) != len(want) {
		t.Fatalf("elements = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("elements = %v, want %v", ids, want)
		}
	}

	if len(m.Entities) != 2 || !m.Entities[0].Selected || m.Entities[1].Selected {
		t.Errorf("entities = %+v", m.Entities)
	}
	if len(m.Handles) != 8 {
		t.Errorf("handles = %d, want 8", len(m.Handles))
	}
}

func TestBuildNoHandlesInViewerMode(t *testing.T) {
	in := testInput()
	in.EditMode = false
	if m := Build(in); len(m.Handles) != 0 {
		t.Errorf("handles = %d in viewer mode", len(m.Handles))
	}
}

func TestBuildFramedViewClips(t *testing.T) {
	in := testInput()
	in.EditMode = false
	in.Framed = &domain.Rect{X: 0, Y: 0, Width: 300, Height: 300}

	m := Build(in)
	if len(m.Entities) != 1 || m.Entities[0].Entity.ID != "g1" {
		t.Errorf("entities = %+v, want only g1", m.Entities)
	}
	for _, el := range m.Elements {
		if el.Element.ID == "line1" {
			t.Error("line outside frame was kept")
		}
	}

	// Edit mode ignores the frame
	in.EditMode = true
	if m := Build(in); len(m.Entities) != 2 {
		t.Errorf("edit mode entities = %d, want 2", len(m.Entities))
	}
}

func TestBuildScreenGeometry(t *testing.T) {
	in := testInput()
	in.View = viewport.State{Pan: domain.Pt(10, 20), Scale: 2}
	m := Build(in)

	want := domain.Rect{X: 210, Y: 220, Width: 280, Height: 120}
	if got := m.Entities[0].Screen; got != want {
		t.Errorf("screen rect = %+v, want %+v", got, want)
	}
	if m.Background != (domain.Rect{X: 10, Y: 20, Width: 2000, Height: 1400}) {
		t.Errorf("background = %+v", m.Background)
	}
}

func TestHitTest(t *testing.T) {
	m := Build(testInput())

	tests := []struct {
		name string
		p    domain.Point
		want Hit
	}{
		{"handle over entity", domain.Pt(100, 130), Hit{Kind: HitHandle, Handle: manipulate.HandleLeft, EntityID: "g1"}},
		{"corner handle", domain.Pt(243, 163), Hit{Kind: HitHandle, Handle: manipulate.HandleBottomRight, EntityID: "g1"}},
		{"entity over element", domain.Pt(170, 130), Hit{Kind: HitEntity, EntityID: "g1"}},
		{"higher z wins", domain.Pt(200, 200), Hit{Kind: HitElement, ElementID: "high"}},
		{"lower element", domain.Pt(60, 60), Hit{Kind: HitElement, ElementID: "low"}},
		{"line within tolerance", domain.Pt(100, 405), Hit{Kind: HitElement, ElementID: "line1"}},
		{"line beyond tolerance", domain.Pt(100, 410), Hit{}},
		{"invisible ignored", domain.Pt(900, 50), Hit{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.HitTest(tt.p); got != tt.want {
				t.Errorf("HitTest(%v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRubberBandOverlay(t *testing.T) {
	in := testInput()
	in.View = viewport.State{Scale: 0.5}
	in.RubberBand = &domain.Rect{X: 100, Y: 100, Width: 200, Height: 50}

	m := Build(in)
	if m.RubberBand == nil || *m.RubberBand != (domain.Rect{X: 50, Y: 50, Width: 100, Height: 25}) {
		t.Errorf("rubber band = %v", m.RubberBand)
	}
}
