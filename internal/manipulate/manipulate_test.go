package manipulate

import (
	"math/rand"
	"testing"

	"storeplan/internal/domain"
)

func newTestManipulator() *Manipulator {
	return New(domain.Size{Width: 1000, Height: 700}, DefaultOptions())
}

func entityAt(x, y, w, h float64) domain.Entity {
	return *domain.NewEntity("g1", domain.EntityKindGondola, domain.Rect{X: x, Y: y, Width: w, Height: h})
}

func TestMoveBy(t *testing.T) {
	m := newTestManipulator()

	tests := []struct {
		name   string
		start  domain.Rect
		dx, dy float64
		want   domain.Rect
	}{
		{"amplified delta", domain.Rect{X: 100, Y: 100, Width: 140, Height: 60}, 10, -20, domain.Rect{X: 115, Y: 70, Width: 140, Height: 60}},
		{"clamped at origin", domain.Rect{X: 5, Y: 5, Width: 140, Height: 60}, -100, -100, domain.Rect{X: 0, Y: 0, Width: 140, Height: 60}},
		{"clamped at far edge", domain.Rect{X: 800, Y: 600, Width: 140, Height: 60}, 100, 100, domain.Rect{X: 860, Y: 640, Width: 140, Height: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entityAt(tt.start.X, tt.start.Y, tt.start.Width, tt.start.Height)
			got := m.MoveBy(e, tt.dx, tt.dy)
			if got.Rect != tt.want {
				t.Errorf("MoveBy() = %+v, want %+v", got.Rect, tt.want)
			}
		})
	}
}

func TestMoveByPassesMetadataThrough(t *testing.T) {
	m := newTestManipulator()
	e := entityAt(100, 100, 140, 60)
	e.Label, e.Brand, e.Status = "Cereal", "Acme", domain.EntityStatusOccupied

	got := m.MoveBy(e, 1, 1)
	if got.Label != "Cereal" || got.Brand != "Acme" || got.Status != domain.EntityStatusOccupied {
		t.Errorf("expected metadata to pass through unchanged, got %+v", got)
	}
}

func TestResizeLeftScenario(t *testing.T) {
	m := newTestManipulator()
	e := entityAt(100, 100, 140, 60)

	got := m.Resize(e, HandleLeft, -50, 0)

	if got.Rect.Width != 200 {
		t.Errorf("expected width 200, got %v", got.Rect.Width)
	}
	if got.Rect.X != 40 {
		t.Errorf("expected x 40, got %v", got.Rect.X)
	}
	if got.Rect.Y != 100 || got.Rect.Height != 60 {
		t.Errorf("expected vertical geometry untouched, got %+v", got.Rect)
	}
}

func TestResizeHandles(t *testing.T) {
	m := newTestManipulator()
	start := domain.Rect{X: 100, Y: 100, Width: 100, Height: 100}

	tests := []struct {
		handle Handle
		dx, dy float64
		want   domain.Rect
	}{
		{HandleRight, 10, 99, domain.Rect{X: 100, Y: 100, Width: 112, Height: 100}},
		{HandleBottom, 99, 10, domain.Rect{X: 100, Y: 100, Width: 100, Height: 112}},
		{HandleTop, 0, -10, domain.Rect{X: 100, Y: 88, Width: 100, Height: 112}},
		{HandleLeft, 10, 0, domain.Rect{X: 112, Y: 100, Width: 88, Height: 100}},
		{HandleTopLeft, -10, -10, domain.Rect{X: 88, Y: 88, Width: 112, Height: 112}},
		{HandleTopRight, 10, 10, domain.Rect{X: 100, Y: 112, Width: 112, Height: 88}},
		{HandleBottomLeft, 10, 10, domain.Rect{X: 112, Y: 100, Width: 88, Height: 112}},
		{HandleBottomRight, -10, -10, domain.Rect{X: 100, Y: 100, Width: 88, Height: 88}},
	}

	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			e := entityAt(start.X, start.Y, start.Width, start.Height)
			got := m.Resize(e, tt.handle, tt.dx, tt.dy)
			if !rectNear(got.Rect, tt.want) {
				t.Errorf("Resize(%s) = %+v, want %+v", tt.handle, got.Rect, tt.want)
			}
		})
	}
}

func TestResizePastInversionClampsToMinimum(t *testing.T) {
	m := newTestManipulator()
	e := entityAt(100, 100, 40, 40)

	got := m.Resize(e, HandleLeft, 500, 0)
	if got.Rect.Width != 20 {
		t.Errorf("expected width clamped to 20, got %v", got.Rect.Width)
	}
	// Right edge stays where it was
	if got.Rect.X+got.Rect.Width != 140 {
		t.Errorf("expected right edge at 140, got %v", got.Rect.X+got.Rect.Width)
	}

	got = m.Resize(e, HandleBottomRight, -500, -500)
	if got.Rect.Width != 20 || got.Rect.Height != 20 {
		t.Errorf("expected 20x20, got %+v", got.Rect)
	}
}

func TestResizeNoneIsNoop(t *testing.T) {
	m := newTestManipulator()
	e := entityAt(100, 100, 40, 40)

	if got := m.Resize(e, HandleNone, 10, 10); got != e {
		t.Errorf("expected no change, got %+v", got.Rect)
	}
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	m := newTestManipulator()
	rng := rand.New(rand.NewSource(42))
	e := entityAt(100, 100, 140, 60)
	keys := []Key{KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight}

	for i := 0; i < 5000; i++ {
		dx := rng.Float64()*400 - 200
		dy := rng.Float64()*400 - 200
		switch rng.Intn(3) {
		case 0:
			e = m.MoveBy(e, dx, dy)
		case 1:
			e = m.Resize(e, Handles[rng.Intn(len(Handles))], dx, dy)
		case 2:
			e, _ = m.Nudge(e, keys[rng.Intn(len(keys))], rng.Intn(2) == 0)
		}

		if e.Rect.Width < 20 || e.Rect.Height < 20 {
			t.Fatalf("step %d: size invariant broken: %+v", i, e.Rect)
		}
		if e.Rect.X < 0 || e.Rect.Y < 0 {
			t.Fatalf("step %d: position invariant broken: %+v", i, e.Rect)
		}
	}
}

func TestNudgeScenario(t *testing.T) {
	m := newTestManipulator()
	e := entityAt(0, 0, 40, 40)

	moved, ok := m.Nudge(e, KeyArrowLeft, false)
	if !ok {
		t.Fatal("expected arrow key to be handled")
	}
	if moved.Rect.X != 0 {
		t.Errorf("expected x to stay at 0, got %v", moved.Rect.X)
	}

	resized, _ := m.Nudge(e, KeyArrowLeft, true)
	if resized.Rect.Width != 30 {
		t.Errorf("expected width 30, got %v", resized.Rect.Width)
	}
	resized, _ = m.Nudge(resized, KeyArrowLeft, true)
	if resized.Rect.Width != 20 {
		t.Errorf("expected width 20, got %v", resized.Rect.Width)
	}
	resized, _ = m.Nudge(resized, KeyArrowLeft, true)
	if resized.Rect.Width != 20 {
		t.Errorf("expected width to stay at 20, got %v", resized.Rect.Width)
	}
}

func TestNudgeDirections(t *testing.T) {
	m := newTestManipulator()
	e := entityAt(100, 100, 40, 40)

	tests := []struct {
		key       Key
		precision bool
		want      domain.Rect
	}{
		{KeyArrowRight, false, domain.Rect{X: 101, Y: 100, Width: 40, Height: 40}},
		{KeyArrowLeft, false, domain.Rect{X: 99, Y: 100, Width: 40, Height: 40}},
		{KeyArrowDown, false, domain.Rect{X: 100, Y: 101, Width: 40, Height: 40}},
		{KeyArrowUp, false, domain.Rect{X: 100, Y: 99, Width: 40, Height: 40}},
		{KeyArrowRight, true, domain.Rect{X: 100, Y: 100, Width: 50, Height: 40}},
		{KeyArrowDown, true, domain.Rect{X: 100, Y: 100, Width: 40, Height: 50}},
		{KeyArrowUp, true, domain.Rect{X: 100, Y: 100, Width: 40, Height: 30}},
	}

	for _, tt := range tests {
		got, _ := m.Nudge(e, tt.key, tt.precision)
		if got.Rect != tt.want {
			t.Errorf("Nudge(%s, %v) = %+v, want %+v", tt.key, tt.precision, got.Rect, tt.want)
		}
	}

	if _, ok := m.Nudge(e, Key("Enter"), false); ok {
		t.Error("expected non-arrow key to be ignored")
	}
}

func TestCreateScenario(t *testing.T) {
	m := newTestManipulator()
	existing := []domain.Entity{
		entityAt(0, 0, 140, 60),
		entityAt(300, 300, 140, 60),
	}
	existing[1].ID = "g3"

	got := m.Create(domain.EntityKindGondola, domain.Pt(300, 200), existing)

	if got.ID != "g2" {
		t.Errorf("expected id g2, got %s", got.ID)
	}
	want := domain.Rect{X: 230, Y: 170, Width: 140, Height: 60}
	if got.Rect != want {
		t.Errorf("expected rect %+v, got %+v", want, got.Rect)
	}
	if got.Rect.Center() != domain.Pt(300, 200) {
		t.Errorf("expected entity centered on click, got center %v", got.Rect.Center())
	}
}

func TestCreateNearEdgeStaysInWorld(t *testing.T) {
	m := newTestManipulator()
	got := m.Create(domain.EntityKindEndcap, domain.Pt(5, 695), nil)

	if got.ID != "c1" {
		t.Errorf("expected id c1, got %s", got.ID)
	}
	if got.Rect.X != 0 || got.Rect.Y != 660 {
		t.Errorf("expected entity clamped into the world, got %+v", got.Rect)
	}
}

func TestHandleAnchor(t *testing.T) {
	r := domain.Rect{X: 10, Y: 20, Width: 100, Height: 50}

	tests := []struct {
		h    Handle
		want domain.Point
	}{
		{HandleTopLeft, domain.Pt(10, 20)},
		{HandleTop, domain.Pt(60, 20)},
		{HandleBottomRight, domain.Pt(110, 70)},
		{HandleLeft, domain.Pt(10, 45)},
	}

	for _, tt := range tests {
		if got := tt.h.Anchor(r); got != tt.want {
			t.Errorf("%s.Anchor() = %v, want %v", tt.h, got, tt.want)
		}
	}
	if !HandleTopRight.IsCorner() || HandleTop.IsCorner() {
		t.Error("unexpected IsCorner result")
	}
}

func rectNear(a, b domain.Rect) bool {
	const eps = 1e-9
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(a.X-b.X) < eps && abs(a.Y-b.Y) < eps &&
		abs(a.Width-b.Width) < eps && abs(a.Height-b.Height) < eps
}
