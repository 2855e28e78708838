package domain

import (
	"math"
	"testing"
)

func TestRectFromPoints(t *testing.T) {
	r := RectFromPoints(Pt(300, 50), Pt(100, 200))
	want := Rect{X: 100, Y: 50, Width: 200, Height: 150}
	if r != want {
		t.Errorf("RectFromPoints() = %+v, want %+v", r, want)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}

	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(15, 15), true},
		{Pt(10, 10), true},
		{Pt(30, 30), true},
		{Pt(31, 15), false},
		{Pt(5, 15), false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !a.Intersects(Rect{X: 5, Y: 5, Width: 10, Height: 10}) {
		t.Error("expected overlapping rects to intersect")
	}
	if a.Intersects(Rect{X: 10, Y: 0, Width: 5, Height: 5}) {
		t.Error("expected touching rects not to intersect")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5,0,3) = %v", got)
	}
	if got := Clamp(-1, 0, 3); got != 0 {
		t.Errorf("Clamp(-1,0,3) = %v", got)
	}
	// Inverted range resolves to the lower bound
	if got := Clamp(5, 2, 1); got != 2 {
		t.Errorf("Clamp(5,2,1) = %v", got)
	}
}

func TestPointDist(t *testing.T) {
	if got := Pt(0, 0).Dist(Pt(3, 4)); math.Abs(got-5) > 1e-9 {
		t.Errorf("expected 5, got %v", got)
	}
	if got := Pt(0, 0).Mid(Pt(10, 20)); got != Pt(5, 10) {
		t.Errorf("expected (5,10), got %v", got)
	}
}
