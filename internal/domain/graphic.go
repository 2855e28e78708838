package domain

import (
	"math"
	"strings"
)

// GraphicVariant represents the shape of a decorative element
type GraphicVariant string

const (
	GraphicRectangle GraphicVariant = "rectangle"
	GraphicCircle    GraphicVariant = "circle"
	GraphicLine      GraphicVariant = "line"
	GraphicArrow     GraphicVariant = "arrow"
	GraphicText      GraphicVariant = "text"
)

// IsLinear returns true for variants drawn as a segment
func (v GraphicVariant) IsLinear() bool {
	return v == GraphicLine || v == GraphicArrow
}

// TextStyle holds the typography of a text element
type TextStyle struct {
	FontSize       float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FontFamily     string  `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	FontWeight     string  `json:"font_weight,omitempty" yaml:"font_weight,omitempty"`         // normal, bold
	FontStyle      string  `json:"font_style,omitempty" yaml:"font_style,omitempty"`           // normal, italic
	TextDecoration string  `json:"text_decoration,omitempty" yaml:"text_decoration,omitempty"` // none, underline
	Align          string  `json:"align,omitempty" yaml:"align,omitempty"`                     // left, center, right
}

const defaultFontSize = 16.0

// GraphicElement is a decoration drawn over the plan background.
//
// Position is the top-left corner of the bounding box for rectangles, circles and
// text. For lines and arrows it is the start point and Width/Height is the vector
// to the end point.
type GraphicElement struct {
	ID       string         `json:"id" yaml:"id"`
	Variant  GraphicVariant `json:"variant" yaml:"variant"`
	Position Point          `json:"position" yaml:"position"`
	Width    float64        `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64        `json:"height,omitempty" yaml:"height,omitempty"`
	Rotation float64        `json:"rotation,omitempty" yaml:"rotation,omitempty"` // degrees
	ZIndex   int            `json:"z_index" yaml:"z_index"`
	Stroke   string         `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	Fill     string         `json:"fill,omitempty" yaml:"fill,omitempty"`
	Opacity  float64        `json:"opacity" yaml:"opacity"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Style    TextStyle      `json:"style,omitempty" yaml:"style,omitempty"`
	Visible  bool           `json:"visible" yaml:"visible"`
}

// NewGraphicElement creates a visible, opaque element
func NewGraphicElement(id string, variant GraphicVariant, pos Point) *GraphicElement {
	return &GraphicElement{
		ID:       id,
		Variant:  variant,
		Position: pos,
		Opacity:  1,
		Visible:  true,
	}
}

// Lines splits the text content into lines
func (g *GraphicElement) Lines() []string {
	if g.Text == "" {
		return nil
	}
	return strings.Split(g.Text, "\n")
}

// FontSize returns the text size, defaulting to 16
func (g *GraphicElement) FontSize() float64 {
	if g.Style.FontSize > 0 {
		return g.Style.FontSize
	}
	return defaultFontSize
}

// Size returns the width/height of the element's box.
// Text without an explicit size is estimated from its content.
func (g *GraphicElement) Size() Size {
	if g.Variant != GraphicText || (g.Width > 0 && g.Height > 0) {
		return Size{Width: g.Width, Height: g.Height}
	}
	lines := g.Lines()
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	fs := g.FontSize()
	return Size{
		Width:  float64(longest) * fs * 0.6,
		Height: float64(max(len(lines), 1)) * fs * 1.2,
	}
}

// Bounds returns the unrotated axis-aligned box of the element in world space
func (g *GraphicElement) Bounds() Rect {
	s := g.Size()
	if g.Variant.IsLinear() {
		return RectFromPoints(g.Position, g.End())
	}
	return Rect{X: g.Position.X, Y: g.Position.Y, Width: s.Width, Height: s.Height}
}

// End returns the end point of a line or arrow
func (g *GraphicElement) End() Point {
	return Point{X: g.Position.X + g.Width, Y: g.Position.Y + g.Height}
}

// HitTest reports whether world point p touches the element.
// tolerance widens thin shapes (lines, arrows) and is expressed in world units.
func (g *GraphicElement) HitTest(p Point, tolerance float64) bool {
	if !g.Visible {
		return false
	}
	if g.Variant.IsLinear() {
		return distToSegment(p, g.Position, g.End()) <= tolerance
	}

	b := g.Bounds()
	if g.Rotation != 0 {
		p = rotateAbout(p, b.Center(), -g.Rotation)
	}

	if g.Variant == GraphicCircle {
		rx, ry := b.Width/2, b.Height/2
		if rx <= 0 || ry <= 0 {
			return false
		}
		c := b.Center()
		dx, dy := (p.X-c.X)/rx, (p.Y-c.Y)/ry
		return dx*dx+dy*dy <= 1
	}
	return b.Contains(p)
}

// rotateAbout rotates p around c by deg degrees
func rotateAbout(p, c Point, deg float64) Point {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx, dy := p.X-c.X, p.Y-c.Y
	return Point{
		X: c.X + dx*cos - dy*sin,
		Y: c.Y + dx*sin + dy*cos,
	}
}

func distToSegment(p, a, b Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return p.Dist(a)
	}
	t := Clamp(((p.X-a.X)*abx+(p.Y-a.Y)*aby)/l2, 0, 1)
	return p.Dist(Point{X: a.X + t*abx, Y: a.Y + t*aby})
}
