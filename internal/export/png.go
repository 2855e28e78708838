// Package export rasterizes plan frames to PNG.
package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"storeplan/internal/domain"
	"storeplan/internal/render"
	"storeplan/internal/viewport"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Options configures PNG rendering
type Options struct {
	Width  int
	Height int
	// World is the logical plan size used when fitting a layout
	World domain.Size
}

// DefaultOptions returns a 1000x700 image of the default world
func DefaultOptions() Options {
	return Options{
		Width:  1000,
		Height: 700,
		World:  domain.DefaultWorldSize,
	}
}

// Colors used in rendering
var (
	colorCanvas     = color.RGBA{236, 239, 241, 255}
	colorFloor      = color.RGBA{255, 255, 255, 255}
	colorStroke     = color.RGBA{55, 71, 79, 255}
	colorAvailable  = color.RGBA{200, 230, 201, 255}
	colorOccupied   = color.RGBA{255, 224, 178, 255}
	colorSelected   = color.RGBA{25, 118, 210, 255}
	colorHandleFill = color.RGBA{255, 255, 255, 255}
	colorBandFill   = color.RGBA{25, 118, 210, 40}
)

// Renderer draws render models with gg. It is safe for concurrent use.
type Renderer struct {
	opts Options
	font *truetype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

// NewRenderer creates a renderer using the Go Mono font
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	if opts.World.Width <= 0 || opts.World.Height <= 0 {
		opts.World = domain.DefaultWorldSize
	}

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Renderer{opts: opts, font: ttf, faces: make(map[int]font.Face)}, nil
}

func (r *Renderer) face(size float64) font.Face {
	key := int(math.Max(6, math.Round(size)))
	if f, ok := r.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(r.font, &truetype.Options{
		Size:    float64(key),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[key] = f
	return f
}

// Screen returns the image size as a screen size
func (r *Renderer) Screen() domain.Size {
	return domain.Size{Width: float64(r.opts.Width), Height: float64(r.opts.Height)}
}

// FitModel builds a viewer-mode frame of the layout fitted to the image.
// The framed view is honored when the layout has one.
func (r *Renderer) FitModel(layout *domain.Layout) *render.Model {
	vp := viewport.New(r.opts.World, r.Screen(), viewport.Limits{MinZoom: 0.01, MaxZoom: 100})
	fit := domain.Rect{Width: r.opts.World.Width, Height: r.opts.World.Height}
	if layout.FramedView != nil {
		fit = *layout.FramedView
	}
	vp.Frame(&fit)

	return render.Build(render.Input{
		Entities: layout.Entities,
		Elements: layout.Elements,
		View:     vp.Snapshot(),
		Screen:   r.Screen(),
		World:    r.opts.World,
		Framed:   layout.FramedView,
	})
}

// RenderLayout writes a PNG of the whole layout, or of its framed view
func (r *Renderer) RenderLayout(w io.Writer, layout *domain.Layout) error {
	return r.WritePNG(w, r.FitModel(layout))
}

// WritePNG renders a frame and encodes it as PNG
func (r *Renderer) WritePNG(w io.Writer, m *render.Model) error {
	dc := r.draw(m)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// Render renders a frame to an image
func (r *Renderer) Render(m *render.Model) image.Image {
	return r.draw(m).Image()
}

func (r *Renderer) draw(m *render.Model) *gg.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetColor(colorCanvas)
	dc.Clear()

	bg := m.Background
	dc.SetColor(colorFloor)
	dc.DrawRectangle(bg.X, bg.Y, bg.Width, bg.Height)
	dc.Fill()

	// Elements below entities
	for _, item := range m.Elements {
		r.drawElement(dc, item, m.View.Scale)
	}
	for _, item := range m.Entities {
		r.drawEntity(dc, item, m.View.Scale)
	}

	for _, h := range m.Handles {
		dc.DrawRectangle(h.Screen.X, h.Screen.Y, h.Screen.Width, h.Screen.Height)
		dc.SetColor(colorHandleFill)
		dc.FillPreserve()
		dc.SetColor(colorSelected)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	if band := m.RubberBand; band != nil {
		dc.DrawRectangle(band.X, band.Y, band.Width, band.Height)
		dc.SetColor(colorBandFill)
		dc.FillPreserve()
		dc.SetColor(colorSelected)
		dc.SetDash(4, 4)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.SetDash()
	}
	return dc
}

func (r *Renderer) drawEntity(dc *gg.Context, item render.EntityItem, scale float64) {
	s := item.Screen
	fill := colorAvailable
	if item.Entity.Status == domain.EntityStatusOccupied {
		fill = colorOccupied
	}

	dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
	dc.SetColor(fill)
	dc.FillPreserve()
	if item.Selected {
		dc.SetColor(colorSelected)
		dc.SetLineWidth(2)
	} else {
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1)
	}
	dc.Stroke()

	label := item.Entity.Label
	if label == "" {
		label = item.Entity.ID
	}
	dc.SetFontFace(r.face(12 * scale))
	dc.SetColor(colorStroke)
	dc.DrawStringAnchored(label, s.X+s.Width/2, s.Y+s.Height/2, 0.5, 0.5)
}

func (r *Renderer) drawElement(dc *gg.Context, item render.ElementItem, scale float64) {
	el := item.Element
	s := item.Screen
	stroke := parseColor(el.Stroke, colorStroke, el.Opacity)
	fill, hasFill := color.Color(nil), el.Fill != "" && el.Fill != "none"
	if hasFill {
		fill = parseColor(el.Fill, colorFloor, el.Opacity)
	}

	dc.Push()
	defer dc.Pop()
	if el.Rotation != 0 && !el.Variant.IsLinear() {
		c := s.Center()
		dc.RotateAbout(gg.Radians(el.Rotation), c.X, c.Y)
	}
	dc.SetLineWidth(math.Max(1, 2*scale))

	switch el.Variant {
	case domain.GraphicRectangle:
		dc.DrawRectangle(s.X, s.Y, s.Width, s.Height)
		strokeAndFill(dc, stroke, fill, hasFill)
	case domain.GraphicCircle:
		c := s.Center()
		dc.DrawEllipse(c.X, c.Y, s.Width/2, s.Height/2)
		strokeAndFill(dc, stroke, fill, hasFill)
	case domain.GraphicLine, domain.GraphicArrow:
		dc.SetColor(stroke)
		dc.DrawLine(item.Start.X, item.Start.Y, item.End.X, item.End.Y)
		dc.Stroke()
		if el.Variant == domain.GraphicArrow {
			drawArrowHead(dc, item.Start, item.End, 8*math.Max(scale, 0.5))
		}
	case domain.GraphicText:
		r.drawText(dc, item, scale, stroke)
	}

	if item.Selected {
		dc.SetColor(colorSelected)
		dc.SetLineWidth(1)
		dc.SetDash(3, 3)
		dc.DrawRectangle(s.X-2, s.Y-2, s.Width+4, s.Height+4)
		dc.Stroke()
		dc.SetDash()
	}
}

func (r *Renderer) drawText(dc *gg.Context, item render.ElementItem, scale float64, c color.Color) {
	el := item.Element
	s := item.Screen
	size := el.FontSize() * scale
	dc.SetFontFace(r.face(size))
	dc.SetColor(c)

	ax, x := 0.0, s.X
	switch el.Style.Align {
	case "center":
		ax, x = 0.5, s.X+s.Width/2
	case "right":
		ax, x = 1, s.X+s.Width
	}

	lineHeight := size * 1.2
	for i, line := range el.Lines() {
		y := s.Y + float64(i)*lineHeight
		dc.DrawStringAnchored(line, x, y, ax, 1)
		if el.Style.TextDecoration == "underline" {
			w, _ := dc.MeasureString(line)
			ux := x - w*ax
			dc.SetLineWidth(math.Max(1, scale))
			dc.DrawLine(ux, y+lineHeight*0.9, ux+w, y+lineHeight*0.9)
			dc.Stroke()
		}
	}
}

func strokeAndFill(dc *gg.Context, stroke, fill color.Color, hasFill bool) {
	if hasFill {
		dc.SetColor(fill)
		dc.FillPreserve()
	}
	dc.SetColor(stroke)
	dc.Stroke()
}

func drawArrowHead(dc *gg.Context, from, to domain.Point, size float64) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const spread = 0.5
	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X-size*dx+size*dy*spread, to.Y-size*dy-size*dx*spread)
	dc.LineTo(to.X-size*dx-size*dy*spread, to.Y-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

// parseColor reads #rgb or #rrggbb, falling back to def, and applies opacity
func parseColor(s string, def color.RGBA, opacity float64) color.Color {
	c := def
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			c = color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	a := domain.Clamp(opacity, 0, 1)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}
