package tui

import (
	"math"
	"strings"

	"storeplan/internal/domain"
	"storeplan/internal/render"

	"github.com/charmbracelet/lipgloss"
)

// Terminal cells are mapped to screen pixels at this size
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

type ink int

const (
	inkBlank ink = iota
	inkFloor
	inkElement
	inkAvailable
	inkOccupied
	inkSelected
	inkHandle
	inkBand
)

var (
	accentFg = lipgloss.Color("#7C3AED")
	dimFg    = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#374151"}

	inkStyles = map[ink]lipgloss.Style{
		inkBlank:     lipgloss.NewStyle(),
		inkFloor:     lipgloss.NewStyle().Foreground(dimFg),
		inkElement:   lipgloss.NewStyle().Foreground(lipgloss.Color("#90A4AE")),
		inkAvailable: lipgloss.NewStyle().Foreground(lipgloss.Color("#66BB6A")),
		inkOccupied:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA726")),
		inkSelected:  lipgloss.NewStyle().Foreground(accentFg).Bold(true),
		inkHandle:    lipgloss.NewStyle().Foreground(accentFg),
		inkBand:      lipgloss.NewStyle().Foreground(lipgloss.Color("#29B6F6")),
	}
)

type cell struct {
	r   rune
	ink ink
}

// canvas rasterizes a render model onto a grid of terminal cells
type canvas struct {
	cols, rows int
	cells      []cell
}

func newCanvas(cols, rows int) *canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', ink: inkBlank}
	}
	return c
}

func (c *canvas) set(col, row int, r rune, k ink) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = cell{r: r, ink: k}
}

func (c *canvas) at(col, row int) cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return cell{r: ' '}
	}
	return c.cells[row*c.cols+col]
}

// span converts a screen rectangle to the inclusive cell range it covers
func span(r domain.Rect) (c0, r0, c1, r1 int) {
	c0 = int(math.Floor(r.X / CellWidth))
	r0 = int(math.Floor(r.Y / CellHeight))
	c1 = int(math.Ceil((r.X+r.Width)/CellWidth)) - 1
	r1 = int(math.Ceil((r.Y+r.Height)/CellHeight)) - 1
	if c1 < c0 {
		c1 = c0
	}
	if r1 < r0 {
		r1 = r0
	}
	return
}

func cellOf(p domain.Point) (int, int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

func (c *canvas) fill(r domain.Rect, ch rune, k ink) {
	c0, r0, c1, r1 := span(r)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			c.set(col, row, ch, k)
		}
	}
}

type border struct {
	h, v, tl, tr, bl, br rune
}

var (
	solidBorder  = border{'─', '│', '┌', '┐', '└', '┘'}
	heavyBorder  = border{'━', '┃', '┏', '┓', '┗', '┛'}
	dashedBorder = border{'┄', '┆', '┌', '┐', '└', '┘'}
	roundBorder  = border{'─', '│', '╭', '╮', '╰', '╯'}
)

func (c *canvas) box(r domain.Rect, b border, k ink, clear bool) {
	c0, r0, c1, r1 := span(r)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			var ch rune
			switch {
			case row == r0 && col == c0:
				ch = b.tl
			case row == r0 && col == c1:
				ch = b.tr
			case row == r1 && col == c0:
				ch = b.bl
			case row == r1 && col == c1:
				ch = b.br
			case row == r0 || row == r1:
				ch = b.h
			case col == c0 || col == c1:
				ch = b.v
			case clear:
				ch = ' '
			default:
				continue
			}
			c.set(col, row, ch, k)
		}
	}
}

// text writes s starting at a cell, clipped to maxLen runes
func (c *canvas) text(col, row int, s string, maxLen int, k ink) {
	runes := []rune(s)
	if maxLen >= 0 && len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	for i, r := range runes {
		c.set(col+i, row, r, k)
	}
}

// line draws a straight cell line between two screen points
func (c *canvas) line(a, b domain.Point, ch rune, k ink) {
	x0, y0 := cellOf(a)
	x1, y1 := cellOf(b)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, ch, k)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// draw paints a frame back to front: floor, elements, entities, handles, rubber band
func (c *canvas) draw(m *render.Model) {
	c.fill(m.Background, '·', inkFloor)

	for _, it := range m.Elements {
		k := inkElement
		if it.Selected {
			k = inkSelected
		}
		switch it.Element.Variant {
		case domain.GraphicLine:
			c.line(it.Start, it.End, '•', k)
		case domain.GraphicArrow:
			c.line(it.Start, it.End, '•', k)
			col, row := cellOf(it.End)
			c.set(col, row, arrowHead(it.Start, it.End), k)
		case domain.GraphicText:
			col, row := cellOf(it.Screen.Min())
			for i, ln := range strings.Split(it.Element.Text, "\n") {
				c.text(col, row+i, ln, -1, k)
			}
		case domain.GraphicCircle:
			c.box(it.Screen, roundBorder, k, false)
		default:
			c.box(it.Screen, solidBorder, k, false)
		}
	}

	for _, it := range m.Entities {
		k := inkAvailable
		if it.Entity.Status == domain.EntityStatusOccupied {
			k = inkOccupied
		}
		b := solidBorder
		if it.Selected {
			k = inkSelected
			b = heavyBorder
		}
		c.box(it.Screen, b, k, true)
		c.label(it, k)
	}

	for _, h := range m.Handles {
		col, row := cellOf(h.Screen.Center())
		c.set(col, row, '■', inkHandle)
	}

	if m.RubberBand != nil {
		c.box(*m.RubberBand, dashedBorder, inkBand, false)
	}
}

// label centers the entity id, and its label when there is room, inside the box
func (c *canvas) label(it render.EntityItem, k ink) {
	c0, r0, c1, r1 := span(it.Screen)
	inner := c1 - c0 - 1
	if inner <= 0 {
		return
	}
	lines := []string{it.Entity.ID}
	if it.Entity.Label != "" && r1-r0-1 >= 2 {
		lines = append(lines, it.Entity.Label)
	}
	top := r0 + (r1-r0+1-len(lines))/2
	for i, s := range lines {
		n := len([]rune(s))
		if n > inner {
			n = inner
		}
		c.text(c0+1+(inner-n)/2, top+i, s, inner, k)
	}
}

func arrowHead(a, b domain.Point) rune {
	dx, dy := b.X-a.X, b.Y-a.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return '▶'
		}
		return '◀'
	}
	if dy >= 0 {
		return '▼'
	}
	return '▲'
}

// String renders the grid, grouping runs of equal ink into one styled segment
func (c *canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		var run []rune
		cur := inkBlank
		for col := 0; col < c.cols; col++ {
			cl := c.at(col, row)
			if cl.ink != cur && len(run) > 0 {
				sb.WriteString(inkStyles[cur].Render(string(run)))
				run = run[:0]
			}
			cur = cl.ink
			run = append(run, cl.r)
		}
		if len(run) > 0 {
			sb.WriteString(inkStyles[cur].Render(string(run)))
		}
	}
	return sb.String()
}
