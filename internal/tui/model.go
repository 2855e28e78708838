// Package tui is a terminal floor-plan viewer. It drives a gesture engine with
// synthesized pointer, wheel and key events and draws each frame as box art.
package tui

import (
	"fmt"
	"strings"
	"time"

	"storeplan/internal/domain"
	"storeplan/internal/engine"
	"storeplan/internal/gesture"
	"storeplan/internal/manipulate"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Keyboard pans move this many cells per press
const (
	panCols = 5
	panRows = 2
)

// wheelNotch is the deltaY of one wheel click
const wheelNotch = 100.0

// frameInterval paces redraws while the view is coasting
const frameInterval = 16 * time.Millisecond

// keyboard pans use their own pointer id so they never collide with the mouse
const (
	mousePointer = 1
	keyPointer   = 99
)

var createKinds = []domain.EntityKind{
	"",
	domain.EntityKindGondola,
	domain.EntityKindEndcap,
	domain.EntityKindCheckout,
	domain.EntityKindPillar,
	domain.EntityKindFridge,
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E6E6"))
	dimStyle    = lipgloss.NewStyle().Foreground(dimFg)
)

// Options configures a viewer
type Options struct {
	Title  string
	Engine engine.Options
	// Callbacks receive edits, typically a persistence writer
	Callbacks engine.Callbacks
	// Editable allows switching to edit mode
	Editable bool
	// Copy writes text to the clipboard. Defaults to the system clipboard.
	Copy func(string) error
	// Now stamps synthesized events. Defaults to time.Now.
	Now func() time.Time
}

// LayoutMsg replaces the displayed layout
type LayoutMsg struct {
	Layout *domain.Layout
}

type frameMsg struct{}

// Model is the bubbletea model of the viewer
type Model struct {
	engine *engine.Engine
	keys   keyMap
	help   help.Model

	title    string
	editable bool
	copy     func(string) error
	now      func() time.Time

	width  int
	height int

	edit      bool
	selecting bool
	createIdx int
	mouseDown bool
	mouseBtn  gesture.Button
	status    string
}

// New creates a viewer showing layout
func New(layout *domain.Layout, opts Options) Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Title == "" {
		opts.Title = "storeplan"
	}

	en := engine.New(opts.Engine, opts.Callbacks)
	m := Model{
		engine:   en,
		keys:     defaultKeyMap,
		help:     help.New(),
		title:    opts.Title,
		editable: opts.Editable,
		copy:     opts.Copy,
		now:      opts.Now,
		status:   "ready",
	}
	m.load(layout)
	return m
}

// Engine returns the engine behind the view
func (m Model) Engine() *engine.Engine {
	return m.engine
}

func (m Model) load(layout *domain.Layout) {
	if layout == nil {
		layout = domain.NewLayout()
	}
	m.engine.SetEntities(layout.Entities)
	m.engine.SetGraphicElements(layout.Elements)
	m.engine.SetFramedView(layout.FramedView)
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.engine.SetScreenSize(m.screen())
		return m, nil

	case LayoutMsg:
		m.load(msg.Layout)
		m.setStatus("layout reloaded")
		return m, nil

	case frameMsg:
		return m, m.coast()

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// mapRows is the number of terminal rows given to the plan
func (m Model) mapRows() int {
	rows := m.height - 2
	if m.help.ShowAll {
		rows -= len(m.keys.FullHelp()[0])
	} else {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) screen() domain.Size {
	return domain.Size{
		Width:  float64(m.width) * CellWidth,
		Height: float64(m.mapRows()) * CellHeight,
	}
}

// cellCenter converts a terminal cell on the plan to a screen point.
// Row 0 is the title bar.
func cellCenter(x, y int) domain.Point {
	return domain.Point{
		X: float64(x)*CellWidth + CellWidth/2,
		Y: float64(y-1)*CellHeight + CellHeight/2,
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}

func (m Model) coast() tea.Cmd {
	if !m.engine.Coasting() {
		return nil
	}
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	pos := cellCenter(msg.X, msg.Y)
	mods := gesture.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		delta := wheelNotch
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -wheelNotch
		}
		m.engine.HandleWheel(gesture.WheelEvent{Pos: pos, DeltaY: delta, Modifiers: mods})
		return nil
	}

	ev := gesture.PointerEvent{
		ID:        mousePointer,
		Type:      gesture.PointerMouse,
		Pos:       pos,
		Modifiers: mods,
		Time:      m.now(),
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonRight:
			m.mouseBtn = gesture.ButtonSecondary
		case tea.MouseButtonMiddle:
			m.mouseBtn = gesture.ButtonMiddle
		default:
			m.mouseBtn = gesture.ButtonPrimary
		}
		m.mouseDown = true
		ev.Phase = gesture.PhaseDown
		ev.Button = m.mouseBtn
		m.engine.HandlePointer(ev)

	case tea.MouseActionMotion:
		ev.Phase = gesture.PhaseMove
		ev.Button = m.mouseBtn
		m.engine.HandlePointer(ev)

	case tea.MouseActionRelease:
		if !m.mouseDown {
			return nil
		}
		m.mouseDown = false
		ev.Phase = gesture.PhaseUp
		ev.Button = m.mouseBtn
		m.engine.HandlePointer(ev)
		return m.coast()
	}
	return nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.engine.SetScreenSize(m.screen())

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right):
		m.arrow(msg)

	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(-wheelNotch)

	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(wheelNotch)

	case key.Matches(msg, m.keys.Recenter):
		m.engine.Recenter()
		m.setStatus("recentered")

	case key.Matches(msg, m.keys.Edit):
		if !m.editable {
			m.setStatus("editing is disabled")
			break
		}
		m.edit = !m.edit
		m.engine.SetEditMode(m.edit)
		if !m.edit {
			m.createIdx = 0
			m.engine.SetCreateKind("")
		}
		m.setStatus("edit mode %s", onOff(m.edit))

	case key.Matches(msg, m.keys.Select):
		m.selecting = !m.selecting
		m.engine.SetSelectMode(m.selecting)
		m.setStatus("frame selection %s", onOff(m.selecting))

	case key.Matches(msg, m.keys.Create):
		if !m.edit {
			m.setStatus("create needs edit mode")
			break
		}
		m.createIdx = (m.createIdx + 1) % len(createKinds)
		kind := createKinds[m.createIdx]
		m.engine.SetCreateKind(kind)
		if kind == "" {
			m.setStatus("create off")
		} else {
			m.setStatus("click to create %s", kind)
		}

	case key.Matches(msg, m.keys.Copy):
		m.copySelected()

	case key.Matches(msg, m.keys.Escape):
		if m.selecting {
			m.selecting = false
			m.engine.SetSelectMode(false)
		}
		m.engine.HandleKey(gesture.KeyEvent{Key: "Escape"})
	}
	return m, nil
}

var arrowKeys = map[string]manipulate.Key{
	"up":    manipulate.KeyArrowUp,
	"down":  manipulate.KeyArrowDown,
	"left":  manipulate.KeyArrowLeft,
	"right": manipulate.KeyArrowRight,
}

// arrow nudges the selected entity in edit mode and pans the view otherwise
func (m *Model) arrow(msg tea.KeyMsg) {
	name := msg.String()
	shift := strings.HasPrefix(name, "shift+")
	name = strings.TrimPrefix(name, "shift+")

	k, ok := arrowKeys[name]
	if !ok {
		return
	}
	if m.engine.HandleKey(gesture.KeyEvent{Key: string(k), Modifiers: gesture.Modifiers{Shift: shift}}) {
		return
	}

	var d domain.Point
	switch k {
	case manipulate.KeyArrowUp:
		d.Y = panRows * CellHeight
	case manipulate.KeyArrowDown:
		d.Y = -panRows * CellHeight
	case manipulate.KeyArrowLeft:
		d.X = panCols * CellWidth
	case manipulate.KeyArrowRight:
		d.X = -panCols * CellWidth
	}
	m.pan(d)
}

// pan moves the view by a screen delta with a secondary-button drag that is
// cancelled instead of released, so it never starts momentum
func (m *Model) pan(d domain.Point) {
	s := m.screen()
	c := domain.Point{X: s.Width / 2, Y: s.Height / 2}
	ev := gesture.PointerEvent{
		ID:     keyPointer,
		Type:   gesture.PointerMouse,
		Button: gesture.ButtonSecondary,
		Pos:    c,
		Time:   m.now(),
	}
	ev.Phase = gesture.PhaseDown
	m.engine.HandlePointer(ev)
	ev.Phase = gesture.PhaseMove
	ev.Pos = c.Add(d)
	m.engine.HandlePointer(ev)
	ev.Phase = gesture.PhaseCancel
	m.engine.HandlePointer(ev)
}

func (m *Model) zoom(deltaY float64) {
	s := m.screen()
	m.engine.HandleWheel(gesture.WheelEvent{
		Pos:    domain.Point{X: s.Width / 2, Y: s.Height / 2},
		DeltaY: deltaY,
	})
	m.setStatus("zoom %.0f%%", m.engine.Viewport().Scale*100)
}

func (m *Model) copySelected() {
	e, ok := m.engine.Selected()
	if !ok {
		m.setStatus("nothing selected")
		return
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		m.setStatus("copy failed: %v", err)
		return
	}
	if err := m.copy(string(data)); err != nil {
		m.setStatus("copy failed: %v", err)
		return
	}
	m.setStatus("copied %s", e.ID)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View implements tea.Model
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.titleBar())
	sb.WriteByte('\n')

	c := newCanvas(m.width, m.mapRows())
	c.draw(m.engine.RenderModel())
	sb.WriteString(c.String())
	sb.WriteByte('\n')

	sb.WriteString(m.statusBar())
	sb.WriteByte('\n')
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Model) titleBar() string {
	mode := "view"
	if m.edit {
		mode = "edit"
	}
	if m.selecting {
		mode += " · select"
	}
	if m.createIdx > 0 {
		mode += " · create " + string(createKinds[m.createIdx])
	}
	return titleStyle.Render(m.title) + dimStyle.Render("  ["+mode+"]")
}

func (m Model) statusBar() string {
	vp := m.engine.Viewport()
	parts := []string{
		fmt.Sprintf("zoom %.0f%%", vp.Scale*100),
		fmt.Sprintf("pan %.0f,%.0f", vp.Pan.X, vp.Pan.Y),
	}
	if e, ok := m.engine.Selected(); ok {
		parts = append(parts, fmt.Sprintf("%s %s %.0f,%.0f %.0f×%.0f",
			e.ID, e.Kind, e.Rect.X, e.Rect.Y, e.Rect.Width, e.Rect.Height))
	}
	line := strings.Join(parts, "  ")
	if m.status != "" {
		line += "  " + dimStyle.Render(m.status)
	}
	return statusStyle.Render(line)
}
