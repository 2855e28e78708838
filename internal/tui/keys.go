package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings of the plan viewer
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Recenter key.Binding
	Edit     key.Binding
	Select   key.Binding
	Create   key.Binding
	Copy     key.Binding
	Escape   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns the bindings shown in the one-line help
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.ZoomIn, k.ZoomOut, k.Recenter, k.Edit, k.Copy, k.Help, k.Quit}
}

// FullHelp returns every binding, grouped in columns
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Recenter},
		{k.Edit, k.Select, k.Create, k.Copy},
		{k.Escape, k.Help, k.Quit},
	}
}

var defaultKeyMap = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "shift+up"),
		key.WithHelp("↑", "pan / nudge up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "shift+down"),
		key.WithHelp("↓", "pan / nudge down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "shift+left"),
		key.WithHelp("←/→/↑/↓", "pan or nudge (shift resizes)"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "shift+right"),
		key.WithHelp("→", "pan / nudge right"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Recenter: key.NewBinding(
		key.WithKeys("0", "r"),
		key.WithHelp("r", "recenter"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit mode"),
	),
	Select: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "frame selection"),
	),
	Create: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "cycle create kind"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y", "c"),
		key.WithHelp("y", "copy selected"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
