package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the dashboard bindings. It implements help.KeyMap.
type keyMap struct {
	Select   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Picker   key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Table    key.Binding
	Copy     key.Binding
	Export   key.Binding
	Reload   key.Binding
	Language key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Select: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "chart"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab", "next chart"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("S-tab", "prev chart"),
		),
		Picker: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "pick chart"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d", " "),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Table: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "focus table"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy stats"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Language: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "language"),
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
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Next, k.Picker, k.Copy, k.Export, k.Reload, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Select, k.Next, k.Prev, k.Picker},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Table, k.Copy, k.Export, k.Reload},
		{k.Language, k.Help, k.Quit},
	}
}
