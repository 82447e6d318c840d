package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Back      key.Binding
	Help      key.Binding
	Status    key.Binding
	Generate  key.Binding
	Clear     key.Binding
	NextStyle key.Binding
	PrevStyle key.Binding
	Enter     key.Binding
	Up        key.Binding
	Down      key.Binding

	Save  key.Binding
	Copy  key.Binding
	New   key.Binding
	Edit  key.Binding
	Retry key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1", "ctrl+_"),
		key.WithHelp("f1", "help"),
	),
	Status: key.NewBinding(
		key.WithKeys("f2", "ctrl+e"),
		key.WithHelp("f2", "engine status"),
	),
	Generate: key.NewBinding(
		key.WithKeys("ctrl+g", "ctrl+s"),
		key.WithHelp("ctrl+g", "generate"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	NextStyle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next style"),
	),
	PrevStyle: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous style"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "down"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy source"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new report"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit notes"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
}
