package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Tab     key.Binding
	Enter   key.Binding
	Add     key.Binding
	Edit    key.Binding
	Done    key.Binding
	Delete  key.Binding
	Restore key.Binding
	Clear   key.Binding
	Search  key.Binding
	Confirm key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next filter")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "toggle")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Done:    key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "toggle done")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Restore: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo delete")),
	Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear completed")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Confirm: key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "confirm")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
