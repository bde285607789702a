package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	FocusNext key.Binding
	FocusPrev key.Binding
	Panel     key.Binding
	Theme     key.Binding
	Copy      key.Binding
	Sections  key.Binding
	Answer    key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Help      key.Binding
	Escape    key.Binding
	Quit      key.Binding

	// sidebar
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

var keys = keyMap{
	Next:      key.NewBinding(key.WithKeys("]", "n"), key.WithHelp("]/n", "next chapter")),
	Prev:      key.NewBinding(key.WithKeys("[", "p"), key.WithHelp("[/p", "prev chapter")),
	FocusNext: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next demo/quiz")),
	FocusPrev: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous")),
	Panel:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "chapters")),
	Theme:     key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "dark/light")),
	Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy code")),
	Sections:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sections")),
	Answer:    key.NewBinding(key.WithKeys("a", "b", "c", "d", "1", "2", "3", "4"), key.WithHelp("a-d", "answer")),
	Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
}

// ShortHelp is the footer hint line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.FocusNext, k.Panel, k.Theme, k.Help, k.Quit}
}

// FullHelp groups every binding for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Top, k.Bottom, k.Sections},
		{k.FocusNext, k.FocusPrev, k.Answer, k.Copy},
		{k.Panel, k.Theme, k.Help, k.Escape, k.Quit},
	}
}

func (k keyMap) sidebarHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Escape}
}
