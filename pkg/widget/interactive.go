package widget

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/underhood/pkg/theme"
)

// Interactive is the contract between a demo and the chapter view. Update
// applies one key and reports whether the widget consumed it; View is a pure
// function of the widget's state.
type Interactive interface {
	Update(msg tea.KeyMsg) bool
	View(th theme.Theme, width int) string
	Keys() []key.Binding
}

// Editor is implemented by widgets with a text field. While Editing is true
// the view forwards every key to the widget, including ones that would
// otherwise navigate or quit.
type Editor interface {
	Editing() bool
}
