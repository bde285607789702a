package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/underhood/pkg/content"
)

// helpContext is what the help overlay explains.
type helpContext int

const (
	helpReading helpContext = iota
	helpSidebar
	helpDemo
	helpQuiz
	helpCode
)

var contextHelpContent = map[helpContext]string{
	helpReading: contextHelpReading,
	helpSidebar: contextHelpSidebar,
	helpDemo:    contextHelpDemo,
	helpQuiz:    contextHelpQuiz,
	helpCode:    contextHelpCode,
}

const contextHelpReading = `Reading
  j/k, ↑/↓      scroll
  ctrl+d/u      half page
  g/G           top / bottom
  o             jump to a section
  tab           jump to the next demo, quiz or code excerpt`

const contextHelpSidebar = `Chapter list
  j/k, ↑/↓      move
  enter         open chapter
  esc, tab      back to the content
  s             close the list`

const contextHelpDemo = `Interactive demo
  The demo takes the keys listed under it.
  Unused keys scroll the page as usual.
  Text fields keep every key until enter or esc.
  esc           leave the demo`

const contextHelpQuiz = `Quiz
  a-d or 1-4    answer
  One attempt: the answer and explanation
  are revealed after your first pick.
  Revisiting the chapter starts a fresh attempt.`

const contextHelpCode = `Code excerpt
  y             copy the source to the clipboard
  Line numbers match the nanochat file.`

func (m Model) helpContext() helpContext {
	if m.sidebarFocused && m.nav.SidePanelOpen() {
		return helpSidebar
	}
	if m.focus < 0 {
		return helpReading
	}
	switch m.tree[m.focusables[m.focus]].(type) {
	case content.Demo:
		return helpDemo
	case content.Quiz:
		return helpQuiz
	case content.Code:
		return helpCode
	}
	return helpReading
}

// renderHelp is the compact quick-reference modal: context notes first,
// then every global binding.
func (m Model) renderHelp() string {
	th := m.theme

	modalWidth := 64
	if modalWidth > m.width-4 {
		modalWidth = m.width - 4
	}

	titleStyle := th.Fg(th.Primary).Bold(true)
	contentStyle := th.Fg(th.Subtext)
	footerStyle := th.Fg(th.Muted).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Quick Reference"))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Border).Render(strings.Repeat("─", max(0, modalWidth-6))))
	b.WriteString("\n\n")
	b.WriteString(contentStyle.Render(contextHelpContent[m.helpContext()]))
	if w, ok := m.focusedDemo(); ok {
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView(w.Keys()))
	}
	b.WriteString("\n\n")
	full := m.help
	full.ShowAll = true
	b.WriteString(full.View(keys))
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("? or esc to close"))

	return th.Style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Secondary).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())
}

// styleHelp colors the key hints with the current theme.
func (m *Model) styleHelp() {
	th := m.theme
	m.help.Styles.ShortKey = th.Fg(th.Primary)
	m.help.Styles.ShortDesc = th.Fg(th.Subtext)
	m.help.Styles.ShortSeparator = th.Fg(th.Border)
	m.help.Styles.FullKey = th.Fg(th.Primary).Bold(true)
	m.help.Styles.FullDesc = th.Fg(th.Text)
	m.help.Styles.FullSeparator = th.Fg(th.Border)
	m.help.Styles.Ellipsis = th.Fg(th.Muted)
}
