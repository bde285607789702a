package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
)

// openSections shows the jump list with the cursor on the section the
// viewport is currently in.
func (m *Model) openSections() tea.Cmd {
	if len(m.sections) == 0 {
		return m.flash("No sections in this chapter")
	}
	m.showSections = true
	m.sectionCursor = m.currentSection()
	return nil
}

// currentSection is the last section starting at or above the top line.
func (m Model) currentSection() int {
	cur := 0
	for i, s := range m.sections {
		if s.Block < len(m.blockStart) && m.blockStart[s.Block] <= m.viewport.YOffset {
			cur = i
		}
	}
	return cur
}

// handleSectionKey owns every key while the jump list is open.
func (m *Model) handleSectionKey(msg tea.KeyMsg) tea.Cmd {
	n := len(m.sections)
	switch {
	case key.Matches(msg, keys.Up):
		m.sectionCursor = lo.Clamp(m.sectionCursor-1, 0, n-1)
	case key.Matches(msg, keys.Down):
		m.sectionCursor = lo.Clamp(m.sectionCursor+1, 0, n-1)
	case key.Matches(msg, keys.Top):
		m.sectionCursor = 0
	case key.Matches(msg, keys.Bottom):
		m.sectionCursor = n - 1
	case key.Matches(msg, keys.Select):
		return m.jumpToSection(m.sectionCursor)
	case key.Matches(msg, keys.Sections, keys.Escape, keys.Quit):
		m.showSections = false
	}
	return nil
}

// jumpToSection closes the list and scrolls the section's heading to the top.
func (m *Model) jumpToSection(i int) tea.Cmd {
	m.showSections = false
	if i < 0 || i >= len(m.sections) {
		return nil
	}
	s := m.sections[i]
	if s.Block >= len(m.blockStart) {
		return nil
	}
	m.viewport.SetYOffset(m.blockStart[s.Block])
	return m.requestVisible()
}

func (m Model) renderSections() string {
	th := m.theme

	modalWidth := min(48, m.width-4)
	titleWidth := max(8, modalWidth-10)

	var b strings.Builder
	b.WriteString(th.Fg(th.Primary).Bold(true).Render("Sections"))
	b.WriteString(th.Fg(th.Muted).Render(" · " + runewidth.Truncate(m.nav.Active().Title, titleWidth-10, "…")))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Border).Render(strings.Repeat("─", max(0, modalWidth-6))))
	b.WriteString("\n")

	for i, s := range m.sections {
		title := runewidth.Truncate(s.Title, titleWidth, "…")
		b.WriteString("\n")
		if i == m.sectionCursor {
			b.WriteString(th.Style().Bold(true).Foreground(th.Accent).Background(th.Highlight).Render("→ " + title))
		} else {
			b.WriteString(th.Fg(th.Subtext).Render("  " + title))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(th.Fg(th.Muted).Italic(true).Render("enter jump · esc close"))

	return th.Style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Secondary).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())
}
