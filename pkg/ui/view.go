package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const guideTitle = "LLM Under the Hood"

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	bodyHeight := max(3, m.height-headerHeight-footerHeight)

	var body string
	switch {
	case m.showHelp:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderHelp())
	case m.showSections:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.renderSections())
	case m.nav.SidePanelOpen() && m.narrow():
		body = m.renderSidebar(m.width, bodyHeight)
	case m.nav.SidePanelOpen():
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(sidebarWidth, bodyHeight), m.viewport.View())
	default:
		body = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

// renderHeader is the title row, the chapter row with position and reading
// time, and a rule.
func (m Model) renderHeader() string {
	th := m.theme
	ch := m.nav.Active()
	i, n := m.nav.Position()
	pageNum := i + 1

	title := th.Fg(th.Primary).Bold(true).Render("🧠 " + guideTitle)
	sub := th.Fg(th.Subtext).Render(" · Interactive guide · based on nanochat")

	// Progress indicator: [3/10] ███░░░░░░░
	barWidth := 10
	filled := 0
	if n > 0 {
		filled = min(barWidth, max(1, pageNum*barWidth/n))
	}
	progress := th.Fg(th.Subtext).Render(fmt.Sprintf("[%d/%d] ", pageNum, n)) +
		th.Fg(th.Success).Render(strings.Repeat("█", filled)) +
		th.Fg(th.Muted).Render(strings.Repeat("░", barWidth-filled))
	line1 := spread(title+sub, progress, m.width)

	chapter := th.Fg(th.Text).Bold(true).Render(ch.Icon + " " + ch.Title)
	label := th.Fg(th.Muted).Render(fmt.Sprintf("Chapter %d · ", pageNum))
	read := th.Fg(th.Muted).Render(fmt.Sprintf("~%d min read", m.stats.Minutes()))
	line2 := spread(label+chapter, read, m.width)

	rule := th.Fg(th.Border).Render(strings.Repeat("─", max(0, m.width)))
	return line1 + "\n" + line2 + "\n" + rule
}

// renderFooter shows the prev/next controls, hidden at the ends of the
// catalog, and the key hint or status line.
func (m Model) renderFooter() string {
	th := m.theme
	prev, next := m.nav.Neighbors()

	var left, right string
	if prev != nil {
		left = th.Fg(th.Primary).Render("← Prev: ") + th.Fg(th.Text).Render(prev.Title)
	}
	if next != nil {
		right = th.Fg(th.Primary).Render("Next: ") + th.Fg(th.Text).Render(next.Title) + th.Fg(th.Primary).Render(" →")
	}
	line1 := spread(left, right, m.width)

	var line2 string
	switch {
	case m.status != "":
		line2 = th.Fg(th.Success).Render(m.status)
	case m.sidebarFocused && m.nav.SidePanelOpen():
		line2 = m.help.ShortHelpView(keys.sidebarHelp())
	default:
		line2 = m.help.ShortHelpView(keys.ShortHelp())
	}
	return line1 + "\n" + line2
}

// renderSidebar lists the chapters with their position, the active marker,
// and the cursor when the list has focus.
func (m Model) renderSidebar(width, height int) string {
	th := m.theme
	focused := m.sidebarFocused

	borderColor := th.Border
	if focused {
		borderColor = th.Primary
	}

	headerStyle := th.Fg(th.Primary).Bold(true)
	labelStyle := th.Fg(th.Muted)
	itemStyle := th.Fg(th.Subtext)
	activeStyle := th.Fg(th.Primary).Bold(true)
	cursorStyle := th.Style().Bold(true).Foreground(th.Accent).Background(th.Highlight)

	var b strings.Builder
	b.WriteString(headerStyle.Render("Chapters"))
	if focused {
		b.WriteString(th.Fg(th.Primary).Render(" ●"))
	}
	b.WriteString("\n")

	active := m.activeIndex()
	titleWidth := max(4, width-8)
	for i, ch := range m.nav.Catalog().All() {
		prefix := "  "
		style := itemStyle
		switch {
		case focused && i == m.cursor:
			prefix = "→ "
			style = cursorStyle
		case i == active:
			prefix = "▶ "
			style = activeStyle
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("  Chapter %d", i+1)))
		b.WriteString("\n")
		title := runewidth.Truncate(ch.Title, titleWidth-runewidth.StringWidth(ch.Icon)-1, "…")
		b.WriteString(style.Render(prefix + ch.Icon + " " + title))
	}

	return th.Style().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width - 1).
		Height(height).
		MaxHeight(height).
		Render(b.String())
}

// spread places left and right on one line of the given width.
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
