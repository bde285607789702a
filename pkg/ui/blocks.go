package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

func blockKey(i int) string { return "b" + strconv.Itoa(i) }

// rebuild renders the mounted tree into the viewport and records where each
// block landed, for focus scrolling and visibility checks.
func (m *Model) rebuild() {
	width := max(20, m.viewport.Width-2)
	focused := m.Focused()

	m.blockStart = make([]int, len(m.tree))
	m.blockEnd = make([]int, len(m.tree))

	var b strings.Builder
	line := 0
	for i, blk := range m.tree {
		out := m.renderBlock(i, blk, width, i == focused)
		if i > 0 {
			b.WriteString("\n\n")
			line += 2
		}
		m.blockStart[i] = line
		b.WriteString(out)
		line += strings.Count(out, "\n")
		m.blockEnd[i] = line
	}
	if links := m.renderLinks(); links != "" {
		b.WriteString("\n\n")
		b.WriteString(links)
	}
	m.viewport.SetContent(b.String())
}

func (m *Model) renderBlock(i int, blk content.Block, width int, focused bool) string {
	switch b := blk.(type) {
	case content.Heading:
		return m.renderHeading(i, b)
	case content.Prose:
		return m.markdown(m.md, b.Markdown)
	case content.Callout:
		return m.renderCallout(b, width)
	case content.Diagram:
		return m.renderDiagram(b, width)
	case content.Code:
		return m.renderCode(i, b, width, focused)
	case content.Demo:
		return m.renderDemo(i, b, width, focused)
	case content.Quiz:
		return m.renderQuiz(i, b, width, focused)
	}
	return ""
}

func (m *Model) markdown(r *MarkdownRenderer, src string) string {
	out, err := r.Render(src)
	if err != nil {
		m.log.Warn("markdown render failed", "error", err)
	}
	return out
}

func (m *Model) renderHeading(i int, h content.Heading) string {
	th := m.theme
	if i == 0 {
		title := th.Fg(th.Primary).Bold(true).Render(h.Text)
		return title + "\n" + th.Fg(th.Primary).Render(strings.Repeat("━", lipgloss.Width(h.Text)))
	}
	return th.Fg(th.Secondary).Bold(true).Render("▍" + h.Text)
}

func (m *Model) calloutColor(k content.CalloutKind) lipgloss.AdaptiveColor {
	switch k {
	case content.KeyConcept:
		return m.theme.Accent
	case content.Math:
		return m.theme.Secondary
	case content.InNanochat:
		return m.theme.Success
	case content.ThinkAbout:
		return m.theme.Warning
	default:
		return m.theme.Info
	}
}

func (m *Model) renderCallout(c content.Callout, width int) string {
	th := m.theme
	color := m.calloutColor(c.Kind)
	caption := th.Fg(color).Bold(true).Render(c.Kind.Glyph() + " " + c.Caption())
	body := m.markdown(m.mdInset, c.Body)
	return th.Style().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(color).
		PaddingLeft(1).
		MaxWidth(width).
		Render(caption + "\n" + body)
}

func (m *Model) renderDiagram(d content.Diagram, width int) string {
	th := m.theme
	inner := width - 4
	rows := th.Style().Foreground(th.Code).MaxWidth(inner).Render(strings.Join(d.Rows, "\n"))
	label := th.Fg(th.Subtext).Bold(true).Render(d.Label)
	return th.Style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Border).
		Padding(0, 1).
		Width(width - 2).
		Render(label + "\n\n" + rows)
}

func (m *Model) renderCode(i int, c content.Code, width int, focused bool) string {
	th := m.theme
	inner := width - 4

	src := c.Source
	if m.session != nil {
		if out, ok := m.session.Output(blockKey(i)); ok {
			src = out
		}
	}
	lines := strings.Split(src, "\n")
	if c.StartLine > 0 {
		last := c.StartLine + len(lines) - 1
		gw := len(strconv.Itoa(last))
		gutter := th.Fg(th.Muted)
		for j, l := range lines {
			lines[j] = gutter.Render(fmt.Sprintf("%*d", gw, c.StartLine+j)) + "  " + l
		}
	}
	body := th.Style().MaxWidth(inner).Render(strings.Join(lines, "\n"))

	border := th.Border
	head := th.Fg(th.Subtext).Render("📄 " + c.Filename)
	lang := th.Fg(th.Muted).Render(c.Lang())
	if focused {
		border = th.Primary
		lang = th.Fg(th.Primary).Render("y copy") + th.Fg(th.Muted).Render(" · "+c.Lang())
	}
	gap := max(1, inner-lipgloss.Width(head)-lipgloss.Width(lang))
	head = head + strings.Repeat(" ", gap) + lang

	return th.Style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(head + "\n" + body)
}

func (m *Model) renderDemo(i int, d content.Demo, width int, focused bool) string {
	th := m.theme
	w := widget.Obtain(m.arena, i, d.New)

	title := th.Fg(th.Accent).Bold(true).Render("▶ " + d.Title)
	view := w.View(th, width-4)

	var hint string
	if focused {
		hint = m.help.ShortHelpView(w.Keys())
	} else {
		hint = th.Fg(th.Muted).Italic(true).Render("tab to interact")
	}

	border := th.Border
	if focused {
		border = th.Accent
	}
	return th.Style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(title + "\n\n" + view + "\n\n" + hint)
}

func (m *Model) renderQuiz(i int, qb content.Quiz, width int, focused bool) string {
	th := m.theme
	q := widget.Obtain(m.arena, i, qb.NewState)
	inner := width - 4
	wrap := th.Style().Width(inner)

	var b strings.Builder
	b.WriteString(th.Fg(th.Warning).Bold(true).Render("? Quiz"))
	b.WriteString("\n")
	b.WriteString(wrap.Bold(true).Foreground(th.Text).Render(qb.Question))
	b.WriteString("\n\n")

	selected, answered := q.Selected()
	for j, opt := range qb.Options {
		marker := "  "
		style := th.Fg(th.Text)
		if q.Revealed() {
			switch {
			case j == q.CorrectIndex():
				marker = "✓ "
				style = th.Fg(th.Success).Bold(true)
			case answered && j == selected:
				marker = "✗ "
				style = th.Fg(th.Danger)
			default:
				style = th.Fg(th.Muted)
			}
		}
		b.WriteString(style.Width(inner).Render(marker + widget.Letter(j) + ". " + opt))
		b.WriteString("\n")
	}

	switch q.Feedback() {
	case widget.Correct:
		b.WriteString("\n" + th.Fg(th.Success).Bold(true).Render("Correct!"))
		b.WriteString("\n" + m.markdown(m.mdInset, qb.Explanation))
	case widget.Incorrect:
		b.WriteString("\n" + th.Fg(th.Danger).Bold(true).Render("Not quite. The answer is "+widget.Letter(q.CorrectIndex())+"."))
		b.WriteString("\n" + m.markdown(m.mdInset, qb.Explanation))
	default:
		if focused {
			b.WriteString("\n" + th.Fg(th.Primary).Render("press a–d or 1–4 to answer (one attempt)"))
		}
	}

	border := th.Border
	if focused {
		border = th.Warning
	}
	return th.Style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderLinks() string {
	if len(m.links) == 0 {
		return ""
	}
	th := m.theme
	parts := make([]string, 0, len(m.links))
	for _, l := range m.links {
		parts = append(parts, th.Fg(th.Subtext).Render(l.Label+": ")+th.Fg(th.Info).Underline(true).Render(l.URL))
	}
	return th.Fg(th.Border).Render("🔗 ") + strings.Join(parts, th.Fg(th.Muted).Render("  ·  "))
}
