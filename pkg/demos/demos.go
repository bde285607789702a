// Package demos holds the interactive visualizations embedded in chapters.
// Each demo pairs a pure computation (exported, tested on its own) with a
// small widget that maps keys onto widget state and renders the result.
// Nothing here runs a model: every number is toy data or a closed formula.
package demos

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

type keyMap struct {
	Left        key.Binding
	Right       key.Binding
	CoarseLeft  key.Binding
	CoarseRight key.Binding
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Edit        key.Binding
	Done        key.Binding
	Reset       key.Binding
}

var keys = keyMap{
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
	CoarseLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "decrease ×10")),
	CoarseRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "increase ×10")),
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous field")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next field")),
	Toggle:      key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "toggle")),
	Edit:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
	Done:        key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "done")),
	Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
}

// param is one slider row in a panel.
type param struct {
	label  string
	s      *widget.Slider
	format func(v float64) string
	hint   func(v float64) string
}

// panel is a vertical list of sliders with a cursor. Up/down move the cursor
// only when there is more than one row, so single-slider demos leave those
// keys to the scrolling view.
type panel struct {
	params []param
	cursor int
}

func (p *panel) current() *widget.Slider { return p.params[p.cursor].s }

func (p *panel) update(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Left):
		p.current().Dec()
	case key.Matches(msg, keys.Right):
		p.current().Inc()
	case key.Matches(msg, keys.CoarseLeft):
		s := p.current()
		s.Set(s.Value() - 10*s.Step())
	case key.Matches(msg, keys.CoarseRight):
		s := p.current()
		s.Set(s.Value() + 10*s.Step())
	case key.Matches(msg, keys.Up) && len(p.params) > 1:
		if p.cursor == 0 {
			return false
		}
		p.cursor--
	case key.Matches(msg, keys.Down) && len(p.params) > 1:
		if p.cursor == len(p.params)-1 {
			return false
		}
		p.cursor++
	case key.Matches(msg, keys.Reset):
		for _, prm := range p.params {
			prm.s.Reset()
		}
		p.cursor = 0
	default:
		return false
	}
	return true
}

func (p *panel) keys() []key.Binding {
	out := []key.Binding{keys.Left, keys.Right}
	if len(p.params) > 1 {
		out = append(out, keys.Up, keys.Down)
	}
	return append(out, keys.Reset)
}

func (p *panel) view(th theme.Theme, width int) string {
	labelW := 0
	for _, prm := range p.params {
		labelW = max(labelW, lipgloss.Width(prm.label))
	}
	trackW := lo.Clamp(width-labelW-16, 10, 40)

	var b strings.Builder
	for i, prm := range p.params {
		marker := "  "
		labelStyle := th.Fg(th.Subtext)
		if len(p.params) > 1 && i == p.cursor {
			marker = th.Fg(th.Accent).Render("▸ ")
			labelStyle = th.Fg(th.Text).Bold(true)
		}
		v := prm.s.Value()
		b.WriteString(marker)
		b.WriteString(labelStyle.Render(padRight(prm.label, labelW)))
		b.WriteString("  ")
		b.WriteString(track(th, prm.s.Fraction(), trackW))
		b.WriteString("  ")
		b.WriteString(th.Fg(th.Primary).Bold(true).Render(prm.format(v)))
		if prm.hint != nil {
			b.WriteString("  ")
			b.WriteString(th.Fg(th.Muted).Render(prm.hint(v)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// track draws a slider rail with a knob at frac.
func track(th theme.Theme, frac float64, width int) string {
	pos := int(math.Round(frac * float64(width-1)))
	pos = lo.Clamp(pos, 0, width-1)
	return th.Fg(th.Primary).Render(strings.Repeat("━", pos)) +
		th.Fg(th.Accent).Render("●") +
		th.Fg(th.Border).Render(strings.Repeat("─", width-1-pos))
}

// bar draws a horizontal bar filled to frac of width.
func bar(th theme.Theme, c lipgloss.AdaptiveColor, frac float64, width int) string {
	n := lo.Clamp(int(math.Round(frac*float64(width))), 0, width)
	return th.Fg(c).Render(strings.Repeat("█", n)) + th.Fg(th.Border).Render(strings.Repeat("░", width-n))
}

// chip renders a token in a bracketed box.
func chip(style lipgloss.Style, text string) string {
	return style.Padding(0, 1).Render(text)
}

// flow lays chips out left to right, wrapping at width.
func flow(chips []string, width int) string {
	var lines []string
	var line []string
	lineW := 0
	for _, c := range chips {
		w := lipgloss.Width(c)
		if lineW > 0 && lineW+1+w > width {
			lines = append(lines, strings.Join(line, " "))
			line, lineW = nil, 0
		}
		if lineW > 0 {
			lineW++
		}
		line = append(line, c)
		lineW += w
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return strings.Join(lines, "\n")
}

// navHint renders "← Back  Next →" with the unavailable side dimmed.
func navHint(th theme.Theme, back, next string, atStart, atEnd bool) string {
	on := th.Fg(th.Text)
	off := th.Fg(th.Muted).Faint(true)
	l, r := on, on
	if atStart {
		l = off
	}
	if atEnd {
		r = off
	}
	return l.Render("← "+back) + "   " + r.Render(next+" →")
}

func caption(th theme.Theme, s string) string {
	return th.Fg(th.Muted).Italic(true).Render(s)
}

func padRight(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func padLeft(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}

func fixed(prec int) func(float64) string {
	return func(v float64) string { return fmt.Sprintf("%.*f", prec, v) }
}

func integer(v float64) string { return fmt.Sprintf("%d", int(math.Round(v))) }

// stepUpdate maps left/right/reset onto a stepper. Both arrows are consumed
// at the ends too, so a focused walkthrough never leaks them to the page.
func stepUpdate(s *widget.Stepper, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Left):
		s.Back()
	case key.Matches(msg, keys.Right):
		s.Next()
	case key.Matches(msg, keys.Reset):
		s.Reset()
	default:
		return false
	}
	return true
}
