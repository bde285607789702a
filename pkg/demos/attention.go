package demos

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// HeatmapTokens is the sentence the heatmap attends over.
var HeatmapTokens = []string{"The", "cat", "sat", "on", "the", "mat"}

// CausalWeights builds a hand-tuned causal attention pattern: every row
// favours the first token, itself, its predecessor and the noun "cat", is
// normalized to sum to 1, and is zero for future positions.
func CausalWeights(tokens []string) [][]float64 {
	n := len(tokens)
	w := make([][]float64, n)
	for i := range w {
		row := make([]float64, n)
		for j := 0; j <= i; j++ {
			v := 0.1
			if j == 0 {
				v = 0.3
			}
			if j == i {
				v = 0.4
			}
			if j == i-1 {
				v = 0.25
			}
			if tokens[j] == "cat" && i > 1 {
				v = 0.35
			}
			row[j] = v
		}
		floats.Scale(1/floats.Sum(row[:i+1]), row[:i+1])
		w[i] = row
	}
	return w
}

// Heatmap lets the reader move a cursor over the attention matrix.
type Heatmap struct {
	weights  [][]float64
	row, col *widget.Choice
}

func NewHeatmap() widget.Interactive {
	n := len(HeatmapTokens)
	return &Heatmap{
		weights: CausalWeights(HeatmapTokens),
		row:     widget.NewChoice(n, 1),
		col:     widget.NewChoice(n, 0),
	}
}

// Cell returns the cursor position.
func (d *Heatmap) Cell() (row, col int) { return d.row.Index(), d.col.Index() }

func (d *Heatmap) Update(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Left):
		d.col.Select(d.col.Index() - 1)
	case key.Matches(msg, keys.Right):
		d.col.Select(d.col.Index() + 1)
	case key.Matches(msg, keys.Up):
		d.row.Select(d.row.Index() - 1)
	case key.Matches(msg, keys.Down):
		d.row.Select(d.row.Index() + 1)
	case key.Matches(msg, keys.Reset):
		d.row.Reset()
		d.col.Reset()
	default:
		return false
	}
	return true
}

func (d *Heatmap) Keys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("left", "right", "up", "down"), key.WithHelp("←↑↓→", "inspect cell")),
		keys.Reset,
	}
}

// Inspect describes the cell under the cursor.
func (d *Heatmap) Inspect() string {
	i, j := d.Cell()
	if j > i {
		return fmt.Sprintf("%q cannot look at the future token %q (masked)", HeatmapTokens[i], HeatmapTokens[j])
	}
	return fmt.Sprintf("%q attends to %q with weight %.3f", HeatmapTokens[i], HeatmapTokens[j], d.weights[i][j])
}

func (d *Heatmap) View(th theme.Theme, width int) string {
	const cellW = 6
	ri, ci := d.Cell()

	var b strings.Builder
	b.WriteString(th.Fg(th.Subtext).Render(`Each row shows how much a token "attends to" the tokens before it. Future tokens are masked.`))
	b.WriteString("\n\n")
	b.WriteString(strings.Repeat(" ", cellW))
	for _, t := range HeatmapTokens {
		b.WriteString(th.Fg(th.Muted).Render(padLeft(t, cellW)))
	}
	b.WriteString("\n")
	for i, w := range d.weights {
		b.WriteString(th.Fg(th.Muted).Render(padLeft(HeatmapTokens[i], cellW)))
		for j, v := range w {
			text := "✗"
			style := th.Fg(th.Border)
			if j <= i {
				text = fmt.Sprintf("%.2f", v)
				style = th.Style().Foreground(th.Text).Background(heatColor(th, v))
			}
			if i == ri && j == ci {
				style = style.Reverse(true).Bold(true)
			}
			b.WriteString(" ")
			b.WriteString(style.Render(padLeft(text, cellW-1)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Accent).Render(d.Inspect()))
	b.WriteString("\n")
	b.WriteString(caption(th, "Row = query token, column = key token. ✗ = masked."))
	return b.String()
}

// heatColor picks one of four shades by weight.
func heatColor(th theme.Theme, v float64) lipgloss.TerminalColor {
	shades := []lipgloss.AdaptiveColor{
		{Light: "#f1f5f9", Dark: "#1e293b"},
		{Light: "#cbd5e1", Dark: "#334155"},
		{Light: "#94a3b8", Dark: "#475569"},
		{Light: "#64748b", Dark: "#64748b"},
	}
	i := int(v * float64(len(shades)) / 0.6)
	if i >= len(shades) {
		i = len(shades) - 1
	}
	return shades[i]
}

// Head is one attention head's typical behaviour.
type Head struct {
	Name    string
	Pattern string
	Desc    string
}

// Heads are the six illustrative heads.
var Heads = []Head{
	{"Head 0", "Syntactic", "Focuses on adjacent tokens and captures local grammar patterns"},
	{"Head 1", "Positional", "Attends strongly to the first token (BOS) and captures document context"},
	{"Head 2", "Semantic", "Connects related nouns regardless of distance and captures meaning"},
	{"Head 3", "Copy", "Attends to tokens that match or are similar, enabling repetition and reference"},
	{"Head 4", "Previous", "Always attends strongly to the immediately previous token"},
	{"Head 5", "Induction", "Looks for patterns: if A-B appeared before, after A predict B"},
}

// MultiHead picks one head to describe.
type MultiHead struct {
	head *widget.Choice
}

func NewMultiHead() widget.Interactive {
	return &MultiHead{head: widget.NewChoice(len(Heads), 0)}
}

// Active is the selected head.
func (d *MultiHead) Active() Head { return Heads[d.head.Index()] }

func (d *MultiHead) Update(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Left):
		d.head.Prev()
	case key.Matches(msg, keys.Right):
		d.head.Next()
	case key.Matches(msg, keys.Reset):
		d.head.Reset()
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '6' {
			d.head.Select(int(s[0] - '1'))
			return true
		}
		return false
	}
	return true
}

func (d *MultiHead) Keys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "switch head")),
		key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "pick head")),
		keys.Reset,
	}
}

func (d *MultiHead) View(th theme.Theme, width int) string {
	var tabs []string
	for i, h := range Heads {
		style := th.Style().Foreground(th.Muted)
		if i == d.head.Index() {
			style = th.Style().Foreground(th.Text).Background(th.Highlight).Bold(true)
		}
		tabs = append(tabs, chip(style, h.Name+": "+h.Pattern))
	}
	h := d.Active()
	var b strings.Builder
	b.WriteString(flow(tabs, width))
	b.WriteString("\n\n")
	b.WriteString(th.Fg(th.Primary).Bold(true).Render(h.Pattern + " head"))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Text).Render(h.Desc))
	b.WriteString("\n\n")
	b.WriteString(caption(th, "Each head learns its own pattern; their outputs are concatenated and projected back to the model width."))
	return b.String()
}
