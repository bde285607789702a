package demos

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// VocabSize is nanochat's tokenizer vocabulary.
const VocabSize = 32768

// ParamCount is the size of a nanochat model at a given depth.
type ParamCount struct {
	Depth    int
	ModelDim int
	Heads    int
	HeadDim  int
	WTE      int64
	LMHead   int64
	PerLayer int64
	Layers   int64
	Total    int64
}

// CountParams derives the model shape from depth the way nanochat does
// (width ≈ 128·√depth, rounded up to a multiple of 128, heads of 128) and
// counts weights: embeddings, attention (4·d²) and MLP (8·d²) per layer, and
// an untied LM head.
func CountParams(depth int) ParamCount {
	nEmbd := math.Round(128 * math.Sqrt(float64(depth)))
	dim := int(math.Ceil(nEmbd/128) * 128)
	heads := max(1, int(math.Round(float64(dim)/128)))
	headDim := int(math.Round(float64(dim) / float64(heads)))

	d := int64(dim)
	attn := d * d * 4
	mlp := d * (4 * d) * 2
	p := ParamCount{
		Depth:    depth,
		ModelDim: dim,
		Heads:    heads,
		HeadDim:  headDim,
		WTE:      VocabSize * d,
		LMHead:   d * VocabSize,
		PerLayer: attn + mlp,
	}
	p.Layers = p.PerLayer * int64(depth)
	p.Total = p.WTE + p.LMHead + p.Layers
	return p
}

// FormatCount abbreviates a count with one decimal: 1.2B, 340.5M, 12.0K.
func FormatCount(n int64) string {
	f := float64(n)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	}
	return strconv.FormatInt(n, 10)
}

// ScaleNote puts a depth in historical context. Empty for most depths.
func ScaleNote(depth int) string {
	switch {
	case depth == 12:
		return "d12 ≈ GPT-1 scale. Great for quick experiments (~5 min training)."
	case depth >= 24 && depth <= 26:
		return "d24–d26 ≈ GPT-2 scale. This is what the speedrun targets (~3 hours on 8×H100)."
	case depth > 26:
		return "Scaling beyond GPT-2. nanochat adjusts all hyperparameters from depth alone."
	}
	return ""
}

// ParamCounter is the depth → size demo.
type ParamCounter struct {
	depth *widget.Slider
	panel panel
}

func NewParamCounter() widget.Interactive {
	d := &ParamCounter{depth: widget.NewSlider(4, 40, 1, 12)}
	d.panel = panel{params: []param{{label: "Depth (n_layer)", s: d.depth, format: integer}}}
	return d
}

// Count is the breakdown at the current depth.
func (d *ParamCounter) Count() ParamCount { return CountParams(d.depth.Int()) }

func (d *ParamCounter) Update(msg tea.KeyMsg) bool { return d.panel.update(msg) }
func (d *ParamCounter) Keys() []key.Binding        { return d.panel.keys() }

func (d *ParamCounter) View(th theme.Theme, width int) string {
	p := d.Count()
	stat := th.Style().Foreground(th.Primary).Bold(true).Padding(0, 1)

	var b strings.Builder
	b.WriteString(d.panel.view(th, width))
	b.WriteString("\n\n")
	for _, s := range []struct {
		label string
		value int
	}{{"Model Dim", p.ModelDim}, {"Heads", p.Heads}, {"Head Dim", p.HeadDim}} {
		b.WriteString(th.Fg(th.Muted).Render(s.label))
		b.WriteString(stat.Render(strconv.Itoa(s.value)))
		b.WriteString("  ")
	}
	b.WriteString("\n\n")

	barW := max(10, min(30, width-46))
	for _, part := range []struct {
		label  string
		params int64
	}{
		{"Token Embedding (wte)", p.WTE},
		{fmt.Sprintf("Transformer Layers (×%d)", p.Depth), p.Layers},
		{"LM Head (output)", p.LMHead},
	} {
		b.WriteString(th.Fg(th.Text).Render(padRight(part.label, 28)))
		b.WriteString(th.Fg(th.Primary).Render(padLeft(FormatCount(part.params), 8)))
		b.WriteString("  ")
		b.WriteString(bar(th, th.Secondary, float64(part.params)/float64(p.Total), barW))
		b.WriteString("\n")
	}
	b.WriteString(th.Fg(th.Text).Bold(true).Render(padRight("Total Parameters", 28)))
	b.WriteString(th.Fg(th.Accent).Bold(true).Render(padLeft(FormatCount(p.Total), 8)))
	if note := ScaleNote(p.Depth); note != "" {
		b.WriteString("\n\n")
		b.WriteString(caption(th, note))
	}
	return b.String()
}
