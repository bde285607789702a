package demos

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

const (
	// EmbeddingDim is nanochat's d12 model width.
	EmbeddingDim = 768
	// MaxTokenID is the top of the 32K vocabulary.
	MaxTokenID = 32767
	// EmbeddingPreview is how many values the demo prints.
	EmbeddingPreview = 8
)

// EmbeddingValues returns the first EmbeddingPreview components of a made-up
// embedding row for id, each in [-1, 1]. The values come from a linear
// congruential generator seeded by the id, so the same id always shows the
// same vector. The multiply happens in float64 and is truncated to 32 bits,
// which keeps the table identical to the one printed in the web edition.
func EmbeddingValues(id int) []float64 {
	id = lo.Clamp(id, 0, MaxTokenID)
	seed := int64(id)*31 + 17
	out := make([]float64, EmbeddingPreview)
	for i := range out {
		// The inner conversion forbids a fused multiply-add.
		next := float64(float64(seed)*1103515245) + 12345
		seed = int64(uint32(math.Mod(next, 1<<32))) & 0x7fffffff
		out[i] = float64(seed)/0x7fffffff*2 - 1
	}
	return out
}

// Embedding looks up a token id in the toy table.
type Embedding struct {
	id    *widget.Slider
	input textinput.Model
}

func NewEmbedding() widget.Interactive {
	ti := textinput.New()
	ti.Prompt = "id: "
	ti.CharLimit = 6
	ti.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return fmt.Errorf("digits only")
			}
		}
		return nil
	}
	return &Embedding{id: widget.NewSlider(0, MaxTokenID, 1, 464), input: ti}
}

// TokenID is the id being looked up.
func (d *Embedding) TokenID() int { return d.id.Int() }

func (d *Embedding) Editing() bool { return d.input.Focused() }

func (d *Embedding) Update(msg tea.KeyMsg) bool {
	if d.input.Focused() {
		if key.Matches(msg, keys.Done) {
			// Non-numbers fall back to 0; Set clamps the rest.
			n, err := strconv.Atoi(d.input.Value())
			if err != nil {
				n = 0
			}
			d.id.Set(float64(n))
			d.input.Blur()
			return true
		}
		d.input, _ = d.input.Update(msg)
		return true
	}
	switch {
	case key.Matches(msg, keys.Edit):
		d.input.SetValue(strconv.Itoa(d.id.Int()))
		d.input.Focus()
		d.input.CursorEnd()
	case key.Matches(msg, keys.Left):
		d.id.Dec()
	case key.Matches(msg, keys.Right):
		d.id.Inc()
	case key.Matches(msg, keys.CoarseLeft):
		d.id.Set(d.id.Value() - 100)
	case key.Matches(msg, keys.CoarseRight):
		d.id.Set(d.id.Value() + 100)
	case key.Matches(msg, keys.Reset):
		d.id.Reset()
	default:
		return false
	}
	return true
}

func (d *Embedding) Keys() []key.Binding {
	if d.input.Focused() {
		return []key.Binding{keys.Done}
	}
	return []key.Binding{
		keys.Left, keys.Right,
		key.NewBinding(key.WithKeys("H", "L"), key.WithHelp("H/L", "±100")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "type an id")),
		keys.Reset,
	}
}

func (d *Embedding) View(th theme.Theme, width int) string {
	var b strings.Builder
	if d.input.Focused() {
		b.WriteString(d.input.View())
	} else {
		b.WriteString(th.Fg(th.Subtext).Render("Token ID: "))
		b.WriteString(th.Fg(th.Primary).Bold(true).Render(strconv.Itoa(d.TokenID())))
		b.WriteString(th.Fg(th.Muted).Render("  (0 to 32,767)"))
	}
	b.WriteString("\n\n")
	b.WriteString(th.Fg(th.Subtext).Render(fmt.Sprintf("embedding_table[%d] → vector of %d dimensions:", d.TokenID(), EmbeddingDim)))
	b.WriteString("\n")

	var cells []string
	for _, v := range EmbeddingValues(d.TokenID()) {
		c := th.Success
		if v < 0 {
			c = th.Danger
		}
		cells = append(cells, chip(th.Style().Foreground(c).Background(th.Highlight), fmt.Sprintf("%+.3f", v)))
	}
	cells = append(cells, th.Fg(th.Muted).Render(fmt.Sprintf("... (%d more values)", EmbeddingDim-EmbeddingPreview)))
	b.WriteString(flow(cells, width))
	b.WriteString("\n\n")
	b.WriteString(caption(th, fmt.Sprintf("Each token id maps to a %d-dimensional vector. The values are learned during training: they start random and come to encode meaning.", EmbeddingDim)))
	return b.String()
}

// RopeRow is one rotated dimension pair at a position.
type RopeRow struct {
	Dims  string
	Freq  float64
	Angle float64
	Cos   float64
	Sin   float64
}

const (
	ropeBase = 10000
	ropeDims = 8
	// MaxRopePosition bounds the position slider.
	MaxRopePosition = 100
)

// Rope computes the rotation of each dimension pair at pos:
// freq = 1/base^(i/dims), angle = pos*freq.
func Rope(pos int) []RopeRow {
	rows := make([]RopeRow, 0, ropeDims/2)
	for i := 0; i < ropeDims; i += 2 {
		freq := 1 / math.Pow(ropeBase, float64(i)/ropeDims)
		angle := float64(pos) * freq
		rows = append(rows, RopeRow{
			Dims:  fmt.Sprintf("%d,%d", i, i+1),
			Freq:  freq,
			Angle: angle,
			Cos:   math.Cos(angle),
			Sin:   math.Sin(angle),
		})
	}
	return rows
}

// FormatExp prints v like 1.00e-2 (no zero-padded exponent).
func FormatExp(v float64) string {
	s := strconv.FormatFloat(v, 'e', 2, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

// RoPE shows rotary angles for a position.
type RoPE struct {
	pos   *widget.Slider
	panel panel
}

func NewRoPE() widget.Interactive {
	d := &RoPE{pos: widget.NewSlider(0, MaxRopePosition, 1, 0)}
	d.panel = panel{params: []param{{label: "Position in sequence", s: d.pos, format: integer}}}
	return d
}

func (d *RoPE) Update(msg tea.KeyMsg) bool { return d.panel.update(msg) }
func (d *RoPE) Keys() []key.Binding        { return d.panel.keys() }

func (d *RoPE) View(th theme.Theme, width int) string {
	head := th.Fg(th.Subtext).Bold(true)
	cell := th.Fg(th.Text)
	cols := []int{10, 12, 12, 9, 9}
	row := func(style lipgloss.Style, vals ...string) string {
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = style.Render(padLeft(v, cols[i]))
		}
		return strings.Join(parts, " ")
	}

	var b strings.Builder
	b.WriteString(d.panel.view(th, width))
	b.WriteString("\n\n")
	b.WriteString(row(head, "Dim pair", "Frequency", "Angle (rad)", "cos(θ)", "sin(θ)"))
	b.WriteString("\n")
	for _, r := range Rope(d.pos.Int()) {
		b.WriteString(row(cell, r.Dims, FormatExp(r.Freq), fmt.Sprintf("%.3f", r.Angle),
			fmt.Sprintf("%.3f", r.Cos), fmt.Sprintf("%.3f", r.Sin)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(caption(th, "Low-frequency pairs (bottom rows) change slowly across positions and encode coarse position; high-frequency pairs (top rows) change fast and encode fine position."))
	return b.String()
}
