package demos

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// Residual draws the residual stream through a stack of blocks.
type Residual struct {
	layers *widget.Slider
	showX0 *widget.Toggle
	panel  panel
}

func NewResidual() widget.Interactive {
	d := &Residual{
		layers: widget.NewSlider(1, 12, 1, 4),
		showX0: widget.NewToggle(true),
	}
	d.panel = panel{params: []param{{label: "Layers", s: d.layers, format: integer}}}
	return d
}

func (d *Residual) Update(msg tea.KeyMsg) bool {
	if key.Matches(msg, keys.Toggle) {
		d.showX0.Flip()
		return true
	}
	if key.Matches(msg, keys.Reset) {
		d.showX0.Reset()
	}
	return d.panel.update(msg)
}

func (d *Residual) Keys() []key.Binding {
	return append(d.panel.keys(), key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "x₀ skip")))
}

// Stream lists the diagram's stages top to bottom.
func (d *Residual) Stream() []string {
	out := []string{"embed", "x₀"}
	for i := 0; i < d.layers.Int(); i++ {
		stage := fmt.Sprintf("Block %d  (λ_r=1.0)", i)
		if d.showX0.On() {
			stage += "  + λ₀·x₀"
		}
		out = append(out, stage, fmt.Sprintf("x_%d", i+1))
	}
	return append(out, "lm_head")
}

func (d *Residual) View(th theme.Theme, width int) string {
	box := th.Style().Foreground(th.Text).Background(th.Highlight).Padding(0, 1)
	arrow := th.Fg(th.Border).Render("  │")
	label := th.Fg(th.Primary)
	skip := th.Fg(th.Accent)

	var b strings.Builder
	b.WriteString(d.panel.view(th, width))
	check := "[ ]"
	if d.showX0.On() {
		check = "[x]"
	}
	b.WriteString("   " + th.Fg(th.Subtext).Render(check+" Show x₀ skip"))
	b.WriteString("\n\n")
	for _, stage := range d.Stream() {
		switch {
		case strings.HasPrefix(stage, "x"):
			b.WriteString(arrow + " " + label.Render(stage) + "\n")
		case strings.HasPrefix(stage, "Block"):
			name, extra, _ := strings.Cut(stage, "  + ")
			b.WriteString(box.Render(name))
			if extra != "" {
				b.WriteString(" " + skip.Render("+ "+extra))
			}
			b.WriteString("\n")
		default:
			b.WriteString(box.Bold(true).Render(stage) + "\n")
		}
	}
	b.WriteString("\n")
	text := "The residual stream flows top to bottom. Each block adds to it and never replaces it."
	if d.showX0.On() {
		text += " The x₀ skip blends the original embedding back in at every layer, which helps gradients reach the bottom."
	}
	b.WriteString(caption(th, text))
	return b.String()
}

// ReLU is max(0, x).
func ReLU(x float64) float64 { return math.Max(0, x) }

// ReLUSquared is nanochat's MLP activation.
func ReLUSquared(x float64) float64 {
	r := ReLU(x)
	return r * r
}

// Activation compares ReLU and ReLU² at an input.
type Activation struct {
	x     *widget.Slider
	panel panel
}

func NewActivation() widget.Interactive {
	d := &Activation{x: widget.NewSlider(-2, 2, 0.1, 0.5)}
	d.panel = panel{params: []param{{label: "Input value x", s: d.x, format: fixed(1)}}}
	return d
}

func (d *Activation) Update(msg tea.KeyMsg) bool { return d.panel.update(msg) }
func (d *Activation) Keys() []key.Binding        { return d.panel.keys() }

var sparks = []rune("▁▂▃▄▅▆▇█")

// spark maps v in [0, top] onto a block glyph; zero is a space.
func spark(v, top float64) string {
	if v <= 0 {
		return " "
	}
	i := int(math.Round(v / top * float64(len(sparks)-1)))
	if i >= len(sparks) {
		i = len(sparks) - 1
	}
	return string(sparks[i])
}

func (d *Activation) View(th theme.Theme, width int) string {
	const samples = 41
	x := d.x.Value()
	cursor := int(math.Round((x + 2) * 10))

	var sq, lin, mark strings.Builder
	for i := 0; i < samples; i++ {
		v := float64(i-20) / 10
		sq.WriteString(spark(ReLUSquared(v), 4))
		lin.WriteString(spark(ReLU(v), 4))
		if i == cursor {
			mark.WriteString("▲")
		} else {
			mark.WriteString(" ")
		}
	}

	var b strings.Builder
	b.WriteString(th.Fg(th.Subtext).Render("nanochat uses ReLU² (ReLU squared) as its MLP activation:"))
	b.WriteString("\n\n")
	b.WriteString(th.Fg(th.Primary).Render(padRight("ReLU²", 7) + sq.String()))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Muted).Render(padRight("ReLU", 7) + lin.String()))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Accent).Render(strings.Repeat(" ", 7) + mark.String()))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Muted).Render(strings.Repeat(" ", 7) + "-2.0      -1.0       0        1.0      2.0"))
	b.WriteString("\n\n")
	b.WriteString(d.panel.view(th, width))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Text).Render(fmt.Sprintf("ReLU²(%.1f) = %.3f    ReLU(%.1f) = %.3f", x, ReLUSquared(x), x, ReLU(x))))
	return b.String()
}
