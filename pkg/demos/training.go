package demos

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// TrainingSteps is the length of the toy training run.
const TrainingSteps = 200

// bytesPerToken converts nats per token into bits per byte.
const bytesPerToken = 4.2

// Loss is a synthetic training curve: exponential decay toward 0.75 with a
// little deterministic wobble.
func Loss(step int) float64 {
	s := float64(step)
	base := 4.0*math.Exp(-s/40) + 0.75
	noise := math.Sin(s*0.3)*0.05 + math.Sin(s*0.7)*0.03
	return base + noise
}

// BitsPerByte normalizes a per-token loss (nats) by the average token length.
func BitsPerByte(loss float64) float64 {
	return loss / math.Ln2 / bytesPerToken
}

// LossSeries is Loss for every step of the run.
func LossSeries() []float64 {
	out := make([]float64, TrainingSteps)
	for i := range out {
		out[i] = Loss(i)
	}
	return out
}

// WarmupSteps is round(fraction·TrainingSteps).
func WarmupSteps(fraction float64) int {
	return int(math.Round(fraction * TrainingSteps))
}

// LearningRate is the LR multiplier at step: linear warmup over the first
// WarmupSteps, then cosine decay to zero at TrainingSteps.
func LearningRate(step int, warmupFraction float64) float64 {
	warm := WarmupSteps(warmupFraction)
	if step < warm {
		return float64(step) / float64(warm)
	}
	progress := float64(step-warm) / float64(TrainingSteps-warm)
	return 0.5 * (1 + math.Cos(math.Pi*progress))
}

// LRSeries is LearningRate for every step.
func LRSeries(warmupFraction float64) []float64 {
	out := make([]float64, TrainingSteps)
	for i := range out {
		out[i] = LearningRate(i, warmupFraction)
	}
	return out
}

// plot renders ys (values in [0, top]) as a dot chart of width×height cells.
// Only points up to index upto are drawn; that last point gets a marker.
func plot(ys []float64, top float64, upto, width, height int) []string {
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	rowOf := func(y float64) int {
		r := height - 1 - int(math.Round(y/top*float64(height-1)))
		return lo.Clamp(r, 0, height-1)
	}
	col := func(i int) int {
		return lo.Clamp(i*width/len(ys), 0, width-1)
	}
	for i := 0; i <= upto && i < len(ys); i++ {
		grid[rowOf(ys[i])][col(i)] = '•'
	}
	if upto >= 0 && upto < len(ys) {
		grid[rowOf(ys[upto])][col(upto)] = '●'
	}
	out := make([]string, height)
	for r, row := range grid {
		out[r] = string(row)
	}
	return out
}

// LossCurve scrubs through the synthetic training run.
type LossCurve struct {
	step  *widget.Slider
	panel panel
}

func NewLossCurve() widget.Interactive {
	d := &LossCurve{step: widget.NewSlider(0, TrainingSteps-1, 1, 0)}
	d.panel = panel{params: []param{{label: "Training step", s: d.step, format: integer}}}
	return d
}

func (d *LossCurve) Update(msg tea.KeyMsg) bool { return d.panel.update(msg) }
func (d *LossCurve) Keys() []key.Binding {
	return append(d.panel.keys(), key.NewBinding(key.WithKeys("H", "L"), key.WithHelp("H/L", "±10 steps")))
}

func (d *LossCurve) View(th theme.Theme, width int) string {
	const maxLoss = 5
	step := d.step.Int()
	loss := Loss(step)
	plotW := lo.Clamp(width-6, 20, 70)

	var b strings.Builder
	b.WriteString(d.panel.view(th, width))
	b.WriteString("\n\n")
	for r, line := range plot(LossSeries(), maxLoss, step, plotW, 8) {
		var label string
		switch r {
		case 0:
			label = "5 ┤"
		case 7:
			label = "0 ┤"
		default:
			label = "  │"
		}
		b.WriteString(th.Fg(th.Muted).Render(label))
		b.WriteString(th.Fg(th.Primary).Render(line))
		b.WriteString("\n")
	}
	b.WriteString(th.Fg(th.Muted).Render("  └" + strings.Repeat("─", plotW)))
	b.WriteString("\n")
	b.WriteString(th.Fg(th.Text).Render(fmt.Sprintf("Step: %d    Loss: %.3f    BPB: %.3f", step, loss, BitsPerByte(loss))))
	b.WriteString("\n")
	b.WriteString(caption(th, "Loss starts high (the model is random) and falls as it learns. Bits per byte normalizes for the tokenizer."))
	return b.String()
}

// LRSchedule shows warmup followed by cosine decay.
type LRSchedule struct {
	warmup *widget.Slider
	panel  panel
}

func NewLRSchedule() widget.Interactive {
	d := &LRSchedule{warmup: widget.NewSlider(0, 0.30, 0.01, 0.1)}
	d.panel = panel{params: []param{{label: "Warmup fraction", s: d.warmup, format: func(v float64) string {
		return fmt.Sprintf("%.0f%%", v*100)
	}}}}
	return d
}

func (d *LRSchedule) Update(msg tea.KeyMsg) bool { return d.panel.update(msg) }
func (d *LRSchedule) Keys() []key.Binding        { return d.panel.keys() }

func (d *LRSchedule) View(th theme.Theme, width int) string {
	frac := d.warmup.Value()
	plotW := lo.Clamp(width-6, 20, 70)
	warmCols := WarmupSteps(frac) * plotW / TrainingSteps

	var b strings.Builder
	b.WriteString(d.panel.view(th, width))
	b.WriteString("\n\n")
	for r, line := range plot(LRSeries(frac), 1, TrainingSteps-1, plotW, 6) {
		label := "  │"
		if r == 0 {
			label = "1 ┤"
		} else if r == 5 {
			label = "0 ┤"
		}
		runes := []rune(line)
		b.WriteString(th.Fg(th.Muted).Render(label))
		for c, ch := range runes {
			s := string(ch)
			if c < warmCols && ch == ' ' {
				b.WriteString(th.Fg(th.Highlight).Render("░"))
				continue
			}
			b.WriteString(th.Fg(th.Primary).Render(s))
		}
		b.WriteString("\n")
	}
	b.WriteString(th.Fg(th.Muted).Render("  └" + strings.Repeat("─", plotW)))
	b.WriteString("\n")
	b.WriteString(caption(th, fmt.Sprintf("Warmup: %d of %d steps (shaded). The learning rate ramps linearly from 0 to its peak, then decays along a cosine.", WarmupSteps(frac), TrainingSteps)))
	return b.String()
}
