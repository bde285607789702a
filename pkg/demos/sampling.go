package demos

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// Logit is a candidate next token and its raw score.
type Logit struct {
	Token string
	Value float64
}

// SkyLogits are the candidates for "The sky is ___".
var SkyLogits = []Logit{
	{"blue", 3.2}, {"red", 2.1}, {"green", 1.5}, {"dark", 0.8}, {"bright", 0.3},
	{"light", -0.2}, {"the", -1.0}, {"and", -1.5}, {"with", -2.0}, {"xyz", -4.0},
}

// minTemperature stands in for zero: dividing by it makes sampling greedy
// for all practical purposes.
const minTemperature = 0.01

// Distribution turns logits into sampling probabilities: divide by the
// temperature, mask everything below the k-th largest score when
// 0 < topK < len(logits), then softmax. Ties at the threshold survive.
func Distribution(logits []float64, temperature float64, topK int) []float64 {
	n := len(logits)
	if n == 0 {
		return nil
	}
	if temperature <= 0 {
		temperature = minTemperature
	}
	scaled := make([]float64, n)
	copy(scaled, logits)
	floats.Scale(1/temperature, scaled)

	if topK > 0 && topK < n {
		sorted := append([]float64(nil), scaled...)
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
		threshold := sorted[topK-1]
		for i, v := range scaled {
			if v < threshold {
				scaled[i] = math.Inf(-1)
			}
		}
	}

	peak := floats.Max(scaled)
	probs := make([]float64, n)
	for i, v := range scaled {
		if !math.IsInf(v, -1) {
			probs[i] = math.Exp(v - peak)
		}
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// TemperatureLabel describes what a temperature does to the distribution.
func TemperatureLabel(t float64) string {
	switch {
	case t == 0:
		return "Greedy (always pick the best)"
	case t < 0.5:
		return "Very focused"
	case t <= 1:
		return "Balanced"
	case t < 2:
		return "Creative"
	default:
		return "Very random"
	}
}

// FormatProbability prints a probability as a percentage, "~0%" below 0.1%.
func FormatProbability(p float64) string {
	if p < 0.001 {
		return "~0%"
	}
	return fmt.Sprintf("%.1f%%", p*100)
}

// Sampling is the temperature / top-k demo.
type Sampling struct {
	temperature *widget.Slider
	topK        *widget.Slider
	panel       panel
}

// NewSampling starts at temperature 1.0 with top-k off.
func NewSampling() widget.Interactive {
	d := &Sampling{
		temperature: widget.NewSlider(0, 3, 0.1, 1.0),
		topK:        widget.NewSlider(0, 10, 1, 0),
	}
	d.panel = panel{params: []param{
		{label: "Temperature", s: d.temperature, format: fixed(1), hint: TemperatureLabel},
		{label: "Top-K", s: d.topK, format: func(v float64) string {
			if v == 0 {
				return "Off"
			}
			return integer(v)
		}, hint: func(v float64) string {
			if v == 0 {
				return "Consider all tokens"
			}
			return fmt.Sprintf("Only consider top %d tokens", int(v))
		}},
	}}
	return d
}

// Probabilities is the distribution for the current settings.
func (d *Sampling) Probabilities() []float64 {
	logits := make([]float64, len(SkyLogits))
	for i, l := range SkyLogits {
		logits[i] = l.Value
	}
	return Distribution(logits, d.temperature.Value(), d.topK.Int())
}

func (d *Sampling) Update(msg tea.KeyMsg) bool { return d.panel.update(msg) }
func (d *Sampling) Keys() []key.Binding        { return d.panel.keys() }

func (d *Sampling) View(th theme.Theme, width int) string {
	probs := d.Probabilities()
	peak := floats.Max(probs)
	barW := lo.Clamp(width-22, 10, 40)

	var b strings.Builder
	b.WriteString(d.panel.view(th, width))
	b.WriteString("\n\n")
	for i, l := range SkyLogits {
		b.WriteString(th.Fg(th.Text).Render(padLeft(l.Token, 7)))
		b.WriteString(" ")
		b.WriteString(bar(th, th.Primary, probs[i]/peak, barW))
		b.WriteString(" ")
		b.WriteString(th.Fg(th.Subtext).Render(padLeft(FormatProbability(probs[i]), 6)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(caption(th, `Context: "The sky is ___". Adjust temperature and top-k to see how the distribution changes.`))
	return b.String()
}

type genFrame struct {
	Generated []string
	NextPick  string
	Desc      string
}

var skyPrompt = []string{"The", "sky", "is"}

var genFrames = []genFrame{
	{nil, "blue", "Feed prompt tokens. Get logits for position 3."},
	{[]string{"blue"}, "and", `Sample "blue". Feed it back. Get logits for position 4.`},
	{[]string{"blue", "and"}, "the", `Sample "and". Feed it back. Get logits for position 5.`},
	{[]string{"blue", "and", "the"}, "clouds", `Sample "the". Feed it back. Get logits for position 6.`},
	{[]string{"blue", "and", "the", "clouds"}, "are", `Sample "clouds". Feed it back. Get logits for position 7.`},
	{[]string{"blue", "and", "the", "clouds", "are"}, "white", "And so on... each token is generated one at a time."},
}

// Autoregressive steps through generating one token at a time.
type Autoregressive struct {
	step *widget.Stepper
}

func NewAutoregressive() widget.Interactive {
	return &Autoregressive{step: widget.NewStepper(len(genFrames))}
}

// Frame returns the current frame's sequence: prompt, generated tokens and
// the token being sampled.
func (d *Autoregressive) Frame() (prompt, generated []string, next string) {
	f := genFrames[d.step.Index()]
	return skyPrompt, f.Generated, f.NextPick
}

func (d *Autoregressive) Update(msg tea.KeyMsg) bool { return stepUpdate(d.step, msg) }

func (d *Autoregressive) Keys() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back")),
		key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "generate next")),
		keys.Reset,
	}
}

func (d *Autoregressive) View(th theme.Theme, width int) string {
	prompt, generated, next := d.Frame()
	var chips []string
	for _, t := range prompt {
		chips = append(chips, chip(th.Style().Foreground(th.Subtext).Background(th.Highlight), t))
	}
	for _, t := range generated {
		chips = append(chips, chip(th.Style().Foreground(th.Primary).Bold(true), t))
	}
	chips = append(chips, chip(th.Style().Foreground(th.Accent).Underline(true), next+"?"))

	var b strings.Builder
	b.WriteString(flow(chips, width))
	b.WriteString("\n\n")
	b.WriteString(th.Fg(th.Text).Render(genFrames[d.step.Index()].Desc))
	b.WriteString("\n\n")
	b.WriteString(navHint(th, "Back", "Generate Next", d.step.AtStart(), d.step.AtEnd()))
	b.WriteString(th.Fg(th.Muted).Render(fmt.Sprintf("   step %d/%d", d.step.Index()+1, d.step.Len())))
	b.WriteString("\n")
	b.WriteString(caption(th, "gray = prompt, blue = generated, gold = being sampled"))
	return b.String()
}
