package demos

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/widget"
)

// Token is one piece of tokenized text.
type Token struct {
	Text string
	ID   int
}

// toyVocab is a handful of GPT-2 ids, enough to make the demo look real.
var toyVocab = map[string]int{
	"Hello": 15496, ",": 11, " world": 995, "!": 0, " How": 1374,
	" are": 389, " you": 345, "?": 30, "The": 464, " ": 220,
	"a": 64, "b": 65, "c": 66, "e": 68, "h": 71, "i": 72,
	"l": 75, "n": 77, "o": 78, "r": 81, "t": 83, "w": 86,
}

// DefaultTokenizerInput is the playground's starting text.
const DefaultTokenizerInput = "Hello, world! How are you?"

// Tokenize splits text by greedy longest match against the toy vocabulary.
// Characters outside it become single-rune tokens whose id is the code point.
// Concatenating the token texts always gives back the input.
func Tokenize(text string) []Token {
	var out []Token
	for len(text) > 0 {
		best, bestID := "", -1
		for tok, id := range toyVocab {
			if len(tok) > len(best) && strings.HasPrefix(text, tok) {
				best, bestID = tok, id
			}
		}
		if best == "" {
			r, size := utf8.DecodeRuneInString(text)
			best, bestID = text[:size], int(r)
		}
		out = append(out, Token{Text: best, ID: bestID})
		text = text[len(best):]
	}
	return out
}

// Tokenizer is the playground: an editable line and its tokens.
type Tokenizer struct {
	input textinput.Model
}

func NewTokenizer() widget.Interactive {
	ti := textinput.New()
	ti.Placeholder = "Type anything..."
	ti.Prompt = "› "
	ti.CharLimit = 200
	ti.SetValue(DefaultTokenizerInput)
	return &Tokenizer{input: ti}
}

func (d *Tokenizer) Editing() bool { return d.input.Focused() }

// Text is the current input.
func (d *Tokenizer) Text() string { return d.input.Value() }

func (d *Tokenizer) Update(msg tea.KeyMsg) bool {
	if d.input.Focused() {
		if key.Matches(msg, keys.Done) {
			d.input.Blur()
			return true
		}
		d.input, _ = d.input.Update(msg)
		return true
	}
	switch {
	case key.Matches(msg, keys.Edit):
		d.input.Focus()
		d.input.CursorEnd()
	case key.Matches(msg, keys.Reset):
		d.input.SetValue(DefaultTokenizerInput)
	default:
		return false
	}
	return true
}

func (d *Tokenizer) Keys() []key.Binding {
	if d.input.Focused() {
		return []key.Binding{keys.Done}
	}
	return []key.Binding{keys.Edit, keys.Reset}
}

func (d *Tokenizer) View(th theme.Theme, width int) string {
	palette := []lipgloss.AdaptiveColor{th.Primary, th.Subtext, th.Success, th.Secondary, th.Info, th.Accent}
	tokens := Tokenize(d.input.Value())

	chips := make([]string, len(tokens))
	for i, t := range tokens {
		c := palette[i%len(palette)]
		quoted, _ := json.Marshal(t.Text)
		chips[i] = chip(th.Style().Foreground(c).Background(th.Highlight), string(quoted)) +
			th.Fg(th.Muted).Render(fmt.Sprintf(":%d", t.ID))
	}

	var b strings.Builder
	b.WriteString(th.Fg(th.Subtext).Render("Type some text to see how it gets tokenized:"))
	b.WriteString("\n")
	d.input.Width = lo.Clamp(width-4, 10, 80)
	box := th.Style().Border(lipgloss.RoundedBorder()).BorderForeground(th.Border)
	if d.input.Focused() {
		box = box.BorderForeground(th.Accent)
	}
	b.WriteString(box.Render(d.input.View()))
	b.WriteString("\n")
	b.WriteString(flow(chips, width))
	b.WriteString("\n\n")
	b.WriteString(caption(th, fmt.Sprintf("%d tokens | simplified demo: real BPE tokenizers learn merge rules from a large corpus.", len(tokens))))
	return b.String()
}

// MergeFrame is one step of the BPE walkthrough.
type MergeFrame struct {
	Title     string
	Tokens    []string
	Highlight []int
	Desc      string
}

// MergeFrames walks BPE over "lower lowest".
var MergeFrames = []MergeFrame{
	{"Start: Character-level", []string{"l", "o", "w", "e", "r", " ", "l", "o", "w", "e", "s", "t"}, nil,
		"We begin with individual characters as tokens."},
	{`Find most frequent pair: ("l","o") → merge!`, []string{"lo", "w", "e", "r", " ", "lo", "w", "e", "s", "t"}, []int{0, 5},
		`Count all adjacent pairs. ("l","o") appears 2 times, merge them into "lo".`},
	{`Find most frequent pair: ("lo","w") → merge!`, []string{"low", "e", "r", " ", "low", "e", "s", "t"}, []int{0, 4},
		`Now ("lo","w") appears 2 times, merge into "low".`},
	{`Find most frequent pair: ("low","e") → merge!`, []string{"lowe", "r", " ", "lowe", "s", "t"}, []int{0, 3},
		`Continue merging the most frequent pairs. "lowe" is now a single token.`},
	{"Final vocabulary", []string{"lower", " ", "lowest"}, []int{0, 2},
		"After enough merges, common words become single tokens. Each token gets an integer ID."},
}

// BPE steps through MergeFrames.
type BPE struct {
	step *widget.Stepper
}

func NewBPE() widget.Interactive {
	return &BPE{step: widget.NewStepper(len(MergeFrames))}
}

// Frame is the frame on screen.
func (d *BPE) Frame() MergeFrame { return MergeFrames[d.step.Index()] }

func (d *BPE) Update(msg tea.KeyMsg) bool { return stepUpdate(d.step, msg) }
func (d *BPE) Keys() []key.Binding        { return []key.Binding{keys.Left, keys.Right, keys.Reset} }

func (d *BPE) View(th theme.Theme, width int) string {
	f := d.Frame()
	hl := make(map[int]bool, len(f.Highlight))
	for _, i := range f.Highlight {
		hl[i] = true
	}
	chips := make([]string, len(f.Tokens))
	for i, t := range f.Tokens {
		style := th.Style().Foreground(th.Subtext).Background(th.Highlight)
		if hl[i] {
			style = th.Style().Foreground(th.Accent).Bold(true).Underline(true)
		}
		if t == " " {
			t = "␣"
		}
		chips[i] = chip(style, t)
	}

	var b strings.Builder
	b.WriteString(th.Fg(th.Text).Bold(true).Render(f.Title))
	b.WriteString(th.Fg(th.Muted).Render(fmt.Sprintf("   Step %d/%d", d.step.Index()+1, d.step.Len())))
	b.WriteString("\n\n")
	b.WriteString(flow(chips, width))
	b.WriteString("\n\n")
	b.WriteString(th.Fg(th.Subtext).Render(f.Desc))
	b.WriteString("\n\n")
	b.WriteString(navHint(th, "Previous", "Next Merge", d.step.AtStart(), d.step.AtEnd()))
	return b.String()
}
