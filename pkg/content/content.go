// Package content defines the primitives a chapter is composed of. A chapter's
// render function returns a Tree; the presentation layer walks it without
// knowing which chapter produced it.
package content

import "github.com/vanderheijden86/underhood/pkg/widget"

// Block is one primitive in a content tree. The set is closed.
type Block interface {
	isBlock()
}

// Tree is an ordered list of blocks.
type Tree []Block

// Heading starts a section.
type Heading struct {
	Text string
}

// Prose is a paragraph-level run of Markdown.
type Prose struct {
	Markdown string
}

// CalloutKind types an annotation block.
type CalloutKind int

const (
	Info CalloutKind = iota
	KeyConcept
	Math
	InNanochat
	ThinkAbout
)

// Label is the caption shown above a callout.
func (k CalloutKind) Label() string {
	switch k {
	case KeyConcept:
		return "Key Concept"
	case Math:
		return "Math"
	case InNanochat:
		return "In nanochat"
	case ThinkAbout:
		return "Think About It"
	default:
		return "Info"
	}
}

// Glyph is the marker printed before the label.
func (k CalloutKind) Glyph() string {
	switch k {
	case KeyConcept:
		return "★"
	case Math:
		return "∑"
	case InNanochat:
		return "⌘"
	case ThinkAbout:
		return "?"
	default:
		return "ℹ"
	}
}

// Callout is a typed annotation. Title overrides the kind's label when set.
type Callout struct {
	Kind  CalloutKind
	Title string
	Body  string
}

// Caption returns Title, or the kind's label.
func (c Callout) Caption() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Kind.Label()
}

// Diagram is a static, preformatted illustration.
type Diagram struct {
	Label string
	Rows  []string
}

// Code is a read-only source excerpt.
type Code struct {
	Filename  string
	StartLine int
	Language  string
	Source    string
}

// Lang returns the excerpt language, python when unset.
func (c Code) Lang() string {
	if c.Language == "" {
		return "python"
	}
	return c.Language
}

// Demo wraps exactly one interactive widget. New builds a fresh instance on
// every chapter mount.
type Demo struct {
	Title string
	New   func() widget.Interactive
}

// Quiz wraps one single-choice question.
type Quiz struct {
	Question    string
	Options     []string
	Correct     int
	Explanation string
}

// NewState builds the quiz's widget state.
func (q Quiz) NewState() *widget.Quiz {
	return widget.NewQuiz(q.Options, q.Correct)
}

func (Heading) isBlock() {}
func (Prose) isBlock()   {}
func (Callout) isBlock() {}
func (Diagram) isBlock() {}
func (Code) isBlock()    {}
func (Demo) isBlock()    {}
func (Quiz) isBlock()    {}

// Focusable reports whether the block takes keyboard focus in the chapter
// view: demos, quizzes and code excerpts (for copying).
func Focusable(b Block) bool {
	switch b.(type) {
	case Demo, Quiz, Code:
		return true
	}
	return false
}

// Focusables returns the indices of focusable blocks, in order.
func (t Tree) Focusables() []int {
	var out []int
	for i, b := range t {
		if Focusable(b) {
			out = append(out, i)
		}
	}
	return out
}

// Quizzes returns the quiz blocks in order.
func (t Tree) Quizzes() []Quiz {
	var out []Quiz
	for _, b := range t {
		if q, ok := b.(Quiz); ok {
			out = append(out, q)
		}
	}
	return out
}
