package widget

import "github.com/samber/lo"

// Feedback is the variant shown under a quiz.
type Feedback int

const (
	Unanswered Feedback = iota
	Correct
	Incorrect
)

func (f Feedback) String() string {
	switch f {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unanswered"
	}
}

// Quiz is a single-choice question with one attempt. The first valid Select
// reveals the answer; afterwards the quiz is immutable.
type Quiz struct {
	options  []string
	correct  int
	selected int
	revealed bool
}

// NewQuiz copies options. correct is the index of the right option and is
// clamped into range, so some option is always right. A quiz without options
// has no right answer and cannot be answered.
func NewQuiz(options []string, correct int) *Quiz {
	if len(options) == 0 {
		correct = -1
	} else {
		correct = lo.Clamp(correct, 0, len(options)-1)
	}
	return &Quiz{
		options:  append([]string(nil), options...),
		correct:  correct,
		selected: -1,
	}
}

// Select records option i and reveals. It reports whether the state changed:
// out-of-range indices and any call after the reveal are ignored.
func (q *Quiz) Select(i int) bool {
	if q.revealed || i < 0 || i >= len(q.options) {
		return false
	}
	q.selected = i
	q.revealed = true
	return true
}

// Selected returns the chosen option, ok=false while unanswered.
func (q *Quiz) Selected() (int, bool) {
	if q.selected < 0 {
		return 0, false
	}
	return q.selected, true
}

func (q *Quiz) Revealed() bool    { return q.revealed }
func (q *Quiz) Options() []string { return append([]string(nil), q.options...) }
func (q *Quiz) CorrectIndex() int { return q.correct }

// Feedback compares the chosen option with the correct one.
func (q *Quiz) Feedback() Feedback {
	if !q.revealed {
		return Unanswered
	}
	if q.selected == q.correct {
		return Correct
	}
	return Incorrect
}

// Letter returns the A, B, C... label for option i.
func Letter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}
