package content

import (
	"testing"

	"github.com/vanderheijden86/underhood/pkg/widget"
)

func sampleTree() Tree {
	return Tree{
		Heading{Text: "The Big Picture"},
		Prose{Markdown: "A **language model** predicts the [next token](https://example.com)"},
		Callout{Kind: KeyConcept, Body: "Everything is next-token prediction."},
		Code{Filename: "nanochat/gpt.py", StartLine: 10, Source: "x = 1\ny = 2\n"},
		Demo{Title: "Sampling", New: func() widget.Interactive { return nil }},
		Heading{Text: "The Big Picture"},
		Quiz{Question: "Which is right?", Options: []string{"this one", "that one"}, Correct: 0},
	}
}

func TestFocusables(t *testing.T) {
	got := sampleTree().Focusables()
	want := []int{3, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}

func TestOutlineDisambiguatesSlugs(t *testing.T) {
	out := Outline(sampleTree())
	if len(out) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(out))
	}
	if out[0].Slug != "the-big-picture" {
		t.Errorf("Expected the-big-picture, got %s", out[0].Slug)
	}
	if out[1].Slug != "the-big-picture-1" {
		t.Errorf("Expected the-big-picture-1, got %s", out[1].Slug)
	}
	if out[1].Block != 5 {
		t.Errorf("Expected block index 5, got %d", out[1].Block)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Embeddings & Positional Encoding": "embeddings--positional-encoding",
		"Step 1: Tokenize":                 "step-1-tokenize",
		"  RoPE  ":                         "rope",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollectCountsMarkdownWordsOnly(t *testing.T) {
	st := Collect(sampleTree())
	// heading 3 + prose 7 + callout 4 + heading 3 + quiz 3+2+2
	if st.Words != 24 {
		t.Errorf("Expected 24 words, got %d", st.Words)
	}
	if st.CodeLines != 2 {
		t.Errorf("Expected 2 code lines, got %d", st.CodeLines)
	}
	if st.Demos != 1 || st.Quizzes != 1 {
		t.Errorf("Expected 1 demo and 1 quiz, got %d and %d", st.Demos, st.Quizzes)
	}
	if st.Minutes() != 1 {
		t.Errorf("Expected 1 minute minimum, got %d", st.Minutes())
	}
}

func TestCalloutCaption(t *testing.T) {
	if got := (Callout{Kind: Math}).Caption(); got != "Math" {
		t.Errorf("Expected Math, got %s", got)
	}
	if got := (Callout{Kind: Info, Title: "Heads up"}).Caption(); got != "Heads up" {
		t.Errorf("Expected title override, got %s", got)
	}
	if got := (Code{}).Lang(); got != "python" {
		t.Errorf("Expected python default, got %s", got)
	}
}

func TestQuizNewStateIsFresh(t *testing.T) {
	q := Quiz{Options: []string{"a", "b"}, Correct: 1}
	s1 := q.NewState()
	s1.Select(0)
	if q.NewState().Revealed() {
		t.Error("Expected each NewState to be independent")
	}
}
