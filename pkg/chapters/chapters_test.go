package chapters

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/underhood/pkg/content"
	"github.com/vanderheijden86/underhood/pkg/theme"
)

func TestCatalogOrder(t *testing.T) {
	want := []string{
		"overview", "tokenizer", "embeddings", "attention", "transformer",
		"gpt-model", "training", "inference", "run-project", "serving",
	}
	got := Catalog().IDs()
	if len(got) != len(want) {
		t.Fatalf("Expected %d chapters, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected chapter %d to be %q, got %q", i, want[i], got[i])
		}
	}
}

func TestEveryChapterRenders(t *testing.T) {
	for _, ch := range Catalog().All() {
		t.Run(ch.ID, func(t *testing.T) {
			tree := ch.Render()
			if len(tree) == 0 {
				t.Fatal("Expected a non-empty content tree")
			}
			first, ok := tree[0].(content.Heading)
			if !ok {
				t.Fatalf("Expected the tree to open with a heading, got %T", tree[0])
			}
			if first.Text == "" {
				t.Error("Expected a non-empty title heading")
			}
			if ch.Title == "" || ch.Icon == "" {
				t.Errorf("Expected title and icon, got %q / %q", ch.Title, ch.Icon)
			}
		})
	}
}

func TestRenderIsPure(t *testing.T) {
	for _, ch := range Catalog().All() {
		a, b := ch.Render(), ch.Render()
		if len(a) != len(b) {
			t.Errorf("%s: expected identical trees across renders, got %d and %d blocks", ch.ID, len(a), len(b))
		}
	}
}

func TestQuizzesAreWellFormed(t *testing.T) {
	total := 0
	for _, ch := range Catalog().All() {
		for _, b := range ch.Render() {
			q, ok := b.(content.Quiz)
			if !ok {
				continue
			}
			total++
			if q.Question == "" || q.Explanation == "" {
				t.Errorf("%s: quiz is missing question or explanation", ch.ID)
			}
			if len(q.Options) < 2 {
				t.Errorf("%s: expected at least two options for %q, got %d", ch.ID, q.Question, len(q.Options))
			}
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				t.Errorf("%s: correct index %d out of range for %q", ch.ID, q.Correct, q.Question)
			}
			if !q.NewState().Select(q.Correct) {
				t.Errorf("%s: expected the correct option to be selectable", ch.ID)
			}
		}
	}
	if total == 0 {
		t.Error("Expected the guide to contain quizzes")
	}
}

func TestDemosConstruct(t *testing.T) {
	th := theme.Plain()
	for _, ch := range Catalog().All() {
		for _, b := range ch.Render() {
			d, ok := b.(content.Demo)
			if !ok {
				continue
			}
			if d.Title == "" {
				t.Errorf("%s: demo without a title", ch.ID)
			}
			w := d.New()
			if w == nil {
				t.Fatalf("%s: demo %q built nil", ch.ID, d.Title)
			}
			if strings.TrimSpace(w.View(th, 80)) == "" {
				t.Errorf("%s: demo %q rendered nothing", ch.ID, d.Title)
			}
		}
	}
}

func TestCodeBlocksAreAttributed(t *testing.T) {
	for _, ch := range Catalog().All() {
		for _, b := range ch.Render() {
			c, ok := b.(content.Code)
			if !ok {
				continue
			}
			if c.Filename == "" {
				t.Errorf("%s: code block without a filename", ch.ID)
			}
			if strings.HasPrefix(c.Source, "\n") || strings.HasSuffix(c.Source, "\n") {
				t.Errorf("%s: expected %s excerpt to be trimmed", ch.ID, c.Filename)
			}
			if c.StartLine < 0 {
				t.Errorf("%s: negative start line in %s", ch.ID, c.Filename)
			}
		}
	}
}

func TestOutlineSlugsAreUnique(t *testing.T) {
	for _, ch := range Catalog().All() {
		seen := map[string]bool{}
		for _, s := range content.Outline(ch.Render()) {
			if seen[s.Slug] {
				t.Errorf("%s: duplicate outline slug %q", ch.ID, s.Slug)
			}
			seen[s.Slug] = true
		}
	}
}

func TestLinks(t *testing.T) {
	if len(Links) == 0 {
		t.Fatal("Expected external links")
	}
	for _, l := range Links {
		if !strings.HasPrefix(l.URL, "https://") {
			t.Errorf("Expected https link, got %q", l.URL)
		}
	}
}
