package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"

	"github.com/vanderheijden86/underhood/pkg/chapters"
	"github.com/vanderheijden86/underhood/pkg/content"
)

func init() {
	color.NoColor = true
}

func TestPrintChapters(t *testing.T) {
	var buf bytes.Buffer
	cat := chapters.Catalog()
	printChapters(&buf, cat, 120)
	out := buf.String()

	for i, ch := range cat.All() {
		if !strings.Contains(out, ch.ID) {
			t.Errorf("Expected id %s in listing", ch.ID)
		}
		if !strings.Contains(out, ch.Title) {
			t.Errorf("Expected title %q in listing", ch.Title)
		}
		if !strings.Contains(out, ch.Icon) {
			t.Errorf("Chapter %d: expected icon in listing", i+1)
		}
	}
	if !strings.Contains(out, "10 chapters") {
		t.Error("Expected the chapter count in the header")
	}
}

func TestPrintChaptersTruncatesToWidth(t *testing.T) {
	var buf bytes.Buffer
	printChapters(&buf, chapters.Catalog(), 40)
	if !strings.Contains(buf.String(), "…") {
		t.Error("Expected long titles truncated on a narrow terminal")
	}
}

func TestRunQuizAllCorrect(t *testing.T) {
	var buf bytes.Buffer
	ask := func(q content.Quiz, _, _ int) (int, error) { return q.Correct, nil }

	correct, total, err := runQuiz(&buf, chapters.Catalog(), "attention", ask)
	if err != nil {
		t.Fatalf("runQuiz failed: %v", err)
	}
	if total == 0 || correct != total {
		t.Errorf("Expected all correct, got %d/%d", correct, total)
	}
	if strings.Count(buf.String(), "Correct!") != total {
		t.Errorf("Expected %d correct lines, got output:\n%s", total, buf.String())
	}
}

func TestRunQuizWrongAnswerRevealsCorrectOne(t *testing.T) {
	var buf bytes.Buffer
	ask := func(q content.Quiz, _, _ int) (int, error) { return (q.Correct + 1) % len(q.Options), nil }

	correct, total, err := runQuiz(&buf, chapters.Catalog(), "tokenizer", ask)
	if err != nil {
		t.Fatalf("runQuiz failed: %v", err)
	}
	if correct != 0 {
		t.Errorf("Expected 0 correct, got %d/%d", correct, total)
	}
	if !strings.Contains(buf.String(), "Not quite. The answer is") {
		t.Error("Expected the correct answer revealed")
	}
}

func TestRunQuizErrors(t *testing.T) {
	never := func(content.Quiz, int, int) (int, error) {
		t.Fatal("ask should not be called")
		return 0, nil
	}
	if _, _, err := runQuiz(&bytes.Buffer{}, chapters.Catalog(), "nope", never); err == nil {
		t.Error("Expected an error for an unknown chapter")
	}
	if _, _, err := runQuiz(&bytes.Buffer{}, chapters.Catalog(), "run-project", never); err == nil {
		t.Error("Expected an error for a chapter without quizzes")
	}

	failing := func(content.Quiz, int, int) (int, error) { return -1, errors.New("no tty") }
	if _, _, err := runQuiz(&bytes.Buffer{}, chapters.Catalog(), "attention", failing); err == nil {
		t.Error("Expected the form error to surface")
	}
}

func TestRunQuizAbortKeepsScore(t *testing.T) {
	calls := 0
	ask := func(q content.Quiz, _, _ int) (int, error) {
		calls++
		if calls > 1 {
			return -1, huh.ErrUserAborted
		}
		return q.Correct, nil
	}
	correct, total, err := runQuiz(&bytes.Buffer{}, chapters.Catalog(), "serving", ask)
	if err != nil {
		t.Fatalf("Expected abort to end quietly, got %v", err)
	}
	if correct != 1 || total != 1 {
		t.Errorf("Expected 1/1 after aborting on the second question, got %d/%d", correct, total)
	}
}

func TestPrintScore(t *testing.T) {
	var buf bytes.Buffer
	printScore(&buf, 2, 3)
	if got := strings.TrimSpace(buf.String()); got != "Score: 2/3" {
		t.Errorf("Expected 'Score: 2/3', got %q", got)
	}
	buf.Reset()
	printScore(&buf, 0, 0)
	if buf.Len() != 0 {
		t.Error("Expected no score line without questions")
	}
}

func TestTerminalWidthFallback(t *testing.T) {
	// Under go test stdout is not a terminal.
	if w := terminalWidth(); w <= 0 {
		t.Errorf("Expected a positive width, got %d", w)
	}
}

func TestCleanupsRunNewestFirstOnce(t *testing.T) {
	var order []string
	var done cleanups
	done.add(func() { order = append(order, "log") })
	done.add(func() { order = append(order, "pool") })
	done.add(func() { order = append(order, "watcher") })

	done.run()
	if got := strings.Join(order, ","); got != "watcher,pool,log" {
		t.Errorf("Expected watcher,pool,log, got %s", got)
	}

	// The deferred run after an explicit one does nothing.
	done.run()
	if len(order) != 3 {
		t.Errorf("Expected 3 calls in total, got %d", len(order))
	}
}
