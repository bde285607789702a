package ui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/underhood/pkg/chapters"
	"github.com/vanderheijden86/underhood/pkg/theme"
	"github.com/vanderheijden86/underhood/pkg/ui"
)

// Whole-guide tests: the real chapter catalog driven through the model.

func integrationKeyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{
		Type:  tea.KeyRunes,
		Runes: []rune(key),
	}
}

func integrationSpecialKey(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func newGuide(t *testing.T, width, height int) ui.Model {
	t.Helper()
	m := ui.NewModel(ui.Options{
		Catalog: chapters.Catalog(),
		Theme:   theme.Plain(),
		Links:   chapters.Links,
	})
	newM, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return newM.(ui.Model)
}

func send(m ui.Model, msgs ...tea.Msg) ui.Model {
	for _, msg := range msgs {
		newM, _ := m.Update(msg)
		m = newM.(ui.Model)
	}
	return m
}

// TestWalkEveryChapter pages through the guide and renders each chapter.
func TestWalkEveryChapter(t *testing.T) {
	cat := chapters.Catalog()
	m := newGuide(t, 140, 50)

	for i, ch := range cat.All() {
		if m.ActiveChapterID() != ch.ID {
			t.Fatalf("Step %d: expected %s, got %s", i, ch.ID, m.ActiveChapterID())
		}
		view := m.View()
		if !strings.Contains(view, ch.Title) {
			t.Errorf("Chapter %s: expected title %q in view", ch.ID, ch.Title)
		}
		if i == 0 && strings.Contains(view, "Prev:") {
			t.Error("Expected no Prev control on the first chapter")
		}
		if i == cat.Len()-1 && strings.Contains(view, "Next:") {
			t.Error("Expected no Next control on the last chapter")
		}
		m = send(m, integrationKeyMsg("n"))
	}
	if m.ActiveChapterID() != cat.All()[cat.Len()-1].ID {
		t.Errorf("Expected to stop on the last chapter, got %s", m.ActiveChapterID())
	}
}

// TestFocusEveryBlock tabs through every focusable block of every chapter,
// exercising each demo and quiz view with focus on.
func TestFocusEveryBlock(t *testing.T) {
	cat := chapters.Catalog()
	m := newGuide(t, 120, 40)

	for _, ch := range cat.All() {
		n := len(ch.Render().Focusables())
		seen := make(map[int]bool)
		for j := 0; j < n; j++ {
			m = send(m, integrationSpecialKey(tea.KeyTab))
			if m.Focused() < 0 {
				t.Fatalf("Chapter %s: expected focus after tab %d", ch.ID, j)
			}
			seen[m.Focused()] = true
			if m.View() == "" {
				t.Errorf("Chapter %s: empty view with block %d focused", ch.ID, m.Focused())
			}
		}
		if len(seen) != n {
			t.Errorf("Chapter %s: expected %d distinct focus stops, got %d", ch.ID, n, len(seen))
		}
		m = send(m, integrationSpecialKey(tea.KeyEsc), integrationKeyMsg("n"))
	}
}

// TestThemeToggleAcrossChapters flips the appearance and keeps it while
// navigating.
func TestThemeToggleAcrossChapters(t *testing.T) {
	m := newGuide(t, 120, 40)
	dark := m.Theme().IsDark()

	m = send(m, integrationKeyMsg("T"), integrationKeyMsg("n"), integrationKeyMsg("n"))
	if m.Theme().IsDark() == dark {
		t.Error("Expected the toggled appearance to survive navigation")
	}
	if m.View() == "" {
		t.Error("Expected a view after toggling")
	}
}

// TestResizeBetweenWideAndNarrow checks the layout switch keeps the chapter.
func TestResizeBetweenWideAndNarrow(t *testing.T) {
	m := newGuide(t, 140, 40)
	m = send(m, integrationKeyMsg("n"))
	id := m.ActiveChapterID()

	m = send(m, tea.WindowSizeMsg{Width: 70, Height: 30})
	if m.ActiveChapterID() != id {
		t.Errorf("Expected %s after resize, got %s", id, m.ActiveChapterID())
	}
	if m.View() == "" {
		t.Error("Expected a narrow view")
	}

	m = send(m, integrationKeyMsg("s"))
	if !strings.Contains(m.View(), "Chapters") {
		t.Error("Expected the chapter list as an overlay")
	}
	m = send(m, integrationSpecialKey(tea.KeyEsc))
	if m.SidePanelOpen() {
		t.Error("Expected esc to close the narrow overlay")
	}
}
