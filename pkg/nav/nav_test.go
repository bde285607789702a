package nav

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/underhood/pkg/catalog"
	"github.com/vanderheijden86/underhood/pkg/content"
)

func testCatalog(ids ...string) *catalog.Catalog {
	chapters := make([]catalog.Chapter, len(ids))
	for i, id := range ids {
		chapters[i] = catalog.Chapter{ID: id, Title: "Title " + id, Render: func() content.Tree { return nil }}
	}
	return catalog.MustNew(chapters...)
}

func TestNextPreviousScenario(t *testing.T) {
	c := New(testCatalog("A", "B", "C"), "")

	if c.ActiveID() != "A" {
		t.Fatalf("Expected initial A, got %s", c.ActiveID())
	}
	c.Next()
	if c.ActiveID() != "B" {
		t.Errorf("Expected B after next, got %s", c.ActiveID())
	}
	c.Next()
	if c.ActiveID() != "C" {
		t.Errorf("Expected C after next, got %s", c.ActiveID())
	}
	if _, ok := c.Next(); ok {
		t.Error("Expected next on the last chapter to be a no-op")
	}
	if c.ActiveID() != "C" {
		t.Errorf("Expected C to stay, got %s", c.ActiveID())
	}
	c.Previous()
	if c.ActiveID() != "B" {
		t.Errorf("Expected B after previous, got %s", c.ActiveID())
	}
}

func TestPreviousAtFirstIsNoOp(t *testing.T) {
	c := New(testCatalog("A", "B"), "A")
	if _, ok := c.Previous(); ok {
		t.Error("Expected previous on the first chapter to be a no-op")
	}
	if c.ActiveID() != "A" {
		t.Errorf("Expected A, got %s", c.ActiveID())
	}
}

func TestNewFallsBackToFirst(t *testing.T) {
	c := New(testCatalog("A", "B"), "missing")
	if c.ActiveID() != "A" {
		t.Errorf("Expected fallback to A, got %s", c.ActiveID())
	}
	if !c.SidePanelOpen() {
		t.Error("Expected side panel to start open")
	}
}

func TestActiveFallsBackWhenIDDoesNotResolve(t *testing.T) {
	c := New(testCatalog("A", "B"), "B")
	c.state.ActiveChapterID = "gone"
	if c.Active().ID != "A" {
		t.Errorf("Expected fallback to A, got %s", c.Active().ID)
	}
	if _, ok := c.Next(); !ok || c.ActiveID() != "B" {
		t.Errorf("Expected next from the fallback to reach B, got %s", c.ActiveID())
	}
}

func TestSelectChapterEmitsScrollToTop(t *testing.T) {
	c := New(testCatalog("A", "B"), "A")

	ev, ok := c.SelectChapter("B")
	if !ok || ev.ChapterID != "B" || !ev.Changed {
		t.Errorf("Expected changed scroll event for B, got %+v ok=%v", ev, ok)
	}
	ev, ok = c.SelectChapter("B")
	if !ok || ev.Changed {
		t.Errorf("Expected unchanged scroll event on reselect, got %+v ok=%v", ev, ok)
	}
	if _, ok := c.SelectChapter("nope"); ok {
		t.Error("Expected unknown id to be rejected")
	}
}

func TestNeighborsHideAtBoundaries(t *testing.T) {
	c := New(testCatalog("A", "B", "C"), "A")

	prev, next := c.Neighbors()
	if prev != nil {
		t.Errorf("Expected no previous on the first chapter, got %s", prev.ID)
	}
	if next == nil || next.ID != "B" {
		t.Errorf("Expected next B, got %v", next)
	}

	c.SelectChapter("C")
	prev, next = c.Neighbors()
	if prev == nil || prev.ID != "B" {
		t.Errorf("Expected previous B, got %v", prev)
	}
	if next != nil {
		t.Errorf("Expected no next on the last chapter, got %s", next.ID)
	}
}

func TestSidePanel(t *testing.T) {
	c := New(testCatalog("A", "B"), "A")
	c.ToggleSidePanel()
	if c.SidePanelOpen() {
		t.Error("Expected closed after toggle")
	}
	c.SetSidePanelOpen(true)
	if !c.State().SidePanelOpen {
		t.Error("Expected open after SetSidePanelOpen(true)")
	}

	c.SelectChapterNarrow("B", false)
	if !c.SidePanelOpen() {
		t.Error("Expected wide selection to leave the panel open")
	}
	c.SelectChapterNarrow("A", true)
	if c.SidePanelOpen() {
		t.Error("Expected narrow selection to close the panel")
	}
	c.SetSidePanelOpen(true)
	c.SelectChapterNarrow("nope", true)
	if !c.SidePanelOpen() {
		t.Error("Expected rejected narrow selection to leave the panel alone")
	}
}

func TestPosition(t *testing.T) {
	c := New(testCatalog("A", "B", "C"), "B")
	i, n := c.Position()
	if i != 1 || n != 3 {
		t.Errorf("Expected (1, 3), got (%d, %d)", i, n)
	}
}

var ids = []string{"overview", "tokenizer", "embeddings", "attention", "transformer"}

func TestSelectUnknownLeavesStateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(testCatalog(ids...), rapid.SampledFrom(ids).Draw(t, "start"))
		before := c.State()

		id := rapid.StringMatching(`[a-z-]{0,12}`).Filter(func(s string) bool {
			return c.Catalog().IndexOf(s) < 0
		}).Draw(t, "unknown")
		c.SelectChapter(id)

		if c.State() != before {
			t.Fatalf("SelectChapter(%q) changed state %+v -> %+v", id, before, c.State())
		}
	})
}

func TestSelectValidSticksProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(testCatalog(ids...), "")
		for _, id := range rapid.SliceOf(rapid.SampledFrom(ids)).Draw(t, "path") {
			c.SelectChapter(id)
			if c.State().ActiveChapterID != id {
				t.Fatalf("expected %s, got %s", id, c.State().ActiveChapterID)
			}
		}
	})
}

func TestNextPreviousMoveOneStepProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := New(testCatalog(ids...), rapid.SampledFrom(ids).Draw(t, "start"))
		for _, forward := range rapid.SliceOf(rapid.Bool()).Draw(t, "moves") {
			before, _ := c.Position()
			if forward {
				c.Next()
			} else {
				c.Previous()
			}
			after, _ := c.Position()
			switch {
			case forward && before == len(ids)-1, !forward && before == 0:
				if after != before {
					t.Fatalf("boundary move changed %d -> %d", before, after)
				}
			case forward && after != before+1, !forward && after != before-1:
				t.Fatalf("move forward=%v went %d -> %d", forward, before, after)
			}
		}
	})
}
