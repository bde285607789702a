// Package nav owns the navigation state: which chapter is active and whether
// the side panel is open. It is the only place that state changes.
package nav

import "github.com/vanderheijden86/underhood/pkg/catalog"

// State is a snapshot of the navigation state.
type State struct {
	ActiveChapterID string
	SidePanelOpen   bool
}

// ScrollToTop tells the presentation layer to reset the content scroll.
// Changed is false when the target was already active.
type ScrollToTop struct {
	ChapterID string
	Changed   bool
}

// Controller mutates State. Invalid requests are ignored, never errors.
type Controller struct {
	cat   *catalog.Catalog
	state State
}

// New starts on start when it resolves, otherwise on the first chapter. The
// side panel starts open.
func New(cat *catalog.Catalog, start string) *Controller {
	c := &Controller{cat: cat, state: State{SidePanelOpen: true}}
	if _, ok := cat.ByID(start); ok {
		c.state.ActiveChapterID = start
	} else {
		c.state.ActiveChapterID = cat.First().ID
	}
	return c
}

// Catalog returns the catalog the controller navigates.
func (c *Controller) Catalog() *catalog.Catalog { return c.cat }

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Active resolves the active chapter, falling back to the first chapter.
func (c *Controller) Active() catalog.Chapter {
	if ch, ok := c.cat.ByID(c.state.ActiveChapterID); ok {
		return ch
	}
	return c.cat.First()
}

// ActiveID is Active().ID.
func (c *Controller) ActiveID() string { return c.Active().ID }

// SelectChapter activates id. Unknown ids leave the state unchanged and
// report ok=false.
func (c *Controller) SelectChapter(id string) (ScrollToTop, bool) {
	if _, ok := c.cat.ByID(id); !ok {
		return ScrollToTop{}, false
	}
	changed := c.ActiveID() != id
	c.state.ActiveChapterID = id
	return ScrollToTop{ChapterID: id, Changed: changed}, true
}

// SelectChapterNarrow is SelectChapter plus closing the side panel when the
// viewport is too narrow to show it next to the content.
func (c *Controller) SelectChapterNarrow(id string, narrow bool) (ScrollToTop, bool) {
	ev, ok := c.SelectChapter(id)
	if ok && narrow {
		c.SetSidePanelOpen(false)
	}
	return ev, ok
}

// Next moves one chapter forward. No-op on the last chapter.
func (c *Controller) Next() (ScrollToTop, bool) {
	next, ok := c.cat.At(c.position() + 1)
	if !ok {
		return ScrollToTop{}, false
	}
	return c.SelectChapter(next.ID)
}

// Previous moves one chapter back. No-op on the first chapter.
func (c *Controller) Previous() (ScrollToTop, bool) {
	prev, ok := c.cat.At(c.position() - 1)
	if !ok {
		return ScrollToTop{}, false
	}
	return c.SelectChapter(prev.ID)
}

// Neighbors returns the chapters around the active one. A nil side means
// the footer hides that control.
func (c *Controller) Neighbors() (prev, next *catalog.Chapter) {
	i := c.position()
	if p, ok := c.cat.At(i - 1); ok {
		prev = &p
	}
	if n, ok := c.cat.At(i + 1); ok {
		next = &n
	}
	return prev, next
}

// Position returns the active chapter's index and the catalog size.
func (c *Controller) Position() (index, total int) {
	return c.position(), c.cat.Len()
}

func (c *Controller) position() int {
	return c.cat.IndexOf(c.ActiveID())
}

// ToggleSidePanel flips the side panel.
func (c *Controller) ToggleSidePanel() {
	c.state.SidePanelOpen = !c.state.SidePanelOpen
}

// SetSidePanelOpen sets the side panel state.
func (c *Controller) SetSidePanelOpen(open bool) {
	c.state.SidePanelOpen = open
}

// SidePanelOpen reports the side panel state.
func (c *Controller) SidePanelOpen() bool { return c.state.SidePanelOpen }
