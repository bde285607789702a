// Package catalog is the fixed, ordered list of chapters. Order is the
// prev/next navigation sequence.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/vanderheijden86/underhood/pkg/content"
)

// Chapter is one addressable unit of the guide.
type Chapter struct {
	ID    string
	Title string
	// Icon is an opaque glyph reference; the view prints it as-is.
	Icon   string
	Render func() content.Tree
}

// Link is an external reference shown under every chapter.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Catalog is immutable after New.
type Catalog struct {
	chapters []Chapter
	index    map[string]int
}

// ErrEmpty is returned by New when no chapters are given.
var ErrEmpty = errors.New("catalog: no chapters")

// New validates and freezes the chapter list. IDs must be non-empty and
// unique, and every chapter needs a render function.
func New(chapters ...Chapter) (*Catalog, error) {
	if len(chapters) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{
		chapters: append([]Chapter(nil), chapters...),
		index:    make(map[string]int, len(chapters)),
	}
	for i, ch := range c.chapters {
		if strings.TrimSpace(ch.ID) == "" {
			return nil, fmt.Errorf("catalog: chapter %d has an empty id", i)
		}
		if ch.Render == nil {
			return nil, fmt.Errorf("catalog: chapter %q has no render function", ch.ID)
		}
		if prev, dup := c.index[ch.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q at positions %d and %d", ch.ID, prev, i)
		}
		c.index[ch.ID] = i
	}
	return c, nil
}

// MustNew is New for static tables.
func MustNew(chapters ...Chapter) *Catalog {
	c, err := New(chapters...)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the chapters in order. The slice is a copy.
func (c *Catalog) All() []Chapter {
	return append([]Chapter(nil), c.chapters...)
}

// ByID looks a chapter up. ok is false for unknown ids.
func (c *Catalog) ByID(id string) (Chapter, bool) {
	i, ok := c.index[id]
	if !ok {
		return Chapter{}, false
	}
	return c.chapters[i], true
}

// IndexOf returns the position of id, or -1.
func (c *Catalog) IndexOf(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// At returns the chapter at position i.
func (c *Catalog) At(i int) (Chapter, bool) {
	if i < 0 || i >= len(c.chapters) {
		return Chapter{}, false
	}
	return c.chapters[i], true
}

// First is the default chapter.
func (c *Catalog) First() Chapter { return c.chapters[0] }

// Len is the number of chapters.
func (c *Catalog) Len() int { return len(c.chapters) }

// IDs lists chapter ids in order.
func (c *Catalog) IDs() []string {
	return lo.Map(c.chapters, func(ch Chapter, _ int) string { return ch.ID })
}
