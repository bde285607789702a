package widget

import "github.com/google/uuid"

// Releaser is implemented by widgets that hold something to give back when
// their chapter unmounts.
type Releaser interface {
	Release()
}

// Arena owns the widget instances of the mounted chapter. Every Mount gets a
// fresh id and empty slots, so a revisited chapter starts from defaults.
type Arena struct {
	mount   uuid.UUID
	chapter string
	slots   map[int]any
}

// NewArena returns an arena with nothing mounted.
func NewArena() *Arena {
	return &Arena{}
}

// Mount tears down the current mount and starts a new one for chapterID.
func (a *Arena) Mount(chapterID string) uuid.UUID {
	a.Unmount()
	a.mount = uuid.New()
	a.chapter = chapterID
	a.slots = make(map[int]any)
	return a.mount
}

// Unmount releases and drops every instance.
func (a *Arena) Unmount() {
	for _, w := range a.slots {
		if r, ok := w.(Releaser); ok {
			r.Release()
		}
	}
	a.slots = nil
	a.mount = uuid.Nil
	a.chapter = ""
}

// Current returns the live mount id and its chapter. The id is uuid.Nil when
// nothing is mounted.
func (a *Arena) Current() (uuid.UUID, string) {
	return a.mount, a.chapter
}

// Live reports whether id is the current mount.
func (a *Arena) Live(id uuid.UUID) bool {
	return id != uuid.Nil && id == a.mount
}

// Len is the number of instantiated slots.
func (a *Arena) Len() int { return len(a.slots) }

// Obtain returns the instance in slot, creating it with factory on first use.
// A slot that holds a different type is replaced. Without a mount the
// instance is built but not retained.
func Obtain[T any](a *Arena, slot int, factory func() T) T {
	if a.slots == nil {
		return factory()
	}
	if w, ok := a.slots[slot].(T); ok {
		return w
	}
	w := factory()
	a.slots[slot] = w
	return w
}
