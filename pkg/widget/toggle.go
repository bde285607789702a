package widget

import "github.com/samber/lo"

// Toggle is a boolean switch.
type Toggle struct {
	on, initial bool
}

func NewToggle(on bool) *Toggle { return &Toggle{on: on, initial: on} }

func (t *Toggle) On() bool    { return t.on }
func (t *Toggle) Flip()       { t.on = !t.on }
func (t *Toggle) Set(on bool) { t.on = on }
func (t *Toggle) Reset()      { t.on = t.initial }

// Choice selects one of n options. The index always lies in [0, n-1].
type Choice struct {
	n, index, initial int
}

// NewChoice builds a selector over n options (n < 1 is treated as 1).
func NewChoice(n, initial int) *Choice {
	if n < 1 {
		n = 1
	}
	initial = lo.Clamp(initial, 0, n-1)
	return &Choice{n: n, index: initial, initial: initial}
}

func (c *Choice) Index() int { return c.index }
func (c *Choice) Len() int   { return c.n }

// Select stores clamp(i, 0, n-1).
func (c *Choice) Select(i int) { c.index = lo.Clamp(i, 0, c.n-1) }

// Next and Prev wrap around: selectors cycle, unlike steppers.
func (c *Choice) Next() { c.index = (c.index + 1) % c.n }
func (c *Choice) Prev() { c.index = (c.index - 1 + c.n) % c.n }

func (c *Choice) Reset() { c.index = c.initial }
