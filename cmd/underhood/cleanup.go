package main

// cleanups holds shutdown steps. os.Exit skips deferred calls, so error exits
// run them explicitly before exiting.
type cleanups []func()

func (c *cleanups) add(f func()) {
	*c = append(*c, f)
}

// run calls the steps newest first and forgets them, so a later deferred
// run is a no-op.
func (c *cleanups) run() {
	steps := *c
	*c = nil
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}
