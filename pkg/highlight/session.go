package highlight

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Request identifies one render: which mount asked, for which excerpt, and
// at which generation.
type Request struct {
	Mount    uuid.UUID
	Key      string
	Gen      uint64
	Source   string
	Language string
	Dark     bool
}

// ResultMsg carries a finished render back to the UI loop.
type ResultMsg struct {
	Request
	Output string
	Err    error
}

// Session tracks the excerpts of one mounted chapter. It is used from the UI
// goroutine only; the commands it returns capture copies of what they need.
type Session struct {
	pool   *Pool
	mount  uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc

	next    uint64
	gens    map[string]uint64
	outputs map[string]string
}

// Mount is the mount id this session serves.
func (s *Session) Mount() uuid.UUID { return s.mount }

// Request starts a render of source for key and returns the command that
// performs it. Any earlier request for key becomes stale. It returns nil
// once the session has been released.
func (s *Session) Request(key, source, language string, dark bool) tea.Cmd {
	if s.ctx.Err() != nil {
		return nil
	}
	s.next++
	s.gens[key] = s.next
	req := Request{
		Mount:    s.mount,
		Key:      key,
		Gen:      s.next,
		Source:   source,
		Language: language,
		Dark:     dark,
	}
	ctx, pool := s.ctx, s.pool
	return func() tea.Msg {
		return pool.run(ctx, req)
	}
}

// Requested reports whether key has been requested since the last
// Invalidate.
func (s *Session) Requested(key string) bool {
	_, ok := s.gens[key]
	return ok
}

// Current reports whether a result stamped (mount, key, gen) is the latest
// request of this session.
func (s *Session) Current(mount uuid.UUID, key string, gen uint64) bool {
	return mount == s.mount && s.ctx.Err() == nil && s.gens[key] == gen && gen != 0
}

// Accept stores msg's output if it is current and succeeded. It reports
// whether the output was stored; stale and failed results leave the
// excerpt unstyled.
func (s *Session) Accept(msg ResultMsg) bool {
	if !s.Current(msg.Mount, msg.Key, msg.Gen) || msg.Err != nil {
		return false
	}
	s.outputs[msg.Key] = msg.Output
	return true
}

// Output is the highlighted text for key, if any.
func (s *Session) Output(key string) (string, bool) {
	out, ok := s.outputs[key]
	return out, ok
}

// Invalidate forgets every output and makes in-flight results stale, so the
// next view requests everything again (used when the appearance changes).
func (s *Session) Invalidate() {
	clear(s.gens)
	clear(s.outputs)
}

// Release cancels in-flight renders. Called when the chapter unmounts.
func (s *Session) Release() {
	s.cancel()
}
