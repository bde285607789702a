package highlight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"
)

const sample = `def forward(self, idx):
    x = self.transformer.wte(idx)
    return x
`

func TestRenderPython(t *testing.T) {
	out, err := Render(context.Background(), sample, "python", DefaultStyleDark)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "\x1b[") {
		t.Error("Expected ANSI escapes in the output")
	}
	if !strings.Contains(out, "forward") {
		t.Errorf("Expected the identifier to survive, got %q", out)
	}
}

func TestRenderUnknownLanguageFallsBack(t *testing.T) {
	out, err := Render(context.Background(), "just some words", "no-such-language", DefaultStyleLight)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "words") {
		t.Errorf("Expected text preserved, got %q", out)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, sample, "python", DefaultStyleDark); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	var err error = &Error{Key: "gpt.py:10", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
	var he *Error
	if !errors.As(err, &he) || he.Key != "gpt.py:10" {
		t.Errorf("Expected *Error with key, got %v", err)
	}
	if !strings.Contains(err.Error(), "gpt.py:10") {
		t.Errorf("Expected key in message, got %q", err.Error())
	}
}

func TestSafeRenderRecoversPanics(t *testing.T) {
	renderFn = func(ctx context.Context, source, language, style string) (string, error) {
		panic("lexer exploded")
	}
	t.Cleanup(func() { renderFn = Render })

	p := NewPool(PoolConfig{})
	defer p.Stop()
	s := p.Session(uuid.New())
	msg := s.Request("k", "x", "python", true)().(ResultMsg)

	var he *Error
	if !errors.As(msg.Err, &he) || he.Key != "k" {
		t.Fatalf("Expected *Error for key k, got %v", msg.Err)
	}
	if !strings.Contains(he.Cause.Error(), "lexer exploded") {
		t.Errorf("Expected panic value in cause, got %v", he.Cause)
	}
	if s.Accept(msg) {
		t.Error("Expected a failed result to be rejected")
	}
}

func TestStyleExists(t *testing.T) {
	if !StyleExists(DefaultStyleDark) || !StyleExists("GitHub") {
		t.Error("Expected default styles to exist")
	}
	if StyleExists("no-such-style") {
		t.Error("Expected unknown style to be rejected")
	}
}

func TestSessionAcceptsCurrentResult(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1})
	defer p.Stop()
	s := p.Session(uuid.New())

	cmd := s.Request("gpt.py:1", sample, "python", true)
	if cmd == nil {
		t.Fatal("Expected a command")
	}
	if !s.Requested("gpt.py:1") {
		t.Error("Expected key marked as requested")
	}
	msg := cmd().(ResultMsg)
	if msg.Err != nil {
		t.Fatalf("Unexpected error: %v", msg.Err)
	}
	if !s.Accept(msg) {
		t.Fatal("Expected current result accepted")
	}
	if out, ok := s.Output("gpt.py:1"); !ok || out == "" {
		t.Error("Expected stored output")
	}
}

func TestSessionDropsSupersededResult(t *testing.T) {
	p := NewPool(PoolConfig{})
	defer p.Stop()
	s := p.Session(uuid.New())

	first := s.Request("k", "a = 1", "python", true)
	second := s.Request("k", "b = 2", "python", true)

	late := first().(ResultMsg)
	if s.Accept(late) {
		t.Error("Expected the superseded result to be dropped")
	}
	if _, ok := s.Output("k"); ok {
		t.Error("Expected no output from a stale result")
	}
	if !s.Accept(second().(ResultMsg)) {
		t.Error("Expected the latest result accepted")
	}
}

func TestSessionDropsOtherMount(t *testing.T) {
	p := NewPool(PoolConfig{})
	defer p.Stop()
	old := p.Session(uuid.New())
	msg := old.Request("k", "x = 1", "python", false)().(ResultMsg)

	fresh := p.Session(uuid.New())
	fresh.Request("k", "x = 1", "python", false)
	if fresh.Accept(msg) {
		t.Error("Expected a result from another mount to be dropped")
	}
}

func TestSessionRelease(t *testing.T) {
	p := NewPool(PoolConfig{})
	defer p.Stop()
	s := p.Session(uuid.New())
	cmd := s.Request("k", sample, "python", true)
	s.Release()

	msg := cmd().(ResultMsg)
	if s.Accept(msg) {
		t.Error("Expected result after release to be dropped")
	}
	if s.Request("k", sample, "python", true) != nil {
		t.Error("Expected no command after release")
	}
}

func TestSessionInvalidate(t *testing.T) {
	p := NewPool(PoolConfig{})
	defer p.Stop()
	s := p.Session(uuid.New())
	msg := s.Request("k", "x", "python", true)().(ResultMsg)
	s.Accept(msg)

	s.Invalidate()
	if _, ok := s.Output("k"); ok {
		t.Error("Expected outputs cleared")
	}
	if s.Requested("k") {
		t.Error("Expected key to need a new request")
	}
	if s.Accept(msg) {
		t.Error("Expected an old result to stay stale after invalidation")
	}
}

func TestStoppedPoolRefusesWork(t *testing.T) {
	p := NewPool(PoolConfig{})
	p.Stop()
	p.Stop()
	if p.Session(uuid.New()).Request("k", "x", "python", true) != nil {
		t.Error("Expected nil command from a stopped pool")
	}
}

func TestPoolStyles(t *testing.T) {
	p := NewPool(PoolConfig{StyleDark: "monokai"})
	if p.Style(true) != "monokai" || p.Style(false) != DefaultStyleLight {
		t.Errorf("Unexpected styles %s/%s", p.Style(true), p.Style(false))
	}
	p.SetStyles("", "friendly")
	if p.Style(true) != "monokai" || p.Style(false) != "friendly" {
		t.Errorf("Unexpected styles after SetStyles %s/%s", p.Style(true), p.Style(false))
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 2})
	defer p.Stop()

	var running, peak atomic.Int32
	p.render = func(ctx context.Context, key, source, language, style string) (string, error) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return source, nil
	}

	s := p.Session(uuid.New())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		cmd := s.Request(string(rune('a'+i)), "x", "python", true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd()
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("Expected at most 2 concurrent renders, got %d", got)
	}
}

func TestOnlyLatestGenerationIsAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := NewPool(PoolConfig{})
		p.render = func(ctx context.Context, key, source, language, style string) (string, error) {
			return source, nil
		}
		defer p.Stop()
		s := p.Session(uuid.New())

		keys := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c"}), 1, 20).Draw(t, "requests")
		var msgs []ResultMsg
		latest := map[string]uint64{}
		for _, k := range keys {
			msg := s.Request(k, k, "python", true)().(ResultMsg)
			latest[k] = msg.Gen
			msgs = append(msgs, msg)
		}
		order := rapid.Permutation(msgs).Draw(t, "delivery")
		for _, msg := range order {
			if got, want := s.Accept(msg), msg.Gen == latest[msg.Key]; got != want {
				t.Fatalf("Accept(%s gen %d) = %v, want %v", msg.Key, msg.Gen, got, want)
			}
		}
	})
}
