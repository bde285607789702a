package highlight

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/vanderheijden86/underhood/pkg/logging"
)

// PoolConfig configures NewPool.
type PoolConfig struct {
	Workers    int // concurrent renders; <1 means 4
	StyleDark  string
	StyleLight string
	Logger     *logging.Logger
}

// Pool runs highlight requests with bounded concurrency.
type Pool struct {
	sem        *semaphore.Weighted
	styleDark  string
	styleLight string
	log        *logging.Logger

	mu      sync.Mutex
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc

	// render is swapped in tests.
	render func(ctx context.Context, key, source, language, style string) (string, error)
}

// NewPool creates a pool. It needs no Start; Stop cancels everything in
// flight.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.StyleDark == "" {
		cfg.StyleDark = DefaultStyleDark
	}
	if cfg.StyleLight == "" {
		cfg.StyleLight = DefaultStyleLight
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:        semaphore.NewWeighted(int64(cfg.Workers)),
		styleDark:  cfg.StyleDark,
		styleLight: cfg.StyleLight,
		log:        cfg.Logger,
		ctx:        ctx,
		cancel:     cancel,
		render:     safeRender,
	}
}

// Style is the chroma style for the given appearance.
func (p *Pool) Style(dark bool) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dark {
		return p.styleDark
	}
	return p.styleLight
}

// SetStyles replaces the styles used by later requests. Empty keeps the
// current value.
func (p *Pool) SetStyles(dark, light string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dark != "" {
		p.styleDark = dark
	}
	if light != "" {
		p.styleLight = light
	}
}

// Stop cancels all sessions. Stop is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.cancel()
}

// Session starts the highlight session of one chapter mount.
func (p *Pool) Session(mount uuid.UUID) *Session {
	ctx, cancel := context.WithCancel(p.ctx)
	return &Session{
		pool:    p,
		mount:   mount,
		ctx:     ctx,
		cancel:  cancel,
		gens:    make(map[string]uint64),
		outputs: make(map[string]string),
	}
}

func (p *Pool) run(ctx context.Context, req Request) ResultMsg {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return ResultMsg{Request: req, Err: &Error{Key: req.Key, Cause: err}}
	}
	defer p.sem.Release(1)

	out, err := p.render(ctx, req.Key, req.Source, req.Language, p.Style(req.Dark))
	if err != nil && ctx.Err() == nil {
		p.log.Warn("highlight failed", "key", req.Key, "error", err)
	}
	return ResultMsg{Request: req, Output: out, Err: err}
}
