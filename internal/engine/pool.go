package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/kamera/internal/metrics"
)

// Handle is exclusive access to one pooled Engine, valid from Acquire until
// the matching Release.
type Handle struct {
	id     uint64
	gen    uint64
	engine Engine
}

// ID uniquely identifies the handle for the lifetime of the process. Handles
// built by a restart never reuse an ID.
func (h *Handle) ID() uint64 { return h.id }

// Recognize runs the handle's engine.
func (h *Handle) Recognize(img image.Image, opts RecognizeOptions) ([]string, error) {
	return h.engine.Recognize(img, opts)
}

// generation is one set of engines built together. Restart retires the
// current generation and publishes a new one.
type generation struct {
	id      uint64
	ready   chan *Handle
	retired chan struct{}
}

// Pool hands out a fixed number of engine handles.
//
// Acquire and Release may be called from any number of goroutines. Restart and
// Close exclude both for their duration.
type Pool struct {
	capacity int
	logger   *slog.Logger

	mu      sync.RWMutex // guards factory, gen, closed
	factory Factory
	gen     *generation
	closed  bool

	nextID  atomic.Uint64
	nextGen atomic.Uint64

	outMu sync.Mutex
	out   map[*Handle]struct{}
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithLogger sets the pool's logger.
func WithLogger(l *slog.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool builds capacity engines with factory. If any construction fails the
// engines already built are closed and an error wrapping ErrInit is returned.
func NewPool(capacity int, factory Factory, opts ...PoolOption) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInit, capacity)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: nil engine factory", ErrInit)
	}

	p := &Pool{
		capacity: capacity,
		logger:   slog.Default(),
		factory:  factory,
		out:      make(map[*Handle]struct{}, capacity),
	}
	for _, opt := range opts {
		opt(p)
	}

	start := time.Now()
	gen, err := p.build(factory)
	if err != nil {
		p.logger.Error("failed to initialize OCR engines", "capacity", capacity, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	p.gen = gen
	p.logger.Info("OCR engine pool initialized", "capacity", capacity, "duration", time.Since(start))
	p.report()
	return p, nil
}

// build constructs a full generation. On failure nothing is leaked.
func (p *Pool) build(factory Factory) (*generation, error) {
	gen := &generation{
		id:      p.nextGen.Add(1),
		ready:   make(chan *Handle, p.capacity),
		retired: make(chan struct{}),
	}
	for i := range p.capacity {
		e, err := factory()
		if err == nil && e == nil {
			err = errors.New("factory returned a nil engine")
		}
		if err != nil {
			closed := p.drain(gen)
			p.logger.Debug("discarded partially built engines", "count", closed)
			return nil, fmt.Errorf("construct engine %d of %d: %w", i+1, p.capacity, err)
		}
		gen.ready <- &Handle{id: p.nextID.Add(1), gen: gen.id, engine: e}
	}
	return gen, nil
}

// Capacity returns the number of engines the pool keeps.
func (p *Pool) Capacity() int { return p.capacity }

// Available returns the number of handles ready to be acquired.
func (p *Pool) Available() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return 0
	}
	return len(p.gen.ready)
}

// CheckedOut returns the number of handles currently held by callers.
func (p *Pool) CheckedOut() int {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	return len(p.out)
}

// Acquire blocks until a handle is available or ctx is done. With
// context.Background it waits indefinitely, so a caller that never releases
// its handle starves the pool.
func (p *Pool) Acquire(ctx context.Context) (*Handle, error) {
	start := time.Now()
	for {
		p.mu.RLock()
		if p.closed {
			p.mu.RUnlock()
			metrics.AcquireFailed()
			return nil, ErrClosed
		}
		gen := p.gen
		p.mu.RUnlock()

		select {
		case h := <-gen.ready:
			p.outMu.Lock()
			p.out[h] = struct{}{}
			p.outMu.Unlock()
			metrics.ObserveAcquire(time.Since(start))
			p.report()
			return h, nil
		case <-gen.retired:
			// Restarted or closed while waiting; look again.
		case <-ctx.Done():
			metrics.AcquireFailed()
			return nil, ctx.Err()
		}
	}
}

// Release returns h to the pool. Handles from a generation that has since
// been restarted, or from a closed pool, are destroyed instead.
func (p *Pool) Release(h *Handle) error {
	if h == nil {
		return ErrNotCheckedOut
	}
	p.outMu.Lock()
	if _, ok := p.out[h]; !ok {
		p.outMu.Unlock()
		return fmt.Errorf("release handle %d: %w", h.id, ErrNotCheckedOut)
	}
	delete(p.out, h)
	p.outMu.Unlock()

	p.mu.RLock()
	defer p.mu.RUnlock()
	defer p.reportLocked()

	if p.closed || h.gen != p.gen.id {
		p.logger.Debug("destroying stale engine handle", "handle", h.id)
		return p.destroy(h)
	}
	// Never blocks: the channel holds capacity handles and h is one of them.
	p.gen.ready <- h
	return nil
}

// Restart replaces every engine with a freshly built one from the current
// factory.
func (p *Pool) Restart() error {
	return p.restart(nil)
}

// Reconfigure switches the pool to a new factory, e.g. after a recognition
// language change, and restarts it.
func (p *Pool) Reconfigure(factory Factory) error {
	if factory == nil {
		return errors.New("engine: nil engine factory")
	}
	return p.restart(factory)
}

// restart holds the pool exclusively. The new generation is built before
// the old one is touched, so a failed restart leaves the pool as it was.
// Available old handles are destroyed immediately; handles still checked out
// are destroyed when they are released rather than while in use.
func (p *Pool) restart(factory Factory) (err error) {
	defer func() { metrics.PoolRestarted(err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if factory == nil {
		factory = p.factory
	}

	start := time.Now()
	next, err := p.build(factory)
	if err != nil {
		p.logger.Error("engine restart failed; keeping current engines", "error", err)
		return fmt.Errorf("restart engines: %w", err)
	}

	old := p.gen
	p.gen = next
	p.factory = factory
	close(old.retired)
	destroyed := p.drain(old)

	p.logger.Debug("engines restarted",
		"capacity", p.capacity,
		"destroyed", destroyed,
		"pending", p.capacity-destroyed,
		"duration", time.Since(start))
	p.reportLocked()
	return nil
}

// Close destroys every available engine and makes further acquisitions fail.
// Handles still checked out are destroyed on release.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.gen.retired)
	var errs []error
	for {
		select {
		case h := <-p.gen.ready:
			if err := p.destroy(h); err != nil {
				errs = append(errs, err)
			}
		default:
			p.reportLocked()
			return errors.Join(errs...)
		}
	}
}

// drain destroys every handle waiting in gen and returns how many there were.
func (p *Pool) drain(gen *generation) int {
	n := 0
	for {
		select {
		case h := <-gen.ready:
			if err := p.destroy(h); err != nil {
				p.logger.Warn("closing engine", "handle", h.id, "error", err)
			}
			n++
		default:
			return n
		}
	}
}

func (p *Pool) destroy(h *Handle) error {
	if err := h.engine.Close(); err != nil {
		return fmt.Errorf("close engine %d: %w", h.id, err)
	}
	return nil
}

func (p *Pool) report() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	p.reportLocked()
}

// reportLocked requires p.mu to be held.
func (p *Pool) reportLocked() {
	available := 0
	if !p.closed {
		available = len(p.gen.ready)
	}
	metrics.SetPool(available, p.CheckedOut())
}
