// Package extract turns image regions into text using engines borrowed from
// the engine pool.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/MeKo-Tech/kamera/internal/metrics"
	"github.com/sourcegraph/conc/pool"
)

// ErrNilImage is returned when no image is passed in.
var ErrNilImage = errors.New("extract: nil image")

// EnginePool lends out engine handles. *engine.Pool implements it.
type EnginePool interface {
	Acquire(ctx context.Context) (*engine.Handle, error)
	Release(h *engine.Handle) error
	Capacity() int
}

// Options controls one extraction.
type Options struct {
	Mode        engine.PageSegMode
	NumbersOnly bool
	// Separator joins the recognized lines. The default joins them with
	// nothing in between.
	Separator  string
	Preprocess Preprocess
}

// Extractor runs text recognition on images.
type Extractor struct {
	pool           EnginePool
	acquireTimeout time.Duration
	logger         *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithAcquireTimeout bounds the wait for a free engine. Zero waits as long
// as the caller's context allows.
func WithAcquireTimeout(d time.Duration) Option {
	return func(x *Extractor) { x.acquireTimeout = d }
}

// New creates an Extractor drawing engines from p.
func New(p EnginePool, opts ...Option) *Extractor {
	x := &Extractor{pool: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract recognizes the text in img. The engine is returned to the pool on
// every path, including recognition failures.
func (x *Extractor) Extract(ctx context.Context, img image.Image, opts Options) (text string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveExtract(opts.Mode.String(), time.Since(start), err) }()

	if img == nil {
		return "", ErrNilImage
	}
	img = opts.Preprocess.Apply(img)

	h, err := x.acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire engine: %w", err)
	}
	defer func() {
		if rerr := x.pool.Release(h); rerr != nil {
			x.logger.Warn("failed to release engine", "engine", h.ID(), "error", rerr)
		}
	}()

	lines, err := h.Recognize(img, engine.RecognizeOptions{Mode: opts.Mode, NumbersOnly: opts.NumbersOnly})
	if err != nil {
		return "", fmt.Errorf("recognize with engine %d: %w", h.ID(), err)
	}
	return strings.Join(lines, opts.Separator), nil
}

func (x *Extractor) acquire(ctx context.Context) (*engine.Handle, error) {
	if x.acquireTimeout <= 0 {
		return x.pool.Acquire(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, x.acquireTimeout)
	defer cancel()
	return x.pool.Acquire(ctx)
}

// ExtractAll recognizes every image concurrently, never running more
// extractions at once than the pool holds engines. Results are in input
// order. The first failure cancels the remaining work and is returned.
func (x *Extractor) ExtractAll(ctx context.Context, imgs []image.Image, opts Options) ([]string, error) {
	out := make([]string, len(imgs))
	if len(imgs) == 0 {
		return out, nil
	}

	p := pool.New().
		WithMaxGoroutines(max(1, x.pool.Capacity())).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for i, img := range imgs {
		p.Go(func(ctx context.Context) error {
			text, err := x.Extract(ctx, img, opts)
			if err != nil {
				return fmt.Errorf("region %d: %w", i, err)
			}
			out[i] = text
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
