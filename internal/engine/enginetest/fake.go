// Package enginetest provides in-memory engine.Engine implementations for tests.
package enginetest

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/kamera/internal/engine"
)

// Call records one Recognize invocation.
type Call struct {
	Bounds image.Rectangle
	Opts   engine.RecognizeOptions
}

// Fake is an engine that returns scripted lines. It flags concurrent use,
// which the pool must never allow.
type Fake struct {
	// Lines returns the recognized lines for an image. Nil returns no lines.
	Lines func(img image.Image, opts engine.RecognizeOptions) ([]string, error)

	mu     sync.Mutex
	calls  []Call
	closed bool
	busy   atomic.Bool
	shared atomic.Bool
}

// Recognize implements engine.Engine.
func (f *Fake) Recognize(img image.Image, opts engine.RecognizeOptions) ([]string, error) {
	if !f.busy.CompareAndSwap(false, true) {
		f.shared.Store(true)
	}
	defer f.busy.Store(false)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errors.New("enginetest: recognize on closed engine")
	}
	f.calls = append(f.calls, Call{Bounds: img.Bounds(), Opts: opts})
	f.mu.Unlock()

	if f.Lines == nil {
		return nil, nil
	}
	return f.Lines(img, opts)
}

// Close implements engine.Engine.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("enginetest: engine closed twice")
	}
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Calls returns the recorded Recognize calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// SharedUse reports whether two goroutines ever ran Recognize at once.
func (f *Fake) SharedUse() bool { return f.shared.Load() }

// Factory builds Fake engines and keeps every engine it built.
type Factory struct {
	// Lines is copied into every engine built.
	Lines func(img image.Image, opts engine.RecognizeOptions) ([]string, error)
	// FailAt makes the n-th construction (1-based) fail. Zero never fails.
	FailAt int

	mu    sync.Mutex
	built []*Fake
	count int
}

// ErrConstruct is returned by a Factory's failing construction.
var ErrConstruct = errors.New("enginetest: construction failed")

// New implements engine.Factory.
func (f *Factory) New() (engine.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	if f.FailAt > 0 && f.count == f.FailAt {
		return nil, ErrConstruct
	}
	e := &Fake{Lines: f.Lines}
	f.built = append(f.built, e)
	return e, nil
}

// Built returns every engine constructed so far, in order.
func (f *Factory) Built() []*Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Fake(nil), f.built...)
}

// Attempts returns how many constructions were attempted.
func (f *Factory) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// StaticLines returns a Lines func that always yields lines.
func StaticLines(lines ...string) func(image.Image, engine.RecognizeOptions) ([]string, error) {
	return func(image.Image, engine.RecognizeOptions) ([]string, error) {
		return append([]string(nil), lines...), nil
	}
}
