// Package engine manages a fixed-size pool of OCR engine handles.
//
// OCR engines are expensive to construct, so a Pool builds a fixed number up
// front and hands them out one caller at a time. Acquire blocks until a handle
// is free; every successful Acquire must be paired with exactly one Release.
//
// The Tesseract backend links libtesseract through cgo and is only compiled
// with the build tag `tesseract`:
//
//	go build -tags=tesseract ./...
package engine

import (
	"errors"
	"image"
)

const (
	// DefaultCapacity is the number of engines a pool keeps.
	DefaultCapacity = 8
	// DefaultDataPath is where trained language data is read from.
	DefaultDataPath = "./tessdata"
	// DefaultLanguage is the trained recognition profile.
	DefaultLanguage = "genshin_fast_09_04_21"
	// Digits is the character whitelist applied to numeric regions.
	Digits = "0123456789"
)

var (
	// ErrInit wraps any failure to construct the pool's engines. The pool
	// never runs short-handed, so callers should treat it as fatal.
	ErrInit = errors.New("engine: initialization failed")
	// ErrClosed is returned by Acquire and Restart after Close.
	ErrClosed = errors.New("engine: pool closed")
	// ErrNotCheckedOut is returned when releasing a handle that the pool did
	// not hand out, or releasing it twice.
	ErrNotCheckedOut = errors.New("engine: handle not checked out")
	// ErrNoBackend is returned by NewTesseract when built without the tesseract tag.
	ErrNoBackend = errors.New("engine: no OCR backend linked; build with -tags=tesseract")
)

// PageSegMode tells the engine what layout to expect in the image.
type PageSegMode int

const (
	// SingleLine treats the image as one line of text.
	SingleLine PageSegMode = iota
	// SingleBlock treats the image as a uniform block of text.
	SingleBlock
	// Auto lets the engine segment the page itself.
	Auto
	// SparseText finds as much text as possible in no particular order.
	SparseText
)

func (m PageSegMode) String() string {
	switch m {
	case SingleLine:
		return "single_line"
	case SingleBlock:
		return "single_block"
	case Auto:
		return "auto"
	case SparseText:
		return "sparse_text"
	default:
		return "unknown"
	}
}

// ParsePageSegMode parses the names produced by PageSegMode.String.
func ParsePageSegMode(s string) (PageSegMode, error) {
	for _, m := range []PageSegMode{SingleLine, SingleBlock, Auto, SparseText} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, errors.New("engine: unknown page segmentation mode " + s)
}

// RecognizeOptions controls a single recognition call.
type RecognizeOptions struct {
	Mode PageSegMode
	// NumbersOnly restricts recognition to Digits for this call only.
	NumbersOnly bool
}

// Engine is one OCR engine instance. An Engine is used by one goroutine at a
// time; the Pool guarantees that.
type Engine interface {
	// Recognize returns the recognized text lines of img, top to bottom.
	Recognize(img image.Image, opts RecognizeOptions) ([]string, error)
	Close() error
}

// Factory constructs a new Engine.
type Factory func() (Engine, error)

// TesseractConfig selects the trained data used by Tesseract engines.
type TesseractConfig struct {
	DataPath string
	Language string
}

// DefaultTesseractConfig returns the default data path and language.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{DataPath: DefaultDataPath, Language: DefaultLanguage}
}

// TesseractFactory returns a Factory building Tesseract engines with cfg.
func TesseractFactory(cfg TesseractConfig) Factory {
	return func() (Engine, error) { return NewTesseract(cfg) }
}
