//go:build !tesseract

package engine

// NewTesseract reports ErrNoBackend in builds without the tesseract tag.
func NewTesseract(TesseractConfig) (Engine, error) {
	return nil, ErrNoBackend
}
