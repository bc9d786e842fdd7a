//go:build tesseract

package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

type tesseractEngine struct {
	client *gosseract.Client
}

// NewTesseract builds a gosseract-backed engine and forces the underlying
// TessBaseAPI to initialize, so a bad data path or language fails here rather
// than on first use.
func NewTesseract(cfg TesseractConfig) (Engine, error) {
	c := gosseract.NewClient()
	if err := c.SetTessdataPrefix(cfg.DataPath); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set tessdata prefix %s: %w", cfg.DataPath, err)
	}
	if err := c.SetLanguage(cfg.Language); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set language %s: %w", cfg.Language, err)
	}

	e := &tesseractEngine{client: c}
	blank := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range blank.Pix {
		blank.Pix[i] = 0xff
	}
	if _, err := e.Recognize(blank, RecognizeOptions{Mode: SingleLine}); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("warm up tesseract (%s/%s): %w", cfg.DataPath, cfg.Language, err)
	}
	return e, nil
}

func (e *tesseractEngine) Recognize(img image.Image, opts RecognizeOptions) ([]string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := e.client.SetPageSegMode(tesseractPSM(opts.Mode)); err != nil {
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	// The whitelist sticks to the client, so clear it for non-numeric calls.
	whitelist := ""
	if opts.NumbersOnly {
		whitelist = Digits
	}
	if err := e.client.SetWhitelist(whitelist); err != nil {
		return nil, fmt.Errorf("set whitelist: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize text lines: %w", err)
	}
	slices.SortStableFunc(boxes, func(a, b gosseract.BoundingBox) int {
		return a.Box.Min.Y - b.Box.Min.Y
	})

	lines := make([]string, 0, len(boxes))
	for _, b := range boxes {
		if line := strings.TrimRight(b.Word, "\n"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (e *tesseractEngine) Close() error {
	return e.client.Close()
}

func tesseractPSM(m PageSegMode) gosseract.PageSegMode {
	switch m {
	case SingleBlock:
		return gosseract.PSM_SINGLE_BLOCK
	case Auto:
		return gosseract.PSM_AUTO
	case SparseText:
		return gosseract.PSM_SPARSE_TEXT
	default:
		return gosseract.PSM_SINGLE_LINE
	}
}
