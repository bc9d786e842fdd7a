package extract_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"testing"
	"time"

	"github.com/MeKo-Tech/kamera/internal/engine"
	"github.com/MeKo-Tech/kamera/internal/engine/enginetest"
	"github.com/MeKo-Tech/kamera/internal/extract"
	"github.com/MeKo-Tech/kamera/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T, capacity int, f *enginetest.Factory) *engine.Pool {
	t.Helper()
	p, err := engine.NewPool(capacity, f.New)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestExtract_JoinsLines(t *testing.T) {
	f := &enginetest.Factory{Lines: enginetest.StaticLines("Gladiator's", "Nostalgia")}
	x := extract.New(newPool(t, 1, f))
	img := testutil.TextImage("Gladiator's", "Nostalgia")

	text, err := x.Extract(context.Background(), img, extract.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Gladiator'sNostalgia", text)

	text, err = x.Extract(context.Background(), img, extract.Options{Separator: " "})
	require.NoError(t, err)
	assert.Equal(t, "Gladiator's Nostalgia", text)
}

func TestExtract_PassesRecognizeOptions(t *testing.T) {
	f := &enginetest.Factory{Lines: enginetest.StaticLines("20")}
	x := extract.New(newPool(t, 1, f))

	_, err := x.Extract(context.Background(), testutil.TextImage("20"), extract.Options{
		Mode:        engine.SingleBlock,
		NumbersOnly: true,
	})
	require.NoError(t, err)

	calls := f.Built()[0].Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, engine.RecognizeOptions{Mode: engine.SingleBlock, NumbersOnly: true}, calls[0].Opts)
}

func TestExtract_AppliesPreprocess(t *testing.T) {
	f := &enginetest.Factory{}
	x := extract.New(newPool(t, 1, f))
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))

	_, err := x.Extract(context.Background(), img, extract.Options{
		Preprocess: extract.Preprocess{Scale: 2},
	})
	require.NoError(t, err)

	calls := f.Built()[0].Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 80, calls[0].Bounds.Dx())
	assert.Equal(t, 20, calls[0].Bounds.Dy())
}

func TestExtract_ReleasesOnRecognizeError(t *testing.T) {
	boom := errors.New("tesseract exploded")
	f := &enginetest.Factory{Lines: func(image.Image, engine.RecognizeOptions) ([]string, error) {
		return nil, boom
	}}
	p := newPool(t, 2, f)
	x := extract.New(p)

	_, err := x.Extract(context.Background(), testutil.TextImage("x"), extract.Options{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, p.Available())
	assert.Zero(t, p.CheckedOut())
}

func TestExtract_NilImage(t *testing.T) {
	p := newPool(t, 1, &enginetest.Factory{})
	x := extract.New(p)

	_, err := x.Extract(context.Background(), nil, extract.Options{})
	require.ErrorIs(t, err, extract.ErrNilImage)
	assert.Equal(t, 1, p.Available())
}

func TestExtract_WaitsForEngine(t *testing.T) {
	p := newPool(t, 1, &enginetest.Factory{Lines: enginetest.StaticLines("ok")})
	x := extract.New(p)

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = x.Extract(ctx, testutil.TextImage("x"), extract.Options{})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, p.Release(h))
	text, err := x.Extract(context.Background(), testutil.TextImage("x"), extract.Options{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestExtract_AcquireTimeout(t *testing.T) {
	p := newPool(t, 1, &enginetest.Factory{})
	x := extract.New(p, extract.WithAcquireTimeout(10*time.Millisecond))

	h, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = p.Release(h) }()

	_, err = x.Extract(context.Background(), testutil.TextImage("x"), extract.Options{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// widthLines reports the image width, which lets tests tell regions apart.
func widthLines(img image.Image, _ engine.RecognizeOptions) ([]string, error) {
	time.Sleep(time.Millisecond)
	return []string{strconv.Itoa(img.Bounds().Dx())}, nil
}

func TestExtractAll_KeepsInputOrder(t *testing.T) {
	f := &enginetest.Factory{Lines: widthLines}
	x := extract.New(newPool(t, 3, f))

	imgs := make([]image.Image, 20)
	want := make([]string, 20)
	for i := range imgs {
		imgs[i] = image.NewGray(image.Rect(0, 0, i+1, 4))
		want[i] = strconv.Itoa(i + 1)
	}

	got, err := x.ExtractAll(context.Background(), imgs, extract.Options{})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	total := 0
	for _, e := range f.Built() {
		assert.False(t, e.SharedUse())
		total += len(e.Calls())
	}
	assert.Equal(t, 20, total)
}

func TestExtractAll_ReturnsFirstError(t *testing.T) {
	f := &enginetest.Factory{Lines: func(img image.Image, opts engine.RecognizeOptions) ([]string, error) {
		if img.Bounds().Dx() == 5 {
			return nil, fmt.Errorf("unreadable")
		}
		return widthLines(img, opts)
	}}
	p := newPool(t, 2, f)
	x := extract.New(p)

	imgs := make([]image.Image, 8)
	for i := range imgs {
		imgs[i] = image.NewGray(image.Rect(0, 0, i+1, 4))
	}

	got, err := x.ExtractAll(context.Background(), imgs, extract.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region 4")
	assert.Nil(t, got)
	assert.Equal(t, 2, p.Available())
}

func TestExtractAll_Empty(t *testing.T) {
	x := extract.New(newPool(t, 1, &enginetest.Factory{}))

	got, err := x.ExtractAll(context.Background(), nil, extract.Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
