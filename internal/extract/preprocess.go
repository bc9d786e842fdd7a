package extract

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Preprocess describes the image adjustments applied before recognition,
// in field order. The zero value leaves the image untouched.
type Preprocess struct {
	// Region crops the image. It is clipped to the image bounds; the zero
	// rectangle keeps the whole image.
	Region image.Rectangle `json:"region" yaml:"region"`
	// Scale multiplies both dimensions. 0 and 1 keep the size.
	Scale float64 `json:"scale" yaml:"scale"`
	// Grayscale drops colour information.
	Grayscale bool `json:"grayscale" yaml:"grayscale"`
	// Contrast in percent, -100 to 100.
	Contrast float64 `json:"contrast" yaml:"contrast"`
	// Brightness in percent, -100 to 100.
	Brightness float64 `json:"brightness" yaml:"brightness"`
	// Gamma correction. 0 and 1 are no-ops.
	Gamma float64 `json:"gamma" yaml:"gamma"`
	// Invert swaps light text on dark backgrounds for dark on light.
	Invert bool `json:"invert" yaml:"invert"`
	// Threshold binarizes on luminance when between 1 and 255.
	Threshold uint8 `json:"threshold" yaml:"threshold"`
}

// IsZero reports whether p would leave images unchanged.
func (p Preprocess) IsZero() bool {
	return p == Preprocess{}
}

// Apply runs the adjustments on img. img itself is never modified.
func (p Preprocess) Apply(img image.Image) image.Image {
	if p.IsZero() {
		return img
	}

	out := img
	if !p.Region.Empty() {
		out = imaging.Crop(out, p.Region)
	}
	if p.Scale > 0 && p.Scale != 1 {
		b := out.Bounds()
		w := max(1, int(float64(b.Dx())*p.Scale))
		h := max(1, int(float64(b.Dy())*p.Scale))
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}
	if p.Grayscale {
		out = imaging.Grayscale(out)
	}
	if p.Contrast != 0 {
		out = imaging.AdjustContrast(out, p.Contrast)
	}
	if p.Brightness != 0 {
		out = imaging.AdjustBrightness(out, p.Brightness)
	}
	if p.Gamma > 0 && p.Gamma != 1 {
		out = imaging.AdjustGamma(out, p.Gamma)
	}
	if p.Invert {
		out = imaging.Invert(out)
	}
	if p.Threshold > 0 {
		out = binarize(out, p.Threshold)
	}
	return out
}

func binarize(img image.Image, level uint8) image.Image {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		// Rec. 709 luma, as used for grayscale conversion
		y := 0.2125*float64(c.R) + 0.7154*float64(c.G) + 0.0721*float64(c.B)
		v := uint8(0)
		if y >= float64(level) {
			v = 0xff
		}
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})
}
