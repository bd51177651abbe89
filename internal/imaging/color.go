package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTriple is a three-channel color value.
//
// The color space depends on where the triple is used:
//   - RGB: each channel 0-255
//   - HSV: H in degrees 0-360, S and V scaled to 0-255
//
// Channel values are float64 so that region means can be represented without
// rounding.
type ColorTriple [3]float64

// RGB builds an RGB triple from 8-bit components.
func RGB(r, g, b uint8) ColorTriple {
	return ColorTriple{float64(r), float64(g), float64(b)}
}

// String formats the triple with one decimal per channel.
func (c ColorTriple) String() string {
	return fmt.Sprintf("(%.1f,%.1f,%.1f)", c[0], c[1], c[2])
}

// ColorRange is an inclusive per-channel range of colors.
//
// Low and High must be expressed in the same color space as the values the
// range is tested against: HSV for chroma and tinge tests, RGB for the frame.
type ColorRange struct {
	Low  ColorTriple `json:"low"`
	High ColorTriple `json:"high"`
}

// NewColorRange returns the range [low, high].
//
// Returns ErrInvalidColorRange if low exceeds high on any channel.
func NewColorRange(low, high ColorTriple) (ColorRange, error) {
	for i := range low {
		if low[i] > high[i] {
			return ColorRange{}, fmt.Errorf("%w: channel %d low %.1f > high %.1f",
				ErrInvalidColorRange, i, low[i], high[i])
		}
	}
	return ColorRange{Low: low, High: high}, nil
}

// MustColorRange is like NewColorRange but panics on an invalid range.
// It is intended for package-level defaults built from constants.
func MustColorRange(low, high ColorTriple) ColorRange {
	r, err := NewColorRange(low, high)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether c lies inside the range. Bounds are inclusive.
func (r ColorRange) Contains(c ColorTriple) bool {
	for i := range c {
		if c[i] < r.Low[i] || c[i] > r.High[i] {
			return false
		}
	}
	return true
}

// Validate checks the low <= high invariant of a range built literally.
func (r ColorRange) Validate() error {
	_, err := NewColorRange(r.Low, r.High)
	return err
}

// HSV channel limits used when clamping derived ranges.
var hsvLimits = ColorTriple{360, 255, 255}

// Around returns the range center ± tol, clamped to the HSV channel limits.
func Around(center, tol ColorTriple) ColorRange {
	var r ColorRange
	for i := range center {
		r.Low[i] = clampFloat(center[i]-tol[i], 0, hsvLimits[i])
		r.High[i] = clampFloat(center[i]+tol[i], 0, hsvLimits[i])
	}
	return r
}

// RGBToHSV converts 8-bit RGB components to HSV.
//
// The conversion is the standard max/min formula: V is the largest
// component, S is (max-min)/max, and H depends on which component is the
// maximum. When max == min the hue and saturation are both 0.
//
// Returns a ColorTriple with:
//   - H: 0-360 (degrees on the color wheel; red=0, green=120, blue=240)
//   - S: 0-255
//   - V: 0-255
func RGBToHSV(r, g, b uint8) ColorTriple {
	return HSVOf(RGB(r, g, b))
}

// HSVOf converts an RGB triple (0-255 per channel, possibly fractional) to
// HSV using the same scaling as RGBToHSV.
func HSVOf(rgb ColorTriple) ColorTriple {
	c := colorful.Color{R: rgb[0] / 255.0, G: rgb[1] / 255.0, B: rgb[2] / 255.0}
	h, s, v := c.Hsv()
	if h >= 360 {
		h -= 360
	}
	return ColorTriple{h, s * 255, v * 255}
}

// NRGBAAt returns the non-premultiplied color of img at (x, y). *image.NRGBA
// sources are read directly; other image types go through color.NRGBAModel.
func NRGBAAt(img image.Image, x, y int) color.NRGBA {
	switch src := img.(type) {
	case *image.NRGBA:
		return src.NRGBAAt(x, y)
	default:
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
