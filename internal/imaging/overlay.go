package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
)

// Outline is a rectangle to draw on a debug overlay.
type Outline struct {
	Rect  Rect
	Color color.NRGBA
}

// DrawOutlines returns a copy of img with a 1-pixel outline drawn along the
// inside edge of every rectangle. Portions of an outline outside the image
// are clipped. It is used to render frame locator results for inspection.
func DrawOutlines(img image.Image, outlines ...Outline) *image.NRGBA {
	bounds := img.Bounds()
	result := image.NewNRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, o := range outlines {
		r := o.Rect
		if r.Empty() {
			continue
		}
		for x := r.Left; x < r.Right; x++ {
			setClipped(result, x, r.Top, o.Color)
			setClipped(result, x, r.Bottom-1, o.Color)
		}
		for y := r.Top; y < r.Bottom; y++ {
			setClipped(result, r.Left, y, o.Color)
			setClipped(result, r.Right-1, y, o.Color)
		}
	}
	return result
}

func setClipped(img *image.NRGBA, x, y int, c color.NRGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}

// ParseHexColor parses a hex color string in any of the forms "#RGB",
// "#RGBA", "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional.
func ParseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 3, 4:
		val, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return color.NRGBA{}, err
		}
		if len(hex) == 4 {
			a = uint8(val&0xF) * 0x11
			val >>= 4
		}
		r = uint8(val>>8&0xF) * 0x11
		g = uint8(val>>4&0xF) * 0x11
		b = uint8(val&0xF) * 0x11
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
