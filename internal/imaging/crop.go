package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts a rectangular region from an image.
//
// The result is a new *image.NRGBA with its origin at (0,0); img is not
// modified. Returns ErrDegenerateRectangle if r is empty or extends outside
// the image bounds.
func Crop(img image.Image, r Rect) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if r.Empty() {
		return nil, fmt.Errorf("%w: crop region %s", ErrDegenerateRectangle, r)
	}
	if r.Left < bounds.Min.X || r.Top < bounds.Min.Y || r.Right > bounds.Max.X || r.Bottom > bounds.Max.Y {
		return nil, fmt.Errorf("%w: crop region %s outside image bounds (%d,%d)-(%d,%d)",
			ErrDegenerateRectangle, r, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	return imaging.Crop(img, r.Image()), nil
}

// Resize scales img to width x height with a Lanczos filter. If the image
// already has the requested size a copy is returned.
func Resize(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid resize target %dx%d", width, height)
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// OpaqueBounds returns the bounding box of all pixels with nonzero alpha.
//
// The second return value is false for a fully transparent image.
func OpaqueBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	found := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			found = true
			if x < minX {
				minX = x
			}
			if x+1 > maxX {
				maxX = x + 1
			}
			if y < minY {
				minY = y
			}
			if y+1 > maxY {
				maxY = y + 1
			}
		}
	}

	if !found {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}
