package chromakey

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/impostor-maker/internal/imaging"
)

// Mask values.
const (
	Background uint8 = 0
	Foreground uint8 = 255
)

// BuildMask classifies every pixel of img by its HSV color.
//
// Pixels inside chroma are Background, all others Foreground. The mask has
// the same bounds as img. Rows are processed in parallel; each row writes
// only its own span of the mask.
func BuildMask(img image.Image, chroma imaging.ColorRange) *image.Gray {
	b := img.Bounds()
	mask := image.NewGray(b)

	parallel.Line(b.Dy(), func(start, end int) {
		for y := b.Min.Y + start; y < b.Min.Y+end; y++ {
			row := mask.Pix[(y-b.Min.Y)*mask.Stride:]
			for x := b.Min.X; x < b.Max.X; x++ {
				c := imaging.NRGBAAt(img, x, y)
				v := Foreground
				if chroma.Contains(imaging.RGBToHSV(c.R, c.G, c.B)) {
					v = Background
				}
				row[x-b.Min.X] = v
			}
		}
	})
	return mask
}

// CleanOuterEdge zeroes foreground fringe touching the mask border.
//
// From each of the four borders every column (or row) is scanned inward for
// at most maxDist pixels. Nonzero pixels are cleared until the first zero
// pixel, which ends the scan of that column, so holes and outlines further
// inside are left alone. Scans run over the mask bounds, top and bottom
// first, then left and right. Applying it twice gives the same mask as
// applying it once.
func CleanOuterEdge(mask *image.Gray, maxDist int) {
	if maxDist <= 0 {
		return
	}
	b := mask.Bounds()

	depthY := min(maxDist, b.Dy())
	depthX := min(maxDist, b.Dx())

	for x := b.Min.X; x < b.Max.X; x++ {
		for y := b.Min.Y; y < b.Min.Y+depthY; y++ {
			if !clearIfSet(mask, x, y) {
				break
			}
		}
		for y := b.Max.Y - 1; y >= b.Max.Y-depthY; y-- {
			if !clearIfSet(mask, x, y) {
				break
			}
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Min.X+depthX; x++ {
			if !clearIfSet(mask, x, y) {
				break
			}
		}
		for x := b.Max.X - 1; x >= b.Max.X-depthX; x-- {
			if !clearIfSet(mask, x, y) {
				break
			}
		}
	}
}

// clearIfSet zeroes a nonzero mask pixel and reports whether it was nonzero.
func clearIfSet(mask *image.Gray, x, y int) bool {
	i := mask.PixOffset(x, y)
	if mask.Pix[i] == 0 {
		return false
	}
	mask.Pix[i] = 0
	return true
}
