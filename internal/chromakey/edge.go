package chromakey

import (
	"image"
	"sync/atomic"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/impostor-maker/internal/imaging"
)

// EdgeBand returns the anti-aliased boundary ring of a segmentation mask.
//
// The mask is Gaussian blurred with sigma = radius, the blurred values are
// kept only where the original mask is nonzero, and values above 254 (the
// fully opaque interior) are zeroed. What remains is a thin ring of nonzero
// values just inside every foreground boundary.
func EdgeBand(mask *image.Gray, radius float64) *image.Gray {
	b := mask.Bounds()
	band := image.NewGray(b)

	// imaging.Blur returns an NRGBA image anchored at (0,0); gray input
	// expands to R=G=B.
	blurred := imaging.Blur(mask, radius)

	for y := 0; y < b.Dy(); y++ {
		src := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		dst := band.Pix[y*band.Stride : y*band.Stride+b.Dx()]
		blur := blurred.Pix[y*blurred.Stride:]
		for x := range src {
			if src[x] == 0 {
				continue
			}
			v := blur[x*4]
			if v > 254 {
				v = 0
			}
			dst[x] = v
		}
	}
	return band
}

// CorrectTinge desaturates background-colored spill on the subject outline.
//
// For each pixel where band is nonzero and img's alpha is nonzero, the color
// is converted to HSV. If it lies in tinge, green is lowered to
// min(G, (R+B)/2) and alpha is set to 128. No other pixel is touched.
//
// img is modified in place and must be exclusively owned by the caller;
// band must share its bounds. Returns the number of corrected pixels.
func CorrectTinge(img *image.NRGBA, band *image.Gray, tinge imgutil.ColorRange) int {
	b := img.Bounds().Intersect(band.Bounds())
	var corrected atomic.Int64

	parallel.Line(b.Dy(), func(start, end int) {
		n := 0
		for y := b.Min.Y + start; y < b.Min.Y+end; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if band.GrayAt(x, y).Y == 0 {
					continue
				}
				i := img.PixOffset(x, y)
				p := img.Pix[i : i+4 : i+4]
				if p[3] == 0 {
					continue
				}
				if !tinge.Contains(imgutil.RGBToHSV(p[0], p[1], p[2])) {
					continue
				}
				if g := uint8((int(p[0]) + int(p[2])) / 2); g < p[1] {
					p[1] = g
				}
				p[3] = 128
				n++
			}
		}
		corrected.Add(int64(n))
	})
	return int(corrected.Load())
}
