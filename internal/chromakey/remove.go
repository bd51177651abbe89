package chromakey

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	imgutil "github.com/ironsheep/impostor-maker/internal/imaging"
)

// Params configures RemoveBackground.
type Params struct {
	// Chroma is the HSV range treated as background.
	Chroma imgutil.ColorRange

	// Tinge is the looser HSV range corrected on the foreground outline.
	Tinge imgutil.ColorRange

	// MaxCleanDist is the deepest border fringe cleared by CleanOuterEdge.
	MaxCleanDist int

	// EdgeBlurRadius is the blur sigma used by EdgeBand.
	EdgeBlurRadius float64
}

// Validate checks both color ranges and the numeric limits.
func (p Params) Validate() error {
	if err := p.Chroma.Validate(); err != nil {
		return fmt.Errorf("chroma range: %w", err)
	}
	if err := p.Tinge.Validate(); err != nil {
		return fmt.Errorf("tinge range: %w", err)
	}
	if p.MaxCleanDist < 0 {
		return fmt.Errorf("max clean distance must not be negative, got %d", p.MaxCleanDist)
	}
	if p.EdgeBlurRadius < 0 {
		return fmt.Errorf("edge blur radius must not be negative, got %g", p.EdgeBlurRadius)
	}
	return nil
}

// Result is the output of RemoveBackground.
type Result struct {
	// Image is the subject on a transparent background. Background pixels
	// are (0,0,0,0); foreground pixels keep their color with alpha 255,
	// except corrected outline pixels which have alpha 128.
	Image *image.NRGBA

	// Mask is the cleaned segmentation mask (0 background, 255 foreground).
	Mask *image.Gray

	// Band is the outline ring passed to CorrectTinge.
	Band *image.Gray

	// Bounds is the bounding box of all non-transparent pixels. Empty when
	// no foreground remains.
	Bounds image.Rectangle

	// Corrected is the number of outline pixels changed by CorrectTinge.
	Corrected int
}

// RemoveBackground makes the chroma-colored background of img transparent.
//
// The steps are BuildMask, CleanOuterEdge, masking into a fresh NRGBA
// buffer, EdgeBand and CorrectTinge. img itself is never modified.
func RemoveBackground(img image.Image, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", imgutil.ErrDegenerateRectangle)
	}

	// The working copy is anchored at (0,0) so mask, band and output share
	// bounds.
	out := imaging.Clone(img)
	mask := BuildMask(out, p.Chroma)
	CleanOuterEdge(mask, p.MaxCleanDist)
	applyMask(out, mask)

	band := EdgeBand(mask, p.EdgeBlurRadius)
	corrected := CorrectTinge(out, band, p.Tinge)

	bounds, _ := imgutil.OpaqueBounds(out)

	return &Result{
		Image:     out,
		Mask:      mask,
		Band:      band,
		Bounds:    bounds,
		Corrected: corrected,
	}, nil
}

// applyMask clears background pixels to (0,0,0,0) and makes foreground
// pixels fully opaque.
func applyMask(img *image.NRGBA, mask *image.Gray) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			p := img.Pix[i : i+4 : i+4]
			if mask.GrayAt(x, y).Y == Background {
				p[0], p[1], p[2], p[3] = 0, 0, 0, 0
				continue
			}
			p[3] = 255
		}
	}
}
