package chromakey

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/impostor-maker/internal/imaging"
)

// ErrChromaColorNotFound is returned when no sampled ring inside the frame is
// both uniform and chroma-colored.
var ErrChromaColorNotFound = errors.New("chroma color not found")

// EstimateParams configures EstimateChroma.
type EstimateParams struct {
	// Expected is the HSV range the background color must fall in.
	Expected imaging.ColorRange

	// MaxDeviation is the largest averaged channel standard deviation of an
	// accepted ring.
	MaxDeviation float64

	// MaxInset is the deepest ring sampled, in pixels from the inner
	// rectangle's boundary.
	MaxInset int
}

// Estimate is the measured background color.
type Estimate struct {
	// Inset is the depth of the accepted ring.
	Inset int `json:"inset"`

	// RGB is the ring's mean color.
	RGB imaging.ColorTriple `json:"rgb"`

	// HSV is RGB converted with imaging.HSVOf.
	HSV imaging.ColorTriple `json:"hsv"`

	// Sample holds the full ring statistics.
	Sample imaging.ColorSample `json:"sample"`
}

// Band returns the HSV range HSV ± tol, clamped to the channel limits.
func (e *Estimate) Band(tol imaging.ColorTriple) imaging.ColorRange {
	return imaging.Around(e.HSV, tol)
}

// EstimateChroma finds the background color just inside the frame.
//
// For each inset i from 0 to MaxInset it samples the 1-pixel ring between
// inner.Inset(i) and inner.Inset(i+1). The first ring whose averaged
// standard deviation is below MaxDeviation and whose mean color is inside
// Expected is returned.
//
// Returns ErrChromaColorNotFound if the rings run out or become degenerate
// before one qualifies.
func EstimateChroma(img image.Image, inner imaging.Rect, p EstimateParams) (*Estimate, error) {
	if err := p.Expected.Validate(); err != nil {
		return nil, err
	}

	closest := -1.0
	for i := 0; i <= p.MaxInset; i++ {
		ringOuter, err := inner.Inset(i)
		if err != nil {
			break
		}
		ringInner, err := ringOuter.Inset(1)
		if err != nil {
			break
		}

		sample, err := imaging.SampleFrame(img, ringOuter, ringInner)
		if err != nil {
			return nil, err
		}

		dev := sample.AverageStdDev()
		if closest < 0 || dev < closest {
			closest = dev
		}
		if dev >= p.MaxDeviation {
			continue
		}

		mean := sample.Mean()
		hsv := imaging.HSVOf(mean)
		if !p.Expected.Contains(hsv) {
			continue
		}

		return &Estimate{Inset: i, RGB: mean, HSV: hsv, Sample: sample}, nil
	}

	if closest < 0 {
		return nil, fmt.Errorf("%w: region %s too small to sample", ErrChromaColorNotFound, inner)
	}
	return nil, fmt.Errorf("%w: no ring within %d px of %s (lowest stddev %.2f)",
		ErrChromaColorNotFound, p.MaxInset, inner, closest)
}
