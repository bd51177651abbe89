package imaging

import (
	"fmt"
	"image"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// ChannelStat summarises one color channel over a pixel region.
//
// StdDev is the population standard deviation. An empty region (Count == 0)
// has Mean and StdDev of 0.
type ChannelStat struct {
	Count  uint64  `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// ColorSample holds one ChannelStat per color channel (R, G, B).
//
// A sample is a plain value produced by SampleRectangle or by combining other
// samples; it carries no reference to the image it came from.
type ColorSample [3]ChannelStat

// Combine merges the statistics of two disjoint samples of the same channel
// using the pooled variance formula:
//
//	n    = na + nb
//	mean = (na*ua + nb*ub) / n
//	var  = (na*sa² + nb*sb²) / n + (na*nb / n²) * (ua - ub)²
//
// The operation is commutative and associative over disjoint regions, and an
// empty sample is its identity element.
func Combine(a, b ChannelStat) ChannelStat {
	n := a.Count + b.Count
	if n == 0 {
		return ChannelStat{}
	}
	if a.Count == 0 {
		return b
	}
	if b.Count == 0 {
		return a
	}

	na, nb, nf := float64(a.Count), float64(b.Count), float64(n)
	mean := (na*a.Mean + nb*b.Mean) / nf
	d := a.Mean - b.Mean
	variance := (na*a.StdDev*a.StdDev+nb*b.StdDev*b.StdDev)/nf + (na*nb/(nf*nf))*d*d
	if variance < 0 {
		variance = 0
	}

	return ChannelStat{Count: n, Mean: mean, StdDev: math.Sqrt(variance)}
}

// CombineSamples folds any number of disjoint samples into one, channel by
// channel. With no arguments it returns the empty sample.
func CombineSamples(samples ...ColorSample) ColorSample {
	var out ColorSample
	for _, s := range samples {
		for ch := range out {
			out[ch] = Combine(out[ch], s[ch])
		}
	}
	return out
}

// Count returns the number of pixels in the sample.
func (s ColorSample) Count() uint64 {
	return s[0].Count
}

// Mean returns the per-channel mean as a color.
func (s ColorSample) Mean() ColorTriple {
	return ColorTriple{s[0].Mean, s[1].Mean, s[2].Mean}
}

// AverageStdDev returns the standard deviation averaged equally across the
// three channels. This is the uniformity measure: 0 means a solid color.
func (s ColorSample) AverageStdDev() float64 {
	return (s[0].StdDev + s[1].StdDev + s[2].StdDev) / 3
}

// SampleRectangle computes count, mean and population standard deviation of
// the R, G and B channels over r.
//
// No pixels are copied out of img beyond the per-channel value buffers used
// for the statistics. Alpha is ignored.
//
// Returns ErrDegenerateRectangle if r is empty or not fully inside the image
// bounds.
func SampleRectangle(img image.Image, r Rect) (ColorSample, error) {
	bounds := img.Bounds()
	if r.Empty() {
		return ColorSample{}, fmt.Errorf("%w: sample %s", ErrDegenerateRectangle, r)
	}
	if r.Left < bounds.Min.X || r.Top < bounds.Min.Y || r.Right > bounds.Max.X || r.Bottom > bounds.Max.Y {
		return ColorSample{}, fmt.Errorf("%w: sample %s outside image bounds (%d,%d)-(%d,%d)",
			ErrDegenerateRectangle, r, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	n := r.Area()
	channels := channelPool.Get().(*[3][]float64)
	defer channelPool.Put(channels)
	for ch := range channels {
		if cap(channels[ch]) < n {
			channels[ch] = make([]float64, 0, n)
		}
		channels[ch] = channels[ch][:0]
	}
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			c := NRGBAAt(img, x, y)
			channels[0] = append(channels[0], float64(c.R))
			channels[1] = append(channels[1], float64(c.G))
			channels[2] = append(channels[2], float64(c.B))
		}
	}

	var s ColorSample
	for ch, values := range *channels {
		mean, variance := stat.PopMeanVariance(values, nil)
		if variance < 0 {
			variance = 0
		}
		s[ch] = ChannelStat{Count: uint64(n), Mean: mean, StdDev: math.Sqrt(variance)}
	}
	return s, nil
}

// channelPool holds per-channel value buffers reused across SampleRectangle
// calls; the frame sweep samples thousands of bands per image.
var channelPool = sync.Pool{
	New: func() any { return new([3][]float64) },
}

// SampleFrame measures the uniformity of the ring between outer and inner.
//
// The ring is split with FrameBands, each band is sampled independently and
// the results are merged with CombineSamples, so every pixel is read once.
func SampleFrame(img image.Image, outer, inner Rect) (ColorSample, error) {
	bands, err := FrameBands(outer, inner)
	if err != nil {
		return ColorSample{}, err
	}

	samples := make([]ColorSample, 0, len(bands))
	for _, b := range bands {
		s, err := SampleRectangle(img, b)
		if err != nil {
			return ColorSample{}, err
		}
		samples = append(samples, s)
	}
	return CombineSamples(samples...), nil
}
