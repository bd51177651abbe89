package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

// createInMemoryImage creates an in-memory test image filled with one color.
func createInMemoryImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createNoiseImage creates an image of deterministic pseudo-random pixels.
func createNoiseImage(width, height int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

const statTolerance = 1e-9

func statsClose(a, b ChannelStat) bool {
	return a.Count == b.Count &&
		math.Abs(a.Mean-b.Mean) < statTolerance &&
		math.Abs(a.StdDev-b.StdDev) < statTolerance
}

func TestSampleRectangle_Uniform(t *testing.T) {
	img := createInMemoryImage(50, 40, color.NRGBA{200, 20, 20, 255})

	s, err := SampleRectangle(img, Rect{5, 5, 45, 35})
	if err != nil {
		t.Fatalf("SampleRectangle failed: %v", err)
	}
	want := ColorTriple{200, 20, 20}
	if s.Mean() != want {
		t.Errorf("Mean: got %v, want %v", s.Mean(), want)
	}
	for ch, c := range s {
		if c.StdDev != 0 {
			t.Errorf("channel %d: StdDev got %v, want 0", ch, c.StdDev)
		}
		if c.Count != 40*30 {
			t.Errorf("channel %d: Count got %d, want 1200", ch, c.Count)
		}
	}
	if s.AverageStdDev() != 0 {
		t.Errorf("AverageStdDev: got %v, want 0", s.AverageStdDev())
	}
}

func TestSampleRectangle_KnownValues(t *testing.T) {
	// Two pixels: R values 0 and 100 -> mean 50, population stddev 50.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 10, 7, 255})
	img.SetNRGBA(1, 0, color.NRGBA{100, 10, 7, 255})

	s, err := SampleRectangle(img, Rect{0, 0, 2, 1})
	if err != nil {
		t.Fatalf("SampleRectangle failed: %v", err)
	}
	if !statsClose(s[0], ChannelStat{Count: 2, Mean: 50, StdDev: 50}) {
		t.Errorf("R: got %+v", s[0])
	}
	if !statsClose(s[1], ChannelStat{Count: 2, Mean: 10, StdDev: 0}) {
		t.Errorf("G: got %+v", s[1])
	}
}

func TestSampleRectangle_Invalid(t *testing.T) {
	img := createInMemoryImage(10, 10, color.NRGBA{A: 255})

	tests := []struct {
		name string
		r    Rect
	}{
		{"empty", Rect{2, 2, 2, 5}},
		{"inverted", Rect{5, 5, 2, 2}},
		{"outside right", Rect{5, 0, 11, 5}},
		{"outside top", Rect{0, -1, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SampleRectangle(img, tt.r); !errors.Is(err, ErrDegenerateRectangle) {
				t.Errorf("got %v, want ErrDegenerateRectangle", err)
			}
		})
	}
}

func TestCombine_MatchesDirectSample(t *testing.T) {
	img := createNoiseImage(30, 20, 1)

	left, _ := SampleRectangle(img, Rect{0, 0, 12, 20})
	right, _ := SampleRectangle(img, Rect{12, 0, 30, 20})
	whole, _ := SampleRectangle(img, Rect{0, 0, 30, 20})

	merged := CombineSamples(left, right)
	for ch := range merged {
		if !statsClose(merged[ch], whole[ch]) {
			t.Errorf("channel %d: merged %+v, direct %+v", ch, merged[ch], whole[ch])
		}
	}
}

func TestCombine_Associative(t *testing.T) {
	img := createNoiseImage(30, 30, 2)
	a, _ := SampleRectangle(img, Rect{0, 0, 30, 7})
	b, _ := SampleRectangle(img, Rect{0, 7, 13, 30})
	c, _ := SampleRectangle(img, Rect{13, 7, 30, 30})

	for ch := 0; ch < 3; ch++ {
		lhs := Combine(Combine(a[ch], b[ch]), c[ch])
		rhs := Combine(a[ch], Combine(b[ch], c[ch]))
		if !statsClose(lhs, rhs) {
			t.Errorf("channel %d: (a+b)+c = %+v, a+(b+c) = %+v", ch, lhs, rhs)
		}
		if !statsClose(Combine(a[ch], b[ch]), Combine(b[ch], a[ch])) {
			t.Errorf("channel %d: Combine is not commutative", ch)
		}
	}
}

func TestCombine_OrderIndependentFrame(t *testing.T) {
	img := createNoiseImage(40, 40, 3)
	bands, err := FrameBands(Rect{0, 0, 40, 40}, Rect{6, 6, 34, 34})
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]ColorSample, len(bands))
	for i, b := range bands {
		samples[i], _ = SampleRectangle(img, b)
	}

	forward := CombineSamples(samples...)
	backward := CombineSamples(samples[3], samples[2], samples[1], samples[0])
	pairs := CombineSamples(CombineSamples(samples[0], samples[2]), CombineSamples(samples[1], samples[3]))
	for ch := 0; ch < 3; ch++ {
		if !statsClose(forward[ch], backward[ch]) || !statsClose(forward[ch], pairs[ch]) {
			t.Errorf("channel %d: order changed result: %+v %+v %+v", ch, forward[ch], backward[ch], pairs[ch])
		}
	}
}

func TestCombine_EmptyIdentity(t *testing.T) {
	s := ChannelStat{Count: 12, Mean: 33.5, StdDev: 4.25}
	if got := Combine(s, ChannelStat{}); got != s {
		t.Errorf("Combine(s, empty): got %+v, want %+v", got, s)
	}
	if got := Combine(ChannelStat{}, s); got != s {
		t.Errorf("Combine(empty, s): got %+v, want %+v", got, s)
	}
	if got := Combine(ChannelStat{}, ChannelStat{}); got != (ChannelStat{}) {
		t.Errorf("Combine(empty, empty): got %+v", got)
	}
	if got := CombineSamples(); got != (ColorSample{}) {
		t.Errorf("CombineSamples(): got %+v", got)
	}
}

func TestCombine_UsesStdDevNotMean(t *testing.T) {
	// Two constant regions: 10 pixels of 0 and 10 pixels of 100.
	a := ChannelStat{Count: 10, Mean: 0, StdDev: 0}
	b := ChannelStat{Count: 10, Mean: 100, StdDev: 0}
	got := Combine(a, b)
	if !statsClose(got, ChannelStat{Count: 20, Mean: 50, StdDev: 50}) {
		t.Errorf("got %+v, want {20 50 50}", got)
	}
}

func TestSampleFrame(t *testing.T) {
	img := createInMemoryImage(100, 100, color.NRGBA{200, 20, 20, 255})
	for y := 10; y < 90; y++ {
		for x := 10; x < 90; x++ {
			img.SetNRGBA(x, y, color.NRGBA{20, 200, 20, 255})
		}
	}

	s, err := SampleFrame(img, Rect{0, 0, 100, 100}, Rect{10, 10, 90, 90})
	if err != nil {
		t.Fatalf("SampleFrame failed: %v", err)
	}
	if s.Count() != 100*100-80*80 {
		t.Errorf("Count: got %d, want 3600", s.Count())
	}
	if s.AverageStdDev() != 0 {
		t.Errorf("AverageStdDev: got %v, want 0", s.AverageStdDev())
	}
	if s.Mean() != (ColorTriple{200, 20, 20}) {
		t.Errorf("Mean: got %v", s.Mean())
	}

	// One pixel deeper the ring picks up the green interior.
	s2, err := SampleFrame(img, Rect{0, 0, 100, 100}, Rect{11, 10, 90, 90})
	if err != nil {
		t.Fatalf("SampleFrame failed: %v", err)
	}
	if s2.AverageStdDev() <= 0 {
		t.Errorf("AverageStdDev with green column: got %v, want > 0", s2.AverageStdDev())
	}
}

func TestSampleRectangle_ReusedBuffers(t *testing.T) {
	noise := createNoiseImage(64, 64, 7)
	solid := createInMemoryImage(64, 64, color.NRGBA{20, 200, 20, 255})

	big, err := SampleRectangle(noise, Rect{0, 0, 64, 64})
	if err != nil {
		t.Fatalf("SampleRectangle failed: %v", err)
	}

	// A smaller sample after a larger one must not see stale values.
	small, err := SampleRectangle(solid, Rect{2, 2, 6, 6})
	if err != nil {
		t.Fatalf("SampleRectangle failed: %v", err)
	}
	for ch, c := range small {
		if c.Count != 16 || c.StdDev != 0 {
			t.Errorf("channel %d: got %+v, want 16 pixels with zero stddev", ch, c)
		}
	}

	// Concurrent callers each get their own buffers.
	results := make(chan ColorSample, 8)
	for i := 0; i < 8; i++ {
		go func() {
			s, _ := SampleRectangle(noise, Rect{0, 0, 64, 64})
			results <- s
		}()
	}
	for i := 0; i < 8; i++ {
		got := <-results
		for ch := range got {
			if !statsClose(got[ch], big[ch]) {
				t.Errorf("concurrent channel %d: got %+v, want %+v", ch, got[ch], big[ch])
			}
		}
	}
}
