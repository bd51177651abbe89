package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/impostor-maker/internal/imaging"
)

var (
	// ErrFrameNotFound is returned when a sweep direction never finds a
	// band whose mean color lies inside the expected frame color range.
	ErrFrameNotFound = errors.New("frame not found")

	// ErrFrameNotUniform is returned when the located frame band is not
	// uniform enough to be a solid-colored frame.
	ErrFrameNotUniform = errors.New("frame not uniform")
)

// Direction identifies the image edge a sweep starts from.
type Direction int

const (
	Left Direction = iota
	Right
	Top
	Bottom
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// FrameParams configures LocateFrame.
type FrameParams struct {
	// Range is the expected frame color in RGB. Bands whose mean color falls
	// outside it are never considered part of the frame.
	Range imaging.ColorRange

	// Thickness is the width in pixels of the band swept from each edge and
	// of the frame assumed by VALIDATE. Must be positive.
	Thickness int

	// MaxDeviation is the largest averaged channel standard deviation
	// (0-255 scale) accepted for a uniform frame.
	MaxDeviation float64
}

// Validate checks that the parameters can drive a sweep.
func (p FrameParams) Validate() error {
	if p.Thickness <= 0 {
		return fmt.Errorf("frame thickness must be positive, got %d", p.Thickness)
	}
	if p.MaxDeviation < 0 {
		return fmt.Errorf("frame max deviation must not be negative, got %g", p.MaxDeviation)
	}
	return p.Range.Validate()
}

// FrameResult is the output of a successful LocateFrame.
type FrameResult struct {
	// Outer is the outside boundary of the frame.
	Outer imaging.Rect `json:"outer"`

	// Inner is the tightened boundary of the region inside the frame.
	Inner imaging.Rect `json:"inner"`

	// StdDev is the averaged frame standard deviation measured with Inner
	// as the frame's inside edge.
	StdDev float64 `json:"stddev"`

	// Color is the mean RGB color of the frame.
	Color imaging.ColorTriple `json:"color"`
}

// LocateFrame finds a solid-colored frame surrounding the subject of img.
//
// The search runs three phases:
//
//  1. SWEEP: from each of the four image edges, a band Thickness pixels
//     wide is stepped one pixel at a time toward the image center. Each band
//     spans the middle half of the perpendicular dimension. Bands whose mean
//     color is outside Range are skipped; of the rest the band with the
//     lowest averaged standard deviation wins, ties going to the band
//     nearest the edge.
//  2. VALIDATE: the four winning positions form the outer rectangle; the
//     ring between it and its Thickness inset must have an averaged standard
//     deviation no greater than MaxDeviation.
//  3. TIGHTEN: the inner rectangle's top, bottom, left and right edges are
//     moved toward its center in that order, one pixel per step, for as long
//     as the enlarged frame ring stays below MaxDeviation.
//
// Returns:
//   - *FrameResult: the outer and tightened inner rectangles.
//   - error: wraps ErrFrameNotFound, ErrFrameNotUniform or
//     imaging.ErrDegenerateRectangle depending on the phase that failed.
//
// Every loop is bounded by the image dimensions.
func LocateFrame(img image.Image, p FrameParams) (*FrameResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	outer, err := sweep(img, p)
	if err != nil {
		return nil, err
	}

	inner, sample, err := validate(img, outer, p)
	if err != nil {
		return nil, err
	}

	inner, stddev, err := tighten(img, outer, inner, sample.AverageStdDev(), p.MaxDeviation)
	if err != nil {
		return nil, err
	}

	final, err := imaging.SampleFrame(img, outer, inner)
	if err != nil {
		return nil, err
	}

	return &FrameResult{
		Outer:  outer,
		Inner:  inner,
		StdDev: stddev,
		Color:  final.Mean(),
	}, nil
}

// sweep runs the SWEEP phase and returns the outer frame rectangle.
func sweep(img image.Image, p FrameParams) (imaging.Rect, error) {
	var edges [4]int
	for _, d := range []Direction{Left, Right, Top, Bottom} {
		pos, err := sweepDirection(img, d, p)
		if err != nil {
			return imaging.Rect{}, err
		}
		edges[d] = pos
	}

	outer, err := imaging.NewRect(edges[Left], edges[Top], edges[Right], edges[Bottom])
	if err != nil {
		return imaging.Rect{}, fmt.Errorf("sweep produced no frame: %w", err)
	}
	return outer, nil
}

// sweepDirection steps a band from one image edge toward the center and
// returns the frame coordinate on that side: the band's outer edge (Left,
// Top) or its exclusive far edge (Right, Bottom).
func sweepDirection(img image.Image, d Direction, p FrameParams) (int, error) {
	b := img.Bounds()
	t := p.Thickness
	cx := b.Min.X + b.Dx()/2
	cy := b.Min.Y + b.Dy()/2

	// Perpendicular span: the middle half of the other dimension.
	spanY0, spanY1 := b.Min.Y+b.Dy()/4, b.Max.Y-b.Dy()/4
	spanX0, spanX1 := b.Min.X+b.Dx()/4, b.Max.X-b.Dx()/4

	var steps int
	var band func(i int) (imaging.Rect, int)

	switch d {
	case Left:
		steps = cx - b.Min.X - t + 1
		band = func(i int) (imaging.Rect, int) {
			x := b.Min.X + i
			return imaging.Rect{Left: x, Top: spanY0, Right: x + t, Bottom: spanY1}, x
		}
	case Right:
		steps = b.Max.X - cx - t + 1
		band = func(i int) (imaging.Rect, int) {
			x := b.Max.X - i
			return imaging.Rect{Left: x - t, Top: spanY0, Right: x, Bottom: spanY1}, x
		}
	case Top:
		steps = cy - b.Min.Y - t + 1
		band = func(i int) (imaging.Rect, int) {
			y := b.Min.Y + i
			return imaging.Rect{Left: spanX0, Top: y, Right: spanX1, Bottom: y + t}, y
		}
	case Bottom:
		steps = b.Max.Y - cy - t + 1
		band = func(i int) (imaging.Rect, int) {
			y := b.Max.Y - i
			return imaging.Rect{Left: spanX0, Top: y - t, Right: spanX1, Bottom: y}, y
		}
	default:
		return 0, fmt.Errorf("unknown sweep direction %d", int(d))
	}

	found := false
	bestPos := 0
	bestDev := 0.0
	for i := 0; i < steps; i++ {
		r, pos := band(i)
		s, err := imaging.SampleRectangle(img, r)
		if err != nil {
			return 0, fmt.Errorf("%w: %s sweep: %v", ErrFrameNotFound, d, err)
		}
		if !p.Range.Contains(s.Mean()) {
			continue
		}
		dev := s.AverageStdDev()
		if !found || dev < bestDev {
			found = true
			bestPos = pos
			bestDev = dev
		}
	}

	if !found {
		return 0, fmt.Errorf("%w: no band in frame color range sweeping from %s", ErrFrameNotFound, d)
	}
	return bestPos, nil
}

// validate runs the VALIDATE phase: it forms the inner rectangle and checks
// that the frame ring between the two is uniform.
func validate(img image.Image, outer imaging.Rect, p FrameParams) (imaging.Rect, imaging.ColorSample, error) {
	inner, err := outer.Inset(p.Thickness)
	if err != nil {
		return imaging.Rect{}, imaging.ColorSample{}, fmt.Errorf("frame %s too small for thickness %d: %w", outer, p.Thickness, err)
	}

	sample, err := imaging.SampleFrame(img, outer, inner)
	if err != nil {
		return imaging.Rect{}, imaging.ColorSample{}, err
	}

	if dev := sample.AverageStdDev(); dev > p.MaxDeviation {
		return imaging.Rect{}, imaging.ColorSample{}, fmt.Errorf("%w: stddev %.2f exceeds %.2f for frame %s",
			ErrFrameNotUniform, dev, p.MaxDeviation, outer)
	}
	return inner, sample, nil
}

// tighten runs the TIGHTEN phase.
//
// Each edge of inner slides toward the center computed from the validated
// inner rectangle, keeping every step whose frame deviation stays below
// maxDev. An edge's final position is fixed before the next edge moves.
// The center bound keeps the result non-degenerate.
func tighten(img image.Image, outer, inner imaging.Rect, dev, maxDev float64) (imaging.Rect, float64, error) {
	cx, cy := inner.Center()

	type edge struct {
		canMove func(r imaging.Rect) bool
		move    func(r imaging.Rect) imaging.Rect
	}
	edges := []edge{
		{ // top
			canMove: func(r imaging.Rect) bool { return r.Top+1 <= cy },
			move:    func(r imaging.Rect) imaging.Rect { r.Top++; return r },
		},
		{ // bottom
			canMove: func(r imaging.Rect) bool { return r.Bottom-1 > cy },
			move:    func(r imaging.Rect) imaging.Rect { r.Bottom--; return r },
		},
		{ // left
			canMove: func(r imaging.Rect) bool { return r.Left+1 <= cx },
			move:    func(r imaging.Rect) imaging.Rect { r.Left++; return r },
		},
		{ // right
			canMove: func(r imaging.Rect) bool { return r.Right-1 > cx },
			move:    func(r imaging.Rect) imaging.Rect { r.Right--; return r },
		},
	}

	current := inner
	for _, e := range edges {
		for e.canMove(current) {
			candidate := e.move(current)
			s, err := imaging.SampleFrame(img, outer, candidate)
			if err != nil {
				return imaging.Rect{}, 0, err
			}
			d := s.AverageStdDev()
			if d >= maxDev {
				break
			}
			current = candidate
			dev = d
		}
	}
	return current, dev, nil
}
