package imaging

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned pixel rectangle.
//
// Coordinates follow the standard image convention:
//   - (Left, Top) is the top-left corner (inclusive)
//   - (Right, Bottom) is the bottom-right corner (exclusive)
//   - Width = Right - Left, Height = Bottom - Top
//
// A Rect with Left >= Right or Top >= Bottom is degenerate. Constructors and
// Inset reject degenerate results with ErrDegenerateRectangle instead of
// clamping them.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// NewRect returns the rectangle [left,right) x [top,bottom).
//
// Returns ErrDegenerateRectangle if the rectangle would be empty.
func NewRect(left, top, right, bottom int) (Rect, error) {
	r := Rect{Left: left, Top: top, Right: right, Bottom: bottom}
	if r.Empty() {
		return Rect{}, fmt.Errorf("%w: (%d,%d)-(%d,%d)", ErrDegenerateRectangle, left, top, right, bottom)
	}
	return r, nil
}

// RectFromImage converts an image.Rectangle into a Rect.
func RectFromImage(r image.Rectangle) (Rect, error) {
	return NewRect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// Width returns Right - Left.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Area returns the number of pixels covered by the rectangle.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle is degenerate.
func (r Rect) Empty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// Image returns the equivalent image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Center returns the integer center point (rounded toward Left/Top).
func (r Rect) Center() (x, y int) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.Left >= r.Left && other.Top >= r.Top &&
		other.Right <= r.Right && other.Bottom <= r.Bottom
}

// Inset shrinks all four sides of the rectangle by d pixels.
//
// Returns ErrDegenerateRectangle if d is negative, if the result is empty,
// or if the result is not nested inside r. For any d >= min(width,height)/2
// the result is always degenerate.
func (r Rect) Inset(d int) (Rect, error) {
	if d < 0 {
		return Rect{}, fmt.Errorf("%w: negative inset %d", ErrDegenerateRectangle, d)
	}
	in := Rect{Left: r.Left + d, Top: r.Top + d, Right: r.Right - d, Bottom: r.Bottom - d}
	if in.Empty() || !r.Contains(in) {
		return Rect{}, fmt.Errorf("%w: inset %d of %s", ErrDegenerateRectangle, d, r)
	}
	return in, nil
}

// String formats the rectangle as (left,top)-(right,bottom).
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// FrameBands splits the ring between outer and inner into disjoint bands.
//
// The decomposition is a pinwheel so no pixel is counted twice:
//
//	top    = [inner.Left, outer.Right) x [outer.Top,   inner.Top)
//	right  = [inner.Right, outer.Right) x [inner.Top, outer.Bottom)
//	bottom = [outer.Left, inner.Right) x [inner.Bottom, outer.Bottom)
//	left   = [outer.Left, inner.Left)  x [outer.Top,   inner.Bottom)
//
// Bands of zero area are omitted, so a caller may pass an inner rectangle
// that shares one or more sides with outer. inner must be non-degenerate and
// nested inside outer.
func FrameBands(outer, inner Rect) ([]Rect, error) {
	if outer.Empty() || inner.Empty() {
		return nil, fmt.Errorf("%w: frame %s around %s", ErrDegenerateRectangle, outer, inner)
	}
	if !outer.Contains(inner) {
		return nil, fmt.Errorf("%w: %s not nested in %s", ErrDegenerateRectangle, inner, outer)
	}

	candidates := [4]Rect{
		{Left: inner.Left, Top: outer.Top, Right: outer.Right, Bottom: inner.Top},
		{Left: inner.Right, Top: inner.Top, Right: outer.Right, Bottom: outer.Bottom},
		{Left: outer.Left, Top: inner.Bottom, Right: inner.Right, Bottom: outer.Bottom},
		{Left: outer.Left, Top: outer.Top, Right: inner.Left, Bottom: inner.Bottom},
	}

	bands := make([]Rect, 0, len(candidates))
	for _, b := range candidates {
		if !b.Empty() {
			bands = append(bands, b)
		}
	}
	return bands, nil
}
