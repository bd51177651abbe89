package imaging

import "errors"

var (
	// ErrDegenerateRectangle is returned when an inset, crop or sample
	// rectangle is empty, inverted, or falls outside the image it refers to.
	ErrDegenerateRectangle = errors.New("degenerate rectangle")

	// ErrInvalidColorRange is returned when a color range has a low bound
	// above its high bound on any channel.
	ErrInvalidColorRange = errors.New("invalid color range")
)
