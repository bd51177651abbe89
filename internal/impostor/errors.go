package impostor

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoImages is returned when a build has no input, or when every
	// input was skipped.
	ErrNoImages = errors.New("no images")

	// ErrFaceCount is returned when the number of inputs does not match the
	// configured face count or layout form.
	ErrFaceCount = errors.New("wrong number of faces")

	// ErrSizeMismatch is returned when cropped faces differ in size by more
	// than the configured tolerance.
	ErrSizeMismatch = errors.New("face sizes differ")

	// ErrEmptyTile is returned when background removal leaves no foreground.
	ErrEmptyTile = errors.New("no foreground after background removal")
)

// Pipeline stages reported in ImageError.
const (
	StageLoad    = "load"
	StageFrame   = "frame"
	StageChroma  = "chroma"
	StageSegment = "segment"
)

// ImageError records which input failed and at which stage.
type ImageError struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

func (e *ImageError) Error() string {
	name := e.Path
	if name == "" {
		name = fmt.Sprintf("image %d", e.Index)
	}
	return fmt.Sprintf("%s: %s: %v", name, e.Stage, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// MarshalJSON includes the underlying error message so skipped inputs stay
// diagnosable in tool output.
func (e *ImageError) MarshalJSON() ([]byte, error) {
	type plain ImageError
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		*plain
		Error string `json:"error,omitempty"`
	}{(*plain)(e), msg})
}
