// Package imaging provides the pixel-level building blocks of the impostor
// pipeline.
//
// This package implements the value types shared by every stage (Rect,
// ColorTriple, ColorRange), the RGB to HSV conversion used for chroma tests,
// the uniformity statistics engine (per-rectangle channel statistics and the
// pooled-variance merge), and the thin I/O layer used by the orchestrator
// (load, save, crop, resize, debug overlays).
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, (Left,Top) is inclusive and (Right,Bottom) is exclusive
//
// # Color Representation
//
// ColorTriple carries either RGB or HSV values:
//   - RGB: 0-255 per channel
//   - HSV: Hue 0-360 degrees, Saturation 0-255, Value 0-255
//
// A ColorRange must use the same space as the value tested against it.
//
// # Uniformity Statistics
//
// SampleRectangle computes count, mean and population standard deviation
// per channel. Combine merges two disjoint samples without rescanning
// pixels:
//
//	n    = na + nb
//	mean = (na*ua + nb*ub) / n
//	var  = (na*sa² + nb*sb²) / n + (na*nb / n²) * (ua - ub)²
//
// SampleFrame uses this to measure a rectangular ring as four disjoint bands.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Empty rectangles or rectangles outside image bounds (ErrDegenerateRectangle)
//   - Color ranges with low > high (ErrInvalidColorRange)
//   - File I/O errors during image loading or saving
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and may be called concurrently on different images.
package imaging
