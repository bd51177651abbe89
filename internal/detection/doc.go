// Package detection locates the solid-colored registration frame that
// surrounds each rendered view of an impostor sprite.
//
// The renderer draws a red border of known thickness around the subject on a
// chroma-green background. LocateFrame recovers that border from pixel
// statistics alone, so it copes with anti-aliased edges and with renderers
// that add a thin highlight just inside the frame.
//
// # Algorithm Overview
//
// LocateFrame runs three phases in order:
//
//  1. Sweep: a band of the frame's thickness is stepped inward from each
//     image edge. Bands whose mean color is not frame-colored are skipped;
//     the most uniform band in each direction marks that side of the frame.
//  2. Validate: the four sides form the outer rectangle, and the full ring
//     one thickness deep is checked for uniformity.
//  3. Tighten: each side of the inner rectangle is pushed toward the center
//     while the ring stays uniform, absorbing frame-colored pixels left
//     behind by anti-aliasing.
//
// Uniformity is the population standard deviation averaged over the R, G and
// B channels, measured with imaging.SampleRectangle and imaging.SampleFrame.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Rectangles use inclusive top-left and exclusive bottom-right
//
// # Limitations
//
// The frame is assumed to be axis-aligned and to reach the middle half of
// every side of the image. Frames that are rotated or clipped by the image
// border are reported as ErrFrameNotFound or ErrFrameNotUniform.
package detection
