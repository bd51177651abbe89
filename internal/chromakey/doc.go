// Package chromakey removes a solid-colored background from a framed image
// and softens the color spill it leaves on the subject's outline.
//
// # Pipeline
//
// RemoveBackground chains the individual steps, each of which is also
// exported for callers that need finer control:
//
//  1. EstimateChroma measures the actual background color by probing thin
//     rings just inside the frame.
//  2. BuildMask marks every pixel whose HSV color falls inside the chroma
//     range as background (0) and everything else as foreground (255).
//  3. CleanOuterEdge zeroes foreground fringe left against the image border
//     by cropping.
//  4. EdgeBand finds the anti-aliased boundary of the foreground by blurring
//     the mask and discarding its fully opaque interior.
//  5. CorrectTinge pulls green out of boundary pixels whose hue is still
//     close to the background and makes them half transparent.
//
// # Color Spaces
//
// Chroma and tinge ranges are HSV with hue in degrees (0-360) and saturation
// and value on a 0-255 scale, matching imaging.RGBToHSV.
//
// # Ownership
//
// None of the functions keep a reference to their inputs. CorrectTinge is
// the only in-place operation; it requires the caller's exclusively owned
// *image.NRGBA.
package chromakey
