// Package impostor turns a set of framed, green-screened renders of one
// object into a single billboard impostor texture.
//
// Each input image goes through the same per-image pipeline:
//
//	load -> frame (detection.LocateFrame)
//	     -> chroma (chromakey.EstimateChroma)
//	     -> segment (crop to the frame, chromakey.RemoveBackground)
//
// A failure at any stage is reported as an *ImageError naming the file and
// stage. Builder.Build either aborts on the first failure or, with
// SkipFailed, drops the image and records the error on the Sheet.
//
// # Sheet Layout
//
// Faces are stacked top to bottom in input order. Side faces are scaled to
// Rez x round(Rez * FrameHeight / FrameWidth). In the TSTAR form the last
// two inputs are the top and bottom views and are scaled to Rez x Rez.
// Before scaling, faces of a group are cropped to the union of their
// content bounds so the object keeps the same position and scale on every
// face. With PowerOfTwo the canvas is padded with transparent pixels to
// power-of-two dimensions.
//
// # Concurrency
//
// Images are processed in parallel, one goroutine per image up to
// GOMAXPROCS. The per-image pipeline shares no mutable state; decoded
// images from a shared cache are only read.
package impostor
