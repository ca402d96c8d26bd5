// Package imaging holds the pixel operations behind annotated-image
// packages: decoding and encoding, crop, paste, quarter-turn rotation,
// resampling, canvases and the drawing used by previews.
//
// # Buffers
//
// Every function works on *image.NRGBA buffers with a zero origin and alpha
// forced to 255. Load converts whatever the decoder returns, so an alpha
// channel in the source file is dropped and the RGB values are kept.
// Functions that return a buffer return a new one; only Blit and the Draw
// helpers write into their argument.
//
// # Coordinate System
//
// (0,0) is the top-left pixel, X increases rightward, and Y increases
// downward. Rectangles follow image.Rectangle: Min inclusive, Max
// exclusive. DrawRect is the exception and draws both edges.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached buffers are
// shared, so callers must Clone before writing to them.
package imaging
