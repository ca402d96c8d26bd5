package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// NewCanvas returns a width x height buffer filled with fill.
func NewCanvas(width, height int, fill color.NRGBA) *image.NRGBA {
	fill.A = 0xff
	return imaging.New(width, height, fill)
}

// Pad returns img placed at (left, top) on a larger canvas of the given
// size filled with fill. The caller guarantees img fits.
func Pad(img *image.NRGBA, width, height, left, top int, fill color.NRGBA) *image.NRGBA {
	dst := NewCanvas(width, height, fill)
	return imaging.Paste(dst, img, image.Pt(left, top))
}

// DrawRect draws a rectangle outline of the given thickness. Pixels outside
// the image are skipped, so r may extend past the edges.
func DrawRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r = r.Canon()
	for t := 0; t < thickness; t++ {
		x0, y0 := r.Min.X+t, r.Min.Y+t
		x1, y1 := r.Max.X-t, r.Max.Y-t
		if x0 > x1 || y0 > y1 {
			return
		}
		for x := x0; x <= x1; x++ {
			setClipped(img, x, y0, c)
			setClipped(img, x, y1, c)
		}
		for y := y0; y <= y1; y++ {
			setClipped(img, x0, y, c)
			setClipped(img, x1, y, c)
		}
	}
}

// DrawMarker draws a small filled square centred on (x, y).
func DrawMarker(img *image.NRGBA, x, y, radius int, c color.NRGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			setClipped(img, x+dx, y+dy, c)
		}
	}
}

func setClipped(img *image.NRGBA, x, y int, c color.Color) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}
