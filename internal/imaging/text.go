package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var labelFace = basicfont.Face7x13

// LabelSize returns the size of the box DrawLabel fills for text.
func LabelSize(text string) (width, height int) {
	m := labelFace.Metrics()
	return font.MeasureString(labelFace, text).Ceil() + 2, (m.Ascent + m.Descent).Ceil() + 2
}

// DrawLabel writes text on a filled box whose top-left corner is (x, y).
// Both are clipped to the image.
func DrawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	w, h := LabelSize(text)
	box := image.Rect(x, y, x+w, y+h).Intersect(img.Bounds())
	if box.Empty() {
		return
	}
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: labelFace,
		Dot:  fixed.P(x+1, y+1+labelFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
