package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Crop extracts the pixels inside r, which must lie within img's bounds
// and be non-empty. The result has its own buffer and a zero origin.
func Crop(img *image.NRGBA, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", r)
	}

	return imaging.Crop(img, r), nil
}

// Clone returns an independent copy of img.
func Clone(img *image.NRGBA) *image.NRGBA {
	return imaging.Clone(img)
}

// Blit copies src onto dst with its top-left corner at pt. No blending is
// done: destination pixels are overwritten. The whole of src must fit.
func Blit(dst, src *image.NRGBA, pt image.Point) error {
	r := src.Bounds().Sub(src.Bounds().Min).Add(pt)
	if !r.In(dst.Bounds()) {
		return fmt.Errorf("paste region %v outside image bounds %v", r, dst.Bounds())
	}
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Src)
	return nil
}

// Rotate rotates img clockwise by degrees, which must be 0, 90, 180 or 270.
func Rotate(img *image.NRGBA, degrees int) (*image.NRGBA, error) {
	// imaging rotates counter-clockwise.
	switch degrees {
	case 0:
		return Clone(img), nil
	case 90:
		return imaging.Rotate270(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	}
	return nil, fmt.Errorf("unsupported rotation %d", degrees)
}
