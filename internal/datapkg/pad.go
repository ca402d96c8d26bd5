package datapkg

import (
	"fmt"
	"image/color"

	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/labelme"
)

var black = color.NRGBA{A: 0xff}

// PadMargins grows the buffer by m on each side with black pixels and
// shifts every shape by (m.Left, m.Top).
func (p *Package) PadMargins(m Margins) (*Package, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	w := p.Width() + m.Left + m.Right
	h := p.Height() + m.Top + m.Bottom
	img := imaging.Pad(p.Image, w, h, m.Left, m.Top, black)

	shapes := make([]labelme.Shape, len(p.Label.Shapes))
	for i, s := range p.Label.Shapes {
		shapes[i] = s.Translate(float64(m.Left), float64(m.Top))
	}
	return p.withShapes(img, shapes), nil
}

// PadToSize pads the buffer up to width x height. Centered padding puts
// floor((W-w)/2) on the left and top and the remainder on the right and
// bottom; otherwise all padding goes right and bottom.
func (p *Package) PadToSize(width, height int, centered bool) (*Package, error) {
	m, err := PadMarginsFor(p.Width(), p.Height(), width, height, centered)
	if err != nil {
		return nil, err
	}
	return p.PadMargins(m)
}

// PadMarginsFor returns the margins PadToSize applies to a w x h buffer.
func PadMarginsFor(w, h, width, height int, centered bool) (Margins, error) {
	if width < w || height < h {
		return Margins{}, fmt.Errorf("%w: %dx%d into %dx%d", ErrPadTooSmall, w, h, width, height)
	}
	dx, dy := width-w, height-h
	if !centered {
		return Margins{Right: dx, Bottom: dy}, nil
	}
	return Margins{Top: dy / 2, Bottom: dy - dy/2, Left: dx / 2, Right: dx - dx/2}, nil
}
