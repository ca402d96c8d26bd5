package datapkg

import (
	"fmt"
	"image"

	"github.com/ironsheep/dataset-aug/internal/imaging"
)

// Paste returns a copy of p with src's pixels written over the region whose
// top-left is (x, y) and src's shapes appended, shifted by (x, y).
func (p *Package) Paste(src *Package, x, y int) (*Package, error) {
	c := p.Clone()
	if err := c.PasteInPlace(src, x, y); err != nil {
		return nil, err
	}
	return c, nil
}

// PasteInPlace is Paste modifying p. The region must lie inside p, else
// ErrOutOfBounds is returned and p is unchanged.
func (p *Package) PasteInPlace(src *Package, x, y int) error {
	if err := imaging.Blit(p.Image, src.Image, image.Pt(x, y)); err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, err)
	}
	for _, s := range src.Label.Shapes {
		p.Label.Shapes = append(p.Label.Shapes, s.Translate(float64(x), float64(y)))
	}
	return nil
}
