package datapkg

import (
	"fmt"

	"github.com/ironsheep/dataset-aug/internal/geometry"
	"github.com/ironsheep/dataset-aug/internal/imaging"
	"github.com/ironsheep/dataset-aug/internal/labelme"
)

// Rotate turns the package clockwise by degrees, one of -90, 0, 90, 180
// or 270 (-90 is the same as 270). Rectangle shapes are renormalized so
// their first point is the top-left corner; other shapes have each point
// mapped in place.
func (p *Package) Rotate(degrees int) (*Package, error) {
	deg, err := geometry.NormalizeRightAngle(degrees)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAngle, err)
	}

	img, err := imaging.Rotate(p.Image, deg)
	if err != nil {
		return nil, err
	}

	m := geometry.RightAngleRotation(deg, p.Width(), p.Height())
	shapes := make([]labelme.Shape, len(p.Label.Shapes))
	for i, s := range p.Label.Shapes {
		t := s.Transform(m)
		if r, err := t.Rect(); err == nil {
			t.Points = []labelme.Point{labelme.PointFromVec(r.Min), labelme.PointFromVec(r.Max)}
		}
		shapes[i] = t
	}
	return p.withShapes(img, shapes), nil
}

// Resize scales the buffer by (fx, fy) using the named interpolation and
// multiplies every coordinate by the same factors. Coordinates are not
// rounded.
func (p *Package) Resize(fx, fy float64, filter string) (*Package, error) {
	img, err := imaging.Resize(p.Image, fx, fy, filter)
	if err != nil {
		return nil, err
	}
	m := geometry.Scaling(fx, fy)
	shapes := make([]labelme.Shape, len(p.Label.Shapes))
	for i, s := range p.Label.Shapes {
		shapes[i] = s.Transform(m)
	}
	return p.withShapes(img, shapes), nil
}

// Translate returns a copy of p whose shapes are shifted by (dx, dy).
// Pixels are not moved.
func (p *Package) Translate(dx, dy float64) *Package {
	c := p.Clone()
	c.TranslateInPlace(dx, dy)
	return c
}

// TranslateInPlace shifts p's shapes by (dx, dy).
func (p *Package) TranslateInPlace(dx, dy float64) {
	for i, s := range p.Label.Shapes {
		p.Label.Shapes[i] = s.Translate(dx, dy)
	}
}

// MergeInPlace appends other's shapes to p. Pixels are untouched; the two
// packages are expected to already share one canvas.
func (p *Package) MergeInPlace(other *Package) {
	for _, s := range other.Label.Shapes {
		p.Label.Shapes = append(p.Label.Shapes, s.Clone())
	}
}
