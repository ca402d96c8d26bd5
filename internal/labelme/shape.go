// Package labelme reads and writes labelme-style annotation files: a JSON
// record describing one image and the labeled shapes drawn on it.
//
// Fields this package does not model are kept in a side table and written
// back verbatim, so a load/save cycle does not lose data added by newer
// labelme releases. The embedded base64 image (imageData) is never kept:
// it is ignored on read and always written as null.
package labelme

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/dataset-aug/internal/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// ShapeType is the kind tag of a Shape.
type ShapeType string

// Shape kinds. Anything else is carried through unchanged.
const (
	Rectangle ShapeType = "rectangle"
	PointType ShapeType = "point"
	Polygon   ShapeType = "polygon"
)

// ErrNotRectangle is returned by rectangle-only operations given another kind.
var ErrNotRectangle = errors.New("shape is not a rectangle")

// Point is an annotation vertex, encoded as a two-element JSON array.
type Point [2]float64

// Vec converts p to a geometry vector.
func (p Point) Vec() r2.Vec { return r2.Vec{X: p[0], Y: p[1]} }

// PointFromVec converts a geometry vector back to a Point.
func PointFromVec(v r2.Vec) Point { return Point{v.X, v.Y} }

// Shape is one labeled region or point.
type Shape struct {
	Label     string         `json:"label"`
	Points    []Point        `json:"points"`
	GroupID   *int           `json:"group_id"`
	ShapeType ShapeType      `json:"shape_type"`
	Flags     map[string]any `json:"flags"`

	// Extra holds fields not listed above, keyed by JSON name.
	Extra map[string]json.RawMessage `json:"-"`
}

var shapeFields = []string{"label", "points", "group_id", "shape_type", "flags"}

// NewRectangle returns a rectangle shape with corners (x1,y1) and (x2,y2).
func NewRectangle(label string, x1, y1, x2, y2 float64) Shape {
	return Shape{
		Label:     label,
		Points:    []Point{{x1, y1}, {x2, y2}},
		ShapeType: Rectangle,
		Flags:     map[string]any{},
	}
}

// IsRectangle reports whether s is tagged as a rectangle.
func (s Shape) IsRectangle() bool { return s.ShapeType == Rectangle }

// Validate checks the point count invariant for rectangle and point kinds.
func (s Shape) Validate() error {
	switch s.ShapeType {
	case Rectangle:
		if len(s.Points) != 2 {
			return fmt.Errorf("rectangle %q has %d points, want 2", s.Label, len(s.Points))
		}
	case PointType:
		if len(s.Points) != 1 {
			return fmt.Errorf("point %q has %d points, want 1", s.Label, len(s.Points))
		}
	}
	return nil
}

// Rect returns the normalized rectangle of a rectangle shape.
func (s Shape) Rect() (geometry.Rect, error) {
	if !s.IsRectangle() {
		return geometry.Rect{}, fmt.Errorf("%w: %q is %q", ErrNotRectangle, s.Label, s.ShapeType)
	}
	if err := s.Validate(); err != nil {
		return geometry.Rect{}, err
	}
	return geometry.FromCorners(s.Points[0].Vec(), s.Points[1].Vec()), nil
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	c := s
	c.Points = append([]Point(nil), s.Points...)
	if s.GroupID != nil {
		g := *s.GroupID
		c.GroupID = &g
	}
	if s.Flags != nil {
		c.Flags = make(map[string]any, len(s.Flags))
		for k, v := range s.Flags {
			c.Flags[k] = v
		}
	}
	if s.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// Transform returns a copy of s with every point mapped through m.
func (s Shape) Transform(m geometry.Affine) Shape {
	c := s.Clone()
	for i, p := range c.Points {
		c.Points[i] = PointFromVec(m.Apply(p.Vec()))
	}
	return c
}

// Translate returns a copy of s shifted by (dx, dy).
func (s Shape) Translate(dx, dy float64) Shape {
	return s.Transform(geometry.Translation(dx, dy))
}

// Round returns a copy of s with every coordinate rounded to the nearest
// integer, halves to even.
func (s Shape) Round() Shape {
	c := s.Clone()
	for i, p := range c.Points {
		c.Points[i] = Point{math.RoundToEven(p[0]), math.RoundToEven(p[1])}
	}
	return c
}

// MarshalJSON writes the known fields in labelme order followed by Extra.
func (s Shape) MarshalJSON() ([]byte, error) {
	type wire Shape
	w := wire(s)
	if w.Points == nil {
		w.Points = []Point{}
	}
	if w.Flags == nil {
		w.Flags = map[string]any{}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return appendExtra(b, s.Extra)
}

// UnmarshalJSON reads the known fields and stashes the rest in Extra.
func (s *Shape) UnmarshalJSON(data []byte) error {
	type wire Shape
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := collectExtra(data, shapeFields)
	if err != nil {
		return err
	}
	*s = Shape(w)
	s.Extra = extra
	return nil
}
