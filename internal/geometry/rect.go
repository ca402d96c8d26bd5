// Package geometry provides the coordinate primitives used by annotation
// transforms: axis-aligned regions of interest, general polygons with an
// overlap test, and 2D affine transforms.
//
// # Coordinate System
//
// Coordinates are float64 image coordinates with origin at the top-left,
// X increasing rightward and Y increasing downward. Rect bounds are
// inclusive on both ends, matching the way annotation corners name pixels.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is a normalized axis-aligned rectangle. Min holds the smallest X and
// Y, Max the largest. Both corners are inside the rectangle.
type Rect struct {
	Min r2.Vec
	Max r2.Vec
}

// FromXYXY builds a Rect from two opposite corners given in any order.
func FromXYXY(x1, y1, x2, y2 float64) Rect {
	return Rect{
		Min: r2.Vec{X: math.Min(x1, x2), Y: math.Min(y1, y2)},
		Max: r2.Vec{X: math.Max(x1, x2), Y: math.Max(y1, y2)},
	}
}

// FromCorners builds a Rect from two opposite corner vectors.
func FromCorners(a, b r2.Vec) Rect {
	return FromXYXY(a.X, a.Y, b.X, b.Y)
}

// FromXYWH builds a Rect from a top-left corner and a width and height.
// The far corner is (x+w, y+h).
func FromXYWH(x, y, w, h float64) Rect {
	return FromXYXY(x, y, x+w, y+h)
}

// Width returns Max.X - Min.X.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns Max.Y - Min.Y.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether both corners of o lie inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return r.Contains(o.Min) && r.Contains(o.Max)
}

// Clip clamps r to the pixel grid of a width x height image, so that every
// coordinate ends up in [0, width-1] x [0, height-1].
func (r Rect) Clip(width, height int) Rect {
	maxX := float64(width - 1)
	maxY := float64(height - 1)
	return Rect{
		Min: r2.Vec{X: clamp(r.Min.X, 0, maxX), Y: clamp(r.Min.Y, 0, maxY)},
		Max: r2.Vec{X: clamp(r.Max.X, 0, maxX), Y: clamp(r.Max.Y, 0, maxY)},
	}
}

// Inflate grows r by margin on every side. A negative margin shrinks it.
func (r Rect) Inflate(margin float64) Rect {
	return Rect{
		Min: r2.Vec{X: r.Min.X - margin, Y: r.Min.Y - margin},
		Max: r2.Vec{X: r.Max.X + margin, Y: r.Max.Y + margin},
	}
}

// Translate shifts r by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	d := r2.Vec{X: dx, Y: dy}
	return Rect{Min: r2.Add(r.Min, d), Max: r2.Add(r.Max, d)}
}

// Round rounds both corners to the nearest integer, halves to even.
func (r Rect) Round() Rect {
	return Rect{
		Min: r2.Vec{X: math.RoundToEven(r.Min.X), Y: math.RoundToEven(r.Min.Y)},
		Max: r2.Vec{X: math.RoundToEven(r.Max.X), Y: math.RoundToEven(r.Max.Y)},
	}
}

// Polygon returns the four corners of r clockwise from Min.
func (r Rect) Polygon() Polygon {
	return Polygon{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// Intersects reports whether r and o share at least one point.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
