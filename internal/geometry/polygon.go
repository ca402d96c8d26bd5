package geometry

import "gonum.org/v1/gonum/spatial/r2"

// Polygon is a closed ring of vertices. The closing edge from the last
// vertex back to the first is implicit. Polygons need not be convex.
type Polygon []r2.Vec

// Bounds returns the axis-aligned bounding rectangle of p.
// The zero Rect is returned for an empty polygon.
func (p Polygon) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	b := Rect{Min: p[0], Max: p[0]}
	for _, v := range p[1:] {
		b.Min.X = min(b.Min.X, v.X)
		b.Min.Y = min(b.Min.Y, v.Y)
		b.Max.X = max(b.Max.X, v.X)
		b.Max.Y = max(b.Max.Y, v.Y)
	}
	return b
}

// Intersects reports whether p and q overlap. Touching boundaries count as
// an intersection, so does one polygon lying entirely inside the other.
//
// The test is exact for simple polygons of any shape:
//  1. any pair of edges crossing or touching means overlap
//  2. otherwise the boundaries are disjoint, so the polygons overlap only
//     when a vertex of one lies inside the other
func (p Polygon) Intersects(q Polygon) bool {
	if len(p) == 0 || len(q) == 0 {
		return false
	}
	if !p.Bounds().Intersects(q.Bounds()) {
		return false
	}

	for i := range p {
		a1, a2 := p[i], p[(i+1)%len(p)]
		for j := range q {
			b1, b2 := q[j], q[(j+1)%len(q)]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}

	return p.ContainsPoint(q[0]) || q.ContainsPoint(p[0])
}

// ContainsPoint reports whether v is strictly inside p using the even-odd
// ray casting rule. Points on the boundary may report either way.
func (p Polygon) ContainsPoint(v r2.Vec) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > v.Y) != (b.Y > v.Y) {
			x := (b.X-a.X)*(v.Y-a.Y)/(b.Y-a.Y) + a.X
			if v.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// orientation returns the sign of the cross product (b-a) x (c-a):
// 1 for counter-clockwise, -1 for clockwise, 0 for collinear.
func orientation(a, b, c r2.Vec) int {
	v := r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment reports whether c, known to be collinear with a-b, lies on it.
func onSegment(a, b, c r2.Vec) bool {
	return c.X >= min(a.X, b.X) && c.X <= max(a.X, b.X) &&
		c.Y >= min(a.Y, b.Y) && c.Y <= max(a.Y, b.Y)
}

func segmentsIntersect(p1, p2, q1, q2 r2.Vec) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, p2, q2):
		return true
	case o3 == 0 && onSegment(q1, q2, p1):
		return true
	case o4 == 0 && onSegment(q1, q2, p2):
		return true
	}
	return false
}
