package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Affine is a 2D affine transform stored row-major as [a b c d e f]:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Affine [6]float64

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{1, 0, 0, 0, 1, 0}
}

// Translation returns a transform shifting by (dx, dy).
func Translation(dx, dy float64) Affine {
	return Affine{1, 0, dx, 0, 1, dy}
}

// Scaling returns a transform scaling by (sx, sy) about the origin.
func Scaling(sx, sy float64) Affine {
	return Affine{sx, 0, 0, 0, sy, 0}
}

// Apply transforms v.
func (m Affine) Apply(v r2.Vec) r2.Vec {
	return r2.Vec{
		X: m[0]*v.X + m[1]*v.Y + m[2],
		Y: m[3]*v.X + m[4]*v.Y + m[5],
	}
}

// Then returns the transform that applies m first and n second.
func (m Affine) Then(n Affine) Affine {
	return Affine{
		n[0]*m[0] + n[1]*m[3],
		n[0]*m[1] + n[1]*m[4],
		n[0]*m[2] + n[1]*m[5] + n[2],
		n[3]*m[0] + n[4]*m[3],
		n[3]*m[1] + n[4]*m[4],
		n[3]*m[2] + n[4]*m[5] + n[5],
	}
}

// NormalizeRightAngle maps an angle in degrees to one of 0, 90, 180 or 270.
// -90 is accepted as 270, -180 as 180 and 360 as 0. Any other angle is an
// error.
func NormalizeRightAngle(degrees int) (int, error) {
	switch degrees {
	case 0, 360:
		return 0, nil
	case 90:
		return 90, nil
	case 180, -180:
		return 180, nil
	case 270, -90:
		return 270, nil
	}
	return 0, fmt.Errorf("rotation must be one of -180, -90, 0, 90, 180, 270 or 360, got %d", degrees)
}

// RightAngleRotation returns the transform that maps pixel coordinates of a
// width x height image onto the image rotated clockwise by degrees, which
// must already be normalized to 0, 90, 180 or 270.
//
// The mapping is pixel-exact: pixel (x, y) lands on the index it occupies in
// the rotated buffer, so four 90 degree rotations are the identity.
//
//	 90: (x, y) -> (h-1-y, x)
//	180: (x, y) -> (w-1-x, h-1-y)
//	270: (x, y) -> (y, w-1-x)
func RightAngleRotation(degrees, width, height int) Affine {
	w := float64(width)
	h := float64(height)
	// Turn about the origin, then shift the result back onto the grid.
	switch degrees {
	case 90:
		return Affine{0, -1, 0, 1, 0, 0}.Then(Translation(h-1, 0))
	case 180:
		return Affine{-1, 0, 0, 0, -1, 0}.Then(Translation(w-1, h-1))
	case 270:
		return Affine{0, 1, 0, -1, 0, 0}.Then(Translation(0, w-1))
	}
	return Identity()
}
