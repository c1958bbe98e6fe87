package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"
)

const rayEpsilon = 1e-9

// Ray represents a half-line from an origin in a direction.
// The direction does not need to be normalized; reported hit
// distances are Euclidean regardless.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// NewRay creates a ray from an origin towards a target point
func NewRay(origin, target r3.Vec) Ray {
	return Ray{Origin: origin, Direction: r3.Sub(target, origin)}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// IntersectTriangle tests the ray against a single triangle using the
// Möller–Trumbore algorithm. It returns the hit point and true when the
// ray crosses the triangle in front of the origin. Hits behind the
// origin and rays parallel to the triangle plane report no hit.
func (r Ray) IntersectTriangle(v0, v1, v2 r3.Vec) (r3.Vec, float64, bool) {
	edge1 := r3.Sub(v1, v0)
	edge2 := r3.Sub(v2, v0)

	h := r3.Cross(r.Direction, edge2)
	det := r3.Dot(edge1, h)
	if det > -rayEpsilon && det < rayEpsilon {
		return r3.Vec{}, 0, false
	}

	invDet := 1.0 / det
	s := r3.Sub(r.Origin, v0)
	u := invDet * r3.Dot(s, h)
	if u < 0 || u > 1 {
		return r3.Vec{}, 0, false
	}

	q := r3.Cross(s, edge1)
	v := invDet * r3.Dot(r.Direction, q)
	if v < 0 || u+v > 1 {
		return r3.Vec{}, 0, false
	}

	t := invDet * r3.Dot(edge2, q)
	if t < rayEpsilon {
		return r3.Vec{}, 0, false
	}

	hit := r.At(t)
	return hit, Distance(r.Origin, hit), true
}
