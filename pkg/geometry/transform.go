package geometry

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a 4x4 affine transform mapping local coordinates to world
// coordinates. The zero value is the identity transform.
type Transform struct {
	m *mat.Dense
}

// Identity returns the identity transform
func Identity() Transform {
	return Transform{}
}

// NewTransform creates a transform from 16 row-major matrix elements
func NewTransform(elements []float64) (Transform, error) {
	if len(elements) != 16 {
		return Transform{}, fmt.Errorf("transform needs 16 elements, got %d", len(elements))
	}
	return Transform{m: mat.NewDense(4, 4, elements)}, nil
}

// Translate returns a pure translation transform
func Translate(v r3.Vec) Transform {
	return Transform{m: mat.NewDense(4, 4, []float64{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	})}
}

// UniformScale returns a uniform scaling transform
func UniformScale(s float64) Transform {
	return Transform{m: mat.NewDense(4, 4, []float64{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, s, 0,
		0, 0, 0, 1,
	})}
}

func (t Transform) matrix() *mat.Dense {
	if t.m == nil {
		return mat.NewDense(4, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		})
	}
	return t.m
}

// Mul returns the composition t * other
func (t Transform) Mul(other Transform) Transform {
	if t.m == nil {
		return other
	}
	if other.m == nil {
		return t
	}
	var out mat.Dense
	out.Mul(t.m, other.m)
	return Transform{m: &out}
}

// ApplyPoint transforms a point (translation applies)
func (t Transform) ApplyPoint(p r3.Vec) r3.Vec {
	if t.m == nil {
		return p
	}
	return t.apply(p, 1)
}

// ApplyDirection transforms a direction vector (translation ignored)
func (t Transform) ApplyDirection(d r3.Vec) r3.Vec {
	if t.m == nil {
		return d
	}
	return t.apply(d, 0)
}

func (t Transform) apply(v r3.Vec, w float64) r3.Vec {
	m := t.m
	return r3.Vec{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z + m.At(0, 3)*w,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z + m.At(1, 3)*w,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z + m.At(2, 3)*w,
	}
}

// Inverse returns the inverse transform. It fails for singular
// transforms, e.g. a zero scale.
func (t Transform) Inverse() (Transform, error) {
	if t.m == nil {
		return Transform{}, nil
	}
	var inv mat.Dense
	if err := inv.Inverse(t.m); err != nil {
		return Transform{}, fmt.Errorf("inverting transform: %w", err)
	}
	return Transform{m: &inv}, nil
}
