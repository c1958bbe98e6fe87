package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/geometry"
)

// Face references three vertices by index
type Face [3]int

// Mesh represents an indexed triangle mesh with a local-to-world
// transform. Vertex indices are stable: insertion order is identity,
// which landmarks and measurements rely on.
type Mesh struct {
	Name      string
	Vertices  []r3.Vec
	Faces     []Face
	Transform geometry.Transform
}

// NewMesh creates an empty mesh with an identity transform
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Vertices:  make([]r3.Vec, 0),
		Faces:     make([]Face, 0),
		Transform: geometry.Identity(),
	}
}

// VertexCount returns the number of vertices in the mesh
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangles in the mesh
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// WorldVertex returns the world-space position of a vertex.
// The position is computed from the current transform, never cached.
func (m *Mesh) WorldVertex(index int) (r3.Vec, error) {
	if index < 0 || index >= len(m.Vertices) {
		return r3.Vec{}, fmt.Errorf("vertex %d out of range on %q (have %d)", index, m.Name, len(m.Vertices))
	}
	return m.Transform.ApplyPoint(m.Vertices[index]), nil
}

// RayCast intersects a local-frame ray with the mesh surface and
// returns the nearest hit point with its distance from the ray origin.
// A miss is a normal outcome, not an error.
func (m *Mesh) RayCast(ray geometry.Ray) (r3.Vec, float64, bool) {
	best := r3.Vec{}
	bestDist := math.MaxFloat64
	found := false

	for _, face := range m.Faces {
		hit, dist, ok := ray.IntersectTriangle(
			m.Vertices[face[0]],
			m.Vertices[face[1]],
			m.Vertices[face[2]],
		)
		if ok && dist < bestDist {
			best = hit
			bestDist = dist
			found = true
		}
	}

	if !found {
		return r3.Vec{}, 0, false
	}
	return best, bestDist, true
}

// BoundingBox calculates the local-space bounding box of the mesh
func (m *Mesh) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, v := range m.Vertices {
		bbox.Extend(v)
	}
	return bbox
}

// SurfaceArea calculates the total local-space surface area
func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for _, face := range m.Faces {
		e1 := r3.Sub(m.Vertices[face[1]], m.Vertices[face[0]])
		e2 := r3.Sub(m.Vertices[face[2]], m.Vertices[face[0]])
		total += 0.5 * r3.Norm(r3.Cross(e1, e2))
	}
	return total
}
