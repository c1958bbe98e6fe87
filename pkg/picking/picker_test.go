package picking

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
)

// planeAt builds a unit square facing +Z at the given depth
func planeAt(name string, z float64) *mesh.Mesh {
	m := mesh.NewMesh(name)
	m.Vertices = []r3.Vec{
		{X: 0, Y: 0, Z: z},
		{X: 1, Y: 0, Z: z},
		{X: 1, Y: 1, Z: z},
		{X: 0, Y: 1, Z: z},
	}
	m.Faces = []mesh.Face{{0, 1, 2}, {0, 2, 3}}
	return m
}

func downRay() geometry.Ray {
	return geometry.Ray{
		Origin:    r3.Vec{X: 0.5, Y: 0.5, Z: 10},
		Direction: r3.Vec{X: 0, Y: 0, Z: -1},
	}
}

func TestPickNearestOfManyHits(t *testing.T) {
	far := planeAt("far", 0)
	near := planeAt("near", 5)
	mid := planeAt("mid", 2)

	hit, ok := Pick(downRay(), []*mesh.Mesh{far, near, mid})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Mesh != near {
		t.Errorf("expected nearest mesh %q, got %q", near.Name, hit.Mesh.Name)
	}
	if math.Abs(hit.Distance-5.0) > 1e-10 {
		t.Errorf("expected distance 5, got %v", hit.Distance)
	}
}

func TestPickSingleSuccess(t *testing.T) {
	hitMesh := planeAt("hit", 0)
	missMesh := planeAt("miss", 0)
	// Move the second plane out of the ray's path
	missMesh.Transform = geometry.Translate(r3.Vec{X: 100})

	hit, ok := Pick(downRay(), []*mesh.Mesh{missMesh, hitMesh})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Mesh != hitMesh {
		t.Errorf("expected %q, got %q", hitMesh.Name, hit.Mesh.Name)
	}
}

func TestPickNoHits(t *testing.T) {
	a := planeAt("a", 0)
	b := planeAt("b", 1)
	ray := geometry.Ray{
		Origin:    r3.Vec{X: 50, Y: 50, Z: 10},
		Direction: r3.Vec{X: 0, Y: 0, Z: -1},
	}
	if _, ok := Pick(ray, []*mesh.Mesh{a, b}); ok {
		t.Error("expected no hit")
	}
}

func TestPickTieBreaksByCandidateOrder(t *testing.T) {
	first := planeAt("first", 3)
	second := planeAt("second", 3)

	hit, ok := Pick(downRay(), []*mesh.Mesh{first, second})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Mesh != first {
		t.Errorf("tie must resolve to the first candidate, got %q", hit.Mesh.Name)
	}
}

func TestPickRespectsMeshTransform(t *testing.T) {
	m := planeAt("moved", 0)
	m.Transform = geometry.Translate(r3.Vec{X: 0, Y: 0, Z: 4})

	hit, ok := Pick(downRay(), []*mesh.Mesh{m})
	if !ok {
		t.Fatal("expected a hit on the translated plane")
	}
	if math.Abs(hit.World.Z-4.0) > 1e-10 {
		t.Errorf("world hit should be at z=4, got %v", hit.World.Z)
	}
	if math.Abs(hit.Local.Z) > 1e-10 {
		t.Errorf("local hit should be at z=0, got %v", hit.Local.Z)
	}
}

func TestPickIsPure(t *testing.T) {
	m := planeAt("plane", 0)
	ray := downRay()

	first, ok := Pick(ray, []*mesh.Mesh{m})
	if !ok {
		t.Fatal("expected a hit")
	}
	for i := 0; i < 5; i++ {
		next, ok := Pick(ray, []*mesh.Mesh{m})
		if !ok || next != first {
			t.Fatal("repeated pick with unchanged state must return the same hit")
		}
	}
}
