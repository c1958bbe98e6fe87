package picking

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
	"github.com/exanvub/photogrammetry/pkg/spatial"
)

func TestSnapNearestVertex(t *testing.T) {
	m := planeAt("plane", 0)
	s := NewSnapper()

	idx, err := s.Snap(m, r3.Vec{X: 0.9, Y: 0.1, Z: 0})
	if err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected vertex 1, got %d", idx)
	}
}

func TestSnapDeterministic(t *testing.T) {
	m := planeAt("plane", 0)
	s := NewSnapper()
	point := r3.Vec{X: 0.2, Y: 0.8, Z: 0.05}

	first, err := s.Snap(m, point)
	if err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := s.Snap(m, point)
		if err != nil {
			t.Fatalf("snap failed: %v", err)
		}
		if got != first {
			t.Fatalf("snap not deterministic: %d then %d", first, got)
		}
	}
}

func TestSnapAccountsForTransform(t *testing.T) {
	m := planeAt("plane", 0)
	m.Transform = geometry.Translate(r3.Vec{X: 10})
	s := NewSnapper()

	// World point near the translated position of vertex 1 (1,0,0)
	idx, err := s.Snap(m, r3.Vec{X: 11.1, Y: 0, Z: 0})
	if err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected vertex 1, got %d", idx)
	}
}

func TestSnapEmptyMesh(t *testing.T) {
	m := mesh.NewMesh("empty")
	s := NewSnapper()

	if _, err := s.Snap(m, r3.Vec{}); !errors.Is(err, spatial.ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestSnapRayFullPath(t *testing.T) {
	near := planeAt("near", 5)
	far := planeAt("far", 0)
	s := NewSnapper()

	ray := geometry.Ray{
		Origin:    r3.Vec{X: 0.05, Y: 0.1, Z: 10},
		Direction: r3.Vec{X: 0, Y: 0, Z: -1},
	}
	m, idx, ok, err := s.SnapRay(ray, []*mesh.Mesh{far, near})
	if err != nil {
		t.Fatalf("SnapRay failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if m != near {
		t.Errorf("expected mesh %q, got %q", near.Name, m.Name)
	}
	if idx != 0 {
		t.Errorf("expected vertex 0, got %d", idx)
	}
}

func TestSnapRayMiss(t *testing.T) {
	m := planeAt("plane", 0)
	s := NewSnapper()

	ray := geometry.Ray{
		Origin:    r3.Vec{X: 50, Y: 50, Z: 10},
		Direction: r3.Vec{X: 0, Y: 0, Z: -1},
	}
	_, _, ok, err := s.SnapRay(ray, []*mesh.Mesh{m})
	if err != nil {
		t.Fatalf("SnapRay failed: %v", err)
	}
	if ok {
		t.Error("expected no hit")
	}
}

func TestInvalidateRebuildsIndex(t *testing.T) {
	m := planeAt("plane", 0)
	s := NewSnapper()

	idx, err := s.Snap(m, r3.Vec{X: 0.9, Y: 0.1, Z: 0})
	if err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected vertex 1, got %d", idx)
	}

	// Edit geometry: drop a new vertex right at the query point
	m.Vertices = append(m.Vertices, r3.Vec{X: 0.9, Y: 0.1, Z: 0})
	s.Invalidate(m)

	idx, err = s.Snap(m, r3.Vec{X: 0.9, Y: 0.1, Z: 0})
	if err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	if idx != 4 {
		t.Errorf("expected new vertex 4 after invalidation, got %d", idx)
	}
}

func TestUnprojectRayHitsProjectedPoint(t *testing.T) {
	m := planeAt("plane", 0)
	bbox := m.BoundingBox()
	cam := NewCamera(bbox)

	const width, height = 800, 600
	target := r3.Vec{X: 0.3, Y: 0.7, Z: 0}
	sx, sy, _ := cam.Project(target, width, height)

	ray := cam.Unproject(sx, sy, width, height)
	hit, ok := Pick(ray, []*mesh.Mesh{m})
	if !ok {
		t.Fatal("unprojected ray missed the mesh")
	}
	if geometry.Distance(hit.World, target) > 1e-6 {
		t.Errorf("expected hit near %v, got %v", target, hit.World)
	}
}
