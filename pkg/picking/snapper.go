package picking

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
	"github.com/exanvub/photogrammetry/pkg/spatial"
)

// Snapper converts surface points into stable vertex indices using a
// per-mesh vertex index. Indexes are built lazily and cached; the
// caller owns invalidation when mesh geometry changes.
type Snapper struct {
	indexes map[*mesh.Mesh]*spatial.VertexIndex
}

// NewSnapper creates a snapper with no cached indexes
func NewSnapper() *Snapper {
	return &Snapper{indexes: make(map[*mesh.Mesh]*spatial.VertexIndex)}
}

func (s *Snapper) index(m *mesh.Mesh) *spatial.VertexIndex {
	ix, ok := s.indexes[m]
	if !ok {
		ix = spatial.Build(m.Vertices)
		s.indexes[m] = ix
	}
	return ix
}

// Snap returns the index of the mesh vertex nearest to a world-space
// point. Snapping against a mesh with no vertices reports
// spatial.ErrEmptyIndex.
func (s *Snapper) Snap(m *mesh.Mesh, worldPoint r3.Vec) (int, error) {
	inv, err := m.Transform.Inverse()
	if err != nil {
		return 0, fmt.Errorf("snapping on %q: %w", m.Name, err)
	}
	idx, _, err := s.index(m).Nearest(inv.ApplyPoint(worldPoint))
	return idx, err
}

// SnapRay is the full pick-and-snap path: cast against the candidates,
// then snap the winning hit to its mesh's nearest vertex. ok=false
// means the ray hit nothing.
func (s *Snapper) SnapRay(ray geometry.Ray, candidates []*mesh.Mesh) (*mesh.Mesh, int, bool, error) {
	hit, ok := Pick(ray, candidates)
	if !ok {
		return nil, 0, false, nil
	}
	// The hit is already in the winning mesh's local frame
	idx, _, err := s.index(hit.Mesh).Nearest(hit.Local)
	if err != nil {
		return nil, 0, false, err
	}
	return hit.Mesh, idx, true, nil
}

// Invalidate drops the cached index for a mesh. Call it after any
// geometry edit, before the next snap.
func (s *Snapper) Invalidate(m *mesh.Mesh) {
	delete(s.indexes, m)
}

// InvalidateAll drops every cached index
func (s *Snapper) InvalidateAll() {
	s.indexes = make(map[*mesh.Mesh]*spatial.VertexIndex)
}
