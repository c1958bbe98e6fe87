// Package picking turns view rays into stable mesh vertex identities:
// cast against a candidate set, arbitrate hits, snap to the nearest
// vertex.
package picking

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
)

// Hit is the winning result of casting a ray against a candidate set
type Hit struct {
	Mesh     *mesh.Mesh
	World    r3.Vec  // hit point in world space
	Local    r3.Vec  // hit point in the winning mesh's local frame
	Distance float64 // distance from the local-frame ray origin
}

// Pick casts a world-space ray against each candidate mesh in its own
// local frame and arbitrates: the nearest successful hit wins, ties
// break by candidate order. A miss on every candidate returns ok=false;
// that is a normal outcome, not an error.
func Pick(ray geometry.Ray, candidates []*mesh.Mesh) (Hit, bool) {
	var best Hit
	found := false

	for _, m := range candidates {
		inv, err := m.Transform.Inverse()
		if err != nil {
			// Degenerate transform, nothing on this mesh can be hit
			continue
		}

		localRay := geometry.Ray{
			Origin:    inv.ApplyPoint(ray.Origin),
			Direction: inv.ApplyDirection(ray.Direction),
		}

		local, dist, ok := m.RayCast(localRay)
		if !ok {
			continue
		}
		if !found || dist < best.Distance {
			best = Hit{
				Mesh:     m,
				World:    m.Transform.ApplyPoint(local),
				Local:    local,
				Distance: dist,
			}
			found = true
		}
	}

	return best, found
}
