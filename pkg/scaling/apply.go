package scaling

import (
	"fmt"

	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
)

// Apply multiplies each target mesh's transform by the estimate's mean
// factor. The caller owns measurement recalculation afterwards; see
// Store.ApplyTo for the combined operation.
func Apply(est Estimate, targets []*mesh.Mesh) error {
	if !est.Valid() {
		return fmt.Errorf("scaling: no valid scale estimate to apply")
	}
	if est.Factor <= 0 {
		return fmt.Errorf("scaling: refusing to apply non-positive factor %v", est.Factor)
	}
	scale := geometry.UniformScale(est.Factor)
	for _, m := range targets {
		m.Transform = m.Transform.Mul(scale)
	}
	return nil
}

// ApplyTo applies the store's current estimate to the targets and then
// refreshes all model distances, since scaling the meshes changed
// them. It returns the estimate that was applied.
func (s *Store) ApplyTo(targets []*mesh.Mesh) (Estimate, error) {
	est := s.Estimate()
	if err := Apply(est, targets); err != nil {
		return Estimate{}, err
	}
	if err := s.Recalculate(); err != nil {
		return Estimate{}, err
	}
	return est, nil
}
