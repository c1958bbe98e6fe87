package scaling

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/exanvub/photogrammetry/pkg/mesh"
)

// fileData is the JSON sidecar schema for measurements. Only settled
// pairs are persisted; an in-progress pick is transient state.
type fileData struct {
	Version string     `json:"version"`
	Pairs   []pairData `json:"pairs"`
}

type pairData struct {
	Label         string       `json:"label"`
	A             endpointData `json:"a"`
	B             endpointData `json:"b"`
	ModelDistance float64      `json:"modelDistance"`
	RealDistance  float64      `json:"realDistance,omitempty"`
}

type endpointData struct {
	Mesh   string `json:"mesh"`
	Vertex int    `json:"vertex"`
}

// Save writes all complete pairs to a JSON sidecar file. An empty
// store removes an existing sidecar.
func (s *Store) Save(path string) error {
	data := fileData{Version: "1.0"}
	for _, p := range s.pairs {
		if p.PointCount < 2 {
			continue
		}
		data.Pairs = append(data.Pairs, pairData{
			Label:         p.Label,
			A:             endpointData{Mesh: p.A.Mesh.Name, Vertex: p.A.VertexIndex},
			B:             endpointData{Mesh: p.B.Mesh.Name, Vertex: p.B.VertexIndex},
			ModelDistance: p.ModelDistance,
			RealDistance:  p.RealDistance,
		})
	}

	if len(data.Pairs) == 0 {
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling measurements: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing measurement file: %w", err)
	}
	return nil
}

// Load reads a JSON sidecar file into a new store, attaching endpoints
// to the given meshes by name, and refreshes the model distances
// against the current transforms.
func Load(path string, meshes []*mesh.Mesh) (*Store, error) {
	store := NewStore()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("reading measurement file: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing measurement file: %w", err)
	}

	byName := make(map[string]*mesh.Mesh, len(meshes))
	for _, m := range meshes {
		byName[m.Name] = m
	}

	for _, pd := range data.Pairs {
		ma, ok := byName[pd.A.Mesh]
		if !ok {
			return nil, fmt.Errorf("measurement %q references unknown mesh %q", pd.Label, pd.A.Mesh)
		}
		mb, ok := byName[pd.B.Mesh]
		if !ok {
			return nil, fmt.Errorf("measurement %q references unknown mesh %q", pd.Label, pd.B.Mesh)
		}
		store.pairs = append(store.pairs, &Pair{
			Label:         pd.Label,
			A:             Endpoint{Mesh: ma, VertexIndex: pd.A.Vertex},
			B:             Endpoint{Mesh: mb, VertexIndex: pd.B.Vertex},
			PointCount:    2,
			ModelDistance: pd.ModelDistance,
			RealDistance:  pd.RealDistance,
		})
	}

	if err := store.Recalculate(); err != nil {
		return nil, err
	}
	return store, nil
}
