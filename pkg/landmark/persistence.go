package landmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/exanvub/photogrammetry/pkg/mesh"
)

// fileData is the JSON sidecar schema for landmarks
type fileData struct {
	Version string     `json:"version"`
	Meshes  []meshData `json:"meshes"`
}

type meshData struct {
	Mesh      string         `json:"mesh"`
	Landmarks []landmarkData `json:"landmarks"`
}

type landmarkData struct {
	Name   string `json:"name"`
	Vertex int    `json:"vertex"`
}

// Save writes the store to a JSON sidecar file. An empty store removes
// an existing sidecar instead of writing an empty one.
func (s *Store) Save(path string) error {
	if s.Count() == 0 {
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	}

	data := fileData{Version: "1.0"}
	var current *meshData
	for _, lm := range s.List() {
		if current == nil || current.Mesh != lm.Mesh.Name {
			data.Meshes = append(data.Meshes, meshData{Mesh: lm.Mesh.Name})
			current = &data.Meshes[len(data.Meshes)-1]
		}
		current.Landmarks = append(current.Landmarks, landmarkData{
			Name:   lm.Name,
			Vertex: lm.VertexIndex,
		})
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling landmarks: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing landmark file: %w", err)
	}
	return nil
}

// Load reads a JSON sidecar file into a new store, attaching landmarks
// to the matching meshes by name. A missing file yields an empty
// store. Records referring to unknown meshes or out-of-range vertices
// are rejected as errors rather than silently dropped.
func Load(path string, meshes []*mesh.Mesh) (*Store, error) {
	store := NewStore()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("reading landmark file: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing landmark file: %w", err)
	}

	byName := make(map[string]*mesh.Mesh, len(meshes))
	for _, m := range meshes {
		byName[m.Name] = m
	}

	for _, md := range data.Meshes {
		m, ok := byName[md.Mesh]
		if !ok {
			return nil, fmt.Errorf("landmark file references unknown mesh %q", md.Mesh)
		}
		for _, ld := range md.Landmarks {
			if _, err := store.Place(m, ld.Vertex, ld.Name); err != nil {
				return nil, fmt.Errorf("loading landmark %q on %q: %w", ld.Name, md.Mesh, err)
			}
		}
	}
	return store, nil
}
