// Package landmark maintains named vertex annotations on meshes: the
// authoritative per-scene landmark table with uniqueness rules, plus
// CSV export and sidecar persistence.
package landmark

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/mesh"
)

var (
	// ErrDuplicatePosition means the vertex already carries a landmark
	// on that mesh.
	ErrDuplicatePosition = errors.New("landmark: another landmark is already at this position")
	// ErrNameCollision means the name is already used on that mesh.
	ErrNameCollision = errors.New("landmark: name already exists on this mesh")
	// ErrEmptyName rejects empty or whitespace-only names.
	ErrEmptyName = errors.New("landmark: name cannot be empty")
	// ErrNotFound means no landmark with that name exists on the mesh.
	ErrNotFound = errors.New("landmark: not found")
)

// Landmark is a named, persistent reference to one vertex on one mesh
type Landmark struct {
	Mesh        *mesh.Mesh
	Name        string
	VertexIndex int
}

// entry holds one mesh's landmarks with their insertion order
type entry struct {
	mesh     *mesh.Mesh
	names    []string       // insertion order
	byName   map[string]int // name -> vertex index
	vertices map[int]string // vertex index -> name
}

// Store is the authoritative landmark table for one scene. It is not
// safe for concurrent use; all mutation happens on the event thread.
type Store struct {
	entries map[*mesh.Mesh]*entry
}

// NewStore creates an empty landmark store
func NewStore() *Store {
	return &Store{entries: make(map[*mesh.Mesh]*entry)}
}

func (s *Store) entryFor(m *mesh.Mesh) *entry {
	e, ok := s.entries[m]
	if !ok {
		e = &entry{
			mesh:     m,
			byName:   make(map[string]int),
			vertices: make(map[int]string),
		}
		s.entries[m] = e
	}
	return e
}

// Place registers a landmark at a vertex. An empty proposedName picks
// the next free positional name. Placement on a vertex already claimed
// by another landmark on the same mesh is rejected and leaves the
// store unchanged.
func (s *Store) Place(m *mesh.Mesh, vertexIndex int, proposedName string) (Landmark, error) {
	if vertexIndex < 0 || vertexIndex >= m.VertexCount() {
		return Landmark{}, fmt.Errorf("landmark: vertex %d out of range on %q", vertexIndex, m.Name)
	}

	e := s.entryFor(m)
	if _, taken := e.vertices[vertexIndex]; taken {
		return Landmark{}, ErrDuplicatePosition
	}

	name := strings.TrimSpace(proposedName)
	if name == "" {
		name = e.nextDefaultName()
	} else if _, exists := e.byName[name]; exists {
		return Landmark{}, ErrNameCollision
	}

	e.names = append(e.names, name)
	e.byName[name] = vertexIndex
	e.vertices[vertexIndex] = name
	return Landmark{Mesh: m, Name: name, VertexIndex: vertexIndex}, nil
}

// nextDefaultName numbers landmarks from 1, skipping names still in use
func (e *entry) nextDefaultName() string {
	n := len(e.names) + 1
	for {
		name := strconv.Itoa(n)
		if _, exists := e.byName[name]; !exists {
			return name
		}
		n++
	}
}

// Rename changes a landmark's display name. Renaming to the current
// name is a no-op; empty and colliding names are rejected and the
// prior name stays in force.
func (s *Store) Rename(m *mesh.Mesh, oldName, newName string) error {
	e, ok := s.entries[m]
	if !ok {
		return ErrNotFound
	}
	vertexIndex, ok := e.byName[oldName]
	if !ok {
		return ErrNotFound
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	if newName == oldName {
		return nil
	}
	if _, exists := e.byName[newName]; exists {
		return ErrNameCollision
	}

	for i, name := range e.names {
		if name == oldName {
			e.names[i] = newName
			break
		}
	}
	delete(e.byName, oldName)
	e.byName[newName] = vertexIndex
	e.vertices[vertexIndex] = newName
	return nil
}

// Delete removes a single landmark
func (s *Store) Delete(m *mesh.Mesh, name string) error {
	e, ok := s.entries[m]
	if !ok {
		return ErrNotFound
	}
	vertexIndex, ok := e.byName[name]
	if !ok {
		return ErrNotFound
	}

	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i], e.names[i+1:]...)
			break
		}
	}
	delete(e.byName, name)
	delete(e.vertices, vertexIndex)
	if len(e.names) == 0 {
		delete(s.entries, m)
	}
	return nil
}

// DeleteAllOn removes every landmark on one mesh and reports how many
// were removed
func (s *Store) DeleteAllOn(m *mesh.Mesh) int {
	e, ok := s.entries[m]
	if !ok {
		return 0
	}
	n := len(e.names)
	delete(s.entries, m)
	return n
}

// DeleteAll removes every landmark in the scene and reports how many
// were removed
func (s *Store) DeleteAll() int {
	total := 0
	for _, e := range s.entries {
		total += len(e.names)
	}
	s.entries = make(map[*mesh.Mesh]*entry)
	return total
}

// Count returns the number of landmarks in the scene
func (s *Store) Count() int {
	total := 0
	for _, e := range s.entries {
		total += len(e.names)
	}
	return total
}

// CountOn returns the number of landmarks on one mesh
func (s *Store) CountOn(m *mesh.Mesh) int {
	if e, ok := s.entries[m]; ok {
		return len(e.names)
	}
	return 0
}

// List rebuilds the canonical landmark list from the authoritative
// per-mesh tables: sorted by mesh name, then insertion order. The list
// is always rebuilt rather than patched incrementally.
func (s *Store) List() []Landmark {
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].mesh.Name < entries[j].mesh.Name
	})

	var out []Landmark
	for _, e := range entries {
		for _, name := range e.names {
			out = append(out, Landmark{
				Mesh:        e.mesh,
				Name:        name,
				VertexIndex: e.byName[name],
			})
		}
	}
	return out
}

// WorldPosition resolves a landmark to its current world-space
// position, computed from the mesh's transform at call time
func (s *Store) WorldPosition(m *mesh.Mesh, name string) (r3.Vec, error) {
	e, ok := s.entries[m]
	if !ok {
		return r3.Vec{}, ErrNotFound
	}
	vertexIndex, ok := e.byName[name]
	if !ok {
		return r3.Vec{}, ErrNotFound
	}
	return m.WorldVertex(vertexIndex)
}
