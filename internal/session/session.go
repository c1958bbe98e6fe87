// Package session coordinates the loaded meshes, landmark store,
// measurement store, snapper, and camera behind a single event
// surface. Each method corresponds to one user-visible action, so a
// frontend only translates input events into calls here.
package session

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/internal/config"
	"github.com/exanvub/photogrammetry/pkg/landmark"
	"github.com/exanvub/photogrammetry/pkg/mesh"
	"github.com/exanvub/photogrammetry/pkg/openscad"
	"github.com/exanvub/photogrammetry/pkg/picking"
	"github.com/exanvub/photogrammetry/pkg/scaling"
)

// Session holds the full state of one editing session
type Session struct {
	cfg       *config.Config
	meshes    []*mesh.Mesh
	files     map[*mesh.Mesh]string
	landmarks *landmark.Store
	pairs     *scaling.Store
	snapper   *picking.Snapper
	camera    *picking.Camera

	width  int
	height int
}

// New creates an empty session
func New(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{
		cfg:       cfg,
		files:     make(map[*mesh.Mesh]string),
		landmarks: landmark.NewStore(),
		pairs:     scaling.NewStore(),
		snapper:   picking.NewSnapper(),
		width:     1400,
		height:    900,
	}
}

// LoadMeshFile parses an STL file and adds the mesh to the session
func (s *Session) LoadMeshFile(path string) (*mesh.Mesh, error) {
	m, err := mesh.Parse(path)
	if err != nil {
		return nil, err
	}
	s.AddMesh(m)
	s.files[m] = path
	return m, nil
}

// AddMesh adds an already-built mesh to the session
func (s *Session) AddMesh(m *mesh.Mesh) {
	s.meshes = append(s.meshes, m)
	if s.camera == nil {
		s.camera = picking.NewCamera(m.BoundingBox())
	}
}

// Meshes returns the meshes in load order
func (s *Session) Meshes() []*mesh.Mesh {
	return s.meshes
}

// MeshByName returns the mesh with the given name
func (s *Session) MeshByName(name string) (*mesh.Mesh, bool) {
	for _, m := range s.meshes {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Landmarks returns the landmark store
func (s *Session) Landmarks() *landmark.Store {
	return s.landmarks
}

// Pairs returns the measurement pair store
func (s *Session) Pairs() *scaling.Store {
	return s.pairs
}

// Camera returns the session camera, or nil before the first mesh is
// loaded
func (s *Session) Camera() *picking.Camera {
	return s.camera
}

// SetViewport records the viewport dimensions used to convert screen
// coordinates into rays
func (s *Session) SetViewport(width, height int) {
	s.width = width
	s.height = height
}

// PickVertex casts a ray through the given screen position and snaps
// the nearest hit to a vertex. ok is false when no mesh is under the
// cursor.
func (s *Session) PickVertex(screenX, screenY float64) (*mesh.Mesh, int, bool, error) {
	if s.camera == nil {
		return nil, 0, false, nil
	}
	ray := s.camera.Unproject(screenX, screenY, float64(s.width), float64(s.height))
	return s.snapper.SnapRay(ray, s.meshes)
}

// PlaceLandmark picks a vertex under the cursor and places a landmark
// on it. An empty name assigns the next free default name. ok is
// false when the pick hit nothing.
func (s *Session) PlaceLandmark(screenX, screenY float64, name string) (landmark.Landmark, bool, error) {
	m, vertexIndex, ok, err := s.PickVertex(screenX, screenY)
	if err != nil || !ok {
		return landmark.Landmark{}, false, err
	}
	lm, err := s.landmarks.Place(m, vertexIndex, name)
	if err != nil {
		return landmark.Landmark{}, false, err
	}
	return lm, true, nil
}

// RenameLandmark renames a landmark on the given mesh
func (s *Session) RenameLandmark(m *mesh.Mesh, oldName, newName string) error {
	return s.landmarks.Rename(m, oldName, newName)
}

// DeleteLandmark removes a landmark from the given mesh
func (s *Session) DeleteLandmark(m *mesh.Mesh, name string) error {
	return s.landmarks.Delete(m, name)
}

// JumpToLandmark re-targets the camera at a landmark's current world
// position
func (s *Session) JumpToLandmark(m *mesh.Mesh, name string) (r3.Vec, error) {
	pos, err := s.landmarks.WorldPosition(m, name)
	if err != nil {
		return r3.Vec{}, err
	}
	if s.camera != nil {
		s.camera.Target = pos
	}
	return pos, nil
}

// BeginPair starts a new measurement pair. An empty label assigns the
// next default label.
func (s *Session) BeginPair(label string) (*scaling.Pair, error) {
	return s.pairs.Add(label)
}

// PickPairPoint picks a vertex under the cursor and assigns it as the
// next endpoint of the active pair. ok is false when the pick hit
// nothing; the pair then stays as it was.
func (s *Session) PickPairPoint(screenX, screenY float64) (bool, error) {
	m, vertexIndex, ok, err := s.PickVertex(screenX, screenY)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.pairs.PlacePoint(m, vertexIndex); err != nil {
		return false, err
	}
	return true, nil
}

// CancelPick aborts the pick in progress, restoring a re-picked pair
// or discarding a fresh one
func (s *Session) CancelPick() {
	s.pairs.Cancel()
}

// RePickPair restarts point selection for an existing pair
func (s *Session) RePickPair(index int) error {
	_, err := s.pairs.RePick(index)
	return err
}

// SetRealDistance records the real-world distance for a pair
func (s *Session) SetRealDistance(index int, distance float64) error {
	return s.pairs.SetRealDistance(index, distance)
}

// RemovePair deletes a pair
func (s *Session) RemovePair(index int) error {
	return s.pairs.Remove(index)
}

// EstimateScale aggregates the measured pairs into a scale estimate
func (s *Session) EstimateScale() scaling.Estimate {
	return s.pairs.Estimate()
}

// ApplyScale applies the current estimate to every mesh in the
// session and recomputes the model distances
func (s *Session) ApplyScale() (scaling.Estimate, error) {
	return s.pairs.ApplyTo(s.meshes)
}

// ExportLandmarksCSV writes all landmarks as CSV
func (s *Session) ExportLandmarksCSV(w io.Writer) (int, error) {
	return s.landmarks.ExportCSV(w)
}

// ExportMarkers writes an OpenSCAD scene with one sphere per landmark
func (s *Session) ExportMarkers(path string) error {
	var markers []openscad.Marker
	for _, lm := range s.landmarks.List() {
		pos, err := s.landmarks.WorldPosition(lm.Mesh, lm.Name)
		if err != nil {
			return err
		}
		markers = append(markers, openscad.Marker{
			Label:    lm.Name,
			MeshName: lm.Mesh.Name,
			X:        pos.X,
			Y:        pos.Y,
			Z:        pos.Z,
		})
	}
	return openscad.WriteMarkersFile(path, markers, s.cfg.SphereRadius)
}

// ReloadMesh re-parses a mesh's source file in place and drops its
// cached vertex index. Landmarks and pairs referencing the mesh keep
// their vertex indices; callers should verify them against the new
// vertex count.
func (s *Session) ReloadMesh(m *mesh.Mesh) error {
	path, ok := s.files[m]
	if !ok {
		return fmt.Errorf("mesh %q was not loaded from a file", m.Name)
	}
	fresh, err := mesh.Parse(path)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", path, err)
	}
	m.Vertices = fresh.Vertices
	m.Faces = fresh.Faces
	s.snapper.Invalidate(m)
	return nil
}

// LandmarkSidecar returns the landmark sidecar path for the first
// loaded mesh file, or "" when no mesh came from a file
func (s *Session) LandmarkSidecar() string {
	base := s.primaryFile()
	if base == "" {
		return ""
	}
	return s.cfg.SidecarPath(base)
}

// PairSidecar returns the measurement sidecar path for the first
// loaded mesh file, or "" when no mesh came from a file
func (s *Session) PairSidecar() string {
	base := s.LandmarkSidecar()
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, ".json") + ".pairs.json"
}

func (s *Session) primaryFile() string {
	for _, m := range s.meshes {
		if path, ok := s.files[m]; ok {
			return path
		}
	}
	return ""
}

// Save writes the landmark and measurement sidecars next to the
// primary mesh file
func (s *Session) Save() error {
	if s.LandmarkSidecar() == "" {
		return fmt.Errorf("no mesh file to save sidecars for")
	}
	if err := s.landmarks.Save(s.LandmarkSidecar()); err != nil {
		return err
	}
	return s.pairs.Save(s.PairSidecar())
}

// Load reads the landmark and measurement sidecars for the primary
// mesh file. Missing sidecars leave the stores empty.
func (s *Session) Load() error {
	if s.LandmarkSidecar() == "" {
		return nil
	}
	landmarks, err := landmark.Load(s.LandmarkSidecar(), s.meshes)
	if err != nil {
		return err
	}
	pairs, err := scaling.Load(s.PairSidecar(), s.meshes)
	if err != nil {
		return err
	}
	s.landmarks = landmarks
	s.pairs = pairs
	return nil
}

// Describe returns a one-line summary of the session state
func (s *Session) Describe() string {
	return fmt.Sprintf("%d meshes, %d landmarks, %d pairs",
		len(s.meshes), s.landmarks.Count(), s.pairs.Len())
}
