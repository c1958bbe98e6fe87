package landmark

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/mesh"
)

func TestExportCSVFormat(t *testing.T) {
	s := NewStore()
	skull := mesh.NewMesh("Skull")
	skull.Vertices = []r3.Vec{
		{X: 1, Y: 2, Z: 3},
		{X: 4, Y: 5, Z: 6},
	}

	_, err := s.Place(skull, 0, "A")
	require.NoError(t, err)
	_, err = s.Place(skull, 1, "B")
	require.NoError(t, err)

	var sb strings.Builder
	count, err := s.ExportCSV(&sb)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	expected := "Object_Name,Landmark,X,Y,Z\n" +
		"Skull,A,1,2,3\n" +
		"Skull,B,4,5,6\n"
	assert.Equal(t, expected, sb.String())
}

func TestExportUsesCurrentTransform(t *testing.T) {
	s := NewStore()
	m := mesh.NewMesh("bone")
	m.Vertices = []r3.Vec{{X: 1, Y: 0, Z: 0}}

	_, err := s.Place(m, 0, "tip")
	require.NoError(t, err)

	m.Transform = testTranslate(9)

	var sb strings.Builder
	_, err = s.ExportCSV(&sb)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "bone,tip,10,0,0")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.stl.landmarks.json")

	a := mesh.NewMesh("a")
	a.Vertices = []r3.Vec{{X: 0}, {X: 1}, {X: 2}}
	b := mesh.NewMesh("b")
	b.Vertices = []r3.Vec{{X: 0}, {X: 1}}

	s := NewStore()
	_, err := s.Place(a, 2, "apex")
	require.NoError(t, err)
	_, err = s.Place(a, 0, "")
	require.NoError(t, err)
	_, err = s.Place(b, 1, "edge")
	require.NoError(t, err)

	require.NoError(t, s.Save(path))

	loaded, err := Load(path, []*mesh.Mesh{a, b})
	require.NoError(t, err)
	assert.Equal(t, s.List(), loaded.List())
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Count())
}

func TestLoadUnknownMeshFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orphan.json")

	m := mesh.NewMesh("present")
	m.Vertices = []r3.Vec{{}}
	s := NewStore()
	_, err := s.Place(m, 0, "x")
	require.NoError(t, err)
	require.NoError(t, s.Save(path))

	_, err = Load(path, nil)
	assert.Error(t, err)
}

func TestSaveEmptyStoreRemovesSidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.landmarks.json")

	m := mesh.NewMesh("m")
	m.Vertices = []r3.Vec{{}}
	s := NewStore()
	_, err := s.Place(m, 0, "x")
	require.NoError(t, err)
	require.NoError(t, s.Save(path))

	s.DeleteAll()
	require.NoError(t, s.Save(path))

	loaded, err := Load(path, []*mesh.Mesh{m})
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Count())
}
