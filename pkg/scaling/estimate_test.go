package scaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exanvub/photogrammetry/pkg/mesh"
)

// measuredPair builds a pair in the measured state without going
// through the picking flow
func measuredPair(m *mesh.Mesh, modelDist, realDist float64) *Pair {
	return &Pair{
		Label:         "test",
		A:             Endpoint{Mesh: m, VertexIndex: 0},
		B:             Endpoint{Mesh: m, VertexIndex: 1},
		PointCount:    2,
		ModelDistance: modelDist,
		RealDistance:  realDist,
	}
}

func TestEstimateMeanAndStd(t *testing.T) {
	m := lineMesh("bone", 2)
	pairs := []*Pair{
		measuredPair(m, 2.0, 4.0),
		measuredPair(m, 4.0, 8.0),
	}

	est := EstimateScale(pairs)
	assert.True(t, est.Valid())
	assert.Equal(t, 2, est.Pairs)
	assert.InDelta(t, 2.0, est.Factor, 1e-12)
	assert.InDelta(t, 0.0, est.StdDev, 1e-12)
}

func TestEstimateExcludesDegeneratePairs(t *testing.T) {
	m := lineMesh("bone", 2)
	pairs := []*Pair{
		measuredPair(m, 2.0, 4.0),
		measuredPair(m, 4.0, 8.0),
		measuredPair(m, 0.0, 5.0), // zero model distance
	}

	est := EstimateScale(pairs)
	assert.Equal(t, 2, est.Pairs, "degenerate pair must not contribute")
	assert.InDelta(t, 2.0, est.Factor, 1e-12)
}

func TestEstimateExcludesUnmeasuredPairs(t *testing.T) {
	m := lineMesh("bone", 4)
	complete := measuredPair(m, 3.0, 0) // no real distance yet
	partial := &Pair{Label: "p", A: Endpoint{Mesh: m}, PointCount: 1}

	est := EstimateScale([]*Pair{complete, partial})
	assert.False(t, est.Valid())
	assert.Equal(t, Estimate{}, est)
}

func TestEstimateSinglePairHasZeroStd(t *testing.T) {
	m := lineMesh("bone", 2)
	est := EstimateScale([]*Pair{measuredPair(m, 2.0, 5.0)})

	assert.Equal(t, 1, est.Pairs)
	assert.InDelta(t, 2.5, est.Factor, 1e-12)
	assert.Equal(t, 0.0, est.StdDev)
}

func TestEstimateSpreadRatios(t *testing.T) {
	m := lineMesh("bone", 2)
	pairs := []*Pair{
		measuredPair(m, 1.0, 1.0), // ratio 1
		measuredPair(m, 1.0, 3.0), // ratio 3
	}

	est := EstimateScale(pairs)
	assert.InDelta(t, 2.0, est.Factor, 1e-12)
	// Sample std dev of {1, 3}
	assert.InDelta(t, 1.4142135623730951, est.StdDev, 1e-12)
}

func TestApplyScalesTransformsAndRecalculates(t *testing.T) {
	s := NewStore()
	m := lineMesh("bone", 10)

	_, err := s.Add("")
	require.NoError(t, err)
	_, err = s.PlacePoint(m, 0)
	require.NoError(t, err)
	_, err = s.PlacePoint(m, 2)
	require.NoError(t, err)
	require.NoError(t, s.SetRealDistance(0, 6.0)) // factor 3

	est, err := s.ApplyTo([]*mesh.Mesh{m})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, est.Factor, 1e-12)

	// Mesh is scaled and the model distance follows
	world, err := m.WorldVertex(2)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, world.X, 1e-12)
	assert.InDelta(t, 6.0, s.pairs[0].ModelDistance, 1e-12)

	// After applying, the pair now measures at ratio 1
	assert.InDelta(t, 1.0, s.Estimate().Factor, 1e-12)
}

func TestApplyWithoutEstimateFails(t *testing.T) {
	s := NewStore()
	m := lineMesh("bone", 2)

	_, err := s.ApplyTo([]*mesh.Mesh{m})
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/model.stl.scaling.json"

	m := lineMesh("bone", 10)
	s := NewStore()
	_, err := s.Add("width")
	require.NoError(t, err)
	_, err = s.PlacePoint(m, 0)
	require.NoError(t, err)
	_, err = s.PlacePoint(m, 4)
	require.NoError(t, err)
	require.NoError(t, s.SetRealDistance(0, 11.5))

	require.NoError(t, s.Save(path))

	loaded, err := Load(path, []*mesh.Mesh{m})
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())

	got := loaded.Pairs()[0]
	assert.Equal(t, "width", got.Label)
	assert.Equal(t, 0, got.A.VertexIndex)
	assert.Equal(t, 4, got.B.VertexIndex)
	assert.InDelta(t, 4.0, got.ModelDistance, 1e-12)
	assert.InDelta(t, 11.5, got.RealDistance, 1e-12)
	assert.Equal(t, StateMeasured, got.State())
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	loaded, err := Load(t.TempDir()+"/none.json", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}
