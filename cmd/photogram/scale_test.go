package main

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/mesh"
	"github.com/exanvub/photogrammetry/pkg/scaling"
)

func TestParsePairSpec(t *testing.T) {
	p1, p2, real, err := parsePairSpec("0, 0, 0, 3, 4, 0 = 25")
	if err != nil {
		t.Fatalf("parsePairSpec: %v", err)
	}
	if p1 != (r3.Vec{}) {
		t.Errorf("p1 = %v, want origin", p1)
	}
	if p2 != (r3.Vec{X: 3, Y: 4}) {
		t.Errorf("p2 = %v, want (3,4,0)", p2)
	}
	if real != 25 {
		t.Errorf("real = %g, want 25", real)
	}

	// missing real distance, five coordinates, non-numeric values
	for _, bad := range []string{
		"1,2,3,4,5,6",
		"1,2,3,4,5=10",
		"1,2,3,4,5,x=10",
		"1,2,3,4,5,6=far",
	} {
		if _, _, _, err := parsePairSpec(bad); err == nil {
			t.Errorf("parsePairSpec(%q): expected error, got nil", bad)
		}
	}
}

func TestPairsFromSpecsWithoutMesh(t *testing.T) {
	pairs, err := pairsFromSpecs(nil, []string{"0,0,0,3,4,0=25"})
	if err != nil {
		t.Fatalf("pairsFromSpecs: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pair count = %d, want 1", len(pairs))
	}
	if pairs[0].ModelDistance != 5 {
		t.Errorf("model distance = %g, want 5 from raw coordinates", pairs[0].ModelDistance)
	}

	est := scaling.EstimateScale(pairs)
	if !est.Valid() {
		t.Fatal("estimate should be valid without any mesh")
	}
	if est.Factor != 5 {
		t.Errorf("factor = %g, want 5", est.Factor)
	}
}

func TestPairsFromSpecsSnapsToMesh(t *testing.T) {
	m := mesh.NewMesh("bone")
	m.Vertices = []r3.Vec{{}, {X: 4}}
	m.Faces = []mesh.Face{{0, 1, 0}}

	pairs, err := pairsFromSpecs(m, []string{"0.1,0,0,3.9,0,0=8"})
	if err != nil {
		t.Fatalf("pairsFromSpecs: %v", err)
	}
	if pairs[0].A.VertexIndex != 0 || pairs[0].B.VertexIndex != 1 {
		t.Errorf("endpoints = %d,%d, want 0,1", pairs[0].A.VertexIndex, pairs[0].B.VertexIndex)
	}
	if math.Abs(pairs[0].ModelDistance-4) > 1e-12 {
		t.Errorf("model distance = %g, want snapped distance 4", pairs[0].ModelDistance)
	}
}
