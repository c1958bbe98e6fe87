package mesh

import (
	"bytes"
	"strings"
	"testing"
)

const asciiTetrahedron = `solid tetra
facet normal 0 0 -1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
facet normal 0 -1 0
  outer loop
    vertex 0 0 0
    vertex 0 0 1
    vertex 1 0 0
  endloop
endfacet
facet normal -1 0 0
  outer loop
    vertex 0 0 0
    vertex 0 1 0
    vertex 0 0 1
  endloop
endfacet
facet normal 1 1 1
  outer loop
    vertex 1 0 0
    vertex 0 0 1
    vertex 0 1 0
  endloop
endfacet
endsolid tetra
`

func TestParseASCIIDeduplicatesVertices(t *testing.T) {
	m, err := ParseASCII(strings.NewReader(asciiTetrahedron), "fallback")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if m.Name != "tetra" {
		t.Errorf("expected name 'tetra', got %q", m.Name)
	}
	if m.FaceCount() != 4 {
		t.Errorf("expected 4 faces, got %d", m.FaceCount())
	}
	// 12 corners collapse to 4 unique vertices
	if m.VertexCount() != 4 {
		t.Errorf("expected 4 vertices after dedup, got %d", m.VertexCount())
	}
}

func TestParseASCIIStableVertexOrder(t *testing.T) {
	m1, err := ParseASCII(strings.NewReader(asciiTetrahedron), "")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	m2, err := ParseASCII(strings.NewReader(asciiTetrahedron), "")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for i := range m1.Vertices {
		if m1.Vertices[i] != m2.Vertices[i] {
			t.Fatalf("vertex order not stable at %d: %v vs %v", i, m1.Vertices[i], m2.Vertices[i])
		}
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	src, err := ParseASCII(strings.NewReader(asciiTetrahedron), "")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var buf bytes.Buffer
	if err := src.WriteBinary(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out, err := ParseBinary(&buf, "roundtrip")
	if err != nil {
		t.Fatalf("binary parse failed: %v", err)
	}

	if out.FaceCount() != src.FaceCount() {
		t.Errorf("face count: expected %d, got %d", src.FaceCount(), out.FaceCount())
	}
	if out.VertexCount() != src.VertexCount() {
		t.Errorf("vertex count: expected %d, got %d", src.VertexCount(), out.VertexCount())
	}
}
