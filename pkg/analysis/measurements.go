// Package analysis computes summary statistics over an indexed mesh:
// bounding box, surface area, edge lengths, and nearest-vertex lookups
// for coordinate-based inspection.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
	"github.com/exanvub/photogrammetry/pkg/spatial"
)

// EdgeInfo contains information about an edge in the mesh
type EdgeInfo struct {
	Start  r3.Vec
	End    r3.Vec
	Length float64
	FaceID int
}

// MeasurementResult contains various measurements of a mesh
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    r3.Vec
	Volume        float64
	SurfaceArea   float64
	VertexCount   int
	FaceCount     int
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	AllEdges      []EdgeInfo
}

// AnalyzeMesh performs comprehensive analysis on a mesh
func AnalyzeMesh(m *mesh.Mesh) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox: m.BoundingBox(),
		SurfaceArea: m.SurfaceArea(),
		VertexCount: m.VertexCount(),
		FaceCount:   m.FaceCount(),
		AllEdges:    make([]EdgeInfo, 0, 3*m.FaceCount()),
	}

	result.Dimensions = result.BoundingBox.Size()
	result.Volume = result.BoundingBox.Volume()

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for i, face := range m.Faces {
		corners := [3]r3.Vec{
			m.Vertices[face[0]],
			m.Vertices[face[1]],
			m.Vertices[face[2]],
		}

		for e := 0; e < 3; e++ {
			start := corners[e]
			end := corners[(e+1)%3]
			length := geometry.Distance(start, end)

			result.AllEdges = append(result.AllEdges, EdgeInfo{
				Start:  start,
				End:    end,
				Length: length,
				FaceID: i,
			})

			totalLength += length
			if length < minLength {
				minLength = length
			}
			if length > maxLength {
				maxLength = length
			}
		}
	}

	result.EdgeCount = len(result.AllEdges)
	result.MinEdgeLength = minLength
	result.MaxEdgeLength = maxLength
	if result.EdgeCount > 0 {
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}

	return result
}

// FindEdgesByLength finds all edges within a length range
func FindEdgesByLength(result *MeasurementResult, minLength, maxLength float64) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range result.AllEdges {
		if edge.Length >= minLength && edge.Length <= maxLength {
			edges = append(edges, edge)
		}
	}
	return edges
}

// FindLongestEdges returns the N longest edges in the mesh
func FindLongestEdges(result *MeasurementResult, count int) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Length > edges[j].Length
	})

	if count > len(edges) {
		count = len(edges)
	}

	return edges[:count]
}

// FindShortestEdges returns the N shortest edges in the mesh
func FindShortestEdges(result *MeasurementResult, count int) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Length < edges[j].Length
	})

	if count > len(edges) {
		count = len(edges)
	}

	return edges[:count]
}

// FindNearestVertex finds the mesh vertex nearest to a point in the
// mesh's local space
func FindNearestVertex(m *mesh.Mesh, point r3.Vec) (int, r3.Vec, float64, error) {
	idx, dist, err := spatial.Build(m.Vertices).Nearest(point)
	if err != nil {
		return 0, r3.Vec{}, 0, fmt.Errorf("mesh %q has no vertices", m.Name)
	}
	return idx, m.Vertices[idx], dist, nil
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}
