// Package spatial provides exact nearest-vertex queries over a mesh
// vertex snapshot using a k-d tree.
package spatial

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyIndex is returned when querying an index built over zero
// vertices. Hitting it means the caller violated the build-before-query
// contract.
var ErrEmptyIndex = errors.New("spatial: query on empty vertex index")

var (
	_ kdtree.Interface = kdVertices{}
)

// VertexIndex answers exact nearest-vertex queries against one mesh's
// vertex array at a point in time. The index is immutable once built;
// if the geometry changes the caller must build a fresh index.
type VertexIndex struct {
	tree *kdtree.Tree
	size int
}

// Build constructs an index over an ordered vertex array. Reported
// result indices refer to positions in this array.
func Build(vertices []r3.Vec) *VertexIndex {
	if len(vertices) == 0 {
		return &VertexIndex{}
	}
	verts := make(kdVertices, len(vertices))
	for i, v := range vertices {
		verts[i] = kdVertex{pos: v, index: i}
	}
	return &VertexIndex{
		tree: kdtree.New(verts, false),
		size: len(vertices),
	}
}

// Len returns the number of indexed vertices
func (ix *VertexIndex) Len() int {
	return ix.size
}

// Nearest returns the index of the vertex closest to the query point
// and its Euclidean distance. The result is exact, not approximate.
func (ix *VertexIndex) Nearest(query r3.Vec) (int, float64, error) {
	if ix.tree == nil || ix.size == 0 {
		return 0, 0, ErrEmptyIndex
	}
	got, distSq := ix.tree.Nearest(kdVertex{pos: query})
	return got.(kdVertex).index, math.Sqrt(distSq), nil
}

// kdVertex is one vertex position tagged with its array index
type kdVertex struct {
	pos   r3.Vec
	index int
}

// Compare returns the signed distance of a from the plane passing
// through b and perpendicular to the dimension d.
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	q := b.(kdVertex)
	switch d {
	case 0:
		return a.pos.X - q.pos.X
	case 1:
		return a.pos.Y - q.pos.Y
	default:
		return a.pos.Z - q.pos.Z
	}
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver
// and the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.pos, b.(kdVertex).pos))
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half open indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

type kdPlane struct {
	dim      kdtree.Dim
	vertices kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return p.vertices[i].Compare(p.vertices[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
func (p kdPlane) Len() int {
	return len(p.vertices)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
