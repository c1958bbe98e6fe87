package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Parse reads an STL file into an indexed mesh.
// It automatically detects whether the file is ASCII or binary format.
// Coincident triangle corners are merged into shared vertices so that
// vertex indices are usable as stable landmark identities.
func Parse(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Read first few bytes to determine format
	header := make([]byte, 6)
	n, err := file.Read(header)
	if err != nil {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	// ASCII files start with "solid "
	if n >= 5 && strings.HasPrefix(string(header[:5]), "solid") {
		return ParseASCII(file, name)
	}
	return ParseBinary(file, name)
}

// builder accumulates deduplicated vertices while triangles stream in
type builder struct {
	mesh   *Mesh
	lookup map[r3.Vec]int
}

func newBuilder(name string) *builder {
	return &builder{
		mesh:   NewMesh(name),
		lookup: make(map[r3.Vec]int),
	}
}

// vertex returns the index for a position, appending it on first sight.
// Only exactly coincident corners merge; no welding tolerance.
func (b *builder) vertex(v r3.Vec) int {
	if idx, ok := b.lookup[v]; ok {
		return idx
	}
	idx := len(b.mesh.Vertices)
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	b.lookup[v] = idx
	return idx
}

func (b *builder) triangle(v1, v2, v3 r3.Vec) {
	b.mesh.Faces = append(b.mesh.Faces, Face{b.vertex(v1), b.vertex(v2), b.vertex(v3)})
}

// ParseASCII parses an ASCII STL stream
func ParseASCII(reader io.Reader, name string) (*Mesh, error) {
	scanner := bufio.NewScanner(reader)
	b := newBuilder(name)

	var corners []r3.Vec

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)

		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				b.mesh.Name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) >= 4 {
				x, _ := strconv.ParseFloat(fields[1], 64)
				y, _ := strconv.ParseFloat(fields[2], 64)
				z, _ := strconv.ParseFloat(fields[3], 64)
				corners = append(corners, r3.Vec{X: x, Y: y, Z: z})
			}

		case "endfacet":
			if len(corners) == 3 {
				b.triangle(corners[0], corners[1], corners[2])
			}
			corners = corners[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return b.mesh, nil
}

// ParseBinary parses a binary STL stream
func ParseBinary(reader io.Reader, name string) (*Mesh, error) {
	b := newBuilder(name)

	// 80-byte header, may carry a model name
	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if headerStr := strings.TrimSpace(string(bytes.TrimRight(header, "\x00"))); headerStr != "" {
		b.mesh.Name = headerStr
	}

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	for i := uint32(0); i < triangleCount; i++ {
		var record struct {
			Normal [3]float32
			V1     [3]float32
			V2     [3]float32
			V3     [3]float32
			Attrib uint16
		}
		if err := binary.Read(reader, binary.LittleEndian, &record); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}

		b.triangle(toVec(record.V1), toVec(record.V2), toVec(record.V3))
	}

	return b.mesh, nil
}

func toVec(v [3]float32) r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// WriteBinary writes the mesh as binary STL with the current transform
// baked into the vertex positions.
func (m *Mesh) WriteBinary(w io.Writer) error {
	header := make([]byte, 80)
	copy(header, m.Name)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	for i, face := range m.Faces {
		v1 := m.Transform.ApplyPoint(m.Vertices[face[0]])
		v2 := m.Transform.ApplyPoint(m.Vertices[face[1]])
		v3 := m.Transform.ApplyPoint(m.Vertices[face[2]])

		n := r3.Unit(r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1)))

		record := struct {
			Normal [3]float32
			V1     [3]float32
			V2     [3]float32
			V3     [3]float32
			Attrib uint16
		}{
			Normal: toF32(n),
			V1:     toF32(v1),
			V2:     toF32(v2),
			V3:     toF32(v3),
		}
		if err := binary.Write(w, binary.LittleEndian, &record); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}

	return nil
}

func toF32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
