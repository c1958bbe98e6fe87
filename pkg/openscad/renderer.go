// Package openscad turns landmark positions into an OpenSCAD marker
// scene (one sphere per landmark), optionally rendered to STL via the
// openscad binary.
package openscad

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Marker is one sphere to place in the scene
type Marker struct {
	Label    string
	MeshName string
	X, Y, Z  float64
}

// WriteMarkers writes an OpenSCAD scene with one sphere per marker,
// grouped into one module per mesh so the scene stays editable by
// hand. Radius is in model units.
func WriteMarkers(w io.Writer, markers []Marker, radius float64) error {
	if radius <= 0 {
		return fmt.Errorf("openscad: marker radius must be positive, got %v", radius)
	}

	fmt.Fprintln(w, "// Landmark markers")
	fmt.Fprintf(w, "marker_radius = %g;\n\n", radius)

	byMesh := make(map[string][]Marker)
	var order []string
	for _, m := range markers {
		if _, seen := byMesh[m.MeshName]; !seen {
			order = append(order, m.MeshName)
		}
		byMesh[m.MeshName] = append(byMesh[m.MeshName], m)
	}

	for _, meshName := range order {
		fmt.Fprintf(w, "module landmarks_%s() {\n", identifier(meshName))
		for _, m := range byMesh[meshName] {
			fmt.Fprintf(w, "    // %s\n", m.Label)
			fmt.Fprintf(w, "    translate([%g, %g, %g]) sphere(r = marker_radius);\n", m.X, m.Y, m.Z)
		}
		fmt.Fprintln(w, "}")
		fmt.Fprintf(w, "landmarks_%s();\n\n", identifier(meshName))
	}

	return nil
}

// identifier sanitizes a mesh name into a legal OpenSCAD identifier
func identifier(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "mesh"
	}
	return sb.String()
}

// RenderToSTL renders an OpenSCAD file to STL using the openscad
// binary, which must be on PATH
func RenderToSTL(scadFile, outputFile string) error {
	if _, err := exec.LookPath("openscad"); err != nil {
		return fmt.Errorf("openscad not found in PATH. Please install OpenSCAD from https://openscad.org/")
	}

	absScadFile, err := filepath.Abs(scadFile)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", scadFile, err)
	}

	cmd := exec.Command("openscad", "-o", outputFile, absScadFile)
	cmd.Dir = filepath.Dir(absScadFile)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var errMsg strings.Builder
		errMsg.WriteString(fmt.Sprintf("failed to render %s: %v\n", scadFile, err))
		if stderr.Len() > 0 {
			errMsg.WriteString("stderr: ")
			errMsg.WriteString(stderr.String())
		}
		if stdout.Len() > 0 {
			errMsg.WriteString("stdout: ")
			errMsg.WriteString(stdout.String())
		}
		return fmt.Errorf("%s", errMsg.String())
	}

	return nil
}

// WriteMarkersFile writes the marker scene to a file on disk
func WriteMarkersFile(path string, markers []Marker, radius float64) error {
	var buf bytes.Buffer
	if err := WriteMarkers(&buf, markers, radius); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing marker scene: %w", err)
	}
	return nil
}
