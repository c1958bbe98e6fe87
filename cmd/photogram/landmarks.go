package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exanvub/photogrammetry/internal/session"
	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/openscad"
)

var (
	landmarkCSVOutput    string
	landmarkSceneOutput  string
	landmarkRenderOutput string
)

var landmarksCmd = &cobra.Command{
	Use:   "landmarks",
	Short: "Inspect and export landmarks stored in mesh sidecars",
}

var landmarksListCmd = &cobra.Command{
	Use:   "list [files...]",
	Short: "List the landmarks on one or more meshes",
	Args:  cobra.MinimumNArgs(1),
	Run:   runLandmarksList,
}

var landmarksExportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Export landmarks as CSV",
	Long:  "Write all landmarks as CSV rows of Object_Name,Landmark,X,Y,Z in world coordinates.",
	Args:  cobra.MinimumNArgs(1),
	Run:   runLandmarksExport,
}

var landmarksSpheresCmd = &cobra.Command{
	Use:   "spheres [files...]",
	Short: "Export landmark positions as an OpenSCAD sphere scene",
	Long: `Write an OpenSCAD file with one sphere per landmark, for visual
verification in external tools. With --render the scene is also rendered
to STL using the openscad binary.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runLandmarksSpheres,
}

func init() {
	rootCmd.AddCommand(landmarksCmd)
	landmarksCmd.AddCommand(landmarksListCmd)
	landmarksCmd.AddCommand(landmarksExportCmd)
	landmarksCmd.AddCommand(landmarksSpheresCmd)

	landmarksExportCmd.Flags().StringVarP(&landmarkCSVOutput, "output", "o", "", "output CSV file (default: stdout)")
	landmarksSpheresCmd.Flags().StringVarP(&landmarkSceneOutput, "output", "o", "landmarks.scad", "output OpenSCAD file")
	landmarksSpheresCmd.Flags().StringVar(&landmarkRenderOutput, "render", "", "also render the scene to this STL file")
}

// openSession loads the given mesh files and their sidecars
func openSession(files []string) *session.Session {
	sess := session.New(loadConfig())
	for _, file := range files {
		if _, err := sess.LoadMeshFile(file); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			os.Exit(1)
		}
	}
	if err := sess.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sidecars: %v\n", err)
		os.Exit(1)
	}
	return sess
}

func runLandmarksList(cmd *cobra.Command, args []string) {
	sess := openSession(args)

	landmarks := sess.Landmarks().List()
	if len(landmarks) == 0 {
		fmt.Println("No landmarks.")
		return
	}

	fmt.Printf("%d landmarks:\n", len(landmarks))
	for _, lm := range landmarks {
		pos, err := sess.Landmarks().WorldPosition(lm.Mesh, lm.Name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %s / %s  vertex #%d  %s\n", lm.Mesh.Name, lm.Name, lm.VertexIndex, geometry.FormatVec(pos))
	}
}

func runLandmarksExport(cmd *cobra.Command, args []string) {
	sess := openSession(args)

	out := os.Stdout
	if landmarkCSVOutput != "" {
		f, err := os.Create(landmarkCSVOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", landmarkCSVOutput, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	n, err := sess.ExportLandmarksCSV(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting landmarks: %v\n", err)
		os.Exit(1)
	}
	if landmarkCSVOutput != "" {
		fmt.Printf("Exported %d landmarks to %s\n", n, landmarkCSVOutput)
	}
}

func runLandmarksSpheres(cmd *cobra.Command, args []string) {
	sess := openSession(args)

	if sess.Landmarks().Count() == 0 {
		fmt.Fprintln(os.Stderr, "No landmarks to export.")
		os.Exit(1)
	}

	if err := sess.ExportMarkers(landmarkSceneOutput); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing scene: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d landmark spheres to %s\n", sess.Landmarks().Count(), landmarkSceneOutput)

	if landmarkRenderOutput != "" {
		if err := openscad.RenderToSTL(landmarkSceneOutput, landmarkRenderOutput); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering scene: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Rendered scene to %s\n", landmarkRenderOutput)
	}
}
