package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/exanvub/photogrammetry/internal/session"
	"github.com/exanvub/photogrammetry/pkg/analysis"
	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
	"github.com/exanvub/photogrammetry/pkg/scaling"
	"github.com/exanvub/photogrammetry/pkg/watcher"
)

var (
	scalePairSpecs []string
	scaleApply     bool
	scaleOutput    string
	scaleWatch     bool
)

var scaleCmd = &cobra.Command{
	Use:   "scale [files...]",
	Short: "Estimate real-world scale from measured point pairs",
	Long: `Estimate the scale factor of a photogrammetry mesh from point pairs with
known real-world distances. Pairs come from the measurement sidecar, or
directly from --pairs flags of the form "x1,y1,z1,x2,y2,z2=real". When a
mesh file is given, each coordinate is snapped to its nearest vertex;
without a file, --pairs distances are computed from the raw coordinates.

With --apply the estimated factor is baked into the mesh transform and,
when --output is given, written out as a scaled binary STL.`,
	Args: cobra.ArbitraryArgs,
	Run:  runScale,
}

func init() {
	rootCmd.AddCommand(scaleCmd)

	scaleCmd.Flags().StringArrayVar(&scalePairSpecs, "pairs", nil,
		`measurement pair "x1,y1,z1,x2,y2,z2=real" (repeatable)`)
	scaleCmd.Flags().BoolVar(&scaleApply, "apply", false, "apply the estimated scale to the mesh")
	scaleCmd.Flags().StringVarP(&scaleOutput, "output", "o", "", "write the scaled mesh to this STL file (requires --apply)")
	scaleCmd.Flags().BoolVar(&scaleWatch, "watch", false, "re-estimate whenever a sidecar changes")
}

// parsePairSpec parses "x1,y1,z1,x2,y2,z2=real"
func parsePairSpec(spec string) (p1, p2 r3.Vec, real float64, err error) {
	coords, realPart, found := strings.Cut(spec, "=")
	if !found {
		return p1, p2, 0, fmt.Errorf("pair %q: missing \"=real\" part", spec)
	}

	parts := strings.Split(coords, ",")
	if len(parts) != 6 {
		return p1, p2, 0, fmt.Errorf("pair %q: want 6 coordinates, got %d", spec, len(parts))
	}

	var values [6]float64
	for i, part := range parts {
		values[i], err = strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return p1, p2, 0, fmt.Errorf("pair %q: coordinate %d: %w", spec, i+1, err)
		}
	}

	real, err = strconv.ParseFloat(strings.TrimSpace(realPart), 64)
	if err != nil {
		return p1, p2, 0, fmt.Errorf("pair %q: real distance: %w", spec, err)
	}

	p1 = r3.Vec{X: values[0], Y: values[1], Z: values[2]}
	p2 = r3.Vec{X: values[3], Y: values[4], Z: values[5]}
	return p1, p2, real, nil
}

// pairsFromSpecs builds measured pairs from --pairs flags. With a mesh
// each coordinate is snapped to its nearest vertex; without one the
// raw coordinates are used as-is.
func pairsFromSpecs(m *mesh.Mesh, specs []string) ([]*scaling.Pair, error) {
	var pairs []*scaling.Pair
	for _, spec := range specs {
		p1, p2, real, err := parsePairSpec(spec)
		if err != nil {
			return nil, err
		}

		pair := &scaling.Pair{
			Label:         fmt.Sprintf("M%d", len(pairs)+1),
			PointCount:    2,
			ModelDistance: geometry.Distance(p1, p2),
			RealDistance:  real,
		}

		if m != nil {
			idx1, v1, _, err := analysis.FindNearestVertex(m, p1)
			if err != nil {
				return nil, err
			}
			idx2, v2, _, err := analysis.FindNearestVertex(m, p2)
			if err != nil {
				return nil, err
			}
			pair.A = scaling.Endpoint{Mesh: m, VertexIndex: idx1}
			pair.B = scaling.Endpoint{Mesh: m, VertexIndex: idx2}
			pair.ModelDistance = geometry.Distance(v1, v2)
		}

		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func printEstimate(est scaling.Estimate, unit string) {
	if !est.Valid() {
		fmt.Println("No usable pairs: each pair needs two points and a positive real distance.")
		return
	}
	fmt.Printf("Scale factor: %.6f (from %d pairs, std dev %.6f)\n", est.Factor, est.Pairs, est.StdDev)
	fmt.Printf("1 model unit = %.6f %s\n", est.Factor, unit)
}

func runScale(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	if len(args) == 0 && len(scalePairSpecs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: provide a mesh file or at least one --pairs flag")
		os.Exit(1)
	}

	var sess *session.Session
	if len(args) > 0 {
		sess = openSession(args)
	} else if scaleApply || scaleWatch {
		fmt.Fprintln(os.Stderr, "Error: --apply and --watch need a mesh file")
		os.Exit(1)
	}

	var pairs []*scaling.Pair
	if len(scalePairSpecs) > 0 {
		var snapTarget *mesh.Mesh
		if sess != nil {
			snapTarget = sess.Meshes()[0]
		}
		var err error
		pairs, err = pairsFromSpecs(snapTarget, scalePairSpecs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		pairs = sess.Pairs().Pairs()
	}

	for _, p := range pairs {
		fmt.Printf("%s: model %.6f, real %g %s\n", p.Label, p.ModelDistance, p.RealDistance, cfg.Unit)
	}

	est := scaling.EstimateScale(pairs)
	printEstimate(est, cfg.Unit)

	if scaleApply {
		if !est.Valid() {
			fmt.Fprintln(os.Stderr, "Cannot apply: no valid estimate.")
			os.Exit(1)
		}
		if err := scaling.Apply(est, sess.Meshes()); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying scale: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Applied factor %.6f to %d meshes\n", est.Factor, len(sess.Meshes()))

		if scaleOutput != "" {
			if err := writeScaledMesh(sess, scaleOutput); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", scaleOutput, err)
				os.Exit(1)
			}
			fmt.Printf("Wrote scaled mesh to %s\n", scaleOutput)
		}
	}

	if scaleWatch {
		watchAndReestimate(sess, cfg.Unit, time.Duration(cfg.WatchDebounceMS)*time.Millisecond)
	}
}

func writeScaledMesh(sess *session.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return sess.Meshes()[0].WriteBinary(f)
}

// watchAndReestimate blocks, re-running the estimate whenever the
// measurement sidecar changes
func watchAndReestimate(sess *session.Session, unit string, debounce time.Duration) {
	fw, err := watcher.NewFileWatcher(debounce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
		os.Exit(1)
	}
	defer fw.Close()

	sidecar := sess.PairSidecar()
	if sidecar == "" {
		fmt.Fprintln(os.Stderr, "No sidecar to watch.")
		os.Exit(1)
	}

	err = fw.Watch([]string{sidecar}, func(path string) {
		if err := sess.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading %s: %v\n", path, err)
			return
		}
		fmt.Printf("\n%s changed:\n", path)
		printEstimate(sess.EstimateScale(), unit)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", sidecar, err)
		os.Exit(1)
	}
	fw.Start()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", sidecar)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
