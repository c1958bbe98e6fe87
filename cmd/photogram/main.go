package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exanvub/photogrammetry/internal/config"
	"github.com/exanvub/photogrammetry/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "photogram",
	Short: "Landmark and scale estimation for photogrammetry meshes",
	Long: `photogram places named landmarks on photogrammetry meshes and estimates
real-world scale from measured point pairs. It reads ASCII and binary STL
files and keeps landmarks and measurements in JSON sidecar files next to
the mesh.`,
	Version: version.GetFullVersion(),
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".photogram.yaml", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
