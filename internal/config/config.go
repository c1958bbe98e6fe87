// Package config loads tool settings from an optional YAML file.
// Absent file or absent keys fall back to defaults, so the tool works
// with no configuration at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tool settings
type Config struct {
	// SidecarSuffix is appended to a mesh file path to form the
	// landmark and measurement sidecar paths
	SidecarSuffix string `yaml:"sidecar_suffix"`

	// Unit is the label printed next to real-world distances
	Unit string `yaml:"unit"`

	// SphereRadius is the marker radius used for OpenSCAD export
	SphereRadius float64 `yaml:"sphere_radius"`

	// WatchDebounceMS is the debounce interval for watch mode,
	// in milliseconds
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		SidecarSuffix:   ".photogram.json",
		Unit:            "mm",
		SphereRadius:    1.0,
		WatchDebounceMS: 300,
	}
}

// Load reads the configuration from a YAML file. A missing file
// returns the defaults; keys absent from the file keep their default
// values.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if config.SphereRadius <= 0 {
		return nil, fmt.Errorf("sphere_radius must be positive, got %g", config.SphereRadius)
	}
	if config.WatchDebounceMS < 0 {
		return nil, fmt.Errorf("watch_debounce_ms must not be negative, got %d", config.WatchDebounceMS)
	}

	return config, nil
}

// Save writes the configuration to a YAML file
func Save(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// SidecarPath returns the sidecar path for a mesh file
func (c *Config) SidecarPath(meshFile string) string {
	return meshFile + c.SidecarSuffix
}
