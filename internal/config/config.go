// Package config loads the explorer's fixed deployment settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds settings that are fixed per deployment, not user-editable at
// runtime. An empty ViewshedURL means the built-in compute endpoint is used.
type Config struct {
	// ViewshedURL is the base URL of the viewshed service (no trailing
	// slash). Empty selects the server's own /viewshed endpoint.
	ViewshedURL string `yaml:"viewshed_url"`

	Geolocation Geolocation `yaml:"geolocation"`
	Map         Map         `yaml:"map"`
}

// Geolocation configures the optional position provider.
type Geolocation struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"` // empty uses the public ip-api.com service
}

// Map holds the initial viewport.
type Map struct {
	CenterLat float64 `yaml:"center_lat"`
	CenterLon float64 `yaml:"center_lon"`
	Zoom      int     `yaml:"zoom"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Geolocation: Geolocation{Enabled: true},
		Map: Map{
			CenterLat: 40.0,
			CenterLon: -105.0,
			Zoom:      11,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}
