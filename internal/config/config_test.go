package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Map.Zoom != 11 || !cfg.Geolocation.Enabled {
		t.Errorf("cfg=%+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explorer.yaml")
	content := `
viewshed_url: http://viewshed.internal:9000
geolocation:
  enabled: false
map:
  center_lat: 47.6
  center_lon: -122.3
  zoom: 9
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ViewshedURL != "http://viewshed.internal:9000" {
		t.Errorf("viewshed_url=%q", cfg.ViewshedURL)
	}
	if cfg.Geolocation.Enabled {
		t.Error("geolocation should be disabled")
	}
	if cfg.Map.CenterLat != 47.6 || cfg.Map.CenterLon != -122.3 || cfg.Map.Zoom != 9 {
		t.Errorf("map=%+v", cfg.Map)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("map: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
