package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestServer builds a full server against a temp data dir, pointed at
// computeURL for viewshed requests and with geolocation disabled.
func newTestServer(t *testing.T, computeURL string) *Server {
	t.Helper()

	dataDir := t.TempDir()
	cfgPath := filepath.Join(dataDir, "config.yaml")
	cfg := "viewshed_url: \"" + computeURL + "\"\ngeolocation:\n  enabled: false\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Config{
		Host:       "localhost",
		Port:       "0",
		DataDir:    dataDir,
		WebDir:     filepath.Join("..", "..", "web"),
		ConfigFile: cfgPath,
	})
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func TestRootAndHealth(t *testing.T) {
	srv := newTestServer(t, "http://localhost:0")
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status=%d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "viewshed-explorer") {
		t.Fatalf("root body=%q, want service name", body)
	}
}

func TestExplorerSubmitAgainstOwnComputeEndpoint(t *testing.T) {
	// First server plays the remote viewshed service.
	compute := newTestServer(t, "http://localhost:0")
	computeTS := httptest.NewServer(compute)
	defer computeTS.Close()

	srv := newTestServer(t, computeTS.URL)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	post := func(path, signals string) string {
		t.Helper()
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(signals))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d, want 200", path, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	// Place the observer, then submit with valid parameter text.
	post("/api/v1/explorer/observer", `{"clicklat": 40.0, "clicklon": -105.0}`)
	body := post("/api/v1/explorer/submit",
		`{"observerheightm": "1.7", "maxradiuskm": "25", "resolutionm": "30"}`)

	if !strings.Contains(body, "datastar-patch-signals") {
		t.Fatalf("submit response is not a Datastar stream:\n%s", body)
	}
	if !strings.Contains(body, "overlayjson") {
		t.Fatalf("submit response carries no overlay signal:\n%s", body)
	}
	if !strings.Contains(body, "Polygon") {
		t.Fatalf("submit response carries no polygon geometry:\n%s", body)
	}

	snap := srv.Orchestrator().Session().Snapshot()
	if snap.Overlay == nil {
		t.Fatal("session has no overlay after a successful submit")
	}
}

func TestExplorerPageUsesConfiguredViewport(t *testing.T) {
	dataDir := t.TempDir()
	cfgPath := filepath.Join(dataDir, "config.yaml")
	cfg := "geolocation:\n  enabled: false\nmap:\n  center_lat: 48.8584\n  center_lon: 2.2945\n  zoom: 14\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Config{
		Host:       "localhost",
		Port:       "0",
		DataDir:    dataDir,
		WebDir:     filepath.Join("..", "..", "web"),
		ConfigFile: cfgPath,
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/explorer")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "48.8584") || !strings.Contains(string(body), "2.2945") {
		t.Fatalf("explorer page does not carry the configured viewport:\n%s", body)
	}
}

func TestTemplatesReload(t *testing.T) {
	srv := newTestServer(t, "http://localhost:0")
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/templates/reload", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reload status=%d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/v1/templates/reload")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET reload status=%d, want 405", resp.StatusCode)
	}
}

func TestExplorerSubmitValidationFailure(t *testing.T) {
	srv := newTestServer(t, "http://localhost:0")
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/explorer/submit", "application/json",
		strings.NewReader(`{"observerheightm": "abc", "maxradiuskm": "25", "resolutionm": "30"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "Enter a positive height in meters.") {
		t.Fatalf("expected a height field error in:\n%s", body)
	}

	snap := srv.Orchestrator().Session().Snapshot()
	if snap.Overlay != nil {
		t.Fatal("validation failure must not install an overlay")
	}
}
