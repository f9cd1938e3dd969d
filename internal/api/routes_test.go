package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"

	"viewshed-explorer/internal/scenario"
	"viewshed-explorer/internal/viewshed"
)

func TestComputeEndpoint(t *testing.T) {
	_, api := humatest.New(t)
	NewViewshedHandler().RegisterRoutes(api)

	resp := api.Post("/viewshed", map[string]any{
		"observer":        map[string]any{"lat": 40.0, "lon": -105.0},
		"observerHeightM": 1.7,
		"maxRadiusKm":     25,
		"resolutionM":     30,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.Code, resp.Body.String())
	}

	var out viewshed.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Observer.Lat != 40.0 || out.Observer.Lon != -105.0 {
		t.Errorf("observer=%+v", out.Observer)
	}
	if out.MaxRadiusKm != 25 {
		t.Errorf("maxRadiusKm=%v, want 25", out.MaxRadiusKm)
	}
	if out.Polygon == nil {
		t.Fatal("polygon missing")
	}
}

func TestComputeEndpointRejectsOutOfRangeInput(t *testing.T) {
	_, api := humatest.New(t)
	NewViewshedHandler().RegisterRoutes(api)

	cases := []map[string]any{
		{"observer": map[string]any{"lat": 100.0, "lon": 0.0}, "observerHeightM": 1.7, "maxRadiusKm": 5, "resolutionM": 30},
		{"observer": map[string]any{"lat": 0.0, "lon": -200.0}, "observerHeightM": 1.7, "maxRadiusKm": 5, "resolutionM": 30},
		{"observer": map[string]any{"lat": 0.0, "lon": 0.0}, "observerHeightM": 0, "maxRadiusKm": 5, "resolutionM": 30},
		{"observer": map[string]any{"lat": 0.0, "lon": 0.0}, "observerHeightM": 1.7, "maxRadiusKm": -1, "resolutionM": 30},
	}
	for i, body := range cases {
		resp := api.Post("/viewshed", body)
		if resp.Code != http.StatusUnprocessableEntity {
			t.Errorf("case %d: status=%d, want 422", i, resp.Code)
		}
	}
}

func TestScenarioEndpoints(t *testing.T) {
	_, api := humatest.New(t)
	svc := &Services{Scenarios: scenario.NewStore(t.TempDir())}
	h := NewAPIHandler(svc)
	h.RegisterHealth(api)
	h.RegisterScenarios(api)

	resp := api.Post("/api/v1/scenarios", map[string]any{
		"name": "Ridge",
		"request": map[string]any{
			"observer":        map[string]any{"lat": 40.0, "lon": -105.0},
			"observerHeightM": 1.7,
			"maxRadiusKm":     25,
			"resolutionM":     30,
		},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("save status=%d body=%s", resp.Code, resp.Body.String())
	}

	var saved scenario.Scenario
	if err := json.Unmarshal(resp.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" || saved.Name != "Ridge" {
		t.Fatalf("saved=%+v", saved)
	}

	resp = api.Get("/api/v1/scenarios/" + saved.ID)
	if resp.Code != http.StatusOK {
		t.Fatalf("get status=%d", resp.Code)
	}

	resp = api.Delete("/api/v1/scenarios/" + saved.ID)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete status=%d", resp.Code)
	}

	resp = api.Get("/api/v1/scenarios/" + saved.ID)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d, want 404", resp.Code)
	}
}
