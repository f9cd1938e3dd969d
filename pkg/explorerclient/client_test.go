//go:build integration

// Integration test for the API client.
// Requires a running server: task run
//
// Run: go test -tags=integration ./pkg/explorerclient/
package explorerclient_test

import (
	"context"
	"os"
	"testing"

	"viewshed-explorer/pkg/explorerclient"
)

func baseURL() string {
	if u := os.Getenv("EXPLORER_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8090"
}

func client() *explorerclient.Client {
	return explorerclient.New(baseURL())
}

func TestHealth(t *testing.T) {
	body, err := client().Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status=%q, want ok", body.Status)
	}
}

func TestGetInfo(t *testing.T) {
	body, err := client().GetInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if body.Name != "viewshed-explorer" {
		t.Fatalf("name=%q, want viewshed-explorer", body.Name)
	}
}

func TestCompute(t *testing.T) {
	body, err := client().Compute(context.Background(), explorerclient.ComputeRequest{
		Observer:        explorerclient.Observer{Lat: 40.0, Lon: -105.0},
		ObserverHeightM: 1.7,
		MaxRadiusKm:     25,
		ResolutionM:     30,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(body.Polygon) == 0 {
		t.Fatal("expected a polygon in the response")
	}
}

func TestScenarioCRUD(t *testing.T) {
	c := client()
	ctx := context.Background()

	if _, err := c.ListScenarios(ctx); err != nil {
		t.Fatal("list:", err)
	}

	created, err := c.SaveScenario(ctx, "Integration Test", explorerclient.ComputeRequest{
		Observer:        explorerclient.Observer{Lat: 40.0, Lon: -105.0},
		ObserverHeightM: 1.7,
		MaxRadiusKm:     25,
		ResolutionM:     30,
	})
	if err != nil {
		t.Fatal("save:", err)
	}

	sc, err := c.GetScenario(ctx, created.ID)
	if err != nil {
		t.Fatal("get:", err)
	}
	if sc.Name != "Integration Test" {
		t.Fatalf("name=%q, want Integration Test", sc.Name)
	}

	if err := c.DeleteScenario(ctx, created.ID); err != nil {
		t.Fatal("delete:", err)
	}
}
