// Package explorerclient is a small Go client for the viewshed-explorer
// REST API. It covers the JSON endpoints only; the Datastar SSE surface is
// browser-facing and not exposed here.
package explorerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Observer is a geographic point.
type Observer struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ComputeRequest describes one viewshed computation.
type ComputeRequest struct {
	Observer        Observer `json:"observer"`
	ObserverHeightM float64  `json:"observerHeightM"`
	MaxRadiusKm     float64  `json:"maxRadiusKm"`
	ResolutionM     float64  `json:"resolutionM"`
}

// ComputeResponse is the computation result. Polygon is raw GeoJSON.
type ComputeResponse struct {
	Observer    Observer        `json:"observer"`
	MaxRadiusKm float64         `json:"maxRadiusKm"`
	Polygon     json.RawMessage `json:"polygon,omitempty"`
}

// Scenario is a saved request.
type Scenario struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	Request   ComputeRequest `json:"request"`
}

// HistoryEntry is one recorded submission.
type HistoryEntry struct {
	ID              string    `json:"id"`
	RequestedAt     time.Time `json:"requestedAt"`
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	ObserverHeightM float64   `json:"observerHeightM"`
	MaxRadiusKm     float64   `json:"maxRadiusKm"`
	ResolutionM     float64   `json:"resolutionM"`
	Outcome         string    `json:"outcome"`
	Message         string    `json:"message,omitempty"`
	DurationMS      int64     `json:"durationMs"`
}

// Health is the health check response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Info is the service info response.
type Info struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DataDir  string   `json:"data_dir"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

// Client talks to a viewshed-explorer server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8090".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Health checks the server.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// GetInfo returns service metadata.
func (c *Client) GetInfo(ctx context.Context) (Info, error) {
	var out Info
	err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &out)
	return out, err
}

// Compute runs a viewshed computation.
func (c *Client) Compute(ctx context.Context, req ComputeRequest) (ComputeResponse, error) {
	var out ComputeResponse
	err := c.do(ctx, http.MethodPost, "/viewshed", req, &out)
	return out, err
}

// ListScenarios returns saved scenarios, newest first.
func (c *Client) ListScenarios(ctx context.Context) ([]Scenario, error) {
	var out []Scenario
	err := c.do(ctx, http.MethodGet, "/api/v1/scenarios", nil, &out)
	return out, err
}

// SaveScenario saves a request under a display name.
func (c *Client) SaveScenario(ctx context.Context, name string, req ComputeRequest) (Scenario, error) {
	var out Scenario
	body := map[string]any{"name": name, "request": req}
	err := c.do(ctx, http.MethodPost, "/api/v1/scenarios", body, &out)
	return out, err
}

// GetScenario fetches one scenario by ID.
func (c *Client) GetScenario(ctx context.Context, id string) (Scenario, error) {
	var out Scenario
	err := c.do(ctx, http.MethodGet, "/api/v1/scenarios/"+id, nil, &out)
	return out, err
}

// DeleteScenario removes a scenario by ID.
func (c *Client) DeleteScenario(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/scenarios/"+id, nil, nil)
}

// History returns recent submissions, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	path := "/api/v1/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out []HistoryEntry
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
