package viewshed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/paulmach/orb/geojson"
)

// Client calls a viewshed service over its HTTP contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Compute posts the request and returns the visible-area geometry.
//
// A 2xx response with no polygon field returns (nil, nil): the service found
// no visible area. A non-2xx response yields an error carrying the response
// body verbatim, or a message naming the status code when the body is empty.
// Transport failures are returned as-is.
func (c *Client) Compute(ctx context.Context, req Request) (*geojson.Geometry, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding viewshed request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/viewshed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building viewshed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		diag, _ := io.ReadAll(resp.Body)
		if len(bytes.TrimSpace(diag)) == 0 {
			return nil, fmt.Errorf("viewshed service returned status %d", resp.StatusCode)
		}
		return nil, errors.New(string(diag))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding viewshed response: %w", err)
	}
	return out.Polygon, nil
}
