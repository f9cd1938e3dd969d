package geoloc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultIPAPIEndpoint is the public ip-api.com JSON endpoint.
const DefaultIPAPIEndpoint = "http://ip-api.com/json/"

// IPAPI resolves a position from the server's public IP via ip-api.com.
type IPAPI struct {
	endpoint   string
	httpClient *http.Client
}

// NewIPAPI creates an ip-api.com provider. An empty endpoint uses the public
// service.
func NewIPAPI(endpoint string) *IPAPI {
	if endpoint == "" {
		endpoint = DefaultIPAPIEndpoint
	}
	return &IPAPI{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

// Locate queries the endpoint and maps its status/message envelope to a
// Position or an error.
func (p *IPAPI) Locate(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?fields=status,message,lat,lon", nil)
	if err != nil {
		return Position{}, fmt.Errorf("building geolocation request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Position{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("geolocation service returned status %d", resp.StatusCode)
	}

	var out struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Position{}, fmt.Errorf("decoding geolocation response: %w", err)
	}

	if out.Status != "success" {
		if out.Message == "" {
			return Position{}, errors.New("geolocation lookup failed")
		}
		return Position{}, errors.New(out.Message)
	}

	return Position{Lat: out.Lat, Lon: out.Lon}, nil
}
