// Package geoloc resolves the caller's approximate position. A provider is a
// capability the deployment may or may not have; holders of a nil Provider
// must treat geolocation as unsupported.
package geoloc

import "context"

// Position is a resolved WGS84 location.
type Position struct {
	Lat float64
	Lon float64
}

// Provider yields the current position, or a failure with a human-readable
// description. Implementations honor the context deadline; callers bound it.
type Provider interface {
	Locate(ctx context.Context) (Position, error)
}
