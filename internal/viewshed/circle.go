package viewshed

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// circleSegments is the number of ring segments; the ring repeats its first
// point, so the encoded ring has circleSegments+1 positions.
const circleSegments = 64

// CirclePolygon approximates a circle of the given radius around the observer
// as a closed GeoJSON polygon. Longitude spacing shrinks with latitude, so the
// east-west extent is scaled by cos(lat), clamped near the poles.
func CirclePolygon(lat, lon, radiusKm float64) *geojson.Geometry {
	latRad := lat * math.Pi / 180
	kmPerDegLat := 110.574
	kmPerDegLon := math.Max(111.320*math.Cos(latRad), 1e-6)

	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		angle := 2 * math.Pi * float64(i) / circleSegments
		dLat := radiusKm * math.Sin(angle) / kmPerDegLat
		dLon := radiusKm * math.Cos(angle) / kmPerDegLon
		ring = append(ring, orb.Point{lon + dLon, lat + dLat})
	}

	return geojson.NewGeometry(orb.Polygon{ring})
}
