package viewshed

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestCirclePolygonRingIsClosed(t *testing.T) {
	geom := CirclePolygon(40.0, -105.0, 25)

	poly, ok := geom.Geometry().(orb.Polygon)
	if !ok {
		t.Fatalf("geometry type=%T, want orb.Polygon", geom.Geometry())
	}
	if len(poly) != 1 {
		t.Fatalf("rings=%d, want 1", len(poly))
	}

	ring := poly[0]
	if len(ring) != circleSegments+1 {
		t.Fatalf("ring points=%d, want %d", len(ring), circleSegments+1)
	}
	if ring[0] != ring[len(ring)-1] {
		t.Errorf("ring not closed: first=%v last=%v", ring[0], ring[len(ring)-1])
	}
}

func TestCirclePolygonRadius(t *testing.T) {
	const lat, lon, radiusKm = 40.0, -105.0, 25.0
	geom := CirclePolygon(lat, lon, radiusKm)
	ring := geom.Geometry().(orb.Polygon)[0]

	kmPerDegLat := 110.574
	kmPerDegLon := 111.320 * math.Cos(lat*math.Pi/180)

	for _, p := range ring {
		dKm := math.Hypot((p.Lat()-lat)*kmPerDegLat, (p.Lon()-lon)*kmPerDegLon)
		if math.Abs(dKm-radiusKm) > 0.05 {
			t.Fatalf("point %v is %.3f km from the observer, want %.1f", p, dKm, radiusKm)
		}
	}
}

func TestCirclePolygonClampsNearPoles(t *testing.T) {
	geom := CirclePolygon(90.0, 0.0, 10)
	ring := geom.Geometry().(orb.Polygon)[0]
	for _, p := range ring {
		if math.IsInf(p.Lon(), 0) || math.IsNaN(p.Lon()) {
			t.Fatalf("non-finite longitude at the pole: %v", p)
		}
	}
}
