// Package viewshed defines the viewshed service wire contract and the
// visible-area computation served by this repository.
package viewshed

import (
	"github.com/paulmach/orb/geojson"
)

// Observer is a WGS84 observer location.
type Observer struct {
	Lat float64 `json:"lat" minimum:"-90" maximum:"90" doc:"Observer latitude" example:"40.0"`
	Lon float64 `json:"lon" minimum:"-180" maximum:"180" doc:"Observer longitude" example:"-105.0"`
}

// Request is the body of POST /viewshed.
type Request struct {
	Observer        Observer `json:"observer" required:"true" doc:"Observer location"`
	ObserverHeightM float64  `json:"observerHeightM" required:"true" exclusiveMinimum:"0" doc:"Observer height above ground in meters" example:"1.7"`
	MaxRadiusKm     float64  `json:"maxRadiusKm" required:"true" exclusiveMinimum:"0" doc:"Search radius in kilometers" example:"25"`
	ResolutionM     float64  `json:"resolutionM" required:"true" exclusiveMinimum:"0" doc:"Sample resolution in meters" example:"30"`
}

// Response is the body of a successful POST /viewshed. Polygon may be absent,
// which clients treat as "no visible area" rather than an error.
type Response struct {
	Observer    Observer          `json:"observer" doc:"Echo of the request observer"`
	MaxRadiusKm float64           `json:"maxRadiusKm" doc:"Echo of the request radius"`
	Polygon     *geojson.Geometry `json:"polygon,omitempty" doc:"Visible-area geometry (GeoJSON)"`
}
