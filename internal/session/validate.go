package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"viewshed-explorer/internal/viewshed"
)

// Field error keys. The parameter keys match the wire field names; the
// observer key is distinct because it has no form field of its own.
const (
	FieldObserver   = "observer"
	FieldHeight     = "observerHeightM"
	FieldRadius     = "maxRadiusKm"
	FieldResolution = "resolutionM"
)

// FieldErrors maps field keys to display messages. A validation pass always
// produces a complete new mapping, never a partial merge.
type FieldErrors map[string]string

// Validate checks the observer and raw parameter text. Each parameter errors
// independently iff it does not parse to a finite number greater than zero;
// the observer errors iff none is selected. An empty result means the state
// is submittable.
func Validate(observer *Coordinate, params Parameters) FieldErrors {
	errs := FieldErrors{}
	if observer == nil {
		errs[FieldObserver] = "Select an observer location on the map."
	}
	if _, ok := parsePositive(params.ObserverHeightM); !ok {
		errs[FieldHeight] = "Enter a positive height in meters."
	}
	if _, ok := parsePositive(params.MaxRadiusKm); !ok {
		errs[FieldRadius] = "Enter a positive radius in kilometers."
	}
	if _, ok := parsePositive(params.ResolutionM); !ok {
		errs[FieldResolution] = "Enter a positive resolution in meters."
	}
	return errs
}

// BuildRequest projects the current state onto the wire payload. It is a pure
// function of its inputs and fails unless every field validates, so a payload
// can never be built from stale or partial state.
func BuildRequest(observer *Coordinate, params Parameters) (viewshed.Request, error) {
	if observer == nil {
		return viewshed.Request{}, fmt.Errorf("no observer selected")
	}
	height, ok := parsePositive(params.ObserverHeightM)
	if !ok {
		return viewshed.Request{}, fmt.Errorf("invalid observer height %q", params.ObserverHeightM)
	}
	radius, ok := parsePositive(params.MaxRadiusKm)
	if !ok {
		return viewshed.Request{}, fmt.Errorf("invalid radius %q", params.MaxRadiusKm)
	}
	resolution, ok := parsePositive(params.ResolutionM)
	if !ok {
		return viewshed.Request{}, fmt.Errorf("invalid resolution %q", params.ResolutionM)
	}

	return viewshed.Request{
		Observer:        viewshed.Observer{Lat: observer.Lat, Lon: observer.Lon},
		ObserverHeightM: height,
		MaxRadiusKm:     radius,
		ResolutionM:     resolution,
	}, nil
}

func parsePositive(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v <= 0 {
		return 0, false
	}
	return v, true
}
