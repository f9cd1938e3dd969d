// Package session owns the explorer's request orchestration state: the
// observer selection, raw parameter text, submit lifecycle, and overlay
// geometry. All state lives in a single aggregate; every externally triggered
// event is applied as one transition under one lock, so reactions never
// interleave.
package session

import (
	"errors"
	"sync"

	"github.com/paulmach/orb/geojson"

	"viewshed-explorer/internal/viewshed"
)

// Coordinate is a WGS84 observer location.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Parameters holds the three request parameters as raw user-entered text.
// They stay text until submit time so in-progress edits (a trailing decimal
// point, an emptied field) survive between keystrokes.
type Parameters struct {
	ObserverHeightM string
	MaxRadiusKm     string
	ResolutionM     string
}

// Phase is the submit lifecycle state. A completed submission returns to
// PhaseIdle; success is visible as an installed overlay, failure as a
// recorded submit error.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	Observer    *Coordinate
	Parameters  Parameters
	FieldErrors FieldErrors
	Phase       Phase
	SubmitError string
	Status      string
	Overlay     *geojson.Geometry
	Center      Coordinate
	Zoom        int
}

// ErrSubmitInFlight rejects a submit while another one is outstanding.
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// ErrInvalid reports that validation blocked the submit; the field errors
// are available in the next Snapshot.
var ErrInvalid = errors.New("request parameters are invalid")

// StatusRequestingLocation is shown while a geolocation lookup is running.
const StatusRequestingLocation = "Requesting location..."

// Session is the state aggregate. The zero value is not usable; call New.
type Session struct {
	mu          sync.Mutex
	observer    *Coordinate
	params      Parameters
	fieldErrors FieldErrors
	phase       Phase
	submitError string
	status      string
	overlay     *geojson.Geometry
	center      Coordinate
	zoom        int
}

// New creates a session with the given initial viewport.
func New(center Coordinate, zoom int) *Session {
	return &Session{
		fieldErrors: FieldErrors{},
		center:      center,
		zoom:        zoom,
	}
}

// SelectFromMap sets the observer to the clicked point. Repeated identical
// clicks are idempotent; the viewport and status message are left alone.
func (s *Session) SelectFromMap(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = &Coordinate{Lat: lat, Lon: lon}
}

// SetParameters replaces the raw parameter text.
func (s *Session) SetParameters(p Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}

// SetCenter re-centers the viewport without touching the observer.
func (s *Session) SetCenter(c Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = c
}

// SetStatus replaces the transient status message. Used for terminal
// geolocation outcomes such as a missing provider.
func (s *Session) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = msg
}

// BeginLocate marks a geolocation lookup as running.
func (s *Session) BeginLocate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusRequestingLocation
}

// FinishLocate completes a geolocation lookup. Success installs the observer,
// re-centers the viewport on it, and clears the status; failure replaces the
// status with the failure's description (or a generic fallback).
func (s *Session) FinishLocate(c Coordinate, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Unable to determine your location."
		}
		s.status = msg
		return
	}
	s.observer = &Coordinate{Lat: c.Lat, Lon: c.Lon}
	s.center = c
	s.status = ""
}

// BeginSubmit validates the current state and, when clean, enters the
// submitting phase and returns the outbound payload. Validation runs fresh on
// every attempt. On validation failure the errors are recorded and nothing
// else changes; while a submission is outstanding ErrSubmitInFlight is
// returned and no second payload is built. Entering the submitting phase
// clears any prior submit error and the current overlay, so a stale overlay
// is never shown next to a pending request.
func (s *Session) BeginSubmit() (viewshed.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitting {
		return viewshed.Request{}, ErrSubmitInFlight
	}

	errs := Validate(s.observer, s.params)
	s.fieldErrors = errs
	if len(errs) > 0 {
		return viewshed.Request{}, ErrInvalid
	}

	req, err := BuildRequest(s.observer, s.params)
	if err != nil {
		// Unreachable after a clean Validate; kept as a guard.
		return viewshed.Request{}, err
	}

	s.submitError = ""
	s.overlay = nil
	s.phase = PhaseSubmitting
	return req, nil
}

// FinishSubmit completes the in-flight submission. The submitting phase is
// released unconditionally, whatever the outcome. Success installs the
// overlay (nil means the service reported no visible area); failure records
// the message and leaves the observer and parameters untouched.
func (s *Session) FinishSubmit(geom *geojson.Geometry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Viewshed request failed."
		}
		s.submitError = msg
		s.phase = PhaseFailed
		return
	}
	s.overlay = geom
	s.submitError = ""
	s.phase = PhaseIdle
}

// ClearOverlay removes the overlay. A no-op when none is present; the submit
// phase and errors are untouched either way.
func (s *Session) ClearOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = nil
}

// Snapshot returns a copy of the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Parameters:  s.params,
		FieldErrors: make(FieldErrors, len(s.fieldErrors)),
		Phase:       s.phase,
		SubmitError: s.submitError,
		Status:      s.status,
		Overlay:     s.overlay,
		Center:      s.center,
		Zoom:        s.zoom,
	}
	if s.observer != nil {
		obs := *s.observer
		snap.Observer = &obs
	}
	for k, v := range s.fieldErrors {
		snap.FieldErrors[k] = v
	}
	return snap
}
