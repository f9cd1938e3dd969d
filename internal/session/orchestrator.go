package session

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb/geojson"

	"viewshed-explorer/internal/geoloc"
	"viewshed-explorer/internal/viewshed"
)

// Computer issues a viewshed computation. *viewshed.Client satisfies it.
type Computer interface {
	Compute(ctx context.Context, req viewshed.Request) (*geojson.Geometry, error)
}

// SubmissionRecord describes one completed submission attempt that reached
// the wire, for metrics and history sinks.
type SubmissionRecord struct {
	At       time.Time
	Request  viewshed.Request
	Outcome  string // "success" or "failure"
	Message  string
	Duration time.Duration
}

// Recorder receives completed submissions. Implementations must not block.
type Recorder interface {
	RecordSubmission(ctx context.Context, rec SubmissionRecord)
}

// StatusGeolocationUnsupported is the terminal message when no geolocation
// provider is configured.
const StatusGeolocationUnsupported = "Geolocation is not supported by this deployment."

// locateTimeout bounds how long a geolocation lookup may take before the
// provider is expected to fail with a timeout.
const locateTimeout = 10 * time.Second

// Orchestrator drives the session against its external collaborators: the
// viewshed service client and the optional geolocation provider.
type Orchestrator struct {
	session   *Session
	client    Computer
	locator   geoloc.Provider // nil means the capability is absent
	recorders []Recorder
}

// NewOrchestrator wires the session to its collaborators. locator may be nil;
// recorders are optional sinks for completed submissions.
func NewOrchestrator(s *Session, client Computer, locator geoloc.Provider, recorders ...Recorder) *Orchestrator {
	return &Orchestrator{
		session:   s,
		client:    client,
		locator:   locator,
		recorders: recorders,
	}
}

// Session returns the orchestrated session.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Submit runs one submission attempt: fresh validation, at most one outbound
// request, and a state transition for every outcome. The returned error is
// ErrInvalid or ErrSubmitInFlight when no request was issued, otherwise the
// submission outcome (nil on success). The in-flight phase is released even
// if the client panics mid-response.
func (o *Orchestrator) Submit(ctx context.Context) error {
	req, err := o.session.BeginSubmit()
	if err != nil {
		return err
	}

	start := time.Now()
	var geom *geojson.Geometry
	var callErr error

	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("viewshed request failed: %v", r)
			}
			o.session.FinishSubmit(geom, callErr)
		}()
		geom, callErr = o.client.Compute(ctx, req)
	}()

	rec := SubmissionRecord{
		At:       start,
		Request:  req,
		Outcome:  "success",
		Duration: time.Since(start),
	}
	if callErr != nil {
		rec.Outcome = "failure"
		rec.Message = callErr.Error()
	}
	for _, r := range o.recorders {
		r.RecordSubmission(ctx, rec)
	}

	return callErr
}

// Locate runs the geolocation flow. Without a provider the status message is
// set and nothing else happens. Otherwise the lookup runs with a bounded
// wait, and the result transitions the session: success installs the observer
// and re-centers the viewport, failure surfaces the provider's description.
// onUpdate, when non-nil, fires after every transition so callers can stream
// intermediate state.
func (o *Orchestrator) Locate(ctx context.Context, onUpdate func()) {
	notify := func() {
		if onUpdate != nil {
			onUpdate()
		}
	}

	if o.locator == nil {
		o.session.SetStatus(StatusGeolocationUnsupported)
		notify()
		return
	}

	o.session.BeginLocate()
	notify()

	ctx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	pos, err := o.locator.Locate(ctx)
	if err != nil {
		o.session.FinishLocate(Coordinate{}, err)
	} else {
		o.session.FinishLocate(Coordinate{Lat: pos.Lat, Lon: pos.Lon}, nil)
	}
	notify()
}
