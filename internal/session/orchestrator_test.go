package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"

	"viewshed-explorer/internal/geoloc"
	"viewshed-explorer/internal/viewshed"
)

type fakeComputer struct {
	calls   atomic.Int64
	geom    *geojson.Geometry
	err     error
	block   chan struct{} // when non-nil, Compute waits until closed
	panicky bool
}

func (f *fakeComputer) Compute(ctx context.Context, req viewshed.Request) (*geojson.Geometry, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.panicky {
		panic("bad response body")
	}
	return f.geom, f.err
}

type fakeLocator struct {
	pos geoloc.Position
	err error
}

func (f *fakeLocator) Locate(ctx context.Context) (geoloc.Position, error) {
	return f.pos, f.err
}

type captureRecorder struct {
	recs []SubmissionRecord
}

func (c *captureRecorder) RecordSubmission(ctx context.Context, rec SubmissionRecord) {
	c.recs = append(c.recs, rec)
}

func TestSubmitWithoutObserverIssuesNoRequest(t *testing.T) {
	client := &fakeComputer{}
	s := New(Coordinate{}, 11)
	s.SetParameters(validParams())

	err := NewOrchestrator(s, client, nil).Submit(context.Background())
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err=%v, want ErrInvalid", err)
	}
	if n := client.calls.Load(); n != 0 {
		t.Errorf("requests issued=%d, want 0", n)
	}
}

func TestSubmitSuccessInstallsOverlayAndRecords(t *testing.T) {
	client := &fakeComputer{geom: testGeometry()}
	rec := &captureRecorder{}
	o := NewOrchestrator(newReadySession(), client, nil, rec)

	if err := o.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := o.Session().Snapshot()
	if snap.Phase != PhaseIdle || snap.Overlay == nil {
		t.Errorf("phase=%v overlay=%v, want idle with overlay", snap.Phase, snap.Overlay)
	}

	if len(rec.recs) != 1 {
		t.Fatalf("records=%d, want 1", len(rec.recs))
	}
	r := rec.recs[0]
	if r.Outcome != "success" || r.Message != "" {
		t.Errorf("record=%+v, want a success record", r)
	}
	if r.Request.ObserverHeightM != 1.7 || r.Request.MaxRadiusKm != 25 || r.Request.ResolutionM != 30 {
		t.Errorf("recorded request=%+v", r.Request)
	}
}

func TestSubmitFailureSurfacesMessage(t *testing.T) {
	client := &fakeComputer{err: errors.New("boom")}
	rec := &captureRecorder{}
	o := NewOrchestrator(newReadySession(), client, nil, rec)

	if err := o.Submit(context.Background()); err == nil {
		t.Fatal("expected the submission error")
	}

	snap := o.Session().Snapshot()
	if snap.Phase != PhaseFailed || snap.SubmitError != "boom" {
		t.Errorf("phase=%v error=%q, want failed/boom", snap.Phase, snap.SubmitError)
	}
	if len(rec.recs) != 1 || rec.recs[0].Outcome != "failure" || rec.recs[0].Message != "boom" {
		t.Errorf("records=%+v, want one failure record", rec.recs)
	}
}

func TestSubmitReleasesPhaseOnPanic(t *testing.T) {
	client := &fakeComputer{panicky: true}
	o := NewOrchestrator(newReadySession(), client, nil)

	if err := o.Submit(context.Background()); err == nil {
		t.Fatal("expected a failure")
	}

	snap := o.Session().Snapshot()
	if snap.Phase == PhaseSubmitting {
		t.Fatal("in-flight phase must be released even when the client panics")
	}
	if snap.SubmitError == "" {
		t.Error("panic should surface as a submission error")
	}

	// The session accepts a fresh attempt afterwards.
	client.panicky = false
	client.geom = testGeometry()
	if err := o.Submit(context.Background()); err != nil {
		t.Errorf("resubmit: %v", err)
	}
}

func TestSubmitWhileInFlightIssuesNoSecondRequest(t *testing.T) {
	client := &fakeComputer{block: make(chan struct{}), geom: testGeometry()}
	o := NewOrchestrator(newReadySession(), client, nil)

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background()) }()

	// Wait for the first request to reach the client.
	for client.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	if err := o.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("err=%v, want ErrSubmitInFlight", err)
	}
	if n := client.calls.Load(); n != 1 {
		t.Errorf("requests issued=%d, want 1", n)
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	// The late completion still lands normally.
	snap := o.Session().Snapshot()
	if snap.Phase != PhaseIdle || snap.Overlay == nil {
		t.Errorf("phase=%v overlay=%v, want idle with overlay", snap.Phase, snap.Overlay)
	}
}

func TestLocateWithoutProviderIsTerminal(t *testing.T) {
	s := New(Coordinate{Lat: 1, Lon: 2}, 11)
	var updates int
	NewOrchestrator(s, &fakeComputer{}, nil).Locate(context.Background(), func() { updates++ })

	snap := s.Snapshot()
	if snap.Status != StatusGeolocationUnsupported {
		t.Errorf("status=%q", snap.Status)
	}
	if snap.Observer != nil {
		t.Error("observer must stay unset")
	}
	if updates != 1 {
		t.Errorf("updates=%d, want 1", updates)
	}
}

func TestLocateSuccessCentersViewportOnObserver(t *testing.T) {
	s := New(Coordinate{}, 11)
	loc := &fakeLocator{pos: geoloc.Position{Lat: 48.86, Lon: 2.35}}

	var statuses []string
	NewOrchestrator(s, &fakeComputer{}, loc).Locate(context.Background(), func() {
		statuses = append(statuses, s.Snapshot().Status)
	})

	if len(statuses) != 2 || statuses[0] != StatusRequestingLocation || statuses[1] != "" {
		t.Errorf("statuses=%v", statuses)
	}

	snap := s.Snapshot()
	want := Coordinate{Lat: 48.86, Lon: 2.35}
	if snap.Observer == nil || *snap.Observer != want {
		t.Fatalf("observer=%+v, want %+v", snap.Observer, want)
	}
	if snap.Center != want {
		t.Errorf("center=%+v, want it to equal the observer", snap.Center)
	}
}

func TestLocateFailureSurfacesDescription(t *testing.T) {
	s := New(Coordinate{}, 11)
	loc := &fakeLocator{err: errors.New("timeout expired")}

	NewOrchestrator(s, &fakeComputer{}, loc).Locate(context.Background(), nil)

	if got := s.Snapshot().Status; got != "timeout expired" {
		t.Errorf("status=%q, want the provider description", got)
	}
}
