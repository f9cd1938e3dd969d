// Package metrics exposes Prometheus instrumentation for the explorer.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"viewshed-explorer/internal/session"
)

// Metrics holds the explorer's collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viewshed_submissions_total",
			Help: "Completed viewshed submissions by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "viewshed_submission_duration_seconds",
			Help:    "Round-trip time of viewshed submissions.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.submissions, m.duration)
	return m
}

// RecordSubmission implements session.Recorder.
func (m *Metrics) RecordSubmission(_ context.Context, rec session.SubmissionRecord) {
	m.submissions.WithLabelValues(rec.Outcome).Inc()
	m.duration.Observe(rec.Duration.Seconds())
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
