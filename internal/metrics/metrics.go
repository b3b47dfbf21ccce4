// Package metrics holds the Prometheus collectors of the engine. All
// methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "videoab"

// Metrics groups the collectors reported by the usecases.
type Metrics struct {
	eventsRecorded *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	analyses       *prometheus.CounterVec
	uploads        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Subsystem: "ingest", Name: "events_total", Help: "Engagement events by kind and outcome."},
			[]string{"kind", "outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Subsystem: "lifecycle", Name: "transitions_total", Help: "Experiment status transitions."},
			[]string{"from", "to"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Subsystem: "analytics", Name: "query_duration_seconds", Help: "Analytics query latency.", Buckets: prometheus.DefBuckets},
			[]string{"range"},
		),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Subsystem: "analytics", Name: "analyses_total", Help: "Analysis requests by prose outcome."},
			[]string{"outcome"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Subsystem: "media", Name: "upload_grants_total", Help: "Upload grants by media kind and outcome."},
			[]string{"kind", "outcome"},
		),
	}
	reg.MustRegister(m.eventsRecorded, m.transitions, m.queryDuration, m.analyses, m.uploads)
	return m
}

// EventRecorded counts one ingestion attempt.
func (m *Metrics) EventRecorded(kind, outcome string) {
	if m == nil {
		return
	}
	m.eventsRecorded.WithLabelValues(kind, outcome).Inc()
}

// Transition counts one status change.
func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	if from == "" {
		from = "none"
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// ObserveQuery records the latency of an analytics query.
func (m *Metrics) ObserveQuery(timeRange string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(timeRange).Observe(d.Seconds())
}

// Analysis counts one analysis request.
func (m *Metrics) Analysis(outcome string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
}

// Upload counts one upload grant request.
func (m *Metrics) Upload(kind, outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, outcome).Inc()
}
