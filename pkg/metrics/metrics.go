// Package metrics registers the Prometheus collectors shared by the content
// facade, the analytics dispatcher and the HTTP layer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsDispatched counts analytics events by kind (pageview, click) and
	// outcome (sent, failed).
	EventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_events_dispatched_total",
			Help: "Analytics events handed to the ingestion endpoint",
		},
		[]string{"kind", "outcome"},
	)

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_backend_requests_total",
			Help: "Content backend calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_backend_request_duration_seconds",
			Help:    "Latency of content backend calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_events_ingested_total",
			Help: "Events accepted by the local ingestion endpoint",
		},
		[]string{"kind"},
	)
)

func RecordDispatch(kind string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	EventsDispatched.WithLabelValues(kind, outcome).Inc()
}

func RecordBackendCall(operation string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendRequests.WithLabelValues(operation, outcome).Inc()
	BackendDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
