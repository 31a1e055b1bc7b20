// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Validation outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeNoSchema = "no_schema"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
)

var (
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqschema_validations_total",
			Help: "Requests seen by the schema enforcer, by route key and outcome",
		},
		[]string{"route", "outcome"},
	)

	ValidationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reqschema_validation_duration_seconds",
			Help:    "Time spent validating request body and files",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		},
		[]string{"route"},
	)

	ValidationDiagnostics = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reqschema_validation_diagnostics",
			Help:    "Number of diagnostics reported per rejected request",
			Buckets: []float64{1, 2, 5, 10, 25, 50},
		},
	)

	RegisteredSchemas = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reqschema_registered_schemas",
			Help: "Route schemas compiled at startup",
		},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordValidation counts one enforcer decision. Duration is only observed
// when the validators actually ran.
func RecordValidation(route, outcome string, duration time.Duration) {
	ValidationsTotal.WithLabelValues(route, outcome).Inc()
	if outcome == OutcomeAccepted || outcome == OutcomeRejected {
		ValidationDuration.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// RecordRejection observes how many diagnostics a rejection carried.
func RecordRejection(diagnostics int) {
	ValidationDiagnostics.Observe(float64(diagnostics))
}

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
