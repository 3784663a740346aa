// Package metrics provides Prometheus metrics collection for the energy
// consumption predictor. It defines the prediction, feature derivation and
// HTTP metrics exposed on the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor service.
type Metrics struct {
	// Prediction metrics, labelled by model display name
	Predictions          *prometheus.CounterVec   // Successful predictions
	PredictionFailures   *prometheus.CounterVec   // Failed model lookups or predictions
	PredictionLatency    *prometheus.HistogramVec // End-to-end prediction latency in seconds
	PredictedConsumption *prometheus.HistogramVec // Distribution of predicted consumption
	ModelTimestamp       *prometheus.GaugeVec     // Unix time the loaded artifact was written

	// Feature derivation metrics
	FeatureErrors prometheus.Counter // Rejected inputs (bounds, dates, zero occupants)

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec // Requests by route and status code
	WSClients    prometheus.Gauge       // Open live-preview websocket connections

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful energy predictions",
		}, []string{"model"}),
		PredictionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed model lookups or predictions",
		}, []string{"model"}),
		PredictionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction latency in seconds (validation, derivation and model)",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"model"}),
		PredictedConsumption: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "predicted_consumption_units",
			Help:    "Distribution of predicted energy consumption",
			Buckets: prometheus.LinearBuckets(0, 50, 11),
		}, []string{"model"}),
		ModelTimestamp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "model_artifact_timestamp_seconds",
			Help: "Modification time of the loaded model artifact as a unix timestamp",
		}, []string{"model"}),
		FeatureErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "feature_errors_total",
			Help: "Total number of rejected inputs during feature derivation",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Number of open live-preview websocket connections",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
