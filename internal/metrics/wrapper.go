package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsWrapper adapts Metrics to the narrow interfaces the ml, features
// and web packages depend on.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) MLPredictionsInc(model string) {
	w.m.Predictions.WithLabelValues(model).Inc()
}

func (w *MetricsWrapper) MLFailuresInc(model string) {
	w.m.PredictionFailures.WithLabelValues(model).Inc()
	w.m.ErrorsTotal.Inc()
}

func (w *MetricsWrapper) MLLatencyObserve(model string, seconds float64) {
	w.m.PredictionLatency.WithLabelValues(model).Observe(seconds)
}

func (w *MetricsWrapper) MLPredictionValueObserve(model string, value float64) {
	w.m.PredictedConsumption.WithLabelValues(model).Observe(value)
}

func (w *MetricsWrapper) MLModelTimestampSet(model string, unixSeconds float64) {
	w.m.ModelTimestamp.WithLabelValues(model).Set(unixSeconds)
}

func (w *MetricsWrapper) FeatureErrorsInc() {
	w.m.FeatureErrors.Inc()
}

// HTTPRequestInc counts one served request.
func (w *MetricsWrapper) HTTPRequestInc(route string, code int) {
	w.m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (w *MetricsWrapper) WSClients() prometheus.Gauge {
	return w.m.WSClients
}

func (w *MetricsWrapper) ErrorsInc() {
	w.m.ErrorsTotal.Inc()
}
