package ml

import (
	"errors"
	"sync"
	"testing"

	"energy-predictor/internal/storage"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu             sync.Mutex
	predictions    map[string]int
	failures       map[string]int
	latencyCount   int
	values         []float64
	modelTimestamp map[string]float64
	featureErrors  int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		predictions:    make(map[string]int),
		failures:       make(map[string]int),
		modelTimestamp: make(map[string]float64),
	}
}

func (m *MockMetrics) MLPredictionsInc(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[model]++
}

func (m *MockMetrics) MLFailuresInc(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[model]++
}

func (m *MockMetrics) MLLatencyObserve(model string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencyCount++
}

func (m *MockMetrics) MLPredictionValueObserve(model string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = append(m.values, value)
}

func (m *MockMetrics) MLModelTimestampSet(model string, unixSeconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelTimestamp[model] = unixSeconds
}

func (m *MockMetrics) FeatureErrorsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.featureErrors++
}

// memRecorder collects stored predictions in memory.
type memRecorder struct {
	mu      sync.Mutex
	records []storage.PredictionRecord
	err     error
}

func (r *memRecorder) StorePrediction(rec storage.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

var errRecorderDown = errors.New("recorder down")

// sampleDir writes the sample models into a fresh temp dir.
func sampleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := WriteSampleModels(dir); err != nil {
		t.Fatalf("WriteSampleModels: %v", err)
	}
	return dir
}
