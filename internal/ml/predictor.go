package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"energy-predictor/internal/features"
	"energy-predictor/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MetricsInterface defines metrics methods needed by the predictor
type MetricsInterface interface {
	features.MetricsTracker
	MLPredictionsInc(model string)
	MLFailuresInc(model string)
	MLLatencyObserve(model string, seconds float64)
	MLPredictionValueObserve(model string, value float64)
	MLModelTimestampSet(model string, unixSeconds float64)
}

// Recorder persists completed predictions.
type Recorder interface {
	StorePrediction(rec storage.PredictionRecord) error
}

// Result is one completed prediction.
type Result struct {
	RequestID    string           `json:"request_id"`
	Model        string           `json:"model"`
	ModelVersion string           `json:"model_version,omitempty"`
	Prediction   float64          `json:"prediction"`
	Message      string           `json:"message"`
	Features     []features.Named `json:"features"`
	Timestamp    time.Time        `json:"timestamp"`
	LatencyMs    float64          `json:"latency_ms"`
}

// FormatPrediction renders the line shown under the form.
func FormatPrediction(model string, value float64) string {
	return fmt.Sprintf("%s prediction: %.2f units", model, value)
}

// Predictor derives features from raw input and runs the selected model.
type Predictor struct {
	models  *ModelManager
	metrics MetricsInterface
	store   Recorder
}

// NewPredictor wires a predictor. metrics and store may be nil.
func NewPredictor(models *ModelManager, metrics MetricsInterface, store Recorder) *Predictor {
	return &Predictor{models: models, metrics: metrics, store: store}
}

// Models exposes the catalog the predictor selects from.
func (p *Predictor) Models() *ModelManager {
	return p.models
}

// Predict validates raw, derives its features and runs the named model (the
// default model when modelName is empty). Errors from validation and
// derivation wrap the features package sentinels.
func (p *Predictor) Predict(ctx context.Context, modelName string, raw features.RawInput) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("predictor is nil")
	}
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	if modelName == "" {
		modelName = p.models.DefaultName()
	}
	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.MLLatencyObserve(modelName, time.Since(start).Seconds())
		}
	}()

	if err := raw.Validate(); err != nil {
		if p.metrics != nil {
			p.metrics.FeatureErrorsInc()
		}
		return Result{}, fmt.Errorf("input validation failed: %w", err)
	}

	var tracker features.MetricsTracker
	if p.metrics != nil {
		tracker = p.metrics
	}
	vec, err := features.DeriveWithMetrics(raw, tracker)
	if err != nil {
		return Result{}, fmt.Errorf("feature derivation failed: %w", err)
	}

	model, err := p.models.Get(modelName)
	if err != nil {
		p.recordFailure(modelName)
		return Result{}, err
	}

	value, err := model.Predict(vec)
	if err == nil && (math.IsNaN(value) || math.IsInf(value, 0)) {
		err = fmt.Errorf("model returned %v: %w", value, ErrInvalidPrediction)
	}
	if err != nil {
		p.recordFailure(modelName)
		log.Error().
			Err(err).
			Str("model", modelName).
			Interface("features", vec.Values()).
			Msg("Prediction failed")
		return Result{}, err
	}

	now := time.Now()
	res := Result{
		RequestID:    uuid.NewString(),
		Model:        modelName,
		ModelVersion: model.Metadata.Version,
		Prediction:   value,
		Message:      FormatPrediction(modelName, value),
		Features:     vec.Ordered(),
		Timestamp:    now.UTC(),
		LatencyMs:    float64(now.Sub(start).Microseconds()) / 1000,
	}

	if p.metrics != nil {
		p.metrics.MLPredictionsInc(modelName)
		p.metrics.MLPredictionValueObserve(modelName, value)
	}

	log.Debug().
		Str("request_id", res.RequestID).
		Str("model", modelName).
		Float64("prediction", value).
		Msg("Prediction successful")

	if p.store != nil {
		rec := storage.PredictionRecord{
			ID:         res.RequestID,
			Timestamp:  res.Timestamp,
			Model:      modelName,
			Input:      raw,
			Features:   vec.Values(),
			Prediction: value,
		}
		if err := p.store.StorePrediction(rec); err != nil {
			log.Warn().Err(err).Str("request_id", res.RequestID).Msg("Failed to store prediction")
		}
	}

	return res, nil
}

func (p *Predictor) recordFailure(model string) {
	if p.metrics != nil {
		p.metrics.MLFailuresInc(model)
	}
}

// IsInputError reports whether err came from bad user input rather than
// from the model or the catalog.
func IsInputError(err error) bool {
	return errors.Is(err, features.ErrInvalidDate) ||
		errors.Is(err, features.ErrDivisionByZero) ||
		errors.Is(err, features.ErrUnknownCategory) ||
		errors.Is(err, features.ErrOutOfRange)
}
