package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"energy-predictor/internal/features"
)

var (
	// ErrSchemaMismatch is returned when an artifact's features differ from the schema.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
	// ErrUnknownModel is returned for a model name missing from the catalog.
	ErrUnknownModel = errors.New("unknown model")
	// ErrInvalidPrediction is returned when a model produces NaN or Inf.
	ErrInvalidPrediction = errors.New("invalid prediction")
)

// ModelMetadata describes a model artifact.
type ModelMetadata struct {
	Kind      string    `json:"kind"`
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Features  []string  `json:"features"`
}

type artifact struct {
	ModelMetadata
	Coefficients []float64   `json:"coefficients,omitempty"`
	Intercept    float64     `json:"intercept,omitempty"`
	Tree         *TreeNode   `json:"tree,omitempty"`
	Trees        []*TreeNode `json:"trees,omitempty"`
}

// LoadedModel is a model together with where it came from.
type LoadedModel struct {
	Model
	Metadata ModelMetadata
	Path     string
	ModTime  time.Time
}

// LoadModel reads a JSON artifact and builds the model its kind names.
func LoadModel(path string) (*LoadedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	m, meta, err := decodeModel(data)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}

	lm := &LoadedModel{Model: m, Metadata: meta, Path: path}
	if info, err := os.Stat(path); err == nil {
		lm.ModTime = info.ModTime()
	}
	return lm, nil
}

func decodeModel(data []byte) (Model, ModelMetadata, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, ModelMetadata{}, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	if err := checkSchema(a.Features); err != nil {
		return nil, a.ModelMetadata, err
	}

	var (
		m   Model
		err error
	)
	switch a.Kind {
	case KindLinear:
		m, err = NewLinearModel(a.Coefficients, a.Intercept)
	case KindDecisionTree:
		m, err = NewDecisionTree(a.Tree)
	case KindRandomForest:
		m, err = NewRandomForest(a.Trees)
	default:
		err = fmt.Errorf("unsupported model kind %q", a.Kind)
	}
	if err != nil {
		return nil, a.ModelMetadata, err
	}
	return m, a.ModelMetadata, nil
}

func checkSchema(got []string) error {
	want := features.Names()
	if len(got) != len(want) {
		return fmt.Errorf("expected %d features, got %d: %w", len(want), len(got), ErrSchemaMismatch)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("feature %d is %q, expected %q: %w", i, got[i], want[i], ErrSchemaMismatch)
		}
	}
	return nil
}
