package ml

import (
	"fmt"

	"energy-predictor/internal/features"

	"gonum.org/v1/gonum/mat"
)

// LinearModel is an ordinary least squares fit: intercept + coefficients·x.
type LinearModel struct {
	coef      *mat.VecDense
	intercept float64
}

// NewLinearModel builds a linear model with one coefficient per feature.
func NewLinearModel(coefficients []float64, intercept float64) (*LinearModel, error) {
	if len(coefficients) != features.Count {
		return nil, fmt.Errorf("expected %d coefficients, got %d: %w", features.Count, len(coefficients), ErrSchemaMismatch)
	}
	c := make([]float64, len(coefficients))
	copy(c, coefficients)
	return &LinearModel{coef: mat.NewVecDense(len(c), c), intercept: intercept}, nil
}

func (m *LinearModel) Predict(v features.FeatureVector) (float64, error) {
	x := mat.NewVecDense(features.Count, v.Values())
	return m.intercept + mat.Dot(m.coef, x), nil
}
