// Package ml loads the pre-trained energy consumption models and runs
// predictions against derived household features.
//
// Three model families are supported (linear regression, decision tree and
// random forest), all behind the Model interface and all loaded from JSON
// artifacts whose feature list must match the features package schema
// exactly. A ModelManager maps display names to artifacts; Predictor ties
// feature derivation, model selection, metrics and the prediction log together.
package ml

import "energy-predictor/internal/features"

// Model is a trained regressor over the household feature vector.
type Model interface {
	// Predict returns the estimated consumption for one feature vector.
	Predict(v features.FeatureVector) (float64, error)
}

// Model kinds as written in the artifact "kind" field.
const (
	KindLinear       = "linear"
	KindDecisionTree = "decision_tree"
	KindRandomForest = "random_forest"
)
