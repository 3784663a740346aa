package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"energy-predictor/internal/features"

	"github.com/rs/zerolog/log"
)

// sampleLinearWeights are the non-zero coefficients of the sample linear model.
var sampleLinearWeights = map[string]float64{
	"num_occupants":          18.0,
	"house_size_sqft":        0.06,
	"outside_temp_celsius":   2.5,
	"heating_type_Electric":  22.0,
	"heating_type_Gas":       9.0,
	"cooling_type_AC":        30.0,
	"cooling_type_Fan":       6.0,
	"is_weekend":             8.0,
	"income_per_person":      0.0004,
	"square_feet_per_person": 0.02,
	"high_income_flag":       5.0,
	"season_fall":            12.0,
	"season_winter":          10.0,
	"energy_star_home":       -15.0,
}

func leaf(v float64) *TreeNode { return &TreeNode{Value: v} }

func split(feature string, threshold float64, left, right *TreeNode) *TreeNode {
	return &TreeNode{Feature: feature, Threshold: threshold, Left: left, Right: right}
}

func sampleArtifacts() map[string]artifact {
	meta := func(kind string) ModelMetadata {
		return ModelMetadata{
			Kind:      kind,
			Version:   "sample-1",
			TrainedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Features:  features.Names(),
		}
	}

	coef := make([]float64, features.Count)
	for i, n := range features.Names() {
		coef[i] = sampleLinearWeights[n]
	}

	tree := split("outside_temp_celsius", 28,
		split("house_size_sqft", 1500, leaf(180), leaf(215)),
		split("cooling_type_AC", 0.5, leaf(230), leaf(290)),
	)

	forest := []*TreeNode{
		tree,
		split("num_occupants", 3.5,
			split("energy_star_home", 0.5, leaf(200), leaf(170)),
			split("energy_star_home", 0.5, leaf(250), leaf(215))),
		split("season", 2.5,
			split("income_per_person", 12000, leaf(190), leaf(220)),
			split("is_weekend", 0.5, leaf(235), leaf(260))),
	}

	return map[string]artifact{
		"linear.json":        {ModelMetadata: meta(KindLinear), Coefficients: coef, Intercept: 40},
		"decision_tree.json": {ModelMetadata: meta(KindDecisionTree), Tree: tree},
		"random_forest.json": {ModelMetadata: meta(KindRandomForest), Trees: forest},
	}
}

// WriteSampleModels writes a small artifact for each model family plus the
// default catalog into dir, so the service can run without trained models.
func WriteSampleModels(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create models dir: %w", err)
	}

	for file, a := range sampleArtifacts() {
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal model: %w", err)
		}
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write model file: %w", err)
		}
		log.Info().Str("path", path).Str("kind", a.Kind).Msg("Created sample model")
	}

	return saveCatalog(dir, DefaultCatalog())
}
