package ml

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"energy-predictor/internal/features"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultVector(t *testing.T) features.FeatureVector {
	t.Helper()
	v, err := features.Derive(features.DefaultInput())
	require.NoError(t, err)
	return v
}

func TestLinearModel(t *testing.T) {
	coef := make([]float64, features.Count)
	coef[0] = 2   // num_occupants
	coef[1] = 0.5 // house_size_sqft

	m, err := NewLinearModel(coef, 10)
	require.NoError(t, err)

	got, err := m.Predict(defaultVector(t))
	require.NoError(t, err)
	assert.InDelta(t, 10+2*3+0.5*1000, got, 1e-9)

	// the model keeps its own copy of the coefficients
	coef[0] = 1000
	again, err := m.Predict(defaultVector(t))
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestLinearModel_WrongLength(t *testing.T) {
	_, err := NewLinearModel([]float64{1, 2, 3}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestDecisionTree_Routing(t *testing.T) {
	root := split("outside_temp_celsius", 26, leaf(1), leaf(2))
	tree, err := NewDecisionTree(root)
	require.NoError(t, err)

	v := defaultVector(t)

	// equal to the threshold goes left
	got, err := tree.Predict(v)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	v.OutsideTempCelsius = 26.01
	got, err = tree.Predict(v)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestDecisionTree_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		root       *TreeNode
		wantSchema bool
	}{
		{name: "nil root", root: nil},
		{name: "single child", root: &TreeNode{Feature: "season", Threshold: 1, Left: leaf(1)}},
		{name: "unknown feature", root: split("shoe_size", 1, leaf(1), leaf(2)), wantSchema: true},
		{name: "nested unknown feature", root: split("season", 1, leaf(1), split("zodiac", 2, leaf(1), leaf(2))), wantSchema: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecisionTree(tt.root)
			require.Error(t, err)
			assert.Equal(t, tt.wantSchema, errors.Is(err, ErrSchemaMismatch))
		})
	}
}

func TestRandomForest_Averages(t *testing.T) {
	rf, err := NewRandomForest([]*TreeNode{leaf(100), leaf(200), split("num_occupants", 10, leaf(300), leaf(0))})
	require.NoError(t, err)

	got, err := rf.Predict(defaultVector(t))
	require.NoError(t, err)
	assert.InDelta(t, 200, got, 1e-9)
}

func TestRandomForest_Invalid(t *testing.T) {
	_, err := NewRandomForest(nil)
	assert.Error(t, err)

	_, err = NewRandomForest([]*TreeNode{leaf(1), split("nope", 0, leaf(1), leaf(2))})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestSampleModels_Predictions(t *testing.T) {
	dir := sampleDir(t)
	v := defaultVector(t)

	tests := []struct {
		file string
		kind string
		want float64
	}{
		{file: "decision_tree.json", kind: KindDecisionTree, want: 180},
		{file: "random_forest.json", kind: KindRandomForest, want: 205},
		{file: "linear.json", kind: KindLinear, want: 291},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			m, err := LoadModel(filepath.Join(dir, tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, m.Metadata.Kind)
			assert.Equal(t, "sample-1", m.Metadata.Version)
			assert.False(t, m.ModTime.IsZero())

			got, err := m.Predict(v)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestLoadModel_SchemaMismatch(t *testing.T) {
	names := features.Names()

	tests := []struct {
		name     string
		features []string
	}{
		{name: "missing feature", features: names[:len(names)-1]},
		{name: "reordered", features: append([]string{names[1], names[0]}, names[2:]...)},
		{name: "empty", features: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := artifact{
				ModelMetadata: ModelMetadata{Kind: KindDecisionTree, Features: tt.features},
				Tree:          leaf(1),
			}
			data, err := json.Marshal(a)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "model.json")
			require.NoError(t, os.WriteFile(path, data, 0o644))

			_, err = LoadModel(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaMismatch))
		})
	}
}

func TestLoadModel_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadModel(bad)
	assert.Error(t, err)

	unknownKind, err := json.Marshal(artifact{ModelMetadata: ModelMetadata{Kind: "svm", Features: features.Names()}})
	require.NoError(t, err)
	svm := filepath.Join(dir, "svm.json")
	require.NoError(t, os.WriteFile(svm, unknownKind, 0o644))
	_, err = LoadModel(svm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model kind")
}
