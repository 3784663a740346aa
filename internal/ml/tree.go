package ml

import (
	"fmt"

	"energy-predictor/internal/features"
)

// TreeNode is the artifact form of a regression tree. Internal nodes name a
// feature and a threshold; samples with x[feature] <= threshold go left.
// Leaves have no children and carry Value.
type TreeNode struct {
	Feature   string    `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value,omitempty"`
}

type node struct {
	feature     int
	threshold   float64
	left, right *node
	value       float64
}

func (n *node) leaf() bool { return n.left == nil }

func compileTree(t *TreeNode, index map[string]int, depth int) (*node, error) {
	if t == nil {
		return nil, fmt.Errorf("nil node at depth %d", depth)
	}
	if t.Left == nil && t.Right == nil {
		return &node{value: t.Value}, nil
	}
	if t.Left == nil || t.Right == nil {
		return nil, fmt.Errorf("node at depth %d has a single child", depth)
	}
	idx, ok := index[t.Feature]
	if !ok {
		return nil, fmt.Errorf("split on unknown feature %q: %w", t.Feature, ErrSchemaMismatch)
	}
	left, err := compileTree(t.Left, index, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := compileTree(t.Right, index, depth+1)
	if err != nil {
		return nil, err
	}
	return &node{feature: idx, threshold: t.Threshold, left: left, right: right}, nil
}

func (n *node) eval(x []float64) float64 {
	for !n.leaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func featureIndex() map[string]int {
	names := features.Names()
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return index
}

// DecisionTree is a single regression tree.
type DecisionTree struct {
	root *node
}

// NewDecisionTree validates and compiles the artifact tree.
func NewDecisionTree(root *TreeNode) (*DecisionTree, error) {
	n, err := compileTree(root, featureIndex(), 0)
	if err != nil {
		return nil, fmt.Errorf("decision tree: %w", err)
	}
	return &DecisionTree{root: n}, nil
}

func (d *DecisionTree) Predict(v features.FeatureVector) (float64, error) {
	return d.root.eval(v.Values()), nil
}

// RandomForest averages the output of its trees.
type RandomForest struct {
	trees []*node
}

func NewRandomForest(trees []*TreeNode) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("random forest: no trees")
	}
	index := featureIndex()
	rf := &RandomForest{trees: make([]*node, 0, len(trees))}
	for i, t := range trees {
		n, err := compileTree(t, index, 0)
		if err != nil {
			return nil, fmt.Errorf("random forest tree %d: %w", i, err)
		}
		rf.trees = append(rf.trees, n)
	}
	return rf, nil
}

func (rf *RandomForest) Predict(v features.FeatureVector) (float64, error) {
	x := v.Values()
	var sum float64
	for _, t := range rf.trees {
		sum += t.eval(x)
	}
	return sum / float64(len(rf.trees)), nil
}
