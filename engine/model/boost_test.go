package model

import (
	"math"
	"reflect"
	"testing"
)

// andGate returns a small nonlinear dataset (y = x0 AND x1) the model should
// fit closely.
func andGate() ([][]float64, []float64) {
	xs := [][]float64{
		{0, 0}, {0, 1}, {1, 0}, {1, 1},
		{0.1, 0.1}, {0.1, 0.9}, {0.9, 0.1}, {0.9, 0.9},
	}
	ys := []float64{0, 0, 0, 1, 0, 0, 0, 1}
	return xs, ys
}

func TestTrain_FitsNonlinearTarget(t *testing.T) {
	xs, ys := andGate()
	ens, err := Train(xs, ys, Config{Trees: 200, Depth: 3, LearningRate: 0.3, MinLeaf: 1})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	for i, x := range xs {
		got := ens.Evaluate(x)
		if math.Abs(got-ys[i]) > 0.1 {
			t.Errorf("Evaluate(%v) = %v, want ~%v", x, got, ys[i])
		}
	}
}

func TestTrain_Deterministic(t *testing.T) {
	xs, ys := andGate()
	cfg := Config{Trees: 50, Depth: 3, LearningRate: 0.2, MinLeaf: 1}
	a, err := Train(xs, ys, cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	b, err := Train(xs, ys, cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different ensembles")
	}
}

func TestTrain_ConstantTarget(t *testing.T) {
	xs := [][]float64{{1}, {2}, {3}, {4}}
	ys := []float64{0.5, 0.5, 0.5, 0.5}
	ens, err := Train(xs, ys, DefaultConfig())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	// Residuals vanish immediately; no trees should be grown past the base.
	if len(ens.Trees) != 0 {
		t.Errorf("constant target grew %d trees, want 0", len(ens.Trees))
	}
	if got := ens.Evaluate([]float64{99}); got != 0.5 {
		t.Errorf("Evaluate = %v, want 0.5", got)
	}
}

func TestTrain_InputValidation(t *testing.T) {
	if _, err := Train(nil, nil, DefaultConfig()); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Train([][]float64{{1}}, []float64{1, 2}, DefaultConfig()); err == nil {
		t.Error("expected error for length mismatch")
	}
	if _, err := Train([][]float64{{1}, {1, 2}}, []float64{1, 2}, DefaultConfig()); err == nil {
		t.Error("expected error for ragged rows")
	}
	if _, err := Train([][]float64{{1}}, []float64{1}, Config{}); err == nil {
		t.Error("expected error for zero config")
	}
}

func TestTree_SingleLeaf(t *testing.T) {
	tree := Tree{Outputs: []float64{0.25}, FeatureSize: 2}
	if got := tree.Evaluate([]float64{1, 2}); got != 0.25 {
		t.Errorf("single-leaf Evaluate = %v, want 0.25", got)
	}
}

func TestEnsemble_MonotonicOnSeparableFeature(t *testing.T) {
	// Label tracks the first feature; predictions must preserve the ordering.
	xs := [][]float64{{0.1, 5}, {0.5, 5}, {0.9, 5}}
	ys := []float64{0.1, 0.5, 0.9}
	ens, err := Train(xs, ys, Config{Trees: 30, Depth: 2, LearningRate: 0.3, MinLeaf: 1})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	preds := ens.EvaluateAll(xs)
	if !(preds[0] < preds[1] && preds[1] < preds[2]) {
		t.Errorf("predictions not monotone: %v", preds)
	}
	if math.Abs(preds[0]-0.1) > 0.15 || math.Abs(preds[2]-0.9) > 0.15 {
		t.Errorf("predictions far from targets: %v", preds)
	}
}
