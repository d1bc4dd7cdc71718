// Package model implements least-squares gradient-boosted regression trees.
// Trees use a flat node array with explicit leaf indices, which keeps the
// fitted model trivially serializable and evaluation allocation-free.
package model

// Node is one splitting decision of the form "x[FeatureIndex] < Threshold ?".
type Node struct {
	FeatureIndex int     `json:"feature_index"`
	Threshold    float64 `json:"threshold"`
	// LeftChild indexes Nodes, or Outputs when LeftIsLeaf.
	LeftChild  int  `json:"left_child"`
	LeftIsLeaf bool `json:"left_is_leaf"`
	// RightChild indexes Nodes, or Outputs when RightIsLeaf.
	RightChild  int  `json:"right_child"`
	RightIsLeaf bool `json:"right_is_leaf"`
}

// Tree is a regression tree over fixed-width feature vectors.
type Tree struct {
	Nodes       []Node    `json:"nodes"`
	Outputs     []float64 `json:"outputs"`
	FeatureSize int       `json:"feature_size"`
	Depth       int       `json:"depth"`
}

// Evaluate drops x down the tree and returns the output of the bin it lands
// in. A tree with no internal nodes is a single constant leaf.
func (t *Tree) Evaluate(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return t.Outputs[0]
	}
	cur := t.Nodes[0]
	for {
		if x[cur.FeatureIndex] < cur.Threshold {
			if cur.LeftIsLeaf {
				return t.Outputs[cur.LeftChild]
			}
			cur = t.Nodes[cur.LeftChild]
		} else {
			if cur.RightIsLeaf {
				return t.Outputs[cur.RightChild]
			}
			cur = t.Nodes[cur.RightChild]
		}
	}
}

// Ensemble is an additive model: a base score plus the sum of tree outputs.
// Learning-rate scaling is baked into the leaf outputs at fit time.
type Ensemble struct {
	Base        float64 `json:"base"`
	Trees       []Tree  `json:"trees"`
	FeatureSize int     `json:"feature_size"`
}

// Evaluate returns the ensemble prediction for one feature vector.
func (e *Ensemble) Evaluate(x []float64) float64 {
	sum := e.Base
	for i := range e.Trees {
		sum += e.Trees[i].Evaluate(x)
	}
	return sum
}

// EvaluateAll predicts a batch of feature vectors.
func (e *Ensemble) EvaluateAll(xs [][]float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = e.Evaluate(x)
	}
	return out
}
