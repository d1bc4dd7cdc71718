package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Config holds the boosting hyperparameters.
type Config struct {
	// Trees is the number of boosting rounds.
	Trees int `json:"trees"`
	// Depth is the maximum tree depth.
	Depth int `json:"depth"`
	// LearningRate shrinks each tree's contribution.
	LearningRate float64 `json:"learning_rate"`
	// MinLeaf is the minimum number of samples in a leaf.
	MinLeaf int `json:"min_leaf"`
}

// DefaultConfig matches a small-but-useful boosted model for prototype-sized
// datasets.
func DefaultConfig() Config {
	return Config{Trees: 100, Depth: 3, LearningRate: 0.1, MinLeaf: 2}
}

var errNoData = errors.New("model: no training data")

// Train fits a least-squares gradient-boosted ensemble. The procedure is
// fully deterministic for a given input: the base score is the target mean,
// and each round fits a depth-limited tree to the current residuals, scanning
// features in index order and choosing the first best SSE-reducing split.
func Train(xs [][]float64, ys []float64, cfg Config) (*Ensemble, error) {
	if len(xs) == 0 {
		return nil, errNoData
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("model: %d feature rows vs %d targets", len(xs), len(ys))
	}
	width := len(xs[0])
	for i, x := range xs {
		if len(x) != width {
			return nil, fmt.Errorf("model: row %d width %d, want %d", i, len(x), width)
		}
	}
	if cfg.Trees <= 0 || cfg.Depth <= 0 || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("model: invalid config %+v", cfg)
	}
	if cfg.MinLeaf < 1 {
		cfg.MinLeaf = 1
	}

	var base float64
	for _, y := range ys {
		base += y
	}
	base /= float64(len(ys))

	ens := &Ensemble{Base: base, FeatureSize: width}

	pred := make([]float64, len(ys))
	for i := range pred {
		pred[i] = base
	}
	residuals := make([]float64, len(ys))

	indices := make([]int, len(ys))
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < cfg.Trees; round++ {
		var maxAbs float64
		for i := range ys {
			residuals[i] = ys[i] - pred[i]
			maxAbs = math.Max(maxAbs, math.Abs(residuals[i]))
		}
		// Residuals exhausted; further rounds would add all-zero trees.
		if maxAbs < 1e-12 {
			break
		}

		b := &treeBuilder{xs: xs, residuals: residuals, cfg: cfg}
		b.build(indices, 0)
		tree := Tree{
			Nodes:       b.nodes,
			Outputs:     b.outputs,
			FeatureSize: width,
			Depth:       cfg.Depth,
		}
		ens.Trees = append(ens.Trees, tree)

		for i, x := range xs {
			pred[i] += tree.Evaluate(x)
		}
	}
	return ens, nil
}

type treeBuilder struct {
	xs        [][]float64
	residuals []float64
	cfg       Config
	nodes     []Node
	outputs   []float64
}

// build grows the subtree over the given sample indices and returns the index
// of the created node (into nodes, or outputs when isLeaf).
func (b *treeBuilder) build(indices []int, depth int) (idx int, isLeaf bool) {
	if depth >= b.cfg.Depth || len(indices) < 2*b.cfg.MinLeaf {
		return b.leaf(indices), true
	}

	feat, threshold, ok := b.bestSplit(indices)
	if !ok {
		return b.leaf(indices), true
	}

	var left, right []int
	for _, i := range indices {
		if b.xs[i][feat] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// Reserve this node's slot before recursing so children index correctly.
	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{FeatureIndex: feat, Threshold: threshold})

	lIdx, lLeaf := b.build(left, depth+1)
	rIdx, rLeaf := b.build(right, depth+1)
	b.nodes[self].LeftChild = lIdx
	b.nodes[self].LeftIsLeaf = lLeaf
	b.nodes[self].RightChild = rIdx
	b.nodes[self].RightIsLeaf = rLeaf
	return self, false
}

// leaf emits the mean residual of the samples, scaled by the learning rate.
func (b *treeBuilder) leaf(indices []int) int {
	var sum float64
	for _, i := range indices {
		sum += b.residuals[i]
	}
	out := 0.0
	if len(indices) > 0 {
		out = b.cfg.LearningRate * sum / float64(len(indices))
	}
	b.outputs = append(b.outputs, out)
	return len(b.outputs) - 1
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children. Features are scanned in index order and
// only strictly better splits replace the incumbent, so ties resolve to the
// lowest feature index deterministically.
func (b *treeBuilder) bestSplit(indices []int) (feature int, threshold float64, ok bool) {
	parentSSE := b.sse(indices)
	bestGain := 1e-12
	width := len(b.xs[indices[0]])

	order := make([]int, len(indices))
	for f := 0; f < width; f++ {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool {
			if b.xs[order[i]][f] != b.xs[order[j]][f] {
				return b.xs[order[i]][f] < b.xs[order[j]][f]
			}
			return order[i] < order[j]
		})

		// Prefix sums over the sorted order let each candidate split be
		// scored in O(1).
		var leftSum, leftSq float64
		var totalSum, totalSq float64
		for _, i := range order {
			totalSum += b.residuals[i]
			totalSq += b.residuals[i] * b.residuals[i]
		}

		for pos := 0; pos < len(order)-1; pos++ {
			r := b.residuals[order[pos]]
			leftSum += r
			leftSq += r * r

			cur, next := b.xs[order[pos]][f], b.xs[order[pos+1]][f]
			if cur == next {
				continue
			}
			nLeft := pos + 1
			nRight := len(order) - nLeft
			if nLeft < b.cfg.MinLeaf || nRight < b.cfg.MinLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			childSSE := (leftSq - leftSum*leftSum/float64(nLeft)) +
				(rightSq - rightSum*rightSum/float64(nRight))
			gain := parentSSE - childSSE
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (b *treeBuilder) sse(indices []int) float64 {
	var sum, sq float64
	for _, i := range indices {
		sum += b.residuals[i]
		sq += b.residuals[i] * b.residuals[i]
	}
	n := float64(len(indices))
	if n == 0 {
		return 0
	}
	return sq - sum*sum/n
}
