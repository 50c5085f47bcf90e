package forest

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"

	"fraudscore/internal/txn"
)

// TrainingError reports a degenerate label distribution or dataset that
// makes fitting unsafe. It is fatal to the training run only.
type TrainingError struct {
	Msg string
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training failed: %s", e.Msg)
}

// Fit trains a forest on the given feature vectors and binary labels.
// Labels must be exactly 0 or 1, and at least Params.MinPositives fraud
// examples must be present; anything else is a TrainingError. Class weights
// are set inversely proportional to class frequency so minority-class
// mistakes cost more during splits without distorting the data distribution.
func Fit(features []txn.FeatureVector, labels []int, params Hyperparameters) (*Forest, error) {
	if len(features) == 0 || len(features) != len(labels) {
		return nil, &TrainingError{Msg: fmt.Sprintf("feature/label size mismatch: %d vs %d", len(features), len(labels))}
	}
	if params.Trees <= 0 || params.MaxDepth <= 0 {
		return nil, &TrainingError{Msg: fmt.Sprintf("invalid hyperparameters: trees=%d maxDepth=%d", params.Trees, params.MaxDepth)}
	}
	if params.MinLeaf <= 0 {
		params.MinLeaf = 1
	}

	var counts [2]int
	for _, y := range labels {
		if y != 0 && y != 1 {
			return nil, &TrainingError{Msg: fmt.Sprintf("unexpected label %d, want 0 or 1", y)}
		}
		counts[y]++
	}
	if counts[1] < params.MinPositives {
		return nil, &TrainingError{Msg: fmt.Sprintf("only %d positive examples, need at least %d", counts[1], params.MinPositives)}
	}
	if counts[0] == 0 {
		return nil, &TrainingError{Msg: "no negative examples"}
	}

	n := float64(len(labels))
	weights := [2]float64{
		n / (2 * float64(counts[0])),
		n / (2 * float64(counts[1])),
	}

	log.Info().
		Int("samples", len(labels)).
		Int("positives", counts[1]).
		Float64("positive_weight", weights[1]).
		Int("trees", params.Trees).
		Int64("seed", params.Seed).
		Msg("fitting forest")

	f := &Forest{
		Params:       params,
		ClassWeights: weights,
		Trees:        make([]Tree, params.Trees),
	}

	for i := 0; i < params.Trees; i++ {
		// Per-tree derived seed keeps the fit reproducible regardless of
		// how many trees are requested.
		rng := rand.New(rand.NewSource(params.Seed + int64(i)*7919))
		idx := bootstrap(rng, len(features))
		g := &grower{
			features: features,
			labels:   labels,
			weights:  weights,
			params:   params,
			rng:      rng,
		}
		g.grow(idx, 0)
		f.Trees[i] = Tree{Nodes: g.nodes}
	}

	return f, nil
}

func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

type grower struct {
	features []txn.FeatureVector
	labels   []int
	weights  [2]float64
	params   Hyperparameters
	rng      *rand.Rand
	nodes    []Node
}

// grow builds the subtree over the given sample indices and returns its
// root node index.
func (g *grower) grow(idx []int, depth int) int {
	w0, w1 := g.weightedCounts(idx)

	pure := w0 == 0 || w1 == 0
	if pure || depth >= g.params.MaxDepth || len(idx) < 2*g.params.MinLeaf {
		return g.leaf(w0, w1)
	}

	feature, split, ok := g.bestSplit(idx, w0, w1)
	if !ok {
		return g.leaf(w0, w1)
	}

	var left, right []int
	for _, i := range idx {
		if g.features[i][feature] <= split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < g.params.MinLeaf || len(right) < g.params.MinLeaf {
		return g.leaf(w0, w1)
	}

	self := len(g.nodes)
	g.nodes = append(g.nodes, Node{Feature: feature, Split: split})
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.nodes[self].Left = l
	g.nodes[self].Right = r
	return self
}

func (g *grower) leaf(w0, w1 float64) int {
	prob := 0.0
	if w0+w1 > 0 {
		prob = w1 / (w0 + w1)
	}
	g.nodes = append(g.nodes, Node{Feature: -1, Prob: prob})
	return len(g.nodes) - 1
}

func (g *grower) weightedCounts(idx []int) (w0, w1 float64) {
	for _, i := range idx {
		if g.labels[i] == 1 {
			w1 += g.weights[1]
		} else {
			w0 += g.weights[0]
		}
	}
	return
}

// bestSplit scans a random sqrt-sized subset of features for the threshold
// minimizing weighted Gini impurity over the node samples.
func (g *grower) bestSplit(idx []int, w0, w1 float64) (feature int, split float64, ok bool) {
	total := w0 + w1
	parent := gini(w0, w1)

	mtry := int(math.Ceil(math.Sqrt(float64(txn.FeatureCount))))
	candidates := g.rng.Perm(txn.FeatureCount)[:mtry]
	sort.Ints(candidates)

	type pair struct {
		v float64
		y int
	}
	best := parent
	pairs := make([]pair, 0, len(idx))

	for _, f := range candidates {
		pairs = pairs[:0]
		for _, i := range idx {
			pairs = append(pairs, pair{v: g.features[i][f], y: g.labels[i]})
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		var lw0, lw1 float64
		for k := 0; k < len(pairs)-1; k++ {
			if pairs[k].y == 1 {
				lw1 += g.weights[1]
			} else {
				lw0 += g.weights[0]
			}
			if pairs[k].v == pairs[k+1].v {
				continue
			}
			rw0, rw1 := w0-lw0, w1-lw1
			lt, rt := lw0+lw1, rw0+rw1
			impurity := (lt*gini(lw0, lw1) + rt*gini(rw0, rw1)) / total
			if impurity < best-1e-12 {
				best = impurity
				feature = f
				split = (pairs[k].v + pairs[k+1].v) / 2
				ok = true
			}
		}
	}
	return
}

func gini(w0, w1 float64) float64 {
	total := w0 + w1
	if total == 0 {
		return 0
	}
	p0, p1 := w0/total, w1/total
	return 1 - p0*p0 - p1*p1
}
