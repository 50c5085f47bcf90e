// Package forest implements the fraud classifier: an ensemble of CART trees
// fit with class weights inversely proportional to class frequency.
//
// Weighting, rather than resampling, is what keeps the predicted
// probabilities calibrated against the natural ~0.17% fraud prevalence, so a
// fixed decision threshold stays meaningful. Fitting is deterministic for a
// given seed; scoring is pure and safe for concurrent callers against one
// fitted forest.
package forest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"fraudscore/internal/txn"
)

// Hyperparameters control the fit. Seed makes training reproducible: the
// same data and hyperparameters always produce the same forest.
type Hyperparameters struct {
	Trees        int   `json:"trees"`
	MaxDepth     int   `json:"max_depth"`
	MinLeaf      int   `json:"min_leaf"`
	MinPositives int   `json:"min_positives"`
	Seed         int64 `json:"seed"`
}

// DefaultHyperparameters mirror the parameters the model is normally trained
// with in production runs.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Trees:        100,
		MaxDepth:     10,
		MinLeaf:      2,
		MinPositives: 10,
		Seed:         42,
	}
}

// Node is one decision-tree node in flattened form. Leaf nodes have
// Feature == -1 and carry the weighted class-1 fraction of the training
// samples that reached them.
type Node struct {
	Feature int     `json:"f"`
	Split   float64 `json:"s"`
	Left    int     `json:"l"`
	Right   int     `json:"r"`
	Prob    float64 `json:"p"`
}

// Tree is a single fitted decision tree, nodes indexed from the root at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) score(v txn.FeatureVector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Prob
		}
		if v[n.Feature] <= n.Split {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest is the fitted classifier artifact. It is never mutated after fit;
// replace it only by loading a new artifact.
type Forest struct {
	Params       Hyperparameters `json:"params"`
	ClassWeights [2]float64      `json:"class_weights"`
	Trees        []Tree          `json:"trees"`
}

// Score returns the fraud probability for a feature vector as the mean of
// per-tree class-1 fractions, clamped to [0,1].
func (f *Forest) Score(v txn.FeatureVector) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].score(v)
	}
	p := sum / float64(len(f.Trees))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ContentID returns the content identifier of the fitted forest: a sha256
// over its canonical JSON encoding. Two identical fits share an ID.
func (f *Forest) ContentID() string {
	data, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}
