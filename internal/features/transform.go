// Package features converts raw transactions into the exact numeric vector
// the classifier was trained on.
//
// Only time and amount are standardized; v1..v28 arrive PCA-whitened from the
// upstream dataset and pass through unchanged.
package features

import (
	"math"

	"fraudscore/internal/txn"
)

// Scale holds the (mean, std) pair fit for one column during training.
type Scale struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Apply standardizes a value. A zero std means the training column was
// constant; centering alone avoids the division by zero.
func (s Scale) Apply(v float64) float64 {
	if s.Std == 0 {
		return v - s.Mean
	}
	return (v - s.Mean) / s.Std
}

// ScalingParameters are the persisted per-column scales, fit once during
// training and shared read-only by every scoring call.
type ScalingParameters struct {
	Time   Scale `json:"time"`
	Amount Scale `json:"amount"`
}

// FitScaling computes scaling parameters from raw training columns. Std is
// the population standard deviation, matching the fit-time behavior.
func FitScaling(times, amounts []float64) ScalingParameters {
	return ScalingParameters{
		Time:   fitScale(times),
		Amount: fitScale(amounts),
	}
}

func fitScale(values []float64) Scale {
	if len(values) == 0 {
		return Scale{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	variance := sq / float64(len(values))
	if variance <= 0 {
		return Scale{Mean: mean}
	}
	return Scale{Mean: mean, Std: math.Sqrt(variance)}
}

// Transformer applies persisted scaling parameters to transactions. It holds
// no mutable state and is safe for concurrent use without synchronization.
type Transformer struct {
	scaling ScalingParameters
}

// NewTransformer builds a transformer around fitted scaling parameters.
func NewTransformer(scaling ScalingParameters) *Transformer {
	return &Transformer{scaling: scaling}
}

// Scaling returns the parameters the transformer was built with.
func (t *Transformer) Scaling() ScalingParameters {
	return t.scaling
}

// Transform validates a transaction and produces its feature vector in the
// training-time order [time, amount, v1..v28]. Non-finite values anywhere,
// or negative time/amount, yield a ValidationError naming every offending
// field; the vector is only returned when all 30 fields pass.
func (t *Transformer) Transform(tx txn.Transaction) (txn.FeatureVector, error) {
	var bad []string

	if !isFinite(tx.Time) {
		bad = append(bad, "time")
	} else if tx.Time < 0 {
		bad = append(bad, "time")
	}
	if !isFinite(tx.Amount) {
		bad = append(bad, "amount")
	} else if tx.Amount < 0 {
		bad = append(bad, "amount")
	}
	for i, v := range tx.V {
		if !isFinite(v) {
			bad = append(bad, txn.FieldName(i+2))
		}
	}

	if len(bad) > 0 {
		return txn.FeatureVector{}, txn.NewValidationError("invalid field value", bad...)
	}

	var vec txn.FeatureVector
	vec[0] = t.scaling.Time.Apply(tx.Time)
	vec[1] = t.scaling.Amount.Apply(tx.Amount)
	copy(vec[2:], tx.V[:])
	return vec, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
