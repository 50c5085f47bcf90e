// Package txn defines the transaction record scored by the service and the
// fixed-order feature vector derived from it.
//
// A transaction carries exactly 30 numeric fields: elapsed time, amount, and
// the 28 anonymized principal components v1..v28. The vector ordering
// [time, amount, v1..v28] is the ordering used at training time; every
// producer and consumer of FeatureVector relies on it.
package txn

import "fmt"

// ComponentCount is the number of anonymized PCA components per transaction.
const ComponentCount = 28

// FeatureCount is the total width of a feature vector.
const FeatureCount = ComponentCount + 2

// Transaction is an immutable scoring input. Time is seconds elapsed since
// the dataset reference point, Amount is the transaction amount in currency
// units; both must be non-negative. V holds v1..v28 in order.
type Transaction struct {
	Time   float64
	Amount float64
	V      [ComponentCount]float64
}

// FeatureVector is the fixed-order numeric input the classifier expects:
// [time, amount, v1, ..., v28].
type FeatureVector [FeatureCount]float64

// FieldName returns the canonical name of the transaction field at the given
// vector position.
func FieldName(i int) string {
	switch i {
	case 0:
		return "time"
	case 1:
		return "amount"
	default:
		return fmt.Sprintf("v%d", i-1)
	}
}

// FieldNames returns all 30 field names in vector order.
func FieldNames() []string {
	names := make([]string, FeatureCount)
	for i := range names {
		names[i] = FieldName(i)
	}
	return names
}
