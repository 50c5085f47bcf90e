package api

import (
	"fraudscore/internal/txn"
)

// transactionRequest is the JSON shape of a single-prediction request. The
// field names match the upstream dataset columns. Pointer fields let a
// missing field be told apart from an explicit zero, so validation can name
// exactly what was omitted.
type transactionRequest struct {
	Time   *float64 `json:"Time"`
	Amount *float64 `json:"Amount"`
	V1     *float64 `json:"V1"`
	V2     *float64 `json:"V2"`
	V3     *float64 `json:"V3"`
	V4     *float64 `json:"V4"`
	V5     *float64 `json:"V5"`
	V6     *float64 `json:"V6"`
	V7     *float64 `json:"V7"`
	V8     *float64 `json:"V8"`
	V9     *float64 `json:"V9"`
	V10    *float64 `json:"V10"`
	V11    *float64 `json:"V11"`
	V12    *float64 `json:"V12"`
	V13    *float64 `json:"V13"`
	V14    *float64 `json:"V14"`
	V15    *float64 `json:"V15"`
	V16    *float64 `json:"V16"`
	V17    *float64 `json:"V17"`
	V18    *float64 `json:"V18"`
	V19    *float64 `json:"V19"`
	V20    *float64 `json:"V20"`
	V21    *float64 `json:"V21"`
	V22    *float64 `json:"V22"`
	V23    *float64 `json:"V23"`
	V24    *float64 `json:"V24"`
	V25    *float64 `json:"V25"`
	V26    *float64 `json:"V26"`
	V27    *float64 `json:"V27"`
	V28    *float64 `json:"V28"`
}

func (r *transactionRequest) fields() [txn.FeatureCount]*float64 {
	return [txn.FeatureCount]*float64{
		r.Time, r.Amount,
		r.V1, r.V2, r.V3, r.V4, r.V5, r.V6, r.V7, r.V8, r.V9, r.V10,
		r.V11, r.V12, r.V13, r.V14, r.V15, r.V16, r.V17, r.V18, r.V19, r.V20,
		r.V21, r.V22, r.V23, r.V24, r.V25, r.V26, r.V27, r.V28,
	}
}

// toTransaction validates presence of all 30 fields and builds the
// immutable transaction record. Missing fields are a ValidationError naming
// each one.
func (r *transactionRequest) toTransaction() (txn.Transaction, error) {
	var missing []string
	var values [txn.FeatureCount]float64
	for i, f := range r.fields() {
		if f == nil {
			missing = append(missing, txn.FieldName(i))
			continue
		}
		values[i] = *f
	}
	if len(missing) > 0 {
		return txn.Transaction{}, txn.NewValidationError("missing required fields", missing...)
	}

	tx := txn.Transaction{Time: values[0], Amount: values[1]}
	copy(tx.V[:], values[2:])
	return tx, nil
}
