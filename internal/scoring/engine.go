// Package scoring combines the feature transformer, the fitted classifier,
// and the decision threshold into structured predictions, for one
// transaction at a time or for batched tabular input.
package scoring

import (
	"time"

	"github.com/rs/zerolog/log"

	"fraudscore/internal/features"
	"fraudscore/internal/stats"
	"fraudscore/internal/storage"
	"fraudscore/internal/txn"
)

// Scorer is the serving contract of a fitted classifier: a pure probability
// in [0,1] for a feature vector, safe for concurrent calls.
type Scorer interface {
	Score(txn.FeatureVector) float64
}

// MetricsInterface defines the metrics methods the engine needs.
type MetricsInterface interface {
	PredictionsInc()
	FraudFlaggedInc()
	ValidationFailuresInc()
	LatencyObserve(float64)
	ScoreObserve(float64)
	BatchesInc()
	BatchRowScoredInc()
	BatchRowSkippedInc()
	ErrorsInc()
}

// Prediction is the structured outcome for one transaction.
// IsFraud is always FraudProbability >= Threshold.
type Prediction struct {
	FraudProbability float64 `json:"fraud_probability"`
	IsFraud          bool    `json:"is_fraud"`
	Threshold        float64 `json:"threshold"`
}

// Engine scores transactions against one loaded, immutable artifact. The
// aggregator is injected so every engine (and every test) owns its counters;
// metrics and store may be nil.
type Engine struct {
	transformer *features.Transformer
	scorer      Scorer
	threshold   float64
	agg         *stats.Aggregator
	metrics     MetricsInterface
	store       *storage.Store
}

// NewEngine wires an engine. A nil store disables the prediction log; a nil
// metrics interface disables instrumentation.
func NewEngine(t *features.Transformer, s Scorer, threshold float64, agg *stats.Aggregator, m MetricsInterface, store *storage.Store) *Engine {
	return &Engine{
		transformer: t,
		scorer:      s,
		threshold:   threshold,
		agg:         agg,
		metrics:     m,
		store:       store,
	}
}

// Threshold returns the decision threshold the engine classifies against.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Statistics returns a snapshot of the running statistics.
func (e *Engine) Statistics() stats.RunningStatistics {
	return e.agg.Snapshot()
}

// ScoreOne scores a single transaction. Validation failures are terminal:
// the error names the offending fields and the aggregator is untouched. On
// success the aggregator reflects the prediction before this returns, so a
// caller observing the response never races a missing count.
func (e *Engine) ScoreOne(tx txn.Transaction) (Prediction, error) {
	start := time.Now()

	vec, err := e.transformer.Transform(tx)
	if err != nil {
		if e.metrics != nil {
			e.metrics.ValidationFailuresInc()
		}
		return Prediction{}, err
	}

	probability := e.scorer.Score(vec)
	p := Prediction{
		FraudProbability: probability,
		IsFraud:          probability >= e.threshold,
		Threshold:        e.threshold,
	}

	e.agg.Record(p.FraudProbability, p.IsFraud)

	if e.metrics != nil {
		e.metrics.PredictionsInc()
		e.metrics.ScoreObserve(p.FraudProbability)
		if p.IsFraud {
			e.metrics.FraudFlaggedInc()
		}
		e.metrics.LatencyObserve(time.Since(start).Seconds())
	}

	e.logPrediction(tx, p)

	return p, nil
}

// logPrediction appends to the prediction log. Log failures never fail the
// prediction itself.
func (e *Engine) logPrediction(tx txn.Transaction, p Prediction) {
	if e.store == nil {
		return
	}
	record := storage.PredictionRecord{
		Timestamp:   time.Now().UTC(),
		TxTime:      tx.Time,
		Amount:      tx.Amount,
		Probability: p.FraudProbability,
		IsFraud:     p.IsFraud,
	}
	if err := e.store.StorePrediction(record); err != nil {
		log.Error().Err(err).Msg("failed to log prediction")
		if e.metrics != nil {
			e.metrics.ErrorsInc()
		}
	}
}
