// Package metrics provides Prometheus metrics collection for the fraud
// scoring service. It covers prediction volume, outcomes, latency, batch
// ingestion, and model freshness, all exposed on the metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scoring service.
type Metrics struct {
	// Scoring metrics
	PredictionsTotal   prometheus.Counter   // Total predictions served (single + batch rows)
	FraudFlaggedTotal  prometheus.Counter   // Predictions classified as fraud
	ValidationFailures prometheus.Counter   // Transactions rejected by validation
	ScoringLatency     prometheus.Histogram // End-to-end single-score latency in seconds
	ProbabilityScores  prometheus.Histogram // Distribution of predicted fraud probabilities

	// Batch metrics
	BatchesTotal     prometheus.Counter // Batch uploads processed
	BatchRowsScored  prometheus.Counter // Valid rows scored across all batches
	BatchRowsSkipped prometheus.Counter // Rows dropped by per-row parse failures

	// Model metrics
	ModelAge prometheus.Gauge // Age of the loaded artifact in seconds

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows isolated metric collection in tests without affecting the
// global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions served",
		}),
		FraudFlaggedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_flagged_total",
			Help: "Total number of predictions classified as fraud",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of transactions rejected by validation",
		}),
		ScoringLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoring_latency_seconds",
			Help:    "Single-transaction scoring latency in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		ProbabilityScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_probability_scores",
			Help:    "Distribution of predicted fraud probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "batches_total",
			Help: "Total number of batch uploads processed",
		}),
		BatchRowsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "batch_rows_scored_total",
			Help: "Total number of valid batch rows scored",
		}),
		BatchRowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "batch_rows_skipped_total",
			Help: "Total number of batch rows skipped by parse failures",
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded classifier artifact in seconds",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
