package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry_RegistersAll(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.PredictionsTotal.Inc()
	m.FraudFlaggedTotal.Inc()
	m.ValidationFailures.Inc()
	m.ScoringLatency.Observe(0.002)
	m.ProbabilityScores.Observe(0.85)
	m.BatchesTotal.Inc()
	m.BatchRowsScored.Add(10)
	m.BatchRowsSkipped.Add(2)
	m.ModelAge.Set(3600)
	m.ErrorsTotal.Inc()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) != 10 {
		t.Errorf("expected 10 metric families, got %d", len(families))
	}
}

func TestWrapper_DelegatesToCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)
	w := NewWrapper(m)

	w.PredictionsInc()
	w.PredictionsInc()
	w.FraudFlaggedInc()
	w.BatchRowScoredInc()
	w.BatchRowSkippedInc()
	w.ModelAgeSet(120)

	if got := testutil.ToFloat64(m.PredictionsTotal); got != 2 {
		t.Errorf("expected 2 predictions, got %f", got)
	}
	if got := testutil.ToFloat64(m.FraudFlaggedTotal); got != 1 {
		t.Errorf("expected 1 fraud flagged, got %f", got)
	}
	if got := testutil.ToFloat64(m.BatchRowsScored); got != 1 {
		t.Errorf("expected 1 batch row scored, got %f", got)
	}
	if got := testutil.ToFloat64(m.BatchRowsSkipped); got != 1 {
		t.Errorf("expected 1 batch row skipped, got %f", got)
	}
	if got := testutil.ToFloat64(m.ModelAge); got != 120 {
		t.Errorf("expected model age 120, got %f", got)
	}
}

func TestNewWithRegistry_IsolatedRegistries(t *testing.T) {
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())

	a.PredictionsTotal.Inc()

	if got := testutil.ToFloat64(b.PredictionsTotal); got != 0 {
		t.Errorf("expected isolated registries, second counter reads %f", got)
	}
}
