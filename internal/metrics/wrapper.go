package metrics

// Wrapper provides a simple method interface over the raw Prometheus
// metrics so consumers can depend on a small interface instead of this
// package's types.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc()          { w.m.PredictionsTotal.Inc() }
func (w *Wrapper) FraudFlaggedInc()         { w.m.FraudFlaggedTotal.Inc() }
func (w *Wrapper) ValidationFailuresInc()   { w.m.ValidationFailures.Inc() }
func (w *Wrapper) LatencyObserve(v float64) { w.m.ScoringLatency.Observe(v) }
func (w *Wrapper) ScoreObserve(v float64)   { w.m.ProbabilityScores.Observe(v) }
func (w *Wrapper) BatchesInc()              { w.m.BatchesTotal.Inc() }
func (w *Wrapper) BatchRowScoredInc()       { w.m.BatchRowsScored.Inc() }
func (w *Wrapper) BatchRowSkippedInc()      { w.m.BatchRowsSkipped.Inc() }
func (w *Wrapper) ModelAgeSet(v float64)    { w.m.ModelAge.Set(v) }
func (w *Wrapper) ErrorsInc()               { w.m.ErrorsTotal.Inc() }
