// Package stats maintains the running summary of all predictions served by
// one process.
package stats

import "sync"

// RunningStatistics is a point-in-time snapshot of the aggregator. FraudRate
// and AvgProbability are derived at snapshot time and are zero while no
// requests have been served.
type RunningStatistics struct {
	TotalRequests  uint64  `json:"total_requests"`
	FraudCount     uint64  `json:"fraud_count"`
	ProbabilitySum float64 `json:"probability_sum"`
	FraudRate      float64 `json:"fraud_rate"`
	AvgProbability float64 `json:"avg_probability"`
}

// Aggregator counts every scored transaction. Counters start at zero, only
// grow, and reset only with the process; there is deliberately no reset
// operation. Instances are injected into the scoring engine so tests get a
// fresh one each.
type Aggregator struct {
	mu             sync.Mutex
	totalRequests  uint64
	fraudCount     uint64
	probabilitySum float64
}

// New returns an aggregator with all counters at zero.
func New() *Aggregator {
	return &Aggregator{}
}

// Record counts one scored transaction. The three counters move together
// under one lock so a snapshot never observes a torn state.
func (a *Aggregator) Record(probability float64, isFraud bool) {
	a.mu.Lock()
	a.totalRequests++
	a.probabilitySum += probability
	if isFraud {
		a.fraudCount++
	}
	a.mu.Unlock()
}

// Snapshot returns a consistent copy of the counters with derived rates.
func (a *Aggregator) Snapshot() RunningStatistics {
	a.mu.Lock()
	s := RunningStatistics{
		TotalRequests:  a.totalRequests,
		FraudCount:     a.fraudCount,
		ProbabilitySum: a.probabilitySum,
	}
	a.mu.Unlock()

	if s.TotalRequests > 0 {
		s.FraudRate = float64(s.FraudCount) / float64(s.TotalRequests)
		s.AvgProbability = s.ProbabilitySum / float64(s.TotalRequests)
	}
	return s
}
