package scoring

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu                 sync.Mutex
	predictions        int
	fraudFlagged       int
	validationFailures int
	latencySum         float64
	scores             []float64
	batches            int
	rowsScored         int
	rowsSkipped        int
	errors             int
}

func (m *MockMetrics) PredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) FraudFlaggedInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fraudFlagged++
}

func (m *MockMetrics) ValidationFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationFailures++
}

func (m *MockMetrics) LatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) ScoreObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, v)
}

func (m *MockMetrics) BatchesInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
}

func (m *MockMetrics) BatchRowScoredInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsScored++
}

func (m *MockMetrics) BatchRowSkippedInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsSkipped++
}

func (m *MockMetrics) ErrorsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}
