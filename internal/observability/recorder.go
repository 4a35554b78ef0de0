package observability

import (
	"time"

	"token-strategy-lab/internal/backtest"
)

// Recorder forwards backtest engine events to Prometheus.
type Recorder struct {
	m   *Metrics
	now func() time.Time
}

// NewRecorder creates a Recorder over m. A nil m uses DefaultMetrics.
func NewRecorder(m *Metrics) *Recorder {
	if m == nil {
		m = DefaultMetrics
	}
	return &Recorder{m: m, now: time.Now}
}

var _ backtest.Recorder = (*Recorder)(nil)

// SnapshotEvaluated counts one snapshot run through all policies.
func (r *Recorder) SnapshotEvaluated() {
	r.m.SnapshotsEvaluated.Inc()
}

// Decision counts one policy verdict.
func (r *Recorder) Decision(strategyID string, accepted bool) {
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	r.m.PolicyDecisions.WithLabelValues(strategyID, decision).Inc()
}

// TradeSimulated counts an appended trade and tracks capital.
func (r *Recorder) TradeSimulated(strategyID string, capital float64) {
	r.m.TradesSimulated.WithLabelValues(strategyID).Inc()
	r.m.LedgerCapital.Set(capital)
}

// TradeSkipped counts an accepted snapshot that failed simulation preconditions.
func (r *Recorder) TradeSkipped(strategyID, reason string) {
	r.m.TradesSkipped.WithLabelValues(strategyID, reason).Inc()
}

// StoreCall records a store call.
func (r *Recorder) StoreCall(store, operation string, seconds float64, err error) {
	r.m.recordDBQuery(store, operation, seconds, err)
}

// RunFinished records the run outcome.
func (r *Recorder) RunFinished(status string, seconds float64) {
	r.m.recordRun(status, seconds)
	if status == "success" {
		r.m.LastSuccessfulRun.Set(float64(r.now().Unix()))
	}
}
