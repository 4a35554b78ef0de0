package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"token-strategy-lab/internal/backtest"
	"token-strategy-lab/internal/dataset"
	"token-strategy-lab/internal/domain"
)

func newTestRecorder() (*Recorder, *Metrics) {
	m := NewMetricsWith(prometheus.NewRegistry(), "test")
	r := NewRecorder(m)
	r.now = func() time.Time { return time.Unix(1753920000, 0) }
	return r, m
}

func TestRecorder_Events(t *testing.T) {
	r, m := newTestRecorder()

	r.SnapshotEvaluated()
	r.Decision(domain.StrategyTypeTrendFollowing, true)
	r.Decision(domain.StrategyTypeTrendFollowing, false)
	r.Decision(domain.StrategyTypeTrendFollowing, false)
	r.TradeSimulated(domain.StrategyTypeTrendFollowing, 12345)
	r.StoreCall("trades", "insert_bulk", 0.01, errors.New("boom"))
	r.RunFinished("success", 0.2)

	if got := testutil.ToFloat64(m.SnapshotsEvaluated); got != 1 {
		t.Errorf("SnapshotsEvaluated = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PolicyDecisions.WithLabelValues(domain.StrategyTypeTrendFollowing, "rejected")); got != 2 {
		t.Errorf("rejected = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LedgerCapital); got != 12345 {
		t.Errorf("LedgerCapital = %v, want 12345", got)
	}
	if got := testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("trades", "insert_bulk")); got != 1 {
		t.Errorf("DBQueryErrors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastSuccessfulRun); got != 1753920000 {
		t.Errorf("LastSuccessfulRun = %v", got)
	}
}

func TestRecorder_WithEngine(t *testing.T) {
	r, m := newTestRecorder()

	engine := backtest.New(backtest.Options{
		InitialCapital: 10000,
		ExitAt:         dataset.July2025AsOf,
		Recorder:       r,
	})
	if _, err := engine.Run(context.Background(), dataset.July2025()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := testutil.ToFloat64(m.TradesSimulated.WithLabelValues(domain.StrategyTypeTrendFollowing)); got != 2 {
		t.Errorf("trend trades = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LedgerCapital); got < 39714 || got > 39715 {
		t.Errorf("LedgerCapital = %v, want ~39714.63", got)
	}
}
