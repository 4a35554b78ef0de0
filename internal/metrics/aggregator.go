package metrics

import (
	"context"
	"errors"
	"fmt"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/ledger"
	"token-strategy-lab/internal/storage"
)

// ErrRunNotFound is returned when aggregating a run that was never stored.
var ErrRunNotFound = errors.New("run not found")

// Aggregator recomputes metrics for persisted runs.
type Aggregator struct {
	tradeStore   storage.TradeStore
	runStore     storage.RunStore
	metricsStore storage.MetricsStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(tradeStore storage.TradeStore, runStore storage.RunStore, metricsStore storage.MetricsStore) *Aggregator {
	return &Aggregator{
		tradeStore:   tradeStore,
		runStore:     runStore,
		metricsStore: metricsStore,
	}
}

// ComputeRun rebuilds the run's ledger from its stored journal and returns
// the whole-run metrics first, followed by one row per strategy.
func (a *Aggregator) ComputeRun(ctx context.Context, runID string) ([]domain.Metrics, error) {
	snap, err := a.Replay(ctx, runID)
	if err != nil {
		return nil, err
	}

	result := []domain.Metrics{Compute(snap)}
	result = append(result, ComputeByStrategy(snap)...)
	return result, nil
}

// Replay re-appends the stored trades of a run, in sequence order, to a
// ledger opened with the run's initial capital.
func (a *Aggregator) Replay(ctx context.Context, runID string) (ledger.Snapshot, error) {
	run, err := a.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ledger.Snapshot{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return ledger.Snapshot{}, fmt.Errorf("load run %s: %w", runID, err)
	}

	trades, err := a.tradeStore.GetByRunID(ctx, runID)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("load trades for run %s: %w", runID, err)
	}

	l, err := ledger.OpenRun(runID, run.InitialCapital)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("open ledger for run %s: %w", runID, err)
	}
	for _, t := range trades {
		if _, err := l.Append(t); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("replay trade %s: %w", t.TradeID, err)
		}
	}

	return l.Snapshot(), nil
}

// ComputeAndStore computes and persists metrics for a run.
// Returns storage.ErrDuplicateKey if the run was already aggregated (append-only).
func (a *Aggregator) ComputeAndStore(ctx context.Context, runID string) ([]domain.Metrics, error) {
	result, err := a.ComputeRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	if err := a.metricsStore.InsertBulk(ctx, toPointers(result)); err != nil {
		return nil, err
	}

	return result, nil
}

func toPointers(ms []domain.Metrics) []*domain.Metrics {
	out := make([]*domain.Metrics, len(ms))
	for i := range ms {
		out[i] = &ms[i]
	}
	return out
}
