package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"token-strategy-lab/internal/backtest"
	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/metrics"
	"token-strategy-lab/internal/storage"
)

// Generator produces reports from stored runs.
type Generator struct {
	runStore     storage.RunStore
	tradeStore   storage.TradeStore
	metricsStore storage.MetricsStore
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	runStore storage.RunStore,
	tradeStore storage.TradeStore,
	metricsStore storage.MetricsStore,
) *Generator {
	return &Generator{
		runStore:     runStore,
		tradeStore:   tradeStore,
		metricsStore: metricsStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces the report of a stored run. Metrics are read from the
// metrics store; a run without stored metrics is recomputed from its journal.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	trades, err := g.tradeStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load trades for run %s: %w", runID, err)
	}

	rows, err := g.loadMetrics(ctx, runID)
	if err != nil {
		return nil, err
	}

	journal := make([]domain.Trade, len(trades))
	for i, t := range trades {
		journal[i] = *t
	}

	overall, strategies := splitMetrics(rows)
	return &Report{
		GeneratedAt: g.now(),
		Run:         *run,
		Overall:     overall,
		Strategies:  strategies,
		Trades:      tradeRows(journal),
	}, nil
}

func (g *Generator) loadMetrics(ctx context.Context, runID string) ([]domain.Metrics, error) {
	stored, err := g.metricsStore.GetByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load metrics for run %s: %w", runID, err)
	}
	if len(stored) > 0 {
		rows := make([]domain.Metrics, len(stored))
		for i, m := range stored {
			rows[i] = *m
		}
		return rows, nil
	}

	rows, err := metrics.NewAggregator(g.tradeStore, g.runStore, g.metricsStore).ComputeRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("recompute metrics for run %s: %w", runID, err)
	}
	return rows, nil
}

// FromResults builds a report straight from an in-process run.
func FromResults(res *backtest.Results, generatedAt time.Time) *Report {
	skipped := make([]SkipRow, len(res.Skipped))
	for i, s := range res.Skipped {
		skipped[i] = SkipRow{Symbol: s.Symbol, StrategyID: s.StrategyID, Reason: s.Reason}
	}

	strategies := make([]domain.Metrics, len(res.ByStrategy))
	copy(strategies, res.ByStrategy)
	sortMetrics(strategies)

	return &Report{
		GeneratedAt: generatedAt,
		Run:         res.Summary,
		Overall:     res.Metrics,
		Strategies:  strategies,
		Trades:      tradeRows(res.Trades),
		Skipped:     skipped,
	}
}

// splitMetrics separates the whole-run row from the per-strategy rows.
func splitMetrics(rows []domain.Metrics) (domain.Metrics, []domain.Metrics) {
	var overall domain.Metrics
	var strategies []domain.Metrics
	for _, m := range rows {
		if m.StrategyID == domain.StrategyIDAll {
			overall = m
			continue
		}
		strategies = append(strategies, m)
	}
	sortMetrics(strategies)
	return overall, strategies
}

// sortMetrics sorts rows by strategy_id.
func sortMetrics(rows []domain.Metrics) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].StrategyID < rows[j].StrategyID
	})
}
