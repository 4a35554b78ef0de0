package backtest

import (
	"context"
	"fmt"
	"time"

	"token-strategy-lab/internal/domain"
)

// persist writes the run summary, its journal and its metrics, in that
// order, to whichever stores are configured.
func (e *Engine) persist(ctx context.Context, res *Results) error {
	if e.runStore != nil {
		summary := res.Summary
		if err := e.timed("runs", "insert", func() error { return e.runStore.Insert(ctx, &summary) }); err != nil {
			return fmt.Errorf("store run %s: %w", res.RunID, err)
		}
	}

	if e.tradeStore != nil && len(res.Trades) > 0 {
		trades := make([]*domain.Trade, len(res.Trades))
		for i := range res.Trades {
			trades[i] = &res.Trades[i]
		}
		if err := e.timed("trades", "insert_bulk", func() error { return e.tradeStore.InsertBulk(ctx, trades) }); err != nil {
			return fmt.Errorf("store trades of run %s: %w", res.RunID, err)
		}
	}

	if e.metricsStore != nil {
		rows := make([]*domain.Metrics, 0, len(res.ByStrategy)+1)
		all := res.Metrics
		rows = append(rows, &all)
		for i := range res.ByStrategy {
			rows = append(rows, &res.ByStrategy[i])
		}
		if err := e.timed("metrics", "insert_bulk", func() error { return e.metricsStore.InsertBulk(ctx, rows) }); err != nil {
			return fmt.Errorf("store metrics of run %s: %w", res.RunID, err)
		}
	}

	return nil
}

func (e *Engine) timed(store, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	e.recorder.StoreCall(store, operation, time.Since(start).Seconds(), err)
	return err
}
