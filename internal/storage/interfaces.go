package storage

import (
	"context"

	"token-strategy-lab/internal/domain"
)

// TradeStore provides access to the trades journal.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// GetByRunID retrieves all trades of a run, ordered by sequence ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.Trade, error)

	// GetByRunStrategy retrieves a run's trades for one strategy, ordered by sequence ASC.
	GetByRunStrategy(ctx context.Context, runID, strategyID string) ([]*domain.Trade, error)
}

// RunStore provides access to backtest_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunSummary) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunSummary, error)

	// List retrieves all runs, ordered by started_at ASC.
	List(ctx context.Context) ([]*domain.RunSummary, error)
}

// MetricsStore provides access to run_metrics storage.
type MetricsStore interface {
	// Insert adds new metrics. Returns ErrDuplicateKey if (run_id, strategy_id) exists.
	Insert(ctx context.Context, m *domain.Metrics) error

	// InsertBulk adds multiple metrics atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, metrics []*domain.Metrics) error

	// GetByKey retrieves metrics by (run_id, strategy_id). Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, runID, strategyID string) (*domain.Metrics, error)

	// GetByRun retrieves all metrics for a run, ordered by strategy_id ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.Metrics, error)
}
