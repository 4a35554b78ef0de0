package clickhouse

import (
	"context"
	"fmt"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/storage"
)

// MetricsStore implements storage.MetricsStore using ClickHouse.
type MetricsStore struct {
	conn *Conn
}

// NewMetricsStore creates a new MetricsStore.
func NewMetricsStore(conn *Conn) *MetricsStore {
	return &MetricsStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MetricsStore = (*MetricsStore)(nil)

const metricsColumns = `
	run_id, strategy_id,
	total_trades, winning_trades, losing_trades, breakeven_trades,
	win_rate, total_return, avg_win, avg_loss,
	gross_profit, gross_loss, profit_factor,
	initial_capital, final_capital,
	max_drawdown, running_drawdown, max_consecutive_losses
`

// metricsRow holds the ClickHouse column types for one run_metrics row.
type metricsRow struct {
	domain.Metrics
	totalTrades, winning, losing, breakeven, maxConsecutiveLosses uint32
}

func (r *metricsRow) dest() []any {
	m := &r.Metrics
	return []any{
		&m.RunID, &m.StrategyID,
		&r.totalTrades, &r.winning, &r.losing, &r.breakeven,
		&m.WinRate, &m.TotalReturn, &m.AvgWin, &m.AvgLoss,
		&m.GrossProfit, &m.GrossLoss, &m.ProfitFactor,
		&m.InitialCapital, &m.FinalCapital,
		&m.MaxDrawdown, &m.RunningDrawdown, &r.maxConsecutiveLosses,
	}
}

func (r *metricsRow) toDomain() *domain.Metrics {
	m := r.Metrics
	m.TotalTrades = int(r.totalTrades)
	m.WinningTrades = int(r.winning)
	m.LosingTrades = int(r.losing)
	m.BreakevenTrades = int(r.breakeven)
	m.MaxConsecutiveLosses = int(r.maxConsecutiveLosses)
	return &m
}

func metricsArgs(m *domain.Metrics) []any {
	return []any{
		m.RunID, m.StrategyID,
		uint32(m.TotalTrades), uint32(m.WinningTrades), uint32(m.LosingTrades), uint32(m.BreakevenTrades),
		m.WinRate, m.TotalReturn, m.AvgWin, m.AvgLoss,
		m.GrossProfit, m.GrossLoss, m.ProfitFactor,
		m.InitialCapital, m.FinalCapital,
		m.MaxDrawdown, m.RunningDrawdown, uint32(m.MaxConsecutiveLosses),
	}
}

// Insert adds new metrics. Returns ErrDuplicateKey if (run_id, strategy_id) exists.
func (s *MetricsStore) Insert(ctx context.Context, m *domain.Metrics) error {
	if m == nil || m.RunID == "" || m.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	// ReplacingMergeTree would replace silently; rows are append-only here.
	exists, err := s.exists(ctx, m.RunID, m.StrategyID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `INSERT INTO run_metrics (` + metricsColumns + `) VALUES (
		?, ?,
		?, ?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?,
		?, ?,
		?, ?, ?
	)`

	if err := s.conn.Exec(ctx, query, metricsArgs(m)...); err != nil {
		return fmt.Errorf("insert run metrics: %w", err)
	}
	return nil
}

// InsertBulk adds multiple metrics atomically. Fails entire batch on any duplicate.
func (s *MetricsStore) InsertBulk(ctx context.Context, metrics []*domain.Metrics) error {
	if len(metrics) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		if m == nil || m.RunID == "" || m.StrategyID == "" {
			return storage.ErrInvalidInput
		}
		key := m.RunID + "|" + m.StrategyID
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	for _, m := range metrics {
		exists, err := s.exists(ctx, m.RunID, m.StrategyID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO run_metrics (`+metricsColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, m := range metrics {
		if err := batch.Append(metricsArgs(m)...); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByKey retrieves metrics by (run_id, strategy_id). Returns ErrNotFound if not exists.
func (s *MetricsStore) GetByKey(ctx context.Context, runID, strategyID string) (*domain.Metrics, error) {
	query := `SELECT ` + metricsColumns + `
		FROM run_metrics FINAL
		WHERE run_id = ? AND strategy_id = ?
		LIMIT 1
	`

	var r metricsRow
	if err := s.conn.QueryRow(ctx, query, runID, strategyID).Scan(r.dest()...); err != nil {
		return nil, storage.ErrNotFound
	}
	return r.toDomain(), nil
}

// GetByRun retrieves all metrics for a run, ordered by strategy_id ASC.
func (s *MetricsStore) GetByRun(ctx context.Context, runID string) ([]*domain.Metrics, error) {
	query := `SELECT ` + metricsColumns + `
		FROM run_metrics FINAL
		WHERE run_id = ?
		ORDER BY strategy_id ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

func (s *MetricsStore) exists(ctx context.Context, runID, strategyID string) (bool, error) {
	query := `
		SELECT count(*) FROM run_metrics FINAL
		WHERE run_id = ? AND strategy_id = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID, strategyID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows used for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMetrics(rows chRows) ([]*domain.Metrics, error) {
	var result []*domain.Metrics

	for rows.Next() {
		var r metricsRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scan metrics row: %w", err)
		}
		result = append(result, r.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics rows: %w", err)
	}

	return result, nil
}
