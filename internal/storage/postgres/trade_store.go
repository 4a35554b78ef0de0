package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const insertTradeQuery = `
	INSERT INTO trades (
		trade_id, run_id, sequence, symbol, strategy_id, strategy_label,
		entry_price, entry_time, sizing_fraction, capital_at_entry, quantity,
		exit_price, exit_time, profit_loss, profit_loss_pct
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $15
	)
`

const selectTradeColumns = `
	SELECT
		trade_id, run_id, sequence, symbol, strategy_id, strategy_label,
		entry_price, entry_time, sizing_fraction, capital_at_entry, quantity,
		exit_price, exit_time, profit_loss, profit_loss_pct
	FROM trades
`

func tradeArgs(t *domain.Trade) []any {
	return []any{
		t.TradeID, t.RunID, t.Sequence, t.Symbol, t.StrategyID, t.StrategyLabel,
		t.EntryPrice, t.EntryTime, t.SizingFraction, t.CapitalAtEntry, t.Quantity,
		t.ExitPrice, t.ExitTime, t.ProfitLoss, t.ProfitLossPct,
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	if _, err := s.pool.Exec(ctx, insertTradeQuery, tradeArgs(t)...); err != nil {
		return writeError("insert trade", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
	}

	return s.pool.InTx(ctx, func(tx pgx.Tx) error {
		for _, t := range trades {
			if _, err := tx.Exec(ctx, insertTradeQuery, tradeArgs(t)...); err != nil {
				return writeError("insert trade in bulk", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	row := s.pool.QueryRow(ctx, selectTradeColumns+`WHERE trade_id = $1`, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetByRunID retrieves all trades of a run, ordered by sequence ASC.
func (s *TradeStore) GetByRunID(ctx context.Context, runID string) ([]*domain.Trade, error) {
	rows, err := s.pool.Query(ctx, selectTradeColumns+`
		WHERE run_id = $1
		ORDER BY sequence ASC, trade_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get trades by run id: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByRunStrategy retrieves a run's trades for one strategy, ordered by sequence ASC.
func (s *TradeStore) GetByRunStrategy(ctx context.Context, runID, strategyID string) ([]*domain.Trade, error) {
	rows, err := s.pool.Query(ctx, selectTradeColumns+`
		WHERE run_id = $1 AND strategy_id = $2
		ORDER BY sequence ASC, trade_id ASC
	`, runID, strategyID)
	if err != nil {
		return nil, fmt.Errorf("get trades by run/strategy: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade

	err := row.Scan(
		&t.TradeID, &t.RunID, &t.Sequence, &t.Symbol, &t.StrategyID, &t.StrategyLabel,
		&t.EntryPrice, &t.EntryTime, &t.SizingFraction, &t.CapitalAtEntry, &t.Quantity,
		&t.ExitPrice, &t.ExitTime, &t.ProfitLoss, &t.ProfitLossPct,
	)
	if err != nil {
		return nil, err
	}

	t.EntryTime = t.EntryTime.UTC()
	t.ExitTime = t.ExitTime.UTC()
	return &t, nil
}

func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
