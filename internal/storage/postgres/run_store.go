package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunSummary) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO backtest_runs (
			run_id, started_at, finished_at, initial_capital, final_capital,
			snapshot_count, trade_count, strategies
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	strategies := r.Strategies
	if strategies == nil {
		strategies = []string{}
	}

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.StartedAt, r.FinishedAt, r.InitialCapital, r.FinalCapital,
		r.SnapshotCount, r.TradeCount, strategies,
	)
	if err != nil {
		return writeError("insert backtest run", err)
	}
	return nil
}

const selectRunColumns = `
	SELECT
		run_id, started_at, finished_at, initial_capital, final_capital,
		snapshot_count, trade_count, strategies
	FROM backtest_runs
`

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunSummary, error) {
	r, err := scanRun(s.pool.QueryRow(ctx, selectRunColumns+`WHERE run_id = $1`, runID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get backtest run by id: %w", err)
	}
	return r, nil
}

// List retrieves all runs, ordered by started_at ASC.
func (s *RunStore) List(ctx context.Context) ([]*domain.RunSummary, error) {
	rows, err := s.pool.Query(ctx, selectRunColumns+`ORDER BY started_at ASC, run_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backtest run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest run rows: %w", err)
	}

	return runs, nil
}

func scanRun(row pgx.Row) (*domain.RunSummary, error) {
	var r domain.RunSummary
	err := row.Scan(
		&r.RunID, &r.StartedAt, &r.FinishedAt, &r.InitialCapital, &r.FinalCapital,
		&r.SnapshotCount, &r.TradeCount, &r.Strategies,
	)
	if err != nil {
		return nil, err
	}
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	return &r, nil
}
