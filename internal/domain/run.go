package domain

import "time"

// RunSummary records one backtest run for the journal store.
type RunSummary struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	InitialCapital float64
	FinalCapital   float64
	SnapshotCount  int
	TradeCount     int
	Strategies     []string // strategy IDs evaluated
}

// StrategyResult is one accepted (strategy, asset) pair of a run.
type StrategyResult struct {
	StrategyID    string
	StrategyLabel string
	Symbol        string
	ProfitLossPct float64
}
