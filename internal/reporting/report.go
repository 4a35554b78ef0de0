package reporting

import (
	"time"

	"token-strategy-lab/internal/domain"
)

// Report is the rendered view of one backtest run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Run         domain.RunSummary

	// Whole-ledger metrics (StrategyID == domain.StrategyIDAll)
	Overall domain.Metrics

	// Per-strategy metrics, sorted by strategy_id
	Strategies []domain.Metrics

	// Trades in ledger order
	Trades []TradeRow

	// Accepted snapshots that produced no trade
	Skipped []SkipRow
}

// TradeRow is one line of the trade journal table.
type TradeRow struct {
	Sequence       int
	Symbol         string
	StrategyID     string
	StrategyLabel  string
	EntryTime      time.Time
	ExitTime       time.Time
	EntryPrice     float64
	ExitPrice      float64
	Quantity       float64
	CapitalAtEntry float64
	ProfitLoss     float64
	ProfitLossPct  float64
}

// SkipRow lists an accepted snapshot that could not be simulated.
type SkipRow struct {
	Symbol     string
	StrategyID string
	Reason     string
}

func tradeRows(trades []domain.Trade) []TradeRow {
	rows := make([]TradeRow, len(trades))
	for i, t := range trades {
		rows[i] = TradeRow{
			Sequence:       t.Sequence,
			Symbol:         t.Symbol,
			StrategyID:     t.StrategyID,
			StrategyLabel:  t.StrategyLabel,
			EntryTime:      t.EntryTime,
			ExitTime:       t.ExitTime,
			EntryPrice:     t.EntryPrice,
			ExitPrice:      t.ExitPrice,
			Quantity:       t.Quantity,
			CapitalAtEntry: t.CapitalAtEntry,
			ProfitLoss:     t.ProfitLoss,
			ProfitLossPct:  t.ProfitLossPct,
		}
	}
	return rows
}
