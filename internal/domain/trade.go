package domain

import "time"

// Trade is a completed simulated trade.
// Created by the simulator, owned by the ledger once appended, never mutated.
type Trade struct {
	TradeID       string // deterministic hash
	RunID         string // backtest run
	Sequence      int    // ledger insertion index (0-based)
	Symbol        string
	StrategyID    string // e.g. SIGNAL_REVERSAL
	StrategyLabel string // display name

	// Entry
	EntryPrice     float64
	EntryTime      time.Time
	SizingFraction float64 // fraction of capital committed
	CapitalAtEntry float64 // ledger capital when the trade was sized
	Quantity       float64 // CapitalAtEntry * SizingFraction / EntryPrice

	// Exit
	ExitPrice float64
	ExitTime  time.Time

	// Outcome
	ProfitLoss    float64 // (ExitPrice - EntryPrice) * Quantity
	ProfitLossPct float64 // (ExitPrice - EntryPrice) / EntryPrice * 100
}

// IsWin reports whether the trade made money. Zero P/L is neither win nor loss.
func (t *Trade) IsWin() bool {
	return t.ProfitLoss > 0
}

// IsLoss reports whether the trade lost money.
func (t *Trade) IsLoss() bool {
	return t.ProfitLoss < 0
}

// HoldDuration returns the time between entry and exit.
func (t *Trade) HoldDuration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
