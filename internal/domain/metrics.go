package domain

import "math"

// StrategyIDAll keys the whole-ledger aggregate in per-strategy breakdowns.
const StrategyIDAll = "ALL"

// Metrics is a derived performance summary of a trade journal.
// Recomputable at any time; never stored on the ledger itself.
type Metrics struct {
	RunID      string
	StrategyID string // StrategyIDAll for the whole ledger

	// Counts
	TotalTrades     int
	WinningTrades   int // ProfitLoss > 0
	LosingTrades    int // ProfitLoss < 0
	BreakevenTrades int // ProfitLoss == 0

	// Rates (percent)
	WinRate     float64
	TotalReturn float64
	AvgWin      float64 // mean ProfitLossPct of winners
	AvgLoss     float64 // mean ProfitLossPct of losers

	// Money
	GrossProfit    float64
	GrossLoss      float64 // sum of losing ProfitLoss (<= 0)
	ProfitFactor   float64 // +Inf when there are no losers
	InitialCapital float64
	FinalCapital   float64

	// Drawdown (percent)
	MaxDrawdown          float64 // peak-relative reconstruction
	RunningDrawdown      float64 // drawdown of actual running capital
	MaxConsecutiveLosses int
}

// HasInfiniteProfitFactor reports whether profit factor is the no-loss sentinel.
func (m *Metrics) HasInfiniteProfitFactor() bool {
	return math.IsInf(m.ProfitFactor, 1)
}
