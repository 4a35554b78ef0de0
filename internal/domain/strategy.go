package domain

// StrategyConfig represents strategy configuration parameters.
// Nil fields fall back to the strategy type's defaults.
type StrategyConfig struct {
	StrategyType string // SIGNAL_REVERSAL | LONG_TERM_HOLD | TREND_FOLLOWING

	MinGrade       *float64
	SizingFraction *float64
	HoldDays       *int

	// SIGNAL_REVERSAL
	MaxHoldingReturn *float64
	MinSignalsReturn *float64

	// LONG_TERM_HOLD
	MinHoldingReturn *float64
	SignalsRatio     *float64 // signals must be below ratio * holding
}

// Strategy type constants
const (
	StrategyTypeSignalReversal = "SIGNAL_REVERSAL"
	StrategyTypeLongTermHold   = "LONG_TERM_HOLD"
	StrategyTypeTrendFollowing = "TREND_FOLLOWING"
)

// StrategyTypes lists all strategy types in evaluation order.
var StrategyTypes = []string{
	StrategyTypeSignalReversal,
	StrategyTypeLongTermHold,
	StrategyTypeTrendFollowing,
}

// ExitBasis selects which return drives a simulated exit price.
type ExitBasis string

// ExitBasis constants
const (
	ExitBasisSignals ExitBasis = "SIGNALS"
	ExitBasisHolding ExitBasis = "HOLDING"
)
