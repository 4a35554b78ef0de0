package strategy

import (
	"time"

	"token-strategy-lab/internal/domain"
)

// SignalReversal targets quality assets whose passive return lagged while
// signal-following returned strongly.
//
// Entry: grade >= MinGrade AND holding < MaxHoldingReturn AND signals >= MinSignalsReturn.
type SignalReversal struct {
	MinGrade         float64
	MaxHoldingReturn float64
	MinSignalsReturn float64
	Sizing           float64
	Hold             time.Duration
}

// NewSignalReversal creates a SignalReversal with standard thresholds.
func NewSignalReversal() *SignalReversal {
	return &SignalReversal{
		MinGrade:         80,
		MaxHoldingReturn: 0.10,
		MinSignalsReturn: 1.00,
		Sizing:           0.05,
		Hold:             30 * day,
	}
}

// ID returns the strategy type identifier.
func (s *SignalReversal) ID() string { return domain.StrategyTypeSignalReversal }

// Label returns the display name.
func (s *SignalReversal) Label() string { return "TM Signal-Driven Reversal" }

// Evaluate checks entry criteria.
func (s *SignalReversal) Evaluate(a domain.AssetSnapshot) bool {
	return a.Grade >= s.MinGrade &&
		a.HoldingReturn < s.MaxHoldingReturn &&
		a.SignalsReturn >= s.MinSignalsReturn
}

// SizingFraction returns the fraction of capital per trade.
func (s *SignalReversal) SizingFraction() float64 { return s.Sizing }

// HoldDuration returns the nominal holding period.
func (s *SignalReversal) HoldDuration() time.Duration { return s.Hold }

// ExitBasis returns ExitBasisSignals: the trade follows the signals.
func (s *SignalReversal) ExitBasis() domain.ExitBasis { return domain.ExitBasisSignals }

var _ Policy = (*SignalReversal)(nil)
