package strategy

import (
	"time"

	"token-strategy-lab/internal/domain"
)

// LongTermHold targets exceptional assets where holding beat the signals.
//
// Entry: grade >= MinGrade AND holding >= MinHoldingReturn AND
// (signals < SignalsRatio*holding OR signals < 0).
type LongTermHold struct {
	MinGrade         float64
	MinHoldingReturn float64
	SignalsRatio     float64
	Sizing           float64
	Hold             time.Duration
}

// NewLongTermHold creates a LongTermHold with standard thresholds.
func NewLongTermHold() *LongTermHold {
	return &LongTermHold{
		MinGrade:         88,
		MinHoldingReturn: 1.00,
		SignalsRatio:     0.5,
		Sizing:           0.15,
		Hold:             180 * day,
	}
}

// ID returns the strategy type identifier.
func (s *LongTermHold) ID() string { return domain.StrategyTypeLongTermHold }

// Label returns the display name.
func (s *LongTermHold) Label() string { return "TM Grade & Long-Term Hold" }

// Evaluate checks entry criteria.
func (s *LongTermHold) Evaluate(a domain.AssetSnapshot) bool {
	signalsLagged := a.SignalsReturn < s.SignalsRatio*a.HoldingReturn || a.SignalsReturn < 0

	return a.Grade >= s.MinGrade &&
		a.HoldingReturn >= s.MinHoldingReturn &&
		signalsLagged
}

// SizingFraction returns the fraction of capital per trade.
func (s *LongTermHold) SizingFraction() float64 { return s.Sizing }

// HoldDuration returns the nominal holding period.
func (s *LongTermHold) HoldDuration() time.Duration { return s.Hold }

// ExitBasis returns ExitBasisHolding: the trade is a buy-and-hold.
func (s *LongTermHold) ExitBasis() domain.ExitBasis { return domain.ExitBasisHolding }

var _ Policy = (*LongTermHold)(nil)
