package strategy

import (
	"time"

	"token-strategy-lab/internal/domain"
)

// TrendFollowing follows signals on graded assets in a confirmed uptrend
// where the signals added value over holding.
//
// Entry: grade >= MinGrade AND trend positive AND signals > holding AND signals > 0.
type TrendFollowing struct {
	MinGrade float64
	Sizing   float64
	Hold     time.Duration
}

// NewTrendFollowing creates a TrendFollowing with standard thresholds.
func NewTrendFollowing() *TrendFollowing {
	return &TrendFollowing{
		MinGrade: 75,
		Sizing:   0.08,
		Hold:     14 * day,
	}
}

// ID returns the strategy type identifier.
func (s *TrendFollowing) ID() string { return domain.StrategyTypeTrendFollowing }

// Label returns the display name.
func (s *TrendFollowing) Label() string { return "TM Trend-Aligned Signal Following" }

// Evaluate checks entry criteria.
// A missing trend arrives as 0 and is read as not positive.
func (s *TrendFollowing) Evaluate(a domain.AssetSnapshot) bool {
	return a.Grade >= s.MinGrade &&
		a.IsTrendPositive() &&
		a.SignalsReturn > a.HoldingReturn &&
		a.SignalsReturn > 0
}

// SizingFraction returns the fraction of capital per trade.
func (s *TrendFollowing) SizingFraction() float64 { return s.Sizing }

// HoldDuration returns the nominal holding period.
func (s *TrendFollowing) HoldDuration() time.Duration { return s.Hold }

// ExitBasis returns ExitBasisSignals.
func (s *TrendFollowing) ExitBasis() domain.ExitBasis { return domain.ExitBasisSignals }

var _ Policy = (*TrendFollowing)(nil)
