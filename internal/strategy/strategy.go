package strategy

import (
	"time"

	"token-strategy-lab/internal/domain"
)

// Policy is a rule-based entry strategy over asset snapshots.
type Policy interface {
	// ID returns the strategy type identifier.
	ID() string

	// Label returns the display name.
	Label() string

	// Evaluate reports whether the snapshot meets the entry criteria.
	// Pure and total: never fails, absent fields arrive as zero values.
	Evaluate(s domain.AssetSnapshot) bool

	// SizingFraction is the fraction of current capital committed per trade, in (0, 1].
	SizingFraction() float64

	// HoldDuration is the nominal holding period, used for timestamps only.
	HoldDuration() time.Duration

	// ExitBasis selects which return drives the simulated exit price.
	ExitBasis() domain.ExitBasis
}

const day = 24 * time.Hour

// Defaults returns the three standard policies in evaluation order.
func Defaults() []Policy {
	return []Policy{
		NewSignalReversal(),
		NewLongTermHold(),
		NewTrendFollowing(),
	}
}

// validSizing reports whether f lies in (0, 1].
func validSizing(f float64) bool {
	return f > 0 && f <= 1
}
