package simulation

import (
	"time"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/strategy"
)

// DefaultBasePrice is the normalized entry price of every simulated trade.
const DefaultBasePrice = 100.0

// Pricing derives execution prices from a snapshot's returns.
type Pricing struct {
	BasePrice float64
}

// ExitPrice returns base * (1 + r) where r is the return selected by basis.
func (pr Pricing) ExitPrice(basis domain.ExitBasis, s domain.AssetSnapshot) float64 {
	r := s.SignalsReturn
	if basis == domain.ExitBasisHolding {
		r = s.HoldingReturn
	}
	return pr.base() * (1 + r)
}

// InputFor builds a simulation input for policy p exiting at exitAt.
// Entry time is exitAt minus the policy's hold duration.
func (pr Pricing) InputFor(p strategy.Policy, s domain.AssetSnapshot, exitAt time.Time) Input {
	return Input{
		Snapshot:   s,
		EntryPrice: pr.base(),
		ExitPrice:  pr.ExitPrice(p.ExitBasis(), s),
		EntryTime:  exitAt.Add(-p.HoldDuration()),
		ExitTime:   exitAt,
	}
}

func (pr Pricing) base() float64 {
	if pr.BasePrice <= 0 {
		return DefaultBasePrice
	}
	return pr.BasePrice
}
