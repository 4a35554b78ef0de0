package simulation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/idhash"
	"token-strategy-lab/internal/ledger"
	"token-strategy-lab/internal/strategy"
)

// Simulation errors
var (
	ErrInvalidPrice   = errors.New("entry and exit prices must be positive")
	ErrInvalidSizing  = errors.New("sizing fraction must be in (0, 1]")
	ErrInvalidTimes   = errors.New("entry time must not be after exit time")
	ErrInvalidCapital = errors.New("capital must be positive")
	ErrNilPolicy      = errors.New("nil policy")
	ErrNilLedger      = errors.New("nil ledger")
)

// Input holds one accepted snapshot and its execution prices.
type Input struct {
	Snapshot   domain.AssetSnapshot
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
}

// Validate checks price and timestamp preconditions.
func (in *Input) Validate() error {
	if !positive(in.EntryPrice) || !positive(in.ExitPrice) {
		return fmt.Errorf("%w: entry=%v exit=%v", ErrInvalidPrice, in.EntryPrice, in.ExitPrice)
	}
	if in.EntryTime.After(in.ExitTime) {
		return ErrInvalidTimes
	}
	return nil
}

// BuildTrade computes a trade sized from the given capital.
// Pure: the capital after the trade is returned, nothing is recorded.
// The predicate is not consulted; callers check acceptance first.
//
//   - quantity = capital * sizing / entry_price
//   - profit_loss = (exit_price - entry_price) * quantity
//   - profit_loss_pct = (exit_price - entry_price) / entry_price * 100
func BuildTrade(capital float64, p strategy.Policy, in Input) (*domain.Trade, float64, error) {
	if p == nil {
		return nil, capital, ErrNilPolicy
	}
	if !positive(capital) {
		return nil, capital, fmt.Errorf("%w: got %v", ErrInvalidCapital, capital)
	}
	sizing := p.SizingFraction()
	if !(sizing > 0 && sizing <= 1) {
		return nil, capital, fmt.Errorf("%w: %s has %v", ErrInvalidSizing, p.ID(), sizing)
	}
	if err := in.Validate(); err != nil {
		return nil, capital, err
	}

	quantity := capital * sizing / in.EntryPrice
	move := in.ExitPrice - in.EntryPrice
	profitLoss := move * quantity
	profitLossPct := move / in.EntryPrice * 100

	symbol := in.Snapshot.Symbol
	if symbol == "" {
		symbol = domain.UnknownSymbol
	}

	t := &domain.Trade{
		Symbol:        symbol,
		StrategyID:    p.ID(),
		StrategyLabel: p.Label(),

		EntryPrice:     in.EntryPrice,
		EntryTime:      in.EntryTime,
		SizingFraction: sizing,
		CapitalAtEntry: capital,
		Quantity:       quantity,

		ExitPrice: in.ExitPrice,
		ExitTime:  in.ExitTime,

		ProfitLoss:    profitLoss,
		ProfitLossPct: profitLossPct,
	}

	return t, capital + profitLoss, nil
}

// Simulate re-checks the policy, sizes a trade from the ledger's capital at
// call time and appends it. Returns (nil, nil) when the policy rejects the
// snapshot; the ledger is untouched in that case and on error.
func Simulate(l *ledger.Ledger, p strategy.Policy, in Input) (*domain.Trade, error) {
	if l == nil {
		return nil, ErrNilLedger
	}
	if p == nil {
		return nil, ErrNilPolicy
	}
	if !p.Evaluate(in.Snapshot) {
		return nil, nil
	}

	return l.AppendWith(func(capital float64, sequence int) (*domain.Trade, error) {
		t, _, err := BuildTrade(capital, p, in)
		if err != nil {
			return nil, err
		}
		t.TradeID = idhash.ComputeTradeID(l.RunID(), t.StrategyID, t.Symbol, sequence)
		return t, nil
	})
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
