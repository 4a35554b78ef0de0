// Package ledger holds the append-only trade journal and running capital
// of a backtest run.
package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"token-strategy-lab/internal/domain"
)

// Ledger errors
var (
	// ErrInvalidConfiguration is returned when the ledger cannot be opened.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNilTrade is returned when appending a nil trade.
	ErrNilTrade = errors.New("nil trade")
)

// Ledger is the trade journal plus running capital balance.
// currentCapital == initialCapital + sum(ProfitLoss) holds after every Append.
// Safe for concurrent use; appends are serialized.
type Ledger struct {
	mu             sync.RWMutex
	runID          string
	initialCapital float64
	currentCapital float64
	trades         []*domain.Trade
}

// Open creates a ledger with the given starting capital.
// Returns ErrInvalidConfiguration if initialCapital is not a positive finite number.
func Open(initialCapital float64) (*Ledger, error) {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital must be positive, got %v", ErrInvalidConfiguration, initialCapital)
	}

	return &Ledger{
		initialCapital: initialCapital,
		currentCapital: initialCapital,
		trades:         make([]*domain.Trade, 0),
	}, nil
}

// OpenRun is Open with a run identifier stamped on every appended trade.
func OpenRun(runID string, initialCapital float64) (*Ledger, error) {
	l, err := Open(initialCapital)
	if err != nil {
		return nil, err
	}
	l.runID = runID
	return l, nil
}

// RunID returns the run identifier, empty for ledgers created with Open.
func (l *Ledger) RunID() string {
	return l.runID
}

// InitialCapital returns the fixed starting capital.
func (l *Ledger) InitialCapital() float64 {
	return l.initialCapital
}

// Capital returns the current capital.
func (l *Ledger) Capital() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentCapital
}

// Len returns the number of appended trades.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

// Append records a trade and applies its profit/loss to capital.
// The ledger stores its own copy, stamped with the insertion sequence and run id.
// There is no rollback. Returns the capital after the append.
func (l *Ledger) Append(t *domain.Trade) (float64, error) {
	if t == nil {
		return 0, ErrNilTrade
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stored := *t
	stored.Sequence = len(l.trades)
	if l.runID != "" {
		stored.RunID = l.runID
	}

	l.trades = append(l.trades, &stored)
	l.currentCapital += stored.ProfitLoss
	return l.currentCapital, nil
}

// AppendWith sizes a trade from current capital and appends it in one
// critical section, so no other writer can move capital in between.
// build receives the capital at call time and the next sequence number.
func (l *Ledger) AppendWith(build func(capital float64, sequence int) (*domain.Trade, error)) (*domain.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := build(l.currentCapital, len(l.trades))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	stored := *t
	stored.Sequence = len(l.trades)
	if l.runID != "" {
		stored.RunID = l.runID
	}

	l.trades = append(l.trades, &stored)
	l.currentCapital += stored.ProfitLoss

	out := stored
	return &out, nil
}

// Snapshot returns a read-only view of the ledger.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	trades := make([]domain.Trade, len(l.trades))
	for i, t := range l.trades {
		trades[i] = *t
	}

	return Snapshot{
		RunID:          l.runID,
		InitialCapital: l.initialCapital,
		CurrentCapital: l.currentCapital,
		Trades:         trades,
	}
}

// Snapshot is a point-in-time copy of the ledger. Mutating it does not
// affect the ledger.
type Snapshot struct {
	RunID          string
	InitialCapital float64
	CurrentCapital float64
	Trades         []domain.Trade // insertion order
}

// TradeCount returns the number of trades in the snapshot.
func (s Snapshot) TradeCount() int {
	return len(s.Trades)
}

// Filter returns a snapshot of the trades matching keep, re-based on the
// same initial capital. Current capital is recomputed from the kept trades.
func (s Snapshot) Filter(keep func(t *domain.Trade) bool) Snapshot {
	out := Snapshot{
		RunID:          s.RunID,
		InitialCapital: s.InitialCapital,
		CurrentCapital: s.InitialCapital,
	}
	for i := range s.Trades {
		if keep(&s.Trades[i]) {
			out.Trades = append(out.Trades, s.Trades[i])
			out.CurrentCapital += s.Trades[i].ProfitLoss
		}
	}
	return out
}
