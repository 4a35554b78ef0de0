// Package backtest runs strategy policies over asset snapshots against a
// single ledger and summarizes the outcome.
// Flow: evaluate (optionally parallel) → simulate/append (serial) → metrics → persist
package backtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/idhash"
	"token-strategy-lab/internal/ledger"
	"token-strategy-lab/internal/metrics"
	"token-strategy-lab/internal/simulation"
	"token-strategy-lab/internal/storage"
	"token-strategy-lab/internal/strategy"
)

// ErrNoPolicies is returned when the engine has nothing to evaluate.
var ErrNoPolicies = errors.New("no policies configured")

// Recorder receives run events, typically for metrics export.
type Recorder interface {
	SnapshotEvaluated()
	Decision(strategyID string, accepted bool)
	TradeSimulated(strategyID string, capital float64)
	TradeSkipped(strategyID, reason string)
	StoreCall(store, operation string, seconds float64, err error)
	RunFinished(status string, seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) SnapshotEvaluated()                       {}
func (nopRecorder) Decision(string, bool)                    {}
func (nopRecorder) TradeSimulated(string, float64)           {}
func (nopRecorder) TradeSkipped(string, string)              {}
func (nopRecorder) StoreCall(string, string, float64, error) {}
func (nopRecorder) RunFinished(string, float64)              {}

// Options for creating Engine.
type Options struct {
	InitialCapital float64
	Policies       []strategy.Policy // nil means strategy.Defaults()
	Pricing        simulation.Pricing

	// ExitAt is the exit timestamp of every trade. Zero means Clock().
	ExitAt time.Time

	// Parallelism bounds predicate workers. Values <= 1 evaluate serially.
	Parallelism int

	// Optional stores. Nil stores are not written.
	TradeStore   storage.TradeStore
	RunStore     storage.RunStore
	MetricsStore storage.MetricsStore

	Recorder Recorder
	Logger   *log.Logger
	Clock    func() time.Time
	NewRunID func() string
}

// Engine orchestrates a backtest run.
type Engine struct {
	initialCapital float64
	policies       []strategy.Policy
	pricing        simulation.Pricing
	exitAt         time.Time
	parallelism    int

	tradeStore   storage.TradeStore
	runStore     storage.RunStore
	metricsStore storage.MetricsStore

	recorder Recorder
	logger   *log.Logger
	clock    func() time.Time
	newRunID func() string
}

// New creates a new Engine.
func New(opts Options) *Engine {
	e := &Engine{
		initialCapital: opts.InitialCapital,
		policies:       opts.Policies,
		pricing:        opts.Pricing,
		exitAt:         opts.ExitAt,
		parallelism:    opts.Parallelism,
		tradeStore:     opts.TradeStore,
		runStore:       opts.RunStore,
		metricsStore:   opts.MetricsStore,
		recorder:       opts.Recorder,
		logger:         opts.Logger,
		clock:          opts.Clock,
		newRunID:       opts.NewRunID,
	}
	if e.policies == nil {
		e.policies = strategy.Defaults()
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard, "", 0)
	}
	if e.clock == nil {
		e.clock = func() time.Time { return time.Now().UTC() }
	}
	if e.newRunID == nil {
		e.newRunID = idhash.NewRunID
	}
	return e
}

// Skip records an accepted snapshot whose trade could not be simulated.
type Skip struct {
	Symbol     string
	StrategyID string
	Reason     string
}

// Results holds backtest output.
type Results struct {
	RunID           string
	Summary         domain.RunSummary
	Trades          []domain.Trade // ledger insertion order
	StrategyResults []domain.StrategyResult
	Metrics         domain.Metrics
	ByStrategy      []domain.Metrics
	Skipped         []Skip
}

// Run evaluates every policy against every snapshot in input order and
// simulates a trade for each acceptance. Trades that fail price or time
// preconditions are skipped and reported, any other error aborts the run.
func (e *Engine) Run(ctx context.Context, snapshots []domain.AssetSnapshot) (*Results, error) {
	started := e.clock()
	res, err := e.run(ctx, snapshots, started)

	status := "success"
	if err != nil {
		status = "failed"
	}
	e.recorder.RunFinished(status, e.clock().Sub(started).Seconds())
	return res, err
}

func (e *Engine) run(ctx context.Context, snapshots []domain.AssetSnapshot, started time.Time) (*Results, error) {
	if len(e.policies) == 0 {
		return nil, ErrNoPolicies
	}

	runID := e.newRunID()
	l, err := ledger.OpenRun(runID, e.initialCapital)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	exitAt := e.exitAt
	if exitAt.IsZero() {
		exitAt = started
	}

	e.logger.Printf("run %s: %d snapshots, %d policies, capital %.2f", runID, len(snapshots), len(e.policies), e.initialCapital)

	decisions, err := e.evaluate(ctx, snapshots)
	if err != nil {
		return nil, err
	}

	res := &Results{RunID: runID}
	for i, snap := range snapshots {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled at snapshot %d: %w", i, err)
		}

		for j, p := range e.policies {
			if !decisions[i][j] {
				continue
			}

			t, err := simulation.Simulate(l, p, e.pricing.InputFor(p, snap, exitAt))
			if err != nil {
				if errors.Is(err, simulation.ErrInvalidPrice) || errors.Is(err, simulation.ErrInvalidTimes) {
					e.logger.Printf("skip %s/%s: %v", p.ID(), snap.Symbol, err)
					e.recorder.TradeSkipped(p.ID(), skipReason(err))
					res.Skipped = append(res.Skipped, Skip{Symbol: snap.Symbol, StrategyID: p.ID(), Reason: err.Error()})
					continue
				}
				return nil, fmt.Errorf("simulate %s/%s: %w", p.ID(), snap.Symbol, err)
			}
			if t == nil {
				continue
			}

			e.recorder.TradeSimulated(p.ID(), l.Capital())
			res.StrategyResults = append(res.StrategyResults, domain.StrategyResult{
				StrategyID:    t.StrategyID,
				StrategyLabel: t.StrategyLabel,
				Symbol:        t.Symbol,
				ProfitLossPct: t.ProfitLossPct,
			})
		}
	}

	snap := l.Snapshot()
	res.Trades = snap.Trades
	res.Metrics = metrics.Compute(snap)
	res.ByStrategy = metrics.ComputeByStrategy(snap)
	res.Summary = domain.RunSummary{
		RunID:          runID,
		StartedAt:      started,
		FinishedAt:     e.clock(),
		InitialCapital: snap.InitialCapital,
		FinalCapital:   snap.CurrentCapital,
		SnapshotCount:  len(snapshots),
		TradeCount:     snap.TradeCount(),
		Strategies:     e.policyIDs(),
	}

	e.logger.Printf("run %s: %d trades, final capital %.2f", runID, snap.TradeCount(), snap.CurrentCapital)

	if err := e.persist(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

// evaluate returns decisions[snapshot][policy]. Predicates are pure, so
// the order in which workers finish does not matter.
func (e *Engine) evaluate(ctx context.Context, snapshots []domain.AssetSnapshot) ([][]bool, error) {
	decisions := make([][]bool, len(snapshots))

	decide := func(i int) {
		row := make([]bool, len(e.policies))
		for j, p := range e.policies {
			row[j] = p.Evaluate(snapshots[i])
			e.recorder.Decision(p.ID(), row[j])
		}
		decisions[i] = row
		e.recorder.SnapshotEvaluated()
	}

	if e.parallelism <= 1 {
		for i := range snapshots {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("evaluate: %w", err)
			}
			decide(i)
		}
		return decisions, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range snapshots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decide(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return decisions, nil
}

func (e *Engine) policyIDs() []string {
	ids := make([]string, len(e.policies))
	for i, p := range e.policies {
		ids[i] = p.ID()
	}
	return ids
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, simulation.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, simulation.ErrInvalidTimes):
		return "invalid_times"
	default:
		return "other"
	}
}
