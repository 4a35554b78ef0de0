// Package metrics derives performance statistics from a ledger's trade
// history. Everything here is a pure function of a ledger.Snapshot.
package metrics

import (
	"math"
	"sort"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/ledger"
)

// Compute summarizes the whole ledger snapshot.
// An empty snapshot yields zeroed metrics with ProfitFactor = +Inf and
// FinalCapital equal to the initial capital.
func Compute(snap ledger.Snapshot) domain.Metrics {
	m := computeFromTrades(snap.Trades, snap.InitialCapital, snap.CurrentCapital)
	m.RunID = snap.RunID
	m.StrategyID = domain.StrategyIDAll
	return m
}

// ComputeByStrategy computes metrics over each strategy's sub-journal.
// Every sub-journal starts from the ledger's initial capital. Results are
// ordered by strategy id.
func ComputeByStrategy(snap ledger.Snapshot) []domain.Metrics {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range snap.Trades {
		if _, ok := seen[t.StrategyID]; !ok {
			seen[t.StrategyID] = struct{}{}
			ids = append(ids, t.StrategyID)
		}
	}
	sort.Strings(ids)

	result := make([]domain.Metrics, 0, len(ids))
	for _, id := range ids {
		strategyID := id
		sub := snap.Filter(func(t *domain.Trade) bool {
			return t.StrategyID == strategyID
		})
		m := computeFromTrades(sub.Trades, sub.InitialCapital, sub.CurrentCapital)
		m.RunID = snap.RunID
		m.StrategyID = strategyID
		result = append(result, m)
	}
	return result
}

// computeFromTrades calculates all metrics from trades in insertion order.
func computeFromTrades(trades []domain.Trade, initial, current float64) domain.Metrics {
	m := domain.Metrics{
		TotalTrades:    len(trades),
		InitialCapital: initial,
		FinalCapital:   current,
		ProfitFactor:   math.Inf(1),
	}
	if len(trades) == 0 {
		return m
	}

	var sumWinPct, sumLossPct float64
	for i := range trades {
		t := &trades[i]
		switch {
		case t.IsWin():
			m.WinningTrades++
			m.GrossProfit += t.ProfitLoss
			sumWinPct += t.ProfitLossPct
		case t.IsLoss():
			m.LosingTrades++
			m.GrossLoss += t.ProfitLoss
			sumLossPct += t.ProfitLossPct
		default:
			m.BreakevenTrades++
		}
	}

	m.WinRate = computeWinRate(m.WinningTrades, m.TotalTrades)
	m.TotalReturn = computeTotalReturn(initial, current)
	m.AvgWin = mean(sumWinPct, m.WinningTrades)
	m.AvgLoss = mean(sumLossPct, m.LosingTrades)
	m.ProfitFactor = computeProfitFactor(m.GrossProfit, m.GrossLoss, m.LosingTrades)
	m.MaxDrawdown = computeMaxDrawdown(trades, initial)
	m.RunningDrawdown = computeRunningDrawdown(trades, initial)
	m.MaxConsecutiveLosses = computeMaxConsecutiveLosses(trades)

	return m
}

// computeWinRate returns wins / total as a percentage.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

func computeTotalReturn(initial, current float64) float64 {
	if initial <= 0 {
		return 0
	}
	return (current - initial) / initial * 100
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// computeProfitFactor is |gross profit / gross loss|, +Inf with no losers.
func computeProfitFactor(grossProfit, grossLoss float64, losers int) float64 {
	if losers == 0 || grossLoss == 0 {
		return math.Inf(1)
	}
	return math.Abs(grossProfit / grossLoss)
}

// computeMaxDrawdown reconstructs each trade's value from the running peak
// rather than from the running balance:
//
//	value = peak + pl; peak = max(peak, value); dd = (peak - value) / peak
//
// Consecutive losses are therefore each measured against the same peak, so
// this can understate the drawdown of the actual balance. See
// computeRunningDrawdown for that figure.
func computeMaxDrawdown(trades []domain.Trade, initial float64) float64 {
	peak := initial
	maxDrawdown := 0.0

	for i := range trades {
		value := peak + trades[i].ProfitLoss
		if value > peak {
			peak = value
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - value) / peak * 100; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// computeRunningDrawdown is the worst peak-to-trough decline of the
// running capital balance, in percent of the peak.
func computeRunningDrawdown(trades []domain.Trade, initial float64) float64 {
	capital := initial
	peak := initial
	maxDrawdown := 0.0

	for i := range trades {
		capital += trades[i].ProfitLoss
		if capital > peak {
			peak = capital
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - capital) / peak * 100; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// computeMaxConsecutiveLosses finds the longest streak of losing trades.
// A break-even trade ends a streak.
func computeMaxConsecutiveLosses(trades []domain.Trade) int {
	maxStreak := 0
	currentStreak := 0

	for i := range trades {
		if trades[i].IsLoss() {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}
