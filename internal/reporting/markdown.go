package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s` | Snapshots: %d | Strategies: %s\n\n",
		r.Run.RunID, r.Run.SnapshotCount, strings.Join(r.Run.Strategies, ", ")))

	// Results
	o := r.Overall
	sb.WriteString("## Results\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Initial Capital | $%s |\n", FormatMoney(o.InitialCapital)))
	sb.WriteString(fmt.Sprintf("| Final Capital | $%s |\n", FormatMoney(o.FinalCapital)))
	sb.WriteString(fmt.Sprintf("| Total Return | %s |\n", FormatPct(o.TotalReturn)))
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", o.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %s |\n", FormatPct(o.WinRate)))
	sb.WriteString(fmt.Sprintf("| Average Win | %s |\n", FormatPct(o.AvgWin)))
	sb.WriteString(fmt.Sprintf("| Average Loss | %s |\n", FormatPct(o.AvgLoss)))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %s |\n", FormatRatio(o.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %s |\n", FormatPct(o.MaxDrawdown)))
	sb.WriteString(fmt.Sprintf("| Running Drawdown | %s |\n", FormatPct(o.RunningDrawdown)))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Losses | %d |\n", o.MaxConsecutiveLosses))
	sb.WriteString("\n")

	// Strategy Metrics
	sb.WriteString("## Strategy Metrics\n\n")
	if len(r.Strategies) > 0 {
		sb.WriteString("| Strategy | Trades | Wins | Losses | WinRate | Return | AvgWin | AvgLoss | PF | MaxDD |\n")
		sb.WriteString("|----------|--------|------|--------|---------|--------|--------|---------|----|-------|\n")
		for _, m := range r.Strategies {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %s | %s | %s | %s | %s | %s |\n",
				m.StrategyID, m.TotalTrades, m.WinningTrades, m.LosingTrades,
				FormatPct(m.WinRate), FormatPct(m.TotalReturn), FormatPct(m.AvgWin), FormatPct(m.AvgLoss),
				FormatRatio(m.ProfitFactor), FormatPct(m.MaxDrawdown)))
		}
	} else {
		sb.WriteString("No strategy metrics available.\n")
	}
	sb.WriteString("\n")

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| # | Symbol | Strategy | Entry | Exit | Capital | Quantity | P/L | P/L % |\n")
		sb.WriteString("|---|--------|----------|-------|------|---------|----------|-----|-------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %.4f | %s | %s |\n",
				t.Sequence+1, t.Symbol, t.StrategyLabel,
				t.EntryTime.Format(time.DateOnly), t.ExitTime.Format(time.DateOnly),
				FormatMoney(t.CapitalAtEntry), t.Quantity,
				FormatMoney(t.ProfitLoss), FormatPct(t.ProfitLossPct)))
		}
	} else {
		sb.WriteString("No trades.\n")
	}
	sb.WriteString("\n")

	if len(r.Skipped) > 0 {
		sb.WriteString("## Skipped\n\n")
		for _, s := range r.Skipped {
			sb.WriteString(fmt.Sprintf("- %s / %s: %s\n", s.StrategyID, s.Symbol, s.Reason))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
