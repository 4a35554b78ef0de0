package reporting

import (
	"fmt"
	"strings"
	"time"

	"token-strategy-lab/internal/domain"
)

// RenderMetricsCSV renders metrics rows as CSV string.
func RenderMetricsCSV(metrics []domain.Metrics) string {
	var sb strings.Builder

	// Header
	sb.WriteString("run_id,strategy_id,total_trades,winning_trades,losing_trades,breakeven_trades,")
	sb.WriteString("win_rate,total_return,avg_win,avg_loss,profit_factor,")
	sb.WriteString("initial_capital,final_capital,max_drawdown,running_drawdown,max_consecutive_losses\n")

	// Rows
	for _, m := range metrics {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%d,%.6f,%.6f,%.6f,%.6f,%s,%s,%s,%.6f,%.6f,%d\n",
			m.RunID,
			m.StrategyID,
			m.TotalTrades,
			m.WinningTrades,
			m.LosingTrades,
			m.BreakevenTrades,
			m.WinRate,
			m.TotalReturn,
			m.AvgWin,
			m.AvgLoss,
			FormatRatio(m.ProfitFactor),
			plainMoney(m.InitialCapital),
			plainMoney(m.FinalCapital),
			m.MaxDrawdown,
			m.RunningDrawdown,
			m.MaxConsecutiveLosses,
		))
	}

	return sb.String()
}

// RenderTradesCSV renders the trade journal as CSV string.
func RenderTradesCSV(trades []TradeRow) string {
	var sb strings.Builder

	sb.WriteString("sequence,symbol,strategy_id,entry_time,exit_time,entry_price,exit_price,")
	sb.WriteString("quantity,capital_at_entry,profit_loss,profit_loss_pct\n")

	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%.6f,%.6f,%.6f,%s,%s,%.6f\n",
			t.Sequence,
			t.Symbol,
			t.StrategyID,
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			t.EntryPrice,
			t.ExitPrice,
			t.Quantity,
			plainMoney(t.CapitalAtEntry),
			plainMoney(t.ProfitLoss),
			t.ProfitLossPct,
		))
	}

	return sb.String()
}

// plainMoney is FormatMoney without separators, for machine-readable output.
func plainMoney(v float64) string {
	return strings.ReplaceAll(FormatMoney(v), ",", "")
}
