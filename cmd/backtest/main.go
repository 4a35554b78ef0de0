package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"token-strategy-lab/internal/backtest"
	"token-strategy-lab/internal/dataset"
	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/observability"
	"token-strategy-lab/internal/reporting"
	"token-strategy-lab/internal/storage"
	chstore "token-strategy-lab/internal/storage/clickhouse"
	"token-strategy-lab/internal/storage/memory"
	"token-strategy-lab/internal/storage/migrations"
	pgstore "token-strategy-lab/internal/storage/postgres"
	"token-strategy-lab/internal/strategy"
)

func main() {
	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Printf("load .env: %v", err)
	}

	// Parse flags
	capital := flag.Float64("capital", envFloat("BACKTEST_CAPITAL", 10000), "Initial capital")
	inputPath := flag.String("input", os.Getenv("BACKTEST_INPUT"), "JSON snapshot file (default: built-in July 2025 sample)")
	exitDate := flag.String("exit-date", "", "Exit date YYYY-MM-DD for every trade (default: sample date or now)")
	strategies := flag.String("strategies", os.Getenv("BACKTEST_STRATEGIES"), "Comma-separated strategy IDs (default: all)")
	parallel := flag.Int("parallel", 1, "Predicate workers")
	writeFixture := flag.String("write-fixture", "", "Write the built-in sample as JSON to this path and exit")

	// Storage
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	persist := flag.Bool("persist", false, "Persist run, trades and metrics to storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	reportDir := flag.String("report-dir", "", "Write REPORT.md, METRICS.csv and TRADES.csv to this directory")
	metricsAddr := flag.String("metrics-addr", os.Getenv("METRICS_ADDR"), "Serve Prometheus metrics on this address while running")

	flag.Parse()

	if *writeFixture != "" {
		if err := writeSample(*writeFixture); err != nil {
			logger.Fatalf("write fixture: %v", err)
		}
		logger.Printf("Wrote %s", *writeFixture)
		return
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Load snapshots
	snapshots := dataset.July2025()
	exitAt := dataset.July2025AsOf
	if *inputPath != "" {
		loaded, err := dataset.LoadFile(*inputPath)
		if err != nil {
			logger.Fatalf("load input: %v", err)
		}
		snapshots = loaded
		exitAt = time.Time{}
	}
	if *exitDate != "" {
		parsed, err := time.Parse(time.DateOnly, *exitDate)
		if err != nil {
			logger.Fatalf("Invalid --exit-date %q: %v", *exitDate, err)
		}
		exitAt = parsed.UTC()
	}

	policies, err := strategy.FromNames(*strategies)
	if err != nil {
		logger.Fatalf("Invalid --strategies: %v", err)
	}

	opts := backtest.Options{
		InitialCapital: *capital,
		Policies:       policies,
		ExitAt:         exitAt,
		Parallelism:    *parallel,
		Recorder:       observability.NewRecorder(nil),
		Logger:         logger,
	}

	// Create stores
	if *persist {
		closeStores, err := openStores(ctx, &opts, *useMemory, *postgresDSN, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("open storage: %v", err)
		}
		defer closeStores()
	}

	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr)
	}

	logger.Printf("Running backtest: snapshots=%d capital=%.2f", len(snapshots), *capital)

	res, err := backtest.New(opts).Run(ctx, snapshots)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}

	if *reportDir != "" {
		if err := writeReports(*reportDir, res); err != nil {
			logger.Fatalf("write reports: %v", err)
		}
		logger.Printf("Reports written to %s/", *reportDir)
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(jsonResults(res), "", "  ")
		fmt.Println(string(output))
	} else {
		printResults(res)
	}
}

// openStores wires journal and metrics stores into opts and returns a cleanup func.
func openStores(ctx context.Context, opts *backtest.Options, useMemory bool, postgresDSN, clickhouseDSN string) (func(), error) {
	if useMemory {
		opts.TradeStore = memory.NewTradeStore()
		opts.RunStore = memory.NewRunStore()
		opts.MetricsStore = memory.NewMetricsStore()
		return func() {}, nil
	}

	// Require DSNs when not using memory
	if postgresDSN == "" {
		return nil, errors.New("--postgres-dsn is required when not using --use-memory (runs and trades)")
	}
	if clickhouseDSN == "" {
		return nil, errors.New("--clickhouse-dsn is required when not using --use-memory (metrics)")
	}

	// PostgreSQL for runs and trades
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse for metrics aggregates
	conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	var (
		tradeStore   storage.TradeStore   = pgstore.NewTradeStore(pool)
		runStore     storage.RunStore     = pgstore.NewRunStore(pool)
		metricsStore storage.MetricsStore = chstore.NewMetricsStore(conn)
	)
	opts.TradeStore = tradeStore
	opts.RunStore = runStore
	opts.MetricsStore = metricsStore

	return func() {
		conn.Close()
		pool.Close()
	}, nil
}

// serveMetrics exposes /metrics and /health until the process exits.
func serveMetrics(logger *log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("metrics server error: %v", err)
	}
}

func writeSample(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.Encode(f, dataset.July2025()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeReports(dir string, res *backtest.Results) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	report := reporting.FromResults(res, time.Now().UTC())
	files := map[string]string{
		"REPORT.md":   reporting.RenderMarkdown(report),
		"METRICS.csv": reporting.RenderMetricsCSV(append([]domain.Metrics{res.Metrics}, res.ByStrategy...)),
		"TRADES.csv":  reporting.RenderTradesCSV(report.Trades),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// printResults outputs human-readable results.
func printResults(res *backtest.Results) {
	m := res.Metrics

	fmt.Println()
	for _, r := range res.StrategyResults {
		fmt.Printf("%-34s %-8s %8.2f%%\n", r.StrategyLabel, r.Symbol, r.ProfitLossPct)
	}
	for _, s := range res.Skipped {
		fmt.Printf("%-34s %-8s skipped: %s\n", s.StrategyID, s.Symbol, s.Reason)
	}
	fmt.Println()

	fmt.Println("=== BACKTESTING RESULTS ===")
	fmt.Printf("Run ID:             %s\n", res.RunID)
	fmt.Printf("Initial Capital:    $%s\n", reporting.FormatMoney(m.InitialCapital))
	fmt.Printf("Final Capital:      $%s\n", reporting.FormatMoney(m.FinalCapital))
	fmt.Printf("Total Return:       %.2f%%\n", m.TotalReturn)
	fmt.Printf("Win Rate:           %.1f%%\n", m.WinRate)
	fmt.Printf("Total Trades:       %d\n", m.TotalTrades)
	fmt.Printf("Profit Factor:      %s\n", reporting.FormatRatio(m.ProfitFactor))
	fmt.Printf("Max Drawdown:       %.2f%%\n", m.MaxDrawdown)
}

// jsonMetrics mirrors domain.Metrics with a JSON-safe profit factor.
type jsonMetrics struct {
	StrategyID           string  `json:"strategy_id"`
	TotalTrades          int     `json:"total_trades"`
	WinningTrades        int     `json:"winning_trades"`
	LosingTrades         int     `json:"losing_trades"`
	WinRate              float64 `json:"win_rate"`
	TotalReturn          float64 `json:"total_return"`
	AvgWin               float64 `json:"avg_win"`
	AvgLoss              float64 `json:"avg_loss"`
	ProfitFactor         string  `json:"profit_factor"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	RunningDrawdown      float64 `json:"running_drawdown"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	FinalCapital         float64 `json:"final_capital"`
}

type jsonOutput struct {
	RunID      string                  `json:"run_id"`
	Metrics    jsonMetrics             `json:"metrics"`
	ByStrategy []jsonMetrics           `json:"by_strategy"`
	Results    []domain.StrategyResult `json:"results"`
	Trades     []domain.Trade          `json:"trades"`
	Skipped    []backtest.Skip         `json:"skipped,omitempty"`
}

func jsonResults(res *backtest.Results) jsonOutput {
	out := jsonOutput{
		RunID:   res.RunID,
		Metrics: toJSONMetrics(res.Metrics),
		Results: res.StrategyResults,
		Trades:  res.Trades,
		Skipped: res.Skipped,
	}
	for _, m := range res.ByStrategy {
		out.ByStrategy = append(out.ByStrategy, toJSONMetrics(m))
	}
	return out
}

func toJSONMetrics(m domain.Metrics) jsonMetrics {
	return jsonMetrics{
		StrategyID:           m.StrategyID,
		TotalTrades:          m.TotalTrades,
		WinningTrades:        m.WinningTrades,
		LosingTrades:         m.LosingTrades,
		WinRate:              m.WinRate,
		TotalReturn:          m.TotalReturn,
		AvgWin:               m.AvgWin,
		AvgLoss:              m.AvgLoss,
		ProfitFactor:         reporting.FormatRatio(m.ProfitFactor),
		MaxDrawdown:          m.MaxDrawdown,
		RunningDrawdown:      m.RunningDrawdown,
		MaxConsecutiveLosses: m.MaxConsecutiveLosses,
		FinalCapital:         m.FinalCapital,
	}
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
