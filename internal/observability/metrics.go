// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "token_strategy_lab"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Evaluation metrics
	SnapshotsEvaluated prometheus.Counter
	PolicyDecisions    *prometheus.CounterVec

	// Ledger metrics
	TradesSimulated *prometheus.CounterVec
	TradesSkipped   *prometheus.CounterVec
	LedgerCapital   prometheus.Gauge

	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered with the default registerer.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a Metrics instance registered with reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		SnapshotsEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "snapshots_evaluated_total",
			Help:      "Total number of asset snapshots evaluated against all policies",
		}),
		PolicyDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "decisions_total",
			Help:      "Total number of policy decisions by strategy and outcome",
		}, []string{"strategy", "decision"}),

		TradesSimulated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "trades_simulated_total",
			Help:      "Total number of trades appended to a ledger by strategy",
		}, []string{"strategy"}),
		TradesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "trades_skipped_total",
			Help:      "Total number of accepted snapshots that could not be simulated",
		}, []string{"strategy", "reason"}),
		LedgerCapital: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "capital",
			Help:      "Capital after the most recent append",
		}),

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtest runs by status",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "run_duration_seconds",
			Help:      "Backtest run duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Store call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of failed store calls",
		}, []string{"store", "operation"}),

		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful backtest run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordDBQuery records store call metrics.
func RecordDBQuery(store, operation string, seconds float64, err error) {
	DefaultMetrics.recordDBQuery(store, operation, seconds, err)
}

// RecordRun records a finished backtest run.
func RecordRun(status string, durationSeconds float64) {
	DefaultMetrics.recordRun(status, durationSeconds)
}

func (m *Metrics) recordDBQuery(store, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(store, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(store, operation).Inc()
	}
}

func (m *Metrics) recordRun(status string, durationSeconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSeconds)
}
