// Package metrics provides Prometheus metrics for the competition service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the competition service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Submission pipeline
	submissionsAccepted prometheus.Counter
	submissionsRejected *prometheus.CounterVec
	evaluationsTotal    prometheus.Counter
	scoringLatency      prometheus.Histogram

	// Ledger state
	ledgerSubmissions prometheus.Gauge
	leaderboardUsers  *prometheus.GaugeVec

	// Internal failures (scoring on validated input, ledger write errors)
	internalErrors *prometheus.CounterVec

	// Ledger dumps
	dumpRuns *prometheus.CounterVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stadio",
		subsystem:        "competition",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total number of submissions that passed gating and validation",
	})

	m.submissionsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "submissions_rejected_total",
			Help:      "Total number of rejected submissions by reason",
		},
		[]string{"reason"},
	)

	m.evaluationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluations_total",
		Help:      "Total number of evaluations appended to the ledger",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of validate-and-score latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.ledgerSubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_submissions",
		Help:      "Current number of submissions in the ledger",
	})

	m.leaderboardUsers = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "leaderboard_users",
			Help:      "Number of ranked users per leaderboard",
		},
		[]string{"board"},
	)

	m.internalErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "internal_errors_total",
			Help:      "Total number of internal errors by component",
		},
		[]string{"component"},
	)

	m.dumpRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ledger_dump_runs_total",
			Help:      "Total number of scheduled ledger dumps by stage tag",
		},
		[]string{"stage"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level facade over the global manager.

// RecordSubmissionAccepted increments the accepted-submissions counter.
func RecordSubmissionAccepted() {
	globalManager.submissionsAccepted.Inc()
}

// RecordSubmissionRejected increments the rejected-submissions counter for a reason.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

// RecordEvaluation increments the evaluations counter.
func RecordEvaluation() {
	globalManager.evaluationsTotal.Inc()
}

// RecordScoringLatency observes a validate-and-score latency in milliseconds.
func RecordScoringLatency(ms float64) {
	globalManager.scoringLatency.Observe(ms)
}

// UpdateLedgerSubmissions sets the current submission count gauge.
func UpdateLedgerSubmissions(n int64) {
	globalManager.ledgerSubmissions.Set(float64(n))
}

// UpdateLeaderboardUsers sets the ranked-user gauge for a board.
func UpdateLeaderboardUsers(board string, n int) {
	globalManager.leaderboardUsers.WithLabelValues(board).Set(float64(n))
}

// RecordInternalError increments the internal-error counter for a component.
func RecordInternalError(component string) {
	globalManager.internalErrors.WithLabelValues(component).Inc()
}

// RecordDumpRun increments the dump-run counter for a stage tag.
func RecordDumpRun(stage string) {
	globalManager.dumpRuns.WithLabelValues(stage).Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}
