// Package metrics provides Prometheus metrics for the voteboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the voteboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Write path
	votesSubmitted     prometheus.Counter
	validationFailures prometheus.Counter
	storeWriteErrors   prometheus.Counter
	storeWriteLatency  prometheus.Histogram

	// Read path
	aggregationPasses   prometheus.Counter
	aggregationErrors   prometheus.Counter
	aggregationDuration prometheus.Histogram
	recordsLoaded       prometheus.Counter
	recordsSkipped      prometheus.Counter

	// Last aggregation pass snapshot
	presenterCount prometheus.Gauge
	evaluatorCount prometheus.Gauge

	// Store state
	storeObjects prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "voteboard",
		subsystem:        "service",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.votesSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_submitted_total",
		Help:      "Total number of vote submissions accepted and persisted",
	})

	m.validationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of submissions rejected by validation",
	})

	m.storeWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_errors_total",
		Help:      "Total number of failed vote record writes to the blob store",
	})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Histogram of blob store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.aggregationPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_passes_total",
		Help:      "Total number of completed aggregation passes",
	})

	m.aggregationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_errors_total",
		Help:      "Total number of aggregation passes that failed",
	})

	m.aggregationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_duration_milliseconds",
		Help:      "Histogram of full aggregation pass duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.recordsLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_loaded_total",
		Help:      "Total number of vote records successfully loaded from the store",
	})

	m.recordsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_skipped_total",
		Help:      "Total number of unreadable or undecodable vote records skipped",
	})

	m.presenterCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "presenter_count",
		Help:      "Number of presenters in the most recent aggregation pass",
	})

	m.evaluatorCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluator_count",
		Help:      "Number of distinct evaluators in the most recent aggregation pass",
	})

	m.storeObjects = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_objects",
		Help:      "Number of vote record objects currently in the store namespace",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
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

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordVoteSubmitted increments the accepted submissions counter.
func RecordVoteSubmitted() {
	globalManager.votesSubmitted.Inc()
}

// RecordValidationFailure increments the rejected submissions counter.
func RecordValidationFailure() {
	globalManager.validationFailures.Inc()
}

// RecordStoreWriteError increments the failed store writes counter.
func RecordStoreWriteError() {
	globalManager.storeWriteErrors.Inc()
}

// RecordStoreWriteLatency records a blob store write duration in milliseconds.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// RecordAggregationPass increments the completed aggregation passes counter.
func RecordAggregationPass() {
	globalManager.aggregationPasses.Inc()
}

// RecordAggregationError increments the failed aggregation passes counter.
func RecordAggregationError() {
	globalManager.aggregationErrors.Inc()
}

// RecordAggregationDuration records a full aggregation pass duration in milliseconds.
func RecordAggregationDuration(durationMs float64) {
	globalManager.aggregationDuration.Observe(durationMs)
}

// RecordRecordsLoaded adds to the loaded records counter.
func RecordRecordsLoaded(n int) {
	globalManager.recordsLoaded.Add(float64(n))
}

// RecordRecordSkipped increments the skipped records counter.
func RecordRecordSkipped() {
	globalManager.recordsSkipped.Inc()
}

// UpdatePresenterCount sets the presenter count from the last aggregation pass.
func UpdatePresenterCount(count int) {
	globalManager.presenterCount.Set(float64(count))
}

// UpdateEvaluatorCount sets the evaluator count from the last aggregation pass.
func UpdateEvaluatorCount(count int) {
	globalManager.evaluatorCount.Set(float64(count))
}

// UpdateStoreObjects sets the current number of objects in the store namespace.
func UpdateStoreObjects(count int) {
	globalManager.storeObjects.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the current memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
