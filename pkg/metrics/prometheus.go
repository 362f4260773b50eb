// Package metrics provides Prometheus metrics for the score processing engine.
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

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Run Metrics - One full refresh: fetch, process, publish
	runsTotal       prometheus.Counter
	runFailures     prometheus.Counter
	runDuration     prometheus.Histogram
	lastRunUnix     prometheus.Gauge
	lastRunDuration prometheus.Gauge

	// Fetch Metrics - Backend snapshot retrieval
	fetchRequests prometheus.Counter
	fetchErrors   prometheus.Counter
	fetchDuration prometheus.Histogram

	// Processing Scale Metrics - Size of the published state
	chartsTracked    prometheus.Gauge
	resultsProcessed prometheus.Gauge
	battlesReplayed  prometheus.Gauge
	profilesTracked  prometheus.Gauge
	rankedPlayers    prometheus.Gauge
	resultsSkipped   prometheus.Gauge

	// Snapshot Store Metrics - Ranking baseline persistence
	snapshotReads       prometheus.Counter
	snapshotWrites      prometheus.Counter
	snapshotReadErrors  prometheus.Counter
	snapshotWriteErrors prometheus.Counter

	// Refresh Queue Metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueRejections  prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "pumptrack",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Run Metrics
	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of completed refresh runs",
	})

	m.runFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_failures_total",
		Help:      "Total number of refresh runs that failed",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of full refresh run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_unix",
		Help:      "Unix timestamp of the last successful refresh run",
	})

	m.lastRunDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_duration_milliseconds",
		Help:      "Duration of the last successful refresh run in milliseconds",
	})

	// Fetch Metrics
	m.fetchRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_requests_total",
		Help:      "Total number of backend snapshot fetches",
	})

	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_errors_total",
		Help:      "Total number of failed backend snapshot fetches",
	})

	m.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_duration_milliseconds",
		Help:      "Histogram of backend fetch duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Processing Scale Metrics
	m.chartsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "charts_tracked",
		Help:      "Number of charts in the current published state",
	})

	m.resultsProcessed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_processed",
		Help:      "Number of results processed in the last run",
	})

	m.battlesReplayed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "battles_replayed",
		Help:      "Number of battles replayed in the last run",
	})

	m.profilesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "profiles_tracked",
		Help:      "Number of player profiles in the current published state",
	})

	m.rankedPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranked_players",
		Help:      "Number of players in the published ranking",
	})

	m.resultsSkipped = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_skipped",
		Help:      "Number of unresolvable result records skipped in the last run",
	})

	// Snapshot Store Metrics
	m.snapshotReads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_reads_total",
		Help:      "Total number of ranking snapshot reads",
	})

	m.snapshotWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_writes_total",
		Help:      "Total number of ranking snapshot writes",
	})

	m.snapshotReadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_read_errors_total",
		Help:      "Total number of failed ranking snapshot reads",
	})

	m.snapshotWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_write_errors_total",
		Help:      "Total number of failed ranking snapshot writes",
	})

	// Refresh Queue Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Current size of the refresh request queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Maximum refresh request queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_utilization_ratio",
		Help:      "Refresh queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_enqueue_total",
		Help:      "Total number of refresh requests enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_dequeue_total",
		Help:      "Total number of refresh requests dequeued",
	})

	m.queueRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_rejections_total",
		Help:      "Total number of refresh requests rejected because the queue was full",
	})

	// HTTP Performance Metrics
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

	// System Performance Metrics
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

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Run Metrics Functions.

// RecordRun increments the completed runs counter.
func RecordRun() {
	globalManager.runsTotal.Inc()
}

// RecordRunFailure increments the failed runs counter.
func RecordRunFailure() {
	globalManager.runFailures.Inc()
}

// RecordRunDuration records one full run duration in milliseconds.
func RecordRunDuration(durationMs float64) {
	globalManager.runDuration.Observe(durationMs)
	globalManager.lastRunDuration.Set(durationMs)
}

// UpdateLastRunUnix sets the timestamp of the last successful run.
func UpdateLastRunUnix(unix int64) {
	globalManager.lastRunUnix.Set(float64(unix))
}

// Fetch Metrics Functions.

// RecordFetch increments the fetch counter.
func RecordFetch() {
	globalManager.fetchRequests.Inc()
}

// RecordFetchError increments the fetch error counter.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// RecordFetchDuration records backend fetch duration in milliseconds.
func RecordFetchDuration(durationMs float64) {
	globalManager.fetchDuration.Observe(durationMs)
}

// Processing Scale Metrics Functions.

// UpdateChartsTracked sets the number of charts in the published state.
func UpdateChartsTracked(count int) {
	globalManager.chartsTracked.Set(float64(count))
}

// UpdateResultsProcessed sets the number of results processed in the last run.
func UpdateResultsProcessed(count int) {
	globalManager.resultsProcessed.Set(float64(count))
}

// UpdateBattlesReplayed sets the number of battles replayed in the last run.
func UpdateBattlesReplayed(count int) {
	globalManager.battlesReplayed.Set(float64(count))
}

// UpdateProfilesTracked sets the number of profiles in the published state.
func UpdateProfilesTracked(count int) {
	globalManager.profilesTracked.Set(float64(count))
}

// UpdateRankedPlayers sets the number of players in the published ranking.
func UpdateRankedPlayers(count int) {
	globalManager.rankedPlayers.Set(float64(count))
}

// UpdateResultsSkipped sets the number of skipped records from the last run.
func UpdateResultsSkipped(count int) {
	globalManager.resultsSkipped.Set(float64(count))
}

// Snapshot Store Metrics Functions.

// RecordSnapshotRead increments the snapshot read counter.
func RecordSnapshotRead() {
	globalManager.snapshotReads.Inc()
}

// RecordSnapshotWrite increments the snapshot write counter.
func RecordSnapshotWrite() {
	globalManager.snapshotWrites.Inc()
}

// RecordSnapshotReadError increments the snapshot read error counter.
func RecordSnapshotReadError() {
	globalManager.snapshotReadErrors.Inc()
}

// RecordSnapshotWriteError increments the snapshot write error counter.
func RecordSnapshotWriteError() {
	globalManager.snapshotWriteErrors.Inc()
}

// Refresh Queue Metrics Functions.

// UpdateQueueSize sets the current refresh queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum refresh queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the refresh queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueRejection increments the queue rejection counter.
func RecordQueueRejection() {
	globalManager.queueRejections.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
