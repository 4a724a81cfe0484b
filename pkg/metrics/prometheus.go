// Package metrics provides Prometheus metrics for the crowdguess game service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pointsBuckets spans the 1..100 rarity score range.
var pointsBuckets = []float64{1, 5, 10, 25, 50, 75, 90, 99, 100} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the game service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Game
	guesses        *prometheus.CounterVec
	roundsStarted  prometheus.Counter
	roundsResolved *prometheus.CounterVec
	pointsAwarded  prometheus.Histogram
	activeSessions prometheus.Gauge

	// Leaderboard store
	leaderboardUpdates prometheus.Counter
	leaderboardErrors  prometheus.Counter
	totalPlayers       prometheus.Gauge
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	// Content feed
	feedFetchLatency prometheus.Histogram
	feedErrors       prometheus.Counter

	// Awards
	awardsGranted *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "crowdguess",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	m.guesses = m.counterVec("guesses_total", "Guesses submitted, by outcome (match, miss, empty, resolved)", "outcome")
	m.roundsStarted = m.counter("rounds_started_total", "Rounds started")
	m.roundsResolved = m.counterVec("rounds_resolved_total", "Rounds resolved, by final status", "status")
	m.pointsAwarded = m.histogram("points_awarded", "Distribution of rarity points awarded per matched round", pointsBuckets)
	m.activeSessions = m.gauge("active_sessions", "Sessions currently held in memory")

	m.leaderboardUpdates = m.counter("leaderboard_updates_total", "Successful cumulative score increments")
	m.leaderboardErrors = m.counter("leaderboard_errors_total", "Failed leaderboard store operations")
	m.totalPlayers = m.gauge("total_players", "Players with a leaderboard record")
	m.storeUpdateLatency = m.histogram("store_update_latency_milliseconds", "Leaderboard store increment latency in milliseconds", m.histogramBuckets)
	m.storeQueryLatency = m.histogram("store_query_latency_milliseconds", "Leaderboard store read latency in milliseconds", m.histogramBuckets)

	m.feedFetchLatency = m.histogram("feed_fetch_latency_milliseconds", "Content feed question fetch latency in milliseconds", m.histogramBuckets)
	m.feedErrors = m.counter("feed_errors_total", "Content feed fetch failures")

	m.awardsGranted = m.counterVec("awards_granted_total", "Badges granted, by badge", "badge")

	m.queueSize = m.gauge("queue_size", "Award events waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Award queue capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Award events enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Award events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Award events rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Award workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Award event processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Award events that failed processing")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP error responses by endpoint", "endpoint", "method", "error_type")
	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordGuess counts a guess by outcome.
func RecordGuess(outcome string) {
	globalManager.guesses.WithLabelValues(outcome).Inc()
}

// RecordRoundStarted counts a new round.
func RecordRoundStarted() {
	globalManager.roundsStarted.Inc()
}

// RecordRoundResolved counts a resolved round by its final status.
func RecordRoundResolved(status string) {
	globalManager.roundsResolved.WithLabelValues(status).Inc()
}

// RecordPointsAwarded observes the points awarded for a matched round.
func RecordPointsAwarded(points int) {
	globalManager.pointsAwarded.Observe(float64(points))
}

// UpdateActiveSessions sets the active session gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordLeaderboardUpdate increments the leaderboard updates counter.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// RecordLeaderboardError increments the leaderboard errors counter.
func RecordLeaderboardError() {
	globalManager.leaderboardErrors.Inc()
}

// UpdateTotalPlayers sets the number of ranked players.
func UpdateTotalPlayers(count int) {
	globalManager.totalPlayers.Set(float64(count))
}

// RecordStoreUpdateLatency records store increment latency in milliseconds.
func RecordStoreUpdateLatency(latencyMs float64) {
	globalManager.storeUpdateLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records store read latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordFeedFetchLatency records a content feed fetch in milliseconds.
func RecordFeedFetchLatency(latencyMs float64) {
	globalManager.feedFetchLatency.Observe(latencyMs)
}

// RecordFeedError increments the feed error counter.
func RecordFeedError() {
	globalManager.feedErrors.Inc()
}

// RecordAwardGranted counts a granted badge.
func RecordAwardGranted(badge string) {
	globalManager.awardsGranted.WithLabelValues(badge).Inc()
}

// UpdateQueueSize sets the queue backlog gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueued counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeued counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records award processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error raised inside a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes the average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
