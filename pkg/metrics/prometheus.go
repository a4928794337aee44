// Package metrics provides Prometheus metrics for the retention engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics
	predictions     *prometheus.CounterVec // by source: remote|fallback
	fallbacks       prometheus.Counter
	planGenerations *prometheus.CounterVec // by source: remote|fallback
	sessionExpiries prometheus.Counter
	invalidInputs   prometheus.Counter

	// Remote dependency health
	remoteCallLatency *prometheus.HistogramVec // by target: predict|plan|auth
	remoteCallErrors  *prometheus.CounterVec   // by target

	// Store metrics
	storeRecords prometheus.Gauge
	storeWrites  prometheus.Counter

	// Rescore queue and workers
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueues     prometheus.Counter
	queueDequeues     prometheus.Counter
	queueEnqueueFails prometheus.Counter
	workerCount       prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Cross-cutting error accounting
	errorsByComponent *prometheus.CounterVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "reten",
		subsystem:        "engine",
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
func (m *Manager) initializeMetrics() { //nolint:funlen // metric inventory
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "predictions_total",
		Help: "Total risk assessments produced, by source path",
	}, []string{"source"})

	m.fallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fallbacks_total",
		Help: "Total silent degradations to the heuristic path",
	})

	m.planGenerations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "plan_generations_total",
		Help: "Total retention plans produced, by source path",
	}, []string{"source"})

	m.sessionExpiries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "session_expiries_total",
		Help: "Total sessions invalidated by remote authorization failures",
	})

	m.invalidInputs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "invalid_inputs_total",
		Help: "Total profiles rejected before any remote call",
	})

	m.remoteCallLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "remote_call_latency_milliseconds",
		Help:    "Latency of remote prediction, plan and auth calls",
		Buckets: m.histogramBuckets,
	}, []string{"target"})

	m.remoteCallErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "remote_call_errors_total",
		Help: "Failed remote calls by target",
	}, []string{"target"})

	m.storeRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_records",
		Help: "Employee records currently held by the store",
	})

	m.storeWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "store_writes_total",
		Help: "Write-through persists performed by the store",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_queue_size",
		Help: "Profiles waiting in the rescore queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_queue_capacity",
		Help: "Configured capacity of the rescore queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_queue_utilization",
		Help: "Fill ratio of the rescore queue",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_enqueues_total",
		Help: "Profiles accepted into the rescore queue",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_dequeues_total",
		Help: "Profiles drained from the rescore queue",
	})

	m.queueEnqueueFails = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_enqueue_failures_total",
		Help: "Enqueue attempts refused by backpressure or shutdown",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_worker_count",
		Help: "Workers draining the rescore queue",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "rescore_worker_latency_milliseconds",
		Help:    "Per-profile processing latency in the rescore workers",
		Buckets: m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rescore_worker_errors_total",
		Help: "Profiles the rescore workers failed to process",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration by endpoint, method and status",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_total",
		Help: "Errors by component and kind",
	}, []string{"component", "kind"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_usage_bytes",
		Help: "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutine_count",
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordPrediction counts an assessment produced by the given source path.
func RecordPrediction(source string) {
	globalManager.predictions.WithLabelValues(source).Inc()
}

// RecordFallback counts a silent degradation to the heuristic path.
func RecordFallback() {
	globalManager.fallbacks.Inc()
}

// RecordPlanGeneration counts a retention plan produced by the given source.
func RecordPlanGeneration(source string) {
	globalManager.planGenerations.WithLabelValues(source).Inc()
}

// RecordSessionExpiry counts a session invalidated by the remote service.
func RecordSessionExpiry() {
	globalManager.sessionExpiries.Inc()
}

// RecordInvalidInput counts a profile rejected before scoring.
func RecordInvalidInput() {
	globalManager.invalidInputs.Inc()
}

// RecordRemoteCallLatency records the latency of a remote call.
func RecordRemoteCallLatency(target string, latencyMs float64) {
	globalManager.remoteCallLatency.WithLabelValues(target).Observe(latencyMs)
}

// RecordRemoteCallError counts a failed remote call.
func RecordRemoteCallError(target string) {
	globalManager.remoteCallErrors.WithLabelValues(target).Inc()
}

// UpdateStoreRecords sets the current store size.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordStoreWrite counts a write-through persist.
func RecordStoreWrite() {
	globalManager.storeWrites.Inc()
}

// UpdateQueueSize sets the current rescore queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured rescore queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the rescore queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue counts a drained profile.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError counts a refused enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueFails.Inc()
}

// UpdateWorkerCount sets the rescore worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-profile worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker processing failure.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error for a component.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// UpdateSystemMemoryUsage sets current memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records a GC pause observation.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
