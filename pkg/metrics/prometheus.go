// Package metrics provides Prometheus metrics for the news impact service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring pipeline
	observations          prometheus.Counter
	consolidatedItems     prometheus.Counter
	duplicatesMerged      prometheus.Counter
	scoringPasses         prometheus.Counter
	scoringPassLatency    prometheus.Histogram
	itemsByCategory       *prometheus.CounterVec
	classificationMisses  prometheus.Counter
	degenerateNormalized  prometheus.Counter
	lastPassResults       prometheus.Gauge
	historyPasses         prometheus.Gauge
	itemScoringLatency    prometheus.Histogram
	inlineScoringFallback prometheus.Counter

	// Weight store
	categoryWeight      *prometheus.GaugeVec
	weightPersistErrors prometheus.Counter
	weightLoadFallbacks prometheus.Counter

	// Adaptive learner
	learnerRuns     *prometheus.CounterVec
	learnerResolved prometheus.Gauge

	// Performance log
	performanceAppended prometheus.Counter
	performanceResolved prometheus.Counter
	performanceErrors   *prometheus.CounterVec

	// Feed collector
	collectorItems  *prometheus.CounterVec
	collectorErrors *prometheus.CounterVec

	// Queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueUtilization        prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorLatency      *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "impact",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
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

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	// Scoring pipeline
	m.observations = m.counter("observations_total", "Raw headline observations received by scoring passes")
	m.consolidatedItems = m.counter("consolidated_items_total", "Distinct headlines left after consolidation")
	m.duplicatesMerged = m.counter("duplicates_merged_total", "Observations merged into an already seen headline")
	m.scoringPasses = m.counter("scoring_passes_total", "Completed scoring passes")
	m.scoringPassLatency = m.histogram("scoring_pass_latency_milliseconds", "End-to-end latency of a scoring pass", m.histogramBuckets)
	m.itemsByCategory = m.counterVec("items_by_category_total", "Scored items per impact category", "category")
	m.classificationMisses = m.counter("classification_fallback_total", "Headlines that matched no keyword and used the fallback category")
	m.degenerateNormalized = m.counter("normalization_degenerate_total", "Passes whose maximum raw score was not positive")
	m.lastPassResults = m.gauge("last_pass_results", "Number of results produced by the latest pass")
	m.historyPasses = m.gauge("history_passes", "Number of passes kept in the history store")
	m.itemScoringLatency = m.histogram("item_scoring_latency_milliseconds", "Latency of scoring a single consolidated item", m.histogramBuckets)
	m.inlineScoringFallback = m.counter("inline_scoring_fallback_total", "Items scored inline because the worker queue rejected them")

	// Weight store
	m.categoryWeight = m.gaugeVec("category_weight", "Current weight of each impact category", "category")
	m.weightPersistErrors = m.counter("weight_persist_errors_total", "Failed attempts to persist the weight table")
	m.weightLoadFallbacks = m.counter("weight_load_fallback_total", "Weight loads that fell back to the default table")

	// Adaptive learner
	m.learnerRuns = m.counterVec("learner_runs_total", "Adaptive learner runs by result", "result")
	m.learnerResolved = m.gauge("learner_resolved_records", "Resolved performance records seen by the latest learner run")

	// Performance log
	m.performanceAppended = m.counter("performance_records_appended_total", "Predictions appended to the performance log")
	m.performanceResolved = m.counter("performance_records_resolved_total", "Pending predictions resolved with an actual outcome")
	m.performanceErrors = m.counterVec("performance_log_errors_total", "Performance log failures by operation", "op")

	// Feed collector
	m.collectorItems = m.counterVec("collector_observations_total", "Observations produced per feed", "feed")
	m.collectorErrors = m.counterVec("collector_errors_total", "Feed fetch failures per feed", "feed")

	// Queue and workers
	m.queueSize = m.gauge("queue_size", "Current number of scoring tasks waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of tasks enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of tasks dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")
	m.workerCount = m.gauge("worker_count", "Number of scoring workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker task processing latency", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	// HTTP
	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	// Errors
	m.errorsByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	// System
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordPass records one completed scoring pass.
func RecordPass(observations, items, results int, latencyMs float64) {
	globalManager.observations.Add(float64(observations))
	globalManager.consolidatedItems.Add(float64(items))
	if merged := observations - items; merged > 0 {
		globalManager.duplicatesMerged.Add(float64(merged))
	}
	globalManager.scoringPasses.Inc()
	globalManager.scoringPassLatency.Observe(latencyMs)
	globalManager.lastPassResults.Set(float64(results))
}

// RecordCategory counts one scored item in category.
func RecordCategory(category string, fallback bool) {
	globalManager.itemsByCategory.WithLabelValues(category).Inc()
	if fallback {
		globalManager.classificationMisses.Inc()
	}
}

// RecordDegenerateNormalization counts a pass whose max raw score was <= 0.
func RecordDegenerateNormalization() {
	globalManager.degenerateNormalized.Inc()
}

// RecordItemScoringLatency records the latency of scoring one item.
func RecordItemScoringLatency(latencyMs float64) {
	globalManager.itemScoringLatency.Observe(latencyMs)
}

// RecordInlineScoringFallback counts an item scored outside the worker pool.
func RecordInlineScoringFallback() {
	globalManager.inlineScoringFallback.Inc()
}

// UpdateHistoryPasses sets the number of passes kept in history.
func UpdateHistoryPasses(count int) {
	globalManager.historyPasses.Set(float64(count))
}

// UpdateCategoryWeights publishes the whole weight table.
func UpdateCategoryWeights(table map[string]float64) {
	for category, weight := range table {
		globalManager.categoryWeight.WithLabelValues(category).Set(weight)
	}
}

// RecordWeightPersistError counts a failed weight persist.
func RecordWeightPersistError() {
	globalManager.weightPersistErrors.Inc()
}

// RecordWeightLoadFallback counts a load that used the default table.
func RecordWeightLoadFallback() {
	globalManager.weightLoadFallbacks.Inc()
}

// RecordLearnerRun counts a learner run; result is applied, skipped or failed.
func RecordLearnerRun(result string, resolved int) {
	globalManager.learnerRuns.WithLabelValues(result).Inc()
	globalManager.learnerResolved.Set(float64(resolved))
}

// RecordPerformanceAppended counts predictions appended to the log.
func RecordPerformanceAppended(n int) {
	globalManager.performanceAppended.Add(float64(n))
}

// RecordPerformanceResolved counts predictions resolved with an outcome.
func RecordPerformanceResolved(n int) {
	globalManager.performanceResolved.Add(float64(n))
}

// RecordPerformanceError counts a performance log failure for op.
func RecordPerformanceError(op string) {
	globalManager.performanceErrors.WithLabelValues(op).Inc()
}

// RecordCollectorItems counts observations produced by feed.
func RecordCollectorItems(feed string, n int) {
	globalManager.collectorItems.WithLabelValues(feed).Add(float64(n))
}

// RecordCollectorError counts a failed fetch of feed.
func RecordCollectorError(feed string) {
	globalManager.collectorErrors.WithLabelValues(feed).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of scoring workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records task processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the duration of an HTTP request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
