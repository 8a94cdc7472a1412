// Package metrics provides Prometheus metrics for the driver ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ranking
	cohortsRanked       prometheus.Counter
	driversRanked       prometheus.Counter
	driversIneligible   *prometheus.CounterVec
	warnings            *prometheus.CounterVec
	rankingLatency      prometheus.Histogram
	invariantViolations prometheus.Counter
	cohortSize          prometheus.Histogram

	// Submissions and jobs
	submissions          prometheus.Counter
	submissionsDuplicate prometheus.Counter
	jobs                 *prometheus.CounterVec
	batchItems           *prometheus.CounterVec

	// Repository
	cohortsStored prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
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

	// System
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Gauge

	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec
	errorsBySeverity  *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "driverrank",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.cohortsRanked = m.counter("cohorts_ranked_total", "Total number of cohorts ranked")
	m.driversRanked = m.counter("drivers_ranked_total", "Total number of eligible drivers ranked")
	m.driversIneligible = m.counterVec("drivers_ineligible_total", "Drivers excluded from ranking by reason", "reason")
	m.warnings = m.counterVec("normalization_warnings_total", "Normalization warnings by code", "code")
	m.rankingLatency = m.histogram("ranking_latency_milliseconds", "Time to rank one cohort in milliseconds", m.histogramBuckets)
	m.invariantViolations = m.counter("invariant_violations_total", "Cohorts rejected because an internal invariant did not hold")
	m.cohortSize = m.histogram("cohort_size_records", "Number of records per ranked cohort",
		prometheus.ExponentialBuckets(1, 2, 12)) //nolint:mnd // 1..2048 records

	m.submissions = m.counter("submissions_total", "Cohort submissions accepted for asynchronous ranking")
	m.submissionsDuplicate = m.counter("submissions_duplicate_total", "Cohort submissions recognised as duplicates")
	m.jobs = m.counterVec("jobs_total", "Finished ranking jobs by status", "status")
	m.batchItems = m.counterVec("batch_items_total", "Batch ranking items by outcome", "outcome")

	m.cohortsStored = m.gauge("cohorts_stored", "Number of cohorts with a stored ranking")

	m.queueSize = m.gauge("queue_size", "Current number of queued ranking jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued ranking jobs")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Ranking jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Ranking jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Ranking jobs rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Number of ranking workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time a worker spends on one job in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that failed in a worker")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemory = m.gauge("system_memory_bytes", "Heap bytes allocated by the process")
	m.systemGoroutines = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPause = m.gauge("system_gc_pause_milliseconds", "Average GC pause in milliseconds")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")
	m.errorsByEndpoint = m.counterVec("http_errors_total", "HTTP error responses by endpoint, method and type",
		"endpoint", "method", "type")
	m.errorsBySeverity = m.counterVec("errors_by_severity_total", "Errors by type and severity", "type", "severity")
}

// Ranking

// RecordCohortRanked records one ranked cohort.
func RecordCohortRanked(records, ranked int, latencyMs float64) {
	globalManager.cohortsRanked.Inc()
	globalManager.driversRanked.Add(float64(ranked))
	globalManager.cohortSize.Observe(float64(records))
	globalManager.rankingLatency.Observe(latencyMs)
}

// RecordIneligible counts one excluded driver.
func RecordIneligible(reason string) {
	globalManager.driversIneligible.WithLabelValues(reason).Inc()
}

// RecordWarning counts one normalization warning.
func RecordWarning(code string) {
	globalManager.warnings.WithLabelValues(code).Inc()
}

// RecordInvariantViolation counts a cohort that failed with an invariant error.
func RecordInvariantViolation() {
	globalManager.invariantViolations.Inc()
}

// Submissions and jobs

func RecordSubmission() {
	globalManager.submissions.Inc()
}

func RecordSubmissionDuplicate() {
	globalManager.submissionsDuplicate.Inc()
}

// RecordJob counts a job that reached a terminal status.
func RecordJob(status string) {
	globalManager.jobs.WithLabelValues(status).Inc()
}

// RecordBatchItem counts one batch item by outcome ("ok" or "failed").
func RecordBatchItem(outcome string) {
	globalManager.batchItems.WithLabelValues(outcome).Inc()
}

// Repository

func UpdateCohortsStored(count int) {
	globalManager.cohortsStored.Set(float64(count))
}

// Queue

// UpdateQueueSize sets the queue depth and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Workers

func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutines.Set(float64(count))
}

func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPause.Set(ms)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsBySeverity.WithLabelValues(errorType, severity).Inc()
}

// GetRegistry returns the registry every service metric is registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
