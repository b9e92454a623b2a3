// Package metrics provides Prometheus metrics for the skillmatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rank outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid_request"
	OutcomeAborted   = "aborted"
	OutcomeCancelled = "cancelled"
)

// scoreBuckets spans the 0..100 score range in steps of ten.
var scoreBuckets = prometheus.LinearBuckets(0, 10, 11) //nolint:gochecknoglobals // immutable bucket layout

// Manager manages all Prometheus metrics for the skillmatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ranking Metrics - What really matters for matching
	rankCalls          *prometheus.CounterVec
	rankLatency        prometheus.Histogram
	candidatesScored   prometheus.Counter
	candidatesRejected *prometheus.CounterVec
	scoringWarnings    prometheus.Counter
	matchScores        prometheus.Histogram
	trustScores        prometheus.Histogram
	skillRelations     prometheus.Gauge

	// Job Metrics - Asynchronous ranking
	jobsSubmitted  prometheus.Counter
	jobsDuplicate  prometheus.Counter
	jobsCompleted  prometheus.Counter
	jobsFailed     prometheus.Counter
	jobResultsKept prometheus.Gauge

	// Queue Metrics - Job queue performance
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics - Processing performance
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

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
		namespace:        "skillmatch",
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
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	// Ranking
	m.rankCalls = m.counterVec("rank_calls_total", "Total number of ranking calls by outcome", "outcome")
	m.rankLatency = m.histogram("rank_latency_milliseconds", "Ranking call latency in milliseconds", m.histogramBuckets)
	m.candidatesScored = m.counter("candidates_scored_total", "Total number of candidates that received scores")
	m.candidatesRejected = m.counterVec("candidates_rejected_total", "Total number of candidates excluded from a ranking", "reason")
	m.scoringWarnings = m.counter("scoring_warnings_total", "Total number of non-fatal scoring warnings")
	m.matchScores = m.histogram("match_score", "Distribution of match scores", scoreBuckets)
	m.trustScores = m.histogram("trust_score", "Distribution of trust scores", scoreBuckets)
	m.skillRelations = m.gauge("skill_relations", "Number of skills with configured relations")

	// Jobs
	m.jobsSubmitted = m.counter("jobs_submitted_total", "Total number of ranking jobs accepted")
	m.jobsDuplicate = m.counter("jobs_duplicate_total", "Total number of duplicate job submissions")
	m.jobsCompleted = m.counter("jobs_completed_total", "Total number of ranking jobs completed")
	m.jobsFailed = m.counter("jobs_failed_total", "Total number of ranking jobs that failed")
	m.jobResultsKept = m.gauge("job_results", "Number of job results currently retained")

	// Queue
	m.queueSize = m.gauge("queue_size", "Current size of the job queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum job queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds",
		"Time jobs spend waiting in the queue in milliseconds", m.histogramBuckets)

	// Workers
	m.workerCount = m.gauge("worker_count", "Configured number of job workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently ranking a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of worker errors")

	// HTTP
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	// Errors
	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that resulted in errors", "component", "error_type")

	// System
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Ranking Metrics Functions.

// RecordRankCall records one ranking call with its outcome label and latency.
func RecordRankCall(outcome string, latencyMs float64) {
	globalManager.rankCalls.WithLabelValues(outcome).Inc()
	globalManager.rankLatency.Observe(latencyMs)
}

// RecordCandidateScored records the scores of one ranked candidate.
func RecordCandidateScored(match, trust int) {
	globalManager.candidatesScored.Inc()
	globalManager.matchScores.Observe(float64(match))
	globalManager.trustScores.Observe(float64(trust))
}

// RecordCandidateRejected increments the rejected counter for a reason.
func RecordCandidateRejected(reason string) {
	globalManager.candidatesRejected.WithLabelValues(reason).Inc()
}

// RecordScoringWarning increments the scoring warnings counter.
func RecordScoringWarning() {
	globalManager.scoringWarnings.Inc()
}

// UpdateSkillRelations sets the number of skills with relations.
func UpdateSkillRelations(count int) {
	globalManager.skillRelations.Set(float64(count))
}

// Job Metrics Functions.

// RecordJobSubmitted increments the accepted jobs counter.
func RecordJobSubmitted() {
	globalManager.jobsSubmitted.Inc()
}

// RecordJobDuplicate increments the duplicate jobs counter.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// RecordJobCompleted increments the completed jobs counter.
func RecordJobCompleted() {
	globalManager.jobsCompleted.Inc()
}

// RecordJobFailed increments the failed jobs counter.
func RecordJobFailed() {
	globalManager.jobsFailed.Inc()
}

// UpdateJobResults sets the number of retained job results.
func UpdateJobResults(count int) {
	globalManager.jobResultsKept.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records how long a job waited in the queue.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
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

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
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
