// Package metrics provides Prometheus metrics for the Calcutta standings service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Standings engine
	standingsComputed  *prometheus.CounterVec
	standingsLatency   *prometheus.HistogramVec
	tieGroups          prometheus.Counter
	payoutCentsPooled  prometheus.Counter
	standingsEntries   prometheus.Gauge
	standingsNotFounds prometheus.Counter

	// Progress events
	eventsAccepted  prometheus.Counter
	eventsDuplicate prometheus.Counter
	progressApplied prometheus.Counter
	progressNoop    prometheus.Counter
	progressErrors  prometheus.Counter

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram

	// Repository
	poolsLoaded prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "calcutta",
		subsystem:        "standings",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		enabled:          true,
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.standingsComputed = m.counterVec("computations_total",
		"Total number of leaderboards computed, by totals mode (current or capped)", "mode")
	m.standingsLatency = m.histogramVec("compute_duration_milliseconds",
		"Leaderboard computation latency in milliseconds", "mode")
	m.tieGroups = m.counter("tie_groups_total", "Total number of tie groups (size >= 2) produced")
	m.payoutCentsPooled = m.counter("payout_cents_distributed_total",
		"Total payout cents distributed across computed leaderboards")
	m.standingsEntries = m.gauge("last_entry_count", "Entry count of the most recently computed leaderboard")
	m.standingsNotFounds = m.counter("lookups_not_found_total", "Total pool or entry lookups that found nothing")

	m.eventsAccepted = m.counter("events_accepted_total", "Total progress events accepted for processing")
	m.eventsDuplicate = m.counter("events_duplicate_total", "Total duplicate progress events detected")
	m.progressApplied = m.counter("progress_applied_total", "Total progress updates that changed a team")
	m.progressNoop = m.counter("progress_noop_total", "Total progress updates that changed nothing")
	m.progressErrors = m.counter("progress_errors_total", "Total progress updates that failed")

	m.queueSize = m.gauge("queue_size", "Current size of the progress event queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum progress event queue capacity")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Total enqueue failures by reason", "reason")
	m.workerCount = m.gauge("worker_count", "Current number of progress workers")
	m.workerLatency = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_processing_latency_milliseconds",
		Help:        "Progress event processing latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.poolsLoaded = m.gauge("pools_loaded", "Number of pools held by the repository")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Total errors by component and type", "component", "error_type")
}

// ObserveStandings records one leaderboard computation.
func (m *Manager) ObserveStandings(mode string, latencyMs float64, entries, tieGroups int, cents int64) {
	if !m.enabled {
		return
	}
	m.standingsComputed.WithLabelValues(mode).Inc()
	m.standingsLatency.WithLabelValues(mode).Observe(latencyMs)
	m.standingsEntries.Set(float64(entries))
	m.tieGroups.Add(float64(tieGroups))
	if cents > 0 {
		m.payoutCentsPooled.Add(float64(cents))
	}
}

// RecordStandings records one leaderboard computation on the global manager.
func RecordStandings(mode string, latencyMs float64, entries, tieGroups int, cents int64) {
	globalManager.ObserveStandings(mode, latencyMs, entries, tieGroups, cents)
}

// RecordLookupNotFound increments the not-found lookup counter.
func RecordLookupNotFound() {
	if globalManager.enabled {
		globalManager.standingsNotFounds.Inc()
	}
}

// RecordEventAccepted increments the accepted events counter.
func RecordEventAccepted() {
	if globalManager.enabled {
		globalManager.eventsAccepted.Inc()
	}
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	if globalManager.enabled {
		globalManager.eventsDuplicate.Inc()
	}
}

// RecordProgressApplied counts a progress update; changed=false counts a no-op.
func RecordProgressApplied(changed bool) {
	if !globalManager.enabled {
		return
	}
	if changed {
		globalManager.progressApplied.Inc()
		return
	}
	globalManager.progressNoop.Inc()
}

// RecordProgressError increments the failed progress counter.
func RecordProgressError() {
	if globalManager.enabled {
		globalManager.progressErrors.Inc()
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records worker processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerLatency.Observe(latencyMs)
	}
}

// UpdatePoolsLoaded sets the number of pools in the repository.
func UpdatePoolsLoaded(count int) {
	if globalManager.enabled {
		globalManager.poolsLoaded.Set(float64(count))
	}
}

// RecordHTTPRequest records an HTTP request with its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the custom registry served by /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
