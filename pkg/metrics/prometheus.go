// Package metrics provides Prometheus metrics for the drift flowing-message engine.
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

// Manager manages all Prometheus metrics for the drift engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - message flow through the engine
	messagesAdmitted  prometheus.Counter
	messagesDuplicate prometheus.Counter
	messagesInvalid   prometheus.Counter
	messagesExpired   prometheus.Counter
	messagesArchived  prometheus.Counter
	staleEvents       prometheus.Counter

	// Admission pacing
	queueDepth       prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueDropped     prometheus.Counter
	drainInterval    prometheus.Histogram

	// Lane allocation
	laneFallbacks prometheus.Counter
	lanesReserved prometheus.Gauge

	// Session state
	activeMessages prometheus.Gauge
	activityLevel  prometheus.Gauge
	admittedSet    prometheus.Gauge
	channelSwitches prometheus.Counter

	// Lifecycle sweep and archive
	sweepDuration   prometheus.Histogram
	archiveEntries  *prometheus.GaugeVec
	archivePruned   prometheus.Counter
	archiveQueryLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "drift",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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

	// Core Business Metrics - what flows through the surface
	m.messagesAdmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "messages_admitted_total",
		Help:      "Total number of messages promoted from the admission queue to active",
	})

	m.messagesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "messages_duplicate_total",
		Help:      "Total number of re-delivered message ids dropped by the admitted set",
	})

	m.messagesInvalid = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "messages_invalid_total",
		Help:      "Total number of malformed messages rejected at the admission boundary",
	})

	m.messagesExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "messages_expired_total",
		Help:      "Total number of messages retired after completing traversal",
	})

	m.messagesArchived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "messages_archived_total",
		Help:      "Total number of expired messages copied into the vibe history",
	})

	m.staleEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stale_channel_events_total",
		Help:      "Total number of transport events discarded for a channel no longer active",
	})

	// Admission pacing
	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_depth",
		Help:      "Current depth of the admission queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum capacity of the admission queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Admission queue utilization ratio (depth / capacity)",
	})

	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dropped_total",
		Help:      "Total number of messages dropped because the admission queue was full",
	})

	m.drainInterval = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "drain_interval_milliseconds",
		Help:      "Adaptive interval between admission drains in milliseconds",
		Buckets:   []float64{25, 50, 75, 100, 125, 150, 175, 200},
	})

	// Lane allocation
	m.laneFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lane_fallbacks_total",
		Help:      "Total number of allocations that fell back to a lane busier than the idle threshold",
	})

	m.lanesReserved = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lanes_reserved",
		Help:      "Number of lanes with a live reservation",
	})

	// Session state
	m.activeMessages = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_messages",
		Help:      "Number of messages currently traversing the surface",
	})

	m.activityLevel = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activity_level",
		Help:      "Current activity level (1-5) derived from recent arrival rate",
	})

	m.admittedSet = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "admitted_set_size",
		Help:      "Number of message ids in the session's admitted set",
	})

	m.channelSwitches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "channel_switches_total",
		Help:      "Total number of channel switches (each resets session state)",
	})

	// Lifecycle sweep and archive
	m.sweepDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sweep_duration_milliseconds",
		Help:      "Lifecycle sweep duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.archiveEntries = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "archive_entries",
			Help:      "Number of entries in the vibe history per channel",
		},
		[]string{"channel"},
	)

	m.archivePruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_pruned_total",
		Help:      "Total number of history entries dropped past the retention horizon",
	})

	m.archiveQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_query_latency_milliseconds",
		Help:      "Vibe history query latency in milliseconds",
		Buckets:   m.histogramBuckets,
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

	// Error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
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
}

// RecordMessageAdmitted increments the admitted messages counter.
func RecordMessageAdmitted() {
	globalManager.messagesAdmitted.Inc()
}

// RecordMessageDuplicate increments the duplicate messages counter.
func RecordMessageDuplicate() {
	globalManager.messagesDuplicate.Inc()
}

// RecordMessageInvalid increments the invalid messages counter.
func RecordMessageInvalid() {
	globalManager.messagesInvalid.Inc()
}

// RecordMessageExpired increments the expired messages counter.
func RecordMessageExpired() {
	globalManager.messagesExpired.Inc()
}

// RecordMessageArchived increments the archived messages counter.
func RecordMessageArchived() {
	globalManager.messagesArchived.Inc()
}

// RecordStaleEvent increments the stale channel event counter.
func RecordStaleEvent() {
	globalManager.staleEvents.Inc()
}

// UpdateQueueDepth sets the current admission queue depth.
func UpdateQueueDepth(depth int) {
	globalManager.queueDepth.Set(float64(depth))
}

// UpdateQueueCapacity sets the maximum admission queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the admission queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueDropped increments the queue-full drop counter.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// RecordDrainInterval records the adaptive drain interval in milliseconds.
func RecordDrainInterval(intervalMs float64) {
	globalManager.drainInterval.Observe(intervalMs)
}

// RecordLaneFallback increments the allocator starvation fallback counter.
func RecordLaneFallback() {
	globalManager.laneFallbacks.Inc()
}

// UpdateLanesReserved sets the number of lanes with live reservations.
func UpdateLanesReserved(count int) {
	globalManager.lanesReserved.Set(float64(count))
}

// UpdateActiveMessages sets the number of messages currently in flight.
func UpdateActiveMessages(count int) {
	globalManager.activeMessages.Set(float64(count))
}

// UpdateActivityLevel sets the current activity level gauge.
func UpdateActivityLevel(level int) {
	globalManager.activityLevel.Set(float64(level))
}

// UpdateAdmittedSetSize sets the size of the session's admitted set.
func UpdateAdmittedSetSize(size int64) {
	globalManager.admittedSet.Set(float64(size))
}

// RecordChannelSwitch increments the channel switch counter.
func RecordChannelSwitch() {
	globalManager.channelSwitches.Inc()
}

// RecordSweepDuration records a lifecycle sweep duration in milliseconds.
func RecordSweepDuration(durationMs float64) {
	globalManager.sweepDuration.Observe(durationMs)
}

// UpdateArchiveEntries sets the vibe history size for a channel.
func UpdateArchiveEntries(channel string, count int) {
	globalManager.archiveEntries.WithLabelValues(channel).Set(float64(count))
}

// RecordArchivePruned adds to the pruned history entry counter.
func RecordArchivePruned(count int) {
	globalManager.archivePruned.Add(float64(count))
}

// RecordArchiveQueryLatency records a vibe history query latency in milliseconds.
func RecordArchiveQueryLatency(latencyMs float64) {
	globalManager.archiveQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
