// Package metrics provides Prometheus metrics for the QTE session service.
package metrics

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	subsystem              = "session"
	defaultRefreshInterval = 10 * time.Second
)

// Completion buckets cover prompt windows from a fraction of a second to several seconds.
var completionBuckets = []float64{0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 3, 5, 10} //nolint:gochecknoglobals // fixed bucket layout

// Latency buckets are in milliseconds; commands run within one frame.
var defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 16, 25, 50, 100, 250, 1000} //nolint:gochecknoglobals // fixed bucket layout

// Outcome labels for the resolved counter.
const (
	ResultSuccess    = "success"
	ResultWrongInput = "wrong_input"
	ResultTimeout    = "timeout"
)

// Manager manages all Prometheus metrics for the QTE service.
type Manager struct {
	namespace       string
	latencyBuckets  []float64
	refreshInterval time.Duration
	registry        prometheus.Registerer

	// Gameplay
	qteStarted        prometheus.Counter
	qteResolved       *prometheus.CounterVec
	qtePerfect        prometheus.Counter
	qteCancelled      prometheus.Counter
	qteActive         prometheus.Gauge
	qteCompletionTime prometheus.Histogram

	// Input routing
	inputPresses     *prometheus.CounterVec
	inputDuplicate   prometheus.Counter
	inputRateLimited prometheus.Counter

	// Command queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// HTTP and stream
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	streamClients       prometheus.Gauge

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "qte",
		latencyBuckets:  defaultLatencyBuckets,
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.qteStarted = auto.NewCounter(m.counterOpts("started_total", "Total number of quick time events started"))
	m.qteResolved = auto.NewCounterVec(
		m.counterOpts("resolved_total", "Total number of quick time events resolved by result"),
		[]string{"result"},
	)
	m.qtePerfect = auto.NewCounter(m.counterOpts("perfect_total", "Total number of successes inside the perfect window"))
	m.qteCancelled = auto.NewCounter(m.counterOpts("cancelled_total", "Total number of quick time events cancelled without outcome"))
	m.qteActive = auto.NewGauge(m.gaugeOpts("active", "Current number of registered quick time events"))
	m.qteCompletionTime = auto.NewHistogram(m.histogramOpts(
		"completion_seconds", "Elapsed seconds at resolution", completionBuckets))

	m.inputPresses = auto.NewCounterVec(
		m.counterOpts("input_presses_total", "Total number of key presses routed to the dispatcher"),
		[]string{"consumed"},
	)
	m.inputDuplicate = auto.NewCounter(m.counterOpts("input_duplicate_total", "Total number of key presses dropped as duplicates"))
	m.inputRateLimited = auto.NewCounter(m.counterOpts("input_rate_limited_total", "Total number of key presses rejected by the rate limiter"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the command queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum capacity of the command queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Command queue utilization ratio (0-1)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of commands enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of commands dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of rejected enqueue attempts"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts(
		"queue_processing_latency_milliseconds", "Time a command waited in the queue in milliseconds", m.latencyBuckets))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.streamClients = auto.NewGauge(m.gaugeOpts("stream_clients", "Current number of connected stream clients"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component and error type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Collect refreshes the system gauges every refresh interval until ctx is done.
func (m *Manager) Collect(ctx context.Context) {
	m.collect(ctx, m.refreshInterval)
}

func (m *Manager) collect(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		m.sampleSystem()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Manager) sampleSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.Alloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// StartSystemCollector samples the runtime in the background every interval.
// A non-positive interval keeps the default.
func StartSystemCollector(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = globalManager.refreshInterval
	}
	go globalManager.collect(ctx, every)
}

// RecordQTEStarted increments the started counter.
func RecordQTEStarted() {
	globalManager.qteStarted.Inc()
}

// RecordQTEResolved records a resolution with its result label and completion time.
func RecordQTEResolved(result string, perfect bool, completion time.Duration) {
	globalManager.qteResolved.WithLabelValues(result).Inc()
	if perfect {
		globalManager.qtePerfect.Inc()
	}
	globalManager.qteCompletionTime.Observe(completion.Seconds())
}

// RecordQTECancelled increments the cancelled counter.
func RecordQTECancelled() {
	globalManager.qteCancelled.Inc()
}

// UpdateActiveQTEs sets the number of registered instances.
func UpdateActiveQTEs(count int) {
	globalManager.qteActive.Set(float64(count))
}

// RecordInputPress counts a routed key press.
func RecordInputPress(consumed bool) {
	globalManager.inputPresses.WithLabelValues(strconv.FormatBool(consumed)).Inc()
}

// RecordInputDuplicate counts a press dropped by press id deduplication.
func RecordInputDuplicate() {
	globalManager.inputDuplicate.Inc()
}

// RecordInputRateLimited counts a press rejected by the limiter.
func RecordInputRateLimited() {
	globalManager.inputRateLimited.Inc()
}

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

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateStreamClients sets the number of connected stream clients.
func UpdateStreamClients(count int) {
	globalManager.streamClients.Set(float64(count))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
