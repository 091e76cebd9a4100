// Package metrics provides Prometheus metrics for the pinlog service.
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
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Session
	workoutsCreated    *prometheus.CounterVec
	validationFailures prometheus.Counter
	unknownKinds       prometheus.Counter
	workoutsReplayed   prometheus.Counter
	sessionWorkouts    prometheus.Gauge
	controllerState    *prometheus.GaugeVec
	geolocationErrors  prometheus.Counter
	submitDuplicates   prometheus.Counter

	// Persistence
	persistenceOps     *prometheus.CounterVec
	persistenceErrors  *prometheus.CounterVec
	persistenceLatency *prometheus.HistogramVec

	// Event loop
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueRejections *prometheus.CounterVec
	loopTaskLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pinlog",
		subsystem:        "session",
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

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.workoutsCreated = auto.NewCounterVec(m.counterOpts("workouts_created_total", "Workouts created from form submissions"), []string{"kind"})
	m.validationFailures = auto.NewCounter(m.counterOpts("validation_failures_total", "Form submissions rejected for invalid numeric input"))
	m.unknownKinds = auto.NewCounter(m.counterOpts("unknown_kind_total", "Form submissions ignored for an unknown activity kind"))
	m.workoutsReplayed = auto.NewCounter(m.counterOpts("workouts_replayed_total", "Persisted workouts rendered at startup"))
	m.sessionWorkouts = auto.NewGauge(m.gaugeOpts("workouts", "Workouts in the current session"))
	m.controllerState = auto.NewGaugeVec(m.gaugeOpts("controller_state", "1 for the controller's current state"), []string{"state"})
	m.geolocationErrors = auto.NewCounter(m.counterOpts("geolocation_failures_total", "Startups that could not resolve a location"))
	m.submitDuplicates = auto.NewCounter(m.counterOpts("submission_duplicates_total", "Replayed form submissions suppressed by idempotency key"))

	m.persistenceOps = auto.NewCounterVec(m.counterOpts("persistence_operations_total", "Store operations by op and backend"), []string{"op", "backend"})
	m.persistenceErrors = auto.NewCounterVec(m.counterOpts("persistence_errors_total", "Failed store operations by op and backend"), []string{"op", "backend"})
	m.persistenceLatency = auto.NewHistogramVec(m.histogramOpts("persistence_latency_milliseconds", "Store operation latency in milliseconds"), []string{"op"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("loop_queue_size", "Tasks waiting for the event loop"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("loop_queue_capacity", "Event loop queue capacity"))
	m.queueRejections = auto.NewCounterVec(m.counterOpts("loop_queue_rejections_total", "Tasks refused by the event loop queue"), []string{"reason"})
	m.loopTaskLatency = auto.NewHistogramVec(m.histogramOpts("loop_task_latency_milliseconds", "Time spent running one event loop task"), []string{"task"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(m.counterOpts("http_errors_total", "HTTP error responses by endpoint, method and type"), []string{"endpoint", "method", "error_type"})
}

// RecordWorkoutCreated counts a created workout of the given kind.
func RecordWorkoutCreated(kind string) {
	globalManager.workoutsCreated.WithLabelValues(kind).Inc()
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure() {
	globalManager.validationFailures.Inc()
}

// RecordUnknownKind counts a submission with an unknown activity kind.
func RecordUnknownKind() {
	globalManager.unknownKinds.Inc()
}

// RecordWorkoutsReplayed counts workouts rendered from storage at startup.
func RecordWorkoutsReplayed(n int) {
	globalManager.workoutsReplayed.Add(float64(n))
}

// UpdateSessionWorkouts sets the session size.
func UpdateSessionWorkouts(n int) {
	globalManager.sessionWorkouts.Set(float64(n))
}

// UpdateControllerState marks state as the current controller state.
func UpdateControllerState(state string) {
	globalManager.controllerState.Reset()
	globalManager.controllerState.WithLabelValues(state).Set(1)
}

// RecordGeolocationFailure counts a failed location lookup.
func RecordGeolocationFailure() {
	globalManager.geolocationErrors.Inc()
}

// RecordSubmissionDuplicate counts a suppressed replayed submission.
func RecordSubmissionDuplicate() {
	globalManager.submitDuplicates.Inc()
}

// RecordPersistenceOp counts a store operation.
func RecordPersistenceOp(op, backend string) {
	globalManager.persistenceOps.WithLabelValues(op, backend).Inc()
}

// RecordPersistenceError counts a failed store operation.
func RecordPersistenceError(op, backend string) {
	globalManager.persistenceErrors.WithLabelValues(op, backend).Inc()
}

// RecordPersistenceLatency records store latency in milliseconds.
func RecordPersistenceLatency(op string, latencyMs float64) {
	globalManager.persistenceLatency.WithLabelValues(op).Observe(latencyMs)
}

// UpdateQueueSize sets the number of waiting loop tasks.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the loop queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejection counts a task the queue refused.
func RecordQueueRejection(reason string) {
	globalManager.queueRejections.WithLabelValues(reason).Inc()
}

// RecordLoopTaskLatency records how long a loop task ran.
func RecordLoopTaskLatency(task string, latencyMs float64) {
	globalManager.loopTaskLatency.WithLabelValues(task).Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the registry all package-level metrics live in.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
