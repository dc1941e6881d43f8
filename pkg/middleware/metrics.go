package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "inertia").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request and render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "inertia",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is the Prometheus middleware. It also implements ssr.Observer.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	inFlight         prometheus.Gauge
	versionConflicts prometheus.Counter
	rendersTotal     *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
}

// Collectors are registered once per registry, so building the middleware
// twice against the default registry does not panic.
var (
	registered   = make(map[prometheus.Registerer]*Metrics)
	registeredMu sync.Mutex
)

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of responses by negotiated kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "method", "code"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_in_flight",
			Help:        "Number of requests being handled",
			ConstLabels: config.ConstLabels,
		}),

		versionConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "version_conflicts_total",
			Help:        "Total number of stale asset version responses",
			ConstLabels: config.ConstLabels,
		}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ssr_renders_total",
			Help:        "Total number of server-side renders by component and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "outcome"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ssr_render_duration_seconds",
			Help:        "Server-side render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),
	}
}

// Prometheus creates the metrics middleware.
//
// Metrics collected:
//   - inertia_requests_total: Counter by kind, method and status code
//   - inertia_request_duration_seconds: Histogram by kind
//   - inertia_requests_in_flight: Gauge of requests being handled
//   - inertia_version_conflicts_total: Counter of 409 reload responses
//   - inertia_ssr_renders_total: Counter by component and outcome
//   - inertia_ssr_render_duration_seconds: Histogram by outcome
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	registeredMu.Lock()
	defer registeredMu.Unlock()
	if m, ok := registered[config.Registry]; ok {
		return m
	}
	m := initMetrics(config)
	registered[config.Registry] = m
	return m
}

// Handler wraps next with request metrics.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		status := rec.Status()
		kind := responseKind(status, rec.Header())
		m.requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(kind, r.Method, strconv.Itoa(status)).Inc()
		if kind == KindVersionConflict {
			m.versionConflicts.Inc()
		}
	})
}

// ObserveRender records one server-side render.
func (m *Metrics) ObserveRender(component string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.rendersTotal.WithLabelValues(component, outcome).Inc()
	m.renderDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
