package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/histroute/internal/errors"
	"github.com/vango-dev/histroute/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "histroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
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

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "histroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for router controllers. One
// Metrics value can serve any number of controllers.
type Metrics struct {
	updatesTotal        *prometheus.CounterVec
	navigationsTotal    *prometheus.CounterVec
	navigationDuration  *prometheus.HistogramVec
	routeResolutions    *prometheus.CounterVec
	notFoundTotal       prometheus.Counter
	errorsTotal         *prometheus.CounterVec
	subscriptionsActive prometheus.Gauge
}

// globalMetrics is the instance shared by Prometheus().
var (
	globalMetrics   *Metrics
	globalMetricsMu sync.Mutex
)

// NewMetrics creates and registers the collectors.
// Registering twice with the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of location reads, by whether the location changed",
			ConstLabels: config.ConstLabels,
		}, []string{"changed"}),

		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of programmatic navigations",
			ConstLabels: config.ConstLabels,
		}, []string{"mode", "status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Time from redirect to settled route state, in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"mode"}),

		routeResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_resolutions_total",
			Help:        "Total number of location changes resolved to a route",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),

		notFoundTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "not_found_total",
			Help:        "Total number of location changes no route matched",
			ConstLabels: config.ConstLabels,
		}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of failed controller operations by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		subscriptionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions_active",
			Help:        "Number of live route state subscriptions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus returns middleware that records controller metrics.
// The collectors are created on first call; later calls share them and
// ignore their options.
//
// Metrics collected:
//   - histroute_updates_total: Counter of location reads by changed
//   - histroute_navigations_total: Counter of redirects by mode and status
//   - histroute_navigation_duration_seconds: Histogram of redirect duration
//   - histroute_route_resolutions_total: Counter of resolved routes by name
//   - histroute_not_found_total: Counter of location changes with no route
//   - histroute_errors_total: Counter of failed operations by error code
//   - histroute_subscriptions_active: Gauge of live subscriptions
//
// Example:
//
//	c, err := router.New(routes, urlpattern.Compile, browser,
//	    router.WithMiddleware(middleware.Prometheus()),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) router.Middleware {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = NewMetrics(opts...)
	}
	return globalMetrics
}

// Handle implements router.Middleware.
func (m *Metrics) Handle(ev *router.Event, next func() error) error {
	start := time.Now()
	err := next()

	switch ev.Kind {
	case router.EventUpdate:
		m.updatesTotal.WithLabelValues(strconv.FormatBool(ev.Changed)).Inc()
		if ev.Changed {
			m.recordResolution(ev)
		}

	case router.EventRedirect:
		mode := ev.Mode.String()
		status := "success"
		if err != nil {
			status = "error"
		}
		m.navigationsTotal.WithLabelValues(mode, status).Inc()
		m.navigationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	case router.EventWatch:
		m.subscriptionsActive.Inc()

	case router.EventUnwatch:
		m.subscriptionsActive.Dec()
	}

	if err != nil {
		m.errorsTotal.WithLabelValues(errorCode(err)).Inc()
	}
	return err
}

func (m *Metrics) recordResolution(ev *router.Event) {
	if ev.Is404() {
		m.notFoundTotal.Inc()
		return
	}
	m.routeResolutions.WithLabelValues(string(ev.To)).Inc()
}

// errorCode returns a low-cardinality label for err.
func errorCode(err error) string {
	if code := errors.Code(err); code != "" {
		return code
	}
	return "unknown"
}
