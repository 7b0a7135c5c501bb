// Package metrics exposes Prometheus collectors for account creation and
// the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "referral"

// Collector owns a private registry so that several collectors (one per
// test, say) never collide.
//
// Thread-safety: all methods are safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	accountsCreated  *prometheus.CounterVec
	creationFailures *prometheus.CounterVec

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics.
// An empty namespace means DefaultNamespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.accountsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "created_total",
			Help:      "Accounts created, by creation mode and the branch of the rule that picked the beneficiary.",
		},
		[]string{"mode", "rule"},
	)

	c.creationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "creation_failures_total",
			Help:      "Failed creation requests, by creation mode and error kind.",
		},
		[]string{"mode", "kind"},
	)

	c.httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	c.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	c.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	c.registry.MustRegister(
		c.accountsCreated,
		c.creationFailures,
		c.httpInFlight,
		c.httpRequests,
		c.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return c
}

// Handler returns an HTTP handler exposing the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// AccountCreated counts one created account.
func (c *Collector) AccountCreated(mode, rule string) {
	c.accountsCreated.WithLabelValues(mode, rule).Inc()
}

// CreationFailed counts one failed creation request.
func (c *Collector) CreationFailed(mode, kind string) {
	c.creationFailures.WithLabelValues(mode, kind).Inc()
}

// RequestStarted marks a request in flight. Call the returned func when it
// completes, with the route template and response status.
func (c *Collector) RequestStarted(method string) func(path string, status int) {
	start := time.Now()
	c.httpInFlight.Inc()

	return func(path string, status int) {
		c.httpInFlight.Dec()
		c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
