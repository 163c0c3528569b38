package netserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the connection-lifecycle counters a Server exposes.
// Unlike shockwave's buffer-pool metrics (buffer_pool_prometheus.go),
// which register into the global default registry via bare promauto
// calls, these are bound to a caller-supplied *prometheus.Registry so
// more than one Server can run in a process without a duplicate-
// registration panic.
type Metrics struct {
	ConnectionsAccepted    prometheus.Counter
	ConnectionsRateLimited prometheus.Counter
	ConnectionsActive      prometheus.Gauge
	RequestsTotal          *prometheus.CounterVec
	RequestDuration        *prometheus.HistogramVec
}

// NewMetrics registers the connection and request counters into reg.
// Pass prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer wrapped appropriately for the common
// single-server-per-process case.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ConnectionsAccepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pulsar",
			Subsystem: "netserver",
			Name:      "connections_accepted_total",
			Help:      "Total connections accepted across all listeners.",
		}),
		ConnectionsRateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pulsar",
			Subsystem: "netserver",
			Name:      "connections_rate_limited_total",
			Help:      "Total connections dropped by the rate limiter before dispatch.",
		}),
		ConnectionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsar",
			Subsystem: "netserver",
			Name:      "connections_active",
			Help:      "Connections currently owned by a connection-service task.",
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsar",
			Subsystem: "netserver",
			Name:      "requests_total",
			Help:      "Total requests dispatched, labeled by protocol and response status class.",
		}, []string{"protocol", "status_class"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pulsar",
			Subsystem: "netserver",
			Name:      "request_duration_seconds",
			Help:      "Request handling latency from dispatch to response write, by protocol.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"protocol"}),
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
