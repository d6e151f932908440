package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "hotelsite"

// Metrics holds the site's Prometheus collectors.
type Metrics struct {
	SliderNavigations *prometheus.CounterVec
	ImageFallbacks    prometheus.Counter
	ActiveSessions    prometheus.Gauge
	NewsletterSignups *prometheus.CounterVec
	Commands          *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics registers the collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		SliderNavigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "slider_navigations_total",
			Help:      "Slide changes by source (auto, prev, next, dot, key, swipe)",
		}, []string{"source"}),

		ImageFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "image_fallbacks_total",
			Help:      "Slide and card images replaced by the fallback image",
		}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "active_sessions",
			Help:      "Open page WebSocket connections",
		}),

		NewsletterSignups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "newsletter_signups_total",
			Help:      "Newsletter signups by result",
		}, []string{"result"}),

		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "ws_commands_total",
			Help:      "WebSocket commands received by type and status",
		}, []string{"type", "status"}),

		registry: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
