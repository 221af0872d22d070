// Package metrics holds the prometheus collectors of the bot. Collectors live
// on a private registry so tests and multiple instances never collide.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weatherbot"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	lookups       *prometheus.CounterVec
	lookupLatency *prometheus.HistogramVec
	updates       *prometheus.CounterVec
	messagesSent  *prometheus.CounterVec
	buildInfo     *prometheus.GaugeVec
}

// New creates the collectors and registers them with a fresh registry
// together with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "weather_lookups_total",
				Help:      "Weather lookups by outcome (ok/not_found/api_error/unexpected).",
			},
			[]string{"outcome"},
		),
		lookupLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "weather_lookup_duration_seconds",
				Help:      "Weather lookup latency distribution.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"outcome"},
		),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "telegram_updates_total",
				Help:      "Incoming Telegram updates by kind.",
			},
			[]string{"kind"},
		),
		messagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "telegram_messages_sent_total",
				Help:      "Replies sent per handler.",
			},
			[]string{"handler"},
		),
		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "A constant metric with labels for version and commit hash.",
			},
			[]string{"version", "commit"},
		),
	}
	m.registry.MustRegister(
		m.lookups, m.lookupLatency, m.updates, m.messagesSent, m.buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}

// ObserveLookup records one weather lookup.
func (m *Metrics) ObserveLookup(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	o := norm(outcome)
	m.lookups.WithLabelValues(o).Inc()
	m.lookupLatency.WithLabelValues(o).Observe(took.Seconds())
}

// IncUpdate counts an incoming update.
func (m *Metrics) IncUpdate(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(norm(kind)).Inc()
}

// AddMessages counts replies sent by a handler.
func (m *Metrics) AddMessages(handler string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.messagesSent.WithLabelValues(norm(handler)).Add(float64(n))
}

// SetBuildInfo publishes the build metadata gauge.
func (m *Metrics) SetBuildInfo(version, commit string) {
	if m == nil {
		return
	}
	m.buildInfo.WithLabelValues(version, commit).Set(1)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
