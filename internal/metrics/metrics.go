// Package metrics exposes Prometheus collectors for the egg service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "animai"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	messages       *prometheus.CounterVec
	replyFallbacks *prometheus.CounterVec
	hatches        *prometheus.CounterVec
	stageReached   *prometheus.CounterVec
	lockWait       prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	wsClients      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "User messages handled, by reply generator that answered.",
		}, []string{"generator"}),
		replyFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_fallbacks_total",
			Help:      "Model replies replaced by a fallback, by fallback kind.",
		}, []string{"fallback"}),
		hatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hatches_total",
			Help:      "Eggs turned into pets, by personality.",
		}, []string{"personality"}),
		stageReached: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Stage changes observed after a message, by new stage.",
		}, []string{"stage"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for per-egg exclusivity.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Open websocket connections.",
		}),
	}
	m.Registry.MustRegister(
		m.messages, m.replyFallbacks, m.hatches, m.stageReached, m.lockWait,
		m.httpRequests, m.httpDuration, m.wsClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// The recording methods accept a nil receiver so callers can run without
// metrics.

func (m *Metrics) MessageHandled(generator string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(generator).Inc()
}

func (m *Metrics) ReplyFallback(kind string) {
	if m == nil {
		return
	}
	m.replyFallbacks.WithLabelValues(kind).Inc()
}

func (m *Metrics) Hatched(personality string) {
	if m == nil {
		return
	}
	m.hatches.WithLabelValues(personality).Inc()
}

func (m *Metrics) StageReached(stage string) {
	if m == nil {
		return
	}
	m.stageReached.WithLabelValues(stage).Inc()
}

func (m *Metrics) LockWaited(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

func (m *Metrics) HTTPRequest(route, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) WebsocketOpened() {
	if m != nil {
		m.wsClients.Inc()
	}
}

func (m *Metrics) WebsocketClosed() {
	if m != nil {
		m.wsClients.Dec()
	}
}
