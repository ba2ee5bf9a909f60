// Package metrics exports Prometheus metrics for the image server.
//
// [Metrics] implements the observability hook interfaces; register it with
// the observability package at startup and mount [Handler] on /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meshy"

const (
	// ResultSuccess labels renders that produced an image.
	ResultSuccess = "success"
	// ResultErrored labels renders that failed.
	ResultErrored = "errored"
)

// Metrics holds every collector of the server.
type Metrics struct {
	renderDurations *prometheus.HistogramVec
	renderBytes     *prometheus.HistogramVec
	cacheEvents     *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimit       *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the Go and
// process collectors, on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		renderDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "duration_seconds",
				Help:      "Render duration in seconds labelled by image kind and result.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"kind", "result"},
		),
		renderBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "size_bytes",
				Help:      "Size of encoded images labelled by image kind.",
				Buckets:   prometheus.ExponentialBuckets(4096, 2, 8),
			},
			[]string{"kind"},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "events_total",
				Help:      "Render cache lookups and writes labelled by image kind and event (hit, miss, set).",
			},
			[]string{"kind", "event"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Served HTTP requests labelled by method, route and status code.",
			},
			[]string{"method", "route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds labelled by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		rateLimit: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "decisions_total",
				Help:      "Rate limiter decisions labelled by rule and decision (allowed, rejected).",
			},
			[]string{"rule", "decision"},
		),
	}

	reg.MustRegister(
		m.renderDurations, m.renderBytes, m.cacheEvents,
		m.requests, m.requestDuration, m.rateLimit,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the metrics gathered from g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, kind string, size int, d time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultErrored
	}
	m.renderDurations.WithLabelValues(kind, result).Observe(d.Seconds())
	if err == nil {
		m.renderBytes.WithLabelValues(kind).Observe(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheEvents.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, _ int) {
	m.cacheEvents.WithLabelValues(kind, "set").Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) OnAllowed(_ context.Context, rule string) {
	m.rateLimit.WithLabelValues(rule, "allowed").Inc()
}

func (m *Metrics) OnRejected(_ context.Context, rule string) {
	m.rateLimit.WithLabelValues(rule, "rejected").Inc()
}
