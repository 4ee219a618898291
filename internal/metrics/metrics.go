// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service's metrics.
type Collector struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    prometheus.Histogram
	generations     prometheus.Counter
	generationsDeny prometheus.Counter
	sessionEvents   *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_generations_total",
			Help: "Successful design system generations",
		}),
		generationsDeny: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studio_generations_denied_total",
			Help: "Generations refused because the monthly limit was reached",
		}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_session_events_total",
			Help: "Session lifecycle events published by type",
		}, []string{"type"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.generations,
		c.generationsDeny,
		c.sessionEvents,
	)

	return c
}

func (c *Collector) RecordGeneration()           { c.generations.Inc() }
func (c *Collector) RecordGenerationDenied()     { c.generationsDeny.Inc() }
func (c *Collector) RecordSessionEvent(t string) { c.sessionEvents.WithLabelValues(t).Inc() }

// Middleware records request counts and latency per chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		c.httpRequests.WithLabelValues(route, strconv.Itoa(ww.status)).Inc()
		c.httpDuration.Observe(time.Since(start).Seconds())
	})
}

// Handler serves the /metrics scrape endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
