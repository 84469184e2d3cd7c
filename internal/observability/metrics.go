// Package observability exposes Prometheus metrics for generation tasks,
// LLM calls, HTTP traffic, caches and live board connections.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adcanvas/internal/llm"
)

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	LLMCalls    *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec

	TasksStarted  *prometheus.CounterVec
	TasksSettled  *prometheus.CounterVec
	TaskDuration  *prometheus.HistogramVec
	TasksInFlight prometheus.Gauge

	CacheLookups *prometheus.CounterVec
	Streams      prometheus.Gauge
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LLMCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM requests by kind, phase and result",
		}, []string{"kind", "phase", "result"}),
		LLMDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "LLM request latency in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 90},
		}, []string{"kind", "phase"}),
		TasksStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_tasks_started_total",
			Help:      "Generation tasks started by operation",
		}, []string{"op"}),
		TasksSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_tasks_settled_total",
			Help:      "Generation tasks settled by operation and outcome",
		}, []string{"op", "outcome"}),
		TaskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_task_duration_seconds",
			Help:      "Time from placeholder to settled node",
			Buckets:   []float64{1, 5, 10, 20, 40, 90, 180},
		}, []string{"op"}),
		TasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_tasks_in_flight",
			Help:      "Generation tasks currently running",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result",
		}, []string{"cache", "result"}),
		Streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "board_streams",
			Help:      "Open board event streams",
		}),
	}
	c.registry.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.LLMCalls, c.LLMDuration,
		c.TasksStarted, c.TasksSettled, c.TaskDuration, c.TasksInFlight,
		c.CacheLookups, c.Streams,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) ObserveLLMCall(kind, phase string, elapsed time.Duration, err error) {
	if phase == "" {
		phase = "unknown"
	}
	result := "ok"
	switch {
	case err == nil:
	case llm.IsPermanent(err):
		result = "permanent_error"
	default:
		result = "error"
	}
	c.LLMCalls.WithLabelValues(kind, phase, result).Inc()
	c.LLMDuration.WithLabelValues(kind, phase).Observe(elapsed.Seconds())
}

func (c *Collector) TaskStarted(op string) {
	c.TasksStarted.WithLabelValues(op).Inc()
	c.TasksInFlight.Inc()
}

func (c *Collector) TaskSettled(op, outcome string, elapsed time.Duration) {
	c.TasksSettled.WithLabelValues(op, outcome).Inc()
	c.TaskDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	c.TasksInFlight.Dec()
}

func (c *Collector) CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (c *Collector) StreamOpened() { c.Streams.Inc() }
func (c *Collector) StreamClosed() { c.Streams.Dec() }

// Middleware records request counts and latency under route.
func (c *Collector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
