package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry, so several
// routers (tests) can coexist in one process. Labels are bounded: kinds come
// from a fixed list and endpoints are route patterns.
type Metrics struct {
	reg *prometheus.Registry

	analysisDuration *prometheus.HistogramVec
	analysisErrors   *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	rejected         *prometheus.CounterVec
	wsActive         prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		analysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lvgrid_analysis_duration_seconds",
			Help:    "Time spent computing one analysis",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"kind"}),
		analysisErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lvgrid_analysis_errors_total",
			Help: "Failed analyses by kind and HTTP status",
		}, []string{"kind", "status"}),
		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		requestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "connection_rejected_total",
			Help: "Requests rejected by the rate limiter or origin check",
		}, []string{"reason"}),
		wsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Currently active WebSocket sessions",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) observeAnalysis(kind string, d time.Duration, status int) {
	if status != http.StatusOK {
		m.analysisErrors.WithLabelValues(kind, strconv.Itoa(status)).Inc()
		return
	}
	m.analysisDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// instrument records latency and status per route pattern.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
	})
}
