// Package api exposes the analysis dispatcher over HTTP and WebSocket.
//
// Routes:
//
//	GET  /healthz          liveness
//	GET  /metrics          Prometheus metrics
//	GET  /api/v1/kinds     supported analysis kinds
//	POST /api/v1/analyses  JSON request -> JSON result
//	POST /api/v1/render    JSON request -> PNG of the result field
//	GET  /api/v1/ws        WebSocket: one request in, progress events and the result out
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/katalvlaran/lvgrid/internal/analysis"
	"github.com/katalvlaran/lvgrid/internal/config"
)

// RouterConfig holds the router's dependencies. Zero fields take defaults.
type RouterConfig struct {
	// Limits bound request size and work.
	Limits config.Limits

	// Render sets PNG defaults for /render.
	Render config.RenderConfig

	// RateLimiter is used as is when set; otherwise one is built from
	// RateLimit, or config.DefaultRateLimit when that is nil too.
	RateLimiter *IPRateLimiter
	RateLimit   *config.RateLimit

	// CORSOrigins lists allowed origins; also consulted by the WebSocket
	// origin check.
	CORSOrigins []string

	// Metrics defaults to a fresh registry.
	Metrics *Metrics

	// DisableLogging drops the request logger (benchmarks).
	DisableLogging bool
}

// handlers carries what route handlers need.
type handlers struct {
	runner  *analysis.Runner
	limits  config.Limits
	render  config.RenderConfig
	metrics *Metrics
	origins []string
}

// NewRouter builds the router. Besides the rate limiter's cleanup loop (when
// the router creates the limiter itself) it starts no goroutines and opens no
// listeners.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Limits == (config.Limits{}) {
		cfg.Limits = config.DefaultLimits()
	}
	if cfg.Render.CellSize < 1 {
		cfg.Render = config.DefaultRender()
	}
	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = config.DefaultServer().CORSOrigins
	}
	m := cfg.Metrics
	if m == nil {
		m = NewMetrics()
	}
	rl := cfg.RateLimiter
	if rl == nil {
		rlCfg := config.DefaultRateLimit()
		if cfg.RateLimit != nil {
			rlCfg = *cfg.RateLimit
		}
		rl = NewIPRateLimiter(rlCfg)
	}
	rl.onReject = func() { m.rejected.WithLabelValues("rate_limit").Inc() }

	h := &handlers{
		runner:  analysis.NewRunner(cfg.Limits),
		limits:  cfg.Limits,
		render:  cfg.Render,
		metrics: m,
		origins: cfg.CORSOrigins,
	}

	r := chi.NewRouter()
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(m.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rl.Middleware)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/kinds", h.handleKinds)
		r.Post("/analyses", h.handleAnalyze)
		r.Post("/render", h.handleRender)
		r.Get("/ws", h.handleWebSocket)
	})

	return r
}
