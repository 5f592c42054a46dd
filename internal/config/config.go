// Package config holds the settings of the lvgrid binaries.
//
// Every section has a Default*() constructor and a *FromEnv() variant that
// applies environment overrides on top of the defaults. Binaries call
// godotenv before Load so a .env file feeds the same variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	DisableLogging  bool
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    5 * time.Minute, // analyses on large grids are slow
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("LVGRID_PORT", 0); p > 0 {
		cfg.Port = p
	}
	if s := getEnvInt("LVGRID_WRITE_TIMEOUT_SECONDS", 0); s > 0 {
		cfg.WriteTimeout = time.Duration(s) * time.Second
	}
	if s := getEnvInt("LVGRID_SHUTDOWN_SECONDS", 0); s > 0 {
		cfg.ShutdownTimeout = time.Duration(s) * time.Second
	}
	if o := getEnvList("LVGRID_CORS_ORIGINS"); len(o) > 0 {
		cfg.CORSOrigins = o
	}
	if os.Getenv("LVGRID_DISABLE_REQUEST_LOG") == "true" {
		cfg.DisableLogging = true
	}

	return cfg
}

// Limits bounds the work a single request may ask for.
type Limits struct {
	MaxCells     int   // largest accepted grid, in cells
	MaxWorkers   int   // upper bound on per-request workers
	MaxBodyBytes int64 // request body cap
	MaxLights    int
	MaxPoints    int
	MaxPixels    int // largest rendered PNG, width*height
}

// DefaultLimits returns the default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxCells:     250_000,
		MaxWorkers:   8,
		MaxBodyBytes: 16 << 20,
		MaxLights:    64,
		MaxPoints:    256,
		MaxPixels:    16 << 20,
	}
}

// LimitsFromEnv returns limits with environment overrides.
func LimitsFromEnv() Limits {
	cfg := DefaultLimits()

	if n := getEnvInt("LVGRID_MAX_CELLS", 0); n > 0 {
		cfg.MaxCells = n
	}
	if n := getEnvInt("LVGRID_MAX_WORKERS", 0); n > 0 {
		cfg.MaxWorkers = n
	}
	if n := getEnvInt("LVGRID_MAX_BODY_BYTES", 0); n > 0 {
		cfg.MaxBodyBytes = int64(n)
	}
	if n := getEnvInt("LVGRID_MAX_LIGHTS", 0); n > 0 {
		cfg.MaxLights = n
	}
	if n := getEnvInt("LVGRID_MAX_POINTS", 0); n > 0 {
		cfg.MaxPoints = n
	}
	if n := getEnvInt("LVGRID_MAX_PIXELS", 0); n > 0 {
		cfg.MaxPixels = n
	}

	return cfg
}

// RateLimit configures per-IP request throttling.
type RateLimit struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
	// TrustProxy keys clients by X-Forwarded-For / X-Real-IP. Enable only
	// behind a proxy that overwrites those headers.
	TrustProxy bool
}

// DefaultRateLimit returns 5 requests per second with a burst of 10.
func DefaultRateLimit() RateLimit {
	return RateLimit{
		RequestsPerSecond: 5,
		Burst:             10,
		CleanupInterval:   5 * time.Minute,
	}
}

// RateLimitFromEnv returns rate limiting with environment overrides.
func RateLimitFromEnv() RateLimit {
	cfg := DefaultRateLimit()

	if v := getEnvFloat("LVGRID_RATE_RPS", -1); v > 0 {
		cfg.RequestsPerSecond = v
	}
	if b := getEnvInt("LVGRID_RATE_BURST", 0); b > 0 {
		cfg.Burst = b
	}
	if os.Getenv("LVGRID_TRUST_PROXY") == "true" {
		cfg.TrustProxy = true
	}

	return cfg
}

// RenderConfig holds PNG output settings.
type RenderConfig struct {
	CellSize int // pixels per cell edge
}

// DefaultRender returns 8-pixel cells.
func DefaultRender() RenderConfig {
	return RenderConfig{CellSize: 8}
}

// RenderFromEnv returns render settings with environment overrides.
func RenderFromEnv() RenderConfig {
	cfg := DefaultRender()

	if cs := getEnvInt("LVGRID_CELL_SIZE", 0); cs > 0 {
		cfg.CellSize = cs
	}

	return cfg
}

// AppConfig holds the complete configuration.
type AppConfig struct {
	Server    ServerConfig
	Limits    Limits
	RateLimit RateLimit
	Render    RenderConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:    ServerFromEnv(),
		Limits:    LimitsFromEnv(),
		RateLimit: RateLimitFromEnv(),
		Render:    RenderFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
