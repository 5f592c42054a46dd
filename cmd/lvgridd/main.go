// Command lvgridd serves the analysis API over HTTP.
//
// Configuration is read from the environment (LVGRID_PORT, LVGRID_MAX_CELLS,
// LVGRID_RATE_RPS, ...) after loading an optional .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/katalvlaran/lvgrid/internal/api"
	"github.com/katalvlaran/lvgrid/internal/config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	} else {
		log.Println("loaded environment from .env")
	}

	cfg := config.Load()
	log.Printf("limits: %d cells, %d workers, %d bytes per request",
		cfg.Limits.MaxCells, cfg.Limits.MaxWorkers, cfg.Limits.MaxBodyBytes)
	log.Printf("rate limit: %.1f req/s, burst %d, trust proxy %t", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy)

	limiter := api.NewIPRateLimiter(cfg.RateLimit)
	defer limiter.Stop()

	router := api.NewRouter(api.RouterConfig{
		Limits:         cfg.Limits,
		Render:         cfg.Render,
		RateLimiter:    limiter,
		CORSOrigins:    cfg.Server.CORSOrigins,
		DisableLogging: cfg.Server.DisableLogging,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
