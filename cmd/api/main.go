package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userhub/internal/config"
	"userhub/internal/db"
	httpx "userhub/internal/http"
	"userhub/internal/observability"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; deployments configure the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in via OTEL_EXPORTER_OTLP_ENDPOINT
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "userhub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()

			_ = shutdownTracer(ctx)
		}()

		log = slog.New(observability.NewTraceHandler(log.Handler()))
	}

	slog.SetDefault(log)

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	startCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	// the pool is established up front; a dead database fails the boot
	mgr, err := db.NewPoolManager(startCtx, cfg, prom)

	if err != nil {
		log.Error("db pool init failed", "err", err)
		os.Exit(1)
	}

	if err := mgr.Bootstrap(startCtx); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	router := httpx.NewRouter(mgr, prom, registry, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "pool_size", cfg.PoolSize)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(cfg.ShutdownTimeout)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		// the pool drains only after in-flight requests finish
		mgr.Close()
		log.Info("shutdown complete")

	case <-time.After(cfg.ShutdownTimeout + 2*time.Second):
		mgr.Close()
		log.Error("shutdown timed out")
	}
}
