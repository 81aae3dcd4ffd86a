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

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	mgr := db.NewDirectManager(cfg.DBURL)

	// No metrics endpoint or tracing here: a per-invocation process is
	// not a scrape target, and this main never initializes a tracer
	// provider.
	cfg.OTLPEndpoint = ""

	router := httpx.NewRouter(mgr, nil, nil, cfg)

	// Inside Lambda the runtime drives the process; anywhere else this
	// binary serves plain HTTP for local testing.
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		adapter := ginadapter.New(router)

		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "mode", "connection-per-request")
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: no pool to drain, just stop accepting and let
	// in-flight requests finish.

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	ctx, cancel := config.WithTimeout(cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	mgr.Close()
	log.Info("shutdown complete")
}
