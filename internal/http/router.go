package http

import (
	"userhub/internal/auth"
	"userhub/internal/config"
	"userhub/internal/db"
	"userhub/internal/http/handlers"
	"userhub/internal/http/middlewares"
	"userhub/internal/observability"
	"userhub/internal/repo/postgres"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // request bodies are capped at 1 MiB

// NewRouter builds the route table shared by both binaries. They differ
// only in the Manager they pass in and whether metrics are exposed:
// the per-request binary passes nil prom and registry.
func NewRouter(mgr db.Manager, prom *observability.Prom, registry *prometheus.Registry, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("userhub"))
	}

	// wire up the store and handlers

	users := postgres.NewUsersRepo(mgr, prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	authHandler := handlers.NewAuthHandler(users, jwtManager)
	usersHandler := handlers.NewUsersHandler(users)
	healthHandler := handlers.NewHealthHandler(mgr)

	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// routes

	r.GET("/health", healthHandler.Health)

	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	api := r.Group("/api")

	// creating a user needs no token; everything else under /api does
	api.POST("/users", usersHandler.CreateUser)

	protected := api.Group("")
	protected.Use(authMw.RequireAuth())
	protected.GET("/users", usersHandler.ListUsers)
	protected.GET("/users/:id", usersHandler.GetUser)
	protected.DELETE("/users/:id", usersHandler.DeleteUser)

	return r
}
