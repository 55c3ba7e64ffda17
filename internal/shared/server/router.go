package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/companies"
	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/evaluations"
	"dealflow-backend/internal/export"
	"dealflow-backend/internal/scheduler"
	"dealflow-backend/internal/services/health"
	"dealflow-backend/internal/shared/config"
	"dealflow-backend/internal/shared/metrics"
	"dealflow-backend/internal/shared/server/middleware"
	"dealflow-backend/internal/shared/server/respond"
	"dealflow-backend/internal/usage"
)

// RouterDeps carries the constructed services the router exposes.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	Scheduler          *scheduler.Scheduler
	DocumentsHandler   *documents.Handler
	CompaniesHandler   *companies.Handler
	EvaluationsHandler *evaluations.Handler
	ExportHandler      *export.Handler
	UsageHandler       *usage.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
// Health and metrics stay outside the identity check so probes and scrapers
// need no headers.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	api.GET("/health/ready", func(c *gin.Context) {
		readiness := deps.Health.Check(c.Request.Context())
		status := http.StatusOK
		if !readiness.Ready {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, readiness)
	})
	api.GET("/metrics", metrics.Handler())

	protected := api.Group("")
	protected.Use(
		middleware.RateLimit(rateLimitConfig()),
		middleware.Identity(),
	)

	registerStatusRoutes(protected, deps.Scheduler)
	deps.DocumentsHandler.RegisterRoutes(protected)
	deps.CompaniesHandler.RegisterRoutes(protected)
	deps.EvaluationsHandler.RegisterRoutes(protected)
	deps.ExportHandler.RegisterRoutes(protected)
	deps.UsageHandler.RegisterRoutes(protected)

	return r
}

// rateLimitConfig allows status polling at a higher rate than mutating
// endpoints.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/documents/:id" {
				return "POLLING"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 10, Burst: 20},
			"POLLING": {Rate: 30, Burst: 60},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
