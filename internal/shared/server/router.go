package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"archive-backend/internal/archival"
	"archive-backend/internal/auth"
	"archive-backend/internal/documents"
	"archive-backend/internal/entities"
	"archive-backend/internal/files"
	"archive-backend/internal/services/health"
	"archive-backend/internal/shared/config"
	"archive-backend/internal/shared/metrics"
	"archive-backend/internal/shared/server/middleware"
	"archive-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config     config.Config
	Auth       *auth.Handler
	GoogleAuth *auth.GoogleService
	Documents  *documents.Handler
	Pipeline   *archival.Handler
	Entities   *entities.Handler
	Files      *files.Handler
	Health     *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
// Everything except health, metrics and the auth entry points sits behind
// the session gate.
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
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	api.GET("/metrics", metrics.Handler())

	limiter := middleware.NewRateLimiter(nil)
	public := api.Group("")
	public.Use(middleware.RateLimit(middleware.RateLimitRule{Rate: 1, Burst: 10}, limiter))
	deps.Auth.RegisterPublicRoutes(public)
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(public)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth())
	deps.Auth.RegisterProtectedRoutes(protected)
	deps.Documents.RegisterRoutes(protected)
	deps.Pipeline.RegisterRoutes(protected)
	deps.Entities.RegisterRoutes(protected)
	deps.Files.RegisterRoutes(protected)

	return r
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
