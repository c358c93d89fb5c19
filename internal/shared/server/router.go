package server

import (
	"github.com/gin-gonic/gin"

	"triage-backend/internal/analyses"
	"triage-backend/internal/shared/config"
	"triage-backend/internal/shared/metrics"
	"triage-backend/internal/shared/server/middleware"
	"triage-backend/internal/shared/server/respond"
)

// multipartOverhead leaves room for the multipart framing around an upload.
const multipartOverhead = 64 << 10

// NewRouter constructs the Gin engine with middleware and routes registered.
// Triage routes are served at the root and under /api/v1.
func NewRouter(cfg config.Config, svc *analyses.Service) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	uploadLimit := cfg.MaxUploadBytes
	if uploadLimit <= 0 {
		uploadLimit = analyses.DefaultMaxUploadBytes
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.BodyLimit(cfg.MaxBodyBytes, map[string]int64{
			"/analyze/upload":        uploadLimit + multipartOverhead,
			"/api/v1/analyze/upload": uploadLimit + multipartOverhead,
		}),
	)
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Rule:    middleware.RateLimitRule{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			Applies: middleware.IsAnalyzeRequest,
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		respond.NotFound(c, "route not found")
	})
	r.GET("/metrics", metrics.Handler())

	h := analyses.NewHandler(svc)
	h.MaxUploadBytes = uploadLimit
	h.RegisterRoutes(r)
	h.RegisterRoutes(r.Group("/api/v1"))

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
