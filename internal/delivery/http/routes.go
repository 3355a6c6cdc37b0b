package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/barterfeed/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		v1.GET("/feed/:userId", handler.GetFeed)
		v1.POST("/relevance/evaluate", handler.EvaluateRelevance)
		v1.POST("/tags/resolve", handler.ResolveTags)

		v1.GET("/taxonomy", handler.GetTaxonomy)
		v1.PUT("/taxonomy", handler.PutTaxonomy)

		v1.PUT("/profiles/:id", handler.PutProfile)
		v1.GET("/offers/:id", handler.GetOffer)
		v1.PUT("/offers/:id", handler.PutOffer)
	}

	return router
}
