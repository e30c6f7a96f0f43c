package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/originlens/backend/config"
)

// SetupRouter configures the Gin router with all routes and middleware
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/detect-country", handler.DetectCountry)
		v1.POST("/detect-product", handler.DetectProduct)
		v1.POST("/batch-detect", handler.BatchDetect)
		v1.POST("/batch-detect-product", handler.BatchDetectProduct)
		v1.POST("/clear-cache", handler.ClearCache)
		v1.GET("/hscode/search", handler.SearchHSCodes)
		v1.GET("/hscode/validate/:code", handler.ValidateHSCode)
	}

	return router
}
