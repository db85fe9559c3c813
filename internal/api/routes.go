package api

import (
	"github.com/gin-gonic/gin"
)

// setupRoutes registers health probes, the Prometheus endpoint and the
// JWT-protected v1 API.
func setupRoutes(router *gin.Engine, handler *Handler, jwtSecret string) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	router.GET("/metrics", gin.WrapH(handler.MetricsHandler()))

	v1 := router.Group("/api/v1")
	v1.Use(JWTMiddleware(jwtSecret))

	evaluate := v1.Group("/evaluate")
	evaluate.POST("", handler.Evaluate)            // POST /api/v1/evaluate
	evaluate.POST("/batch", handler.EvaluateBatch) // POST /api/v1/evaluate/batch

	v1.POST("/ingest", handler.Ingest) // POST /api/v1/ingest

	sources := v1.Group("/sources")
	sources.GET("/priority", handler.SourcePriorities) // GET /api/v1/sources/priority

	v1.POST("/metrics", handler.AppendMetrics) // POST /api/v1/metrics
	v1.GET("/stats", handler.Stats)            // GET /api/v1/stats
}
