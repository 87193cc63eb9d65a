package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stats", handler.GetStats)
		v1.GET("/posts/relevant", handler.ListRelevantPosts)
		v1.GET("/sources", handler.ListSources)
		v1.PUT("/sources/:id", handler.UpdateSource)
		v1.POST("/classify", handler.Classify)
		v1.POST("/run", handler.TriggerRun)
	}
}
