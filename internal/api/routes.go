package api

import (
	"github.com/gin-gonic/gin"

	"parkpulse/config"
	"parkpulse/internal/engine"
	"parkpulse/internal/metrics"
)

func SetupRoutes(router *gin.Engine, eng *engine.Engine, cfg *config.Config) {
	handler := NewHandler(eng, cfg, nil)

	api := router.Group("/api/parking")
	{
		api.GET("/current", handler.GetCurrentStatus)
		api.GET("/overview", handler.GetOverviewStats)
		api.GET("/streets", handler.GetStreetsList)
		api.GET("/nearby", handler.FindNearbyParking)
		api.GET("/heatmap", handler.GetHeatmap)
		api.POST("/refresh", handler.TriggerRefresh)
		api.GET("/health", handler.Health)
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
