package routes

import (
	"net/http"

	"fishguard/internal/metrics"

	"github.com/gin-gonic/gin"
)

// HealthInfo reports runtime state for the health endpoint
type HealthInfo interface {
	ZoneCount() int
	Clients() int
}

// SetupMainHandlers registers the health and metrics endpoints
func SetupMainHandlers(router *gin.RouterGroup, info HealthInfo) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"zones":   info.ZoneCount(),
			"clients": info.Clients(),
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
