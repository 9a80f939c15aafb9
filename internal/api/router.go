package api

import (
	"net/http"
	"time"

	routes "fishguard/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	Reports       routes.ReportService
	History       routes.HistoryStore
	Health        routes.HealthInfo
	Socket        http.Handler
	SendInterval  time.Duration
	HistoryPoints int
}

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine, deps Dependencies) *routes.GPSHandlers {
	// API group
	api := r.Group("/api")

	routes.SetupMainHandlers(r.Group(""), deps.Health)

	gps := routes.NewGPSHandlers(deps.Reports, deps.SendInterval)
	routes.SetupGPSHandlers(api, gps)
	routes.SetupBoatHandlers(api, routes.NewBoatHandlers(deps.History, deps.HistoryPoints))
	routes.SetupWarningHandlers(api, routes.NewWarningHandlers(deps.History, nil))

	if deps.Socket != nil {
		r.GET("/socket.io/*any", gin.WrapH(deps.Socket))
		r.POST("/socket.io/*any", gin.WrapH(deps.Socket))
	}

	return gps
}
