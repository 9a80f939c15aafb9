package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fishguard/internal/model"
	"fishguard/internal/util"

	"github.com/gin-gonic/gin"
)

// HistoryStore is the read side of the tracking database
type HistoryStore interface {
	ListBoats(ctx context.Context) ([]model.Boat, error)
	PositionsBetween(ctx context.Context, boatID string, start, end time.Time) ([]model.Position, error)
	WarningsForBoat(ctx context.Context, boatID string, start, end time.Time) ([]model.Warning, error)
	WarningsBetween(ctx context.Context, start, end time.Time) ([]model.Warning, error)
	CountWarningsBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type BoatHandlers struct {
	store     HistoryStore
	maxPoints int
}

func NewBoatHandlers(store HistoryStore, maxPoints int) *BoatHandlers {
	return &BoatHandlers{store: store, maxPoints: maxPoints}
}

// SetupBoatHandlers registers the boat list and per-boat history endpoints
func SetupBoatHandlers(router *gin.RouterGroup, h *BoatHandlers) {
	router.GET("/boats", h.ListBoats)
	router.GET("/boats/:boat_id/history", h.History)
	router.GET("/boats/:boat_id/warnings", h.Warnings)
}

func (h *BoatHandlers) ListBoats(c *gin.Context) {
	boats, err := h.store.ListBoats(c.Request.Context())
	if err != nil {
		slog.Error("failed to list boats", slog.Any("error", err))
		errorResponse(c, http.StatusInternalServerError, "failed to list boats")
		return
	}
	if boats == nil {
		boats = []model.Boat{}
	}
	c.JSON(http.StatusOK, boats)
}

// History returns a boat's track, thinned to at most the configured number
// of points. With format=polyline the track is returned encoded.
func (h *BoatHandlers) History(c *gin.Context) {
	boatID := c.Param("boat_id")
	start, end, err := timeRange(c)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	positions, err := h.store.PositionsBetween(c.Request.Context(), boatID, start, end)
	if err != nil {
		slog.Error("failed to query boat history",
			slog.String("boat_id", boatID),
			slog.Any("error", err),
		)
		errorResponse(c, http.StatusInternalServerError, "failed to query boat history")
		return
	}

	total := len(positions)
	positions = ThinPositions(positions, h.maxPoints)
	if len(positions) != total {
		slog.Info("thinned boat history",
			slog.String("boat_id", boatID),
			slog.Int("total", total),
			slog.Int("returned", len(positions)),
		)
	}

	if c.Query("format") == "polyline" {
		points := make([]model.GeoPoint, len(positions))
		for i, p := range positions {
			points[i] = model.GeoPoint{Lon: p.Longitude, Lat: p.Latitude}
		}
		c.JSON(http.StatusOK, gin.H{
			"boat_id":  boatID,
			"points":   len(points),
			"polyline": util.EncodePolyline(points),
		})
		return
	}

	if positions == nil {
		positions = []model.Position{}
	}
	c.JSON(http.StatusOK, positions)
}

func (h *BoatHandlers) Warnings(c *gin.Context) {
	boatID := c.Param("boat_id")
	start, end, err := timeRange(c)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	warnings, err := h.store.WarningsForBoat(c.Request.Context(), boatID, start, end)
	if err != nil {
		slog.Error("failed to query boat warnings",
			slog.String("boat_id", boatID),
			slog.Any("error", err),
		)
		errorResponse(c, http.StatusInternalServerError, "failed to query boat warnings")
		return
	}
	if warnings == nil {
		warnings = []model.Warning{}
	}
	c.JSON(http.StatusOK, warnings)
}
