package routes

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"fishguard/internal/model"
	"fishguard/internal/service/tracking"

	"github.com/gin-gonic/gin"
)

type WarningHandlers struct {
	store HistoryStore
	now   func() time.Time
}

func NewWarningHandlers(store HistoryStore, now func() time.Time) *WarningHandlers {
	if now == nil {
		now = time.Now
	}
	return &WarningHandlers{store: store, now: now}
}

// SetupWarningHandlers registers the fleet-wide warning endpoints
func SetupWarningHandlers(router *gin.RouterGroup, h *WarningHandlers) {
	router.GET("/all_warnings", h.AllWarnings)
	router.GET("/warnings/today", h.TodayWarnings)
	router.GET("/warnings/today_count", h.TodayCount)
}

func (h *WarningHandlers) AllWarnings(c *gin.Context) {
	start, end, err := timeRange(c)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	warnings, err := h.store.WarningsBetween(c.Request.Context(), start, end)
	if err != nil {
		slog.Error("failed to query warnings", slog.Any("error", err))
		errorResponse(c, http.StatusInternalServerError, "failed to query warnings")
		return
	}
	if warnings == nil {
		warnings = []model.Warning{}
	}
	c.JSON(http.StatusOK, warnings)
}

// TodayWarnings lists today's warnings, newest first
func (h *WarningHandlers) TodayWarnings(c *gin.Context) {
	start, end := tracking.DayBounds(h.now())
	warnings, err := h.store.WarningsBetween(c.Request.Context(), start, end)
	if err != nil {
		slog.Error("failed to query today's warnings", slog.Any("error", err))
		errorResponse(c, http.StatusInternalServerError, "failed to query today's warnings")
		return
	}
	if warnings == nil {
		warnings = []model.Warning{}
	}
	slices.Reverse(warnings)
	c.JSON(http.StatusOK, warnings)
}

func (h *WarningHandlers) TodayCount(c *gin.Context) {
	start, end := tracking.DayBounds(h.now())
	count, err := h.store.CountWarningsBetween(c.Request.Context(), start, end)
	if err != nil {
		slog.Error("failed to count today's warnings", slog.Any("error", err))
		errorResponse(c, http.StatusInternalServerError, "failed to count today's warnings")
		return
	}
	c.JSON(http.StatusOK, tracking.WarningCount{Count: count})
}
