package routes

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fishguard/internal/config"
	"fishguard/internal/metrics"
	"fishguard/internal/model"
	"fishguard/internal/service/tracking"
	"fishguard/internal/util"

	"github.com/gin-gonic/gin"
)

// ReportService is the ingestion pipeline behind the GPS endpoints
type ReportService interface {
	ProcessReport(ctx context.Context, r tracking.GPSReport) (model.AnalysisResult, error)
	Evaluate(state model.MotionState) model.AnalysisResult
	ZonesPath() string
	Analysis() config.AnalysisConfig
}

type gpsDataRequest struct {
	BoatID     string     `json:"boat_id" binding:"required"`
	BoatName   string     `json:"boat_name"`
	Latitude   *float64   `json:"latitude" binding:"required"`
	Longitude  *float64   `json:"longitude" binding:"required"`
	SpeedKnots *float64   `json:"speed_knots"`
	BearingDeg *float64   `json:"bearing_deg"`
	Timestamp  *time.Time `json:"timestamp"`
}

type nmeaRequest struct {
	BoatID   string `json:"boat_id" binding:"required"`
	BoatName string `json:"boat_name"`
	Sentence string `json:"sentence" binding:"required"`
}

type analyzeRequest struct {
	Latitude   *float64 `json:"latitude" binding:"required"`
	Longitude  *float64 `json:"longitude" binding:"required"`
	SpeedKnots *float64 `json:"speed_knots"`
	BearingDeg *float64 `json:"bearing_deg"`
}

// GPSHandlers accepts position reports
type GPSHandlers struct {
	svc          ReportService
	sendInterval time.Duration

	// Dispatch runs report processing after the response is written
	Dispatch func(task func())
}

func NewGPSHandlers(svc ReportService, sendInterval time.Duration) *GPSHandlers {
	return &GPSHandlers{
		svc:          svc,
		sendInterval: sendInterval,
		Dispatch:     func(task func()) { go task() },
	}
}

// SetupGPSHandlers registers the ingestion and analysis endpoints
func SetupGPSHandlers(router *gin.RouterGroup, h *GPSHandlers) {
	router.POST("/gps_data", h.ReceiveGPSData)
	router.POST("/nmea", h.ReceiveNMEA)
	router.POST("/analyze", h.Analyze)
	router.GET("/config", h.GetConfig)
	router.GET("/fishing_zones", h.GetFishingZones)
}

// ReceiveGPSData queues a report for background processing
func (h *GPSHandlers) ReceiveGPSData(c *gin.Context) {
	var req gpsDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report := tracking.GPSReport{
		BoatID:     req.BoatID,
		BoatName:   req.BoatName,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		SpeedKnots: req.SpeedKnots,
		BearingDeg: req.BearingDeg,
	}
	if req.Timestamp != nil {
		report.Timestamp = req.Timestamp.UTC()
	}

	metrics.ReportsTotal.WithLabelValues("json").Inc()
	h.enqueue(report)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "report accepted for processing"})
}

// ReceiveNMEA accepts a $GPRMC sentence for a boat
func (h *GPSHandlers) ReceiveNMEA(c *gin.Context) {
	var req nmeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	fix, err := util.ParseGPRMC(req.Sentence)
	if err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	speed, bearing := fix.State.SpeedKnots, fix.State.BearingDeg
	report := tracking.GPSReport{
		BoatID:     req.BoatID,
		BoatName:   req.BoatName,
		Latitude:   fix.State.Position.Lat,
		Longitude:  fix.State.Position.Lon,
		SpeedKnots: &speed,
		BearingDeg: &bearing,
		Timestamp:  fix.Time,
	}

	metrics.ReportsTotal.WithLabelValues("nmea").Inc()
	h.enqueue(report)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "report accepted for processing"})
}

func (h *GPSHandlers) enqueue(report tracking.GPSReport) {
	h.Dispatch(func() {
		if _, err := h.svc.ProcessReport(context.Background(), report); err != nil {
			slog.Error("background report processing failed",
				slog.String("boat_id", report.BoatID),
				slog.Any("error", err),
			)
		}
	})
}

// Analyze evaluates a position synchronously without storing it
func (h *GPSHandlers) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	state := tracking.GPSReport{
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		SpeedKnots: req.SpeedKnots,
		BearingDeg: req.BearingDeg,
	}.MotionState()

	result := h.svc.Evaluate(state)
	resp := gin.H{
		"warning_level":   result.Level,
		"prediction_path": result.Path,
	}
	if !result.OK() {
		resp["error"] = result.Err.Kind.String()
	}
	c.JSON(http.StatusOK, resp)
}

// GetConfig returns the analysis parameters in use
func (h *GPSHandlers) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"analysis_parameters": h.svc.Analysis(),
		"frontend_parameters": gin.H{
			"websocket_send_interval_seconds": h.sendInterval.Seconds(),
		},
	})
}

// GetFishingZones serves the permitted-zone GeoJSON file
func (h *GPSHandlers) GetFishingZones(c *gin.Context) {
	path := h.svc.ZonesPath()
	if _, err := os.Stat(path); err != nil {
		slog.Error("zone file not found", slog.String("path", path))
		c.JSON(http.StatusNotFound, gin.H{"error": "GeoJSON file not found"})
		return
	}
	c.Header("Content-Type", "application/json")
	c.File(path)
}
