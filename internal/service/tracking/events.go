package tracking

import "fishguard/internal/model"

// Events pushed to connected clients
const (
	EventGPSUpdate         = "gps_update"
	EventWarningCreated    = "warning_created"
	EventTodayWarningCount = "today_warning_count_update"
)

// GPSUpdate is the realtime position message for map clients
type GPSUpdate struct {
	BoatID         string               `json:"boat_id"`
	BoatName       string               `json:"boat_name,omitempty"`
	Lat            float64              `json:"lat"`
	Lon            float64              `json:"lon"`
	SpeedKnots     float64              `json:"speed_knots"`
	BearingDeg     float64              `json:"bearing_deg"`
	WarningLevel   int                  `json:"warning_level"`
	PredictionPath model.PredictionPath `json:"prediction_path"`
	Timestamp      string               `json:"timestamp"`
}

// WarningCreated announces a newly recorded warning
type WarningCreated struct {
	ID             string               `json:"id"`
	BoatID         string               `json:"boat_id"`
	BoatName       string               `json:"boat_name,omitempty"`
	WarningLevel   int                  `json:"warning_level"`
	Latitude       float64              `json:"latitude"`
	Longitude      float64              `json:"longitude"`
	Timestamp      string               `json:"timestamp"`
	Details        string               `json:"details"`
	PredictionPath model.PredictionPath `json:"prediction_path"`
}

// WarningCount carries the number of warnings recorded today
type WarningCount struct {
	Count int64 `json:"count"`
}
