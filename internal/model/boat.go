package model

import "time"

// Boat is a tracked vessel
type Boat struct {
	ID             string    `json:"boat_id" gorm:"column:boat_id;primaryKey;size:64"`
	Name           string    `json:"boat_name" gorm:"column:boat_name;size:255"`
	LastUpdateTime time.Time `json:"last_update_time" gorm:"column:last_update_time"`
}

// TableName overrides the table name
func (Boat) TableName() string {
	return "boats"
}

// Position is one stored GPS report
type Position struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	BoatID     string    `json:"-" gorm:"column:boat_id;size:64;not null;index:idx_gps_boat_id"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;index:idx_gps_timestamp"`
	Latitude   float64   `json:"latitude" gorm:"not null"`
	Longitude  float64   `json:"longitude" gorm:"not null"`
	SpeedKnots float64   `json:"-"`
	BearingDeg float64   `json:"-"`
}

// TableName overrides the table name
func (Position) TableName() string {
	return "gps_positions"
}

// Warning is a recorded change of a boat's warning level to a positive level
type Warning struct {
	ID           string    `json:"id" gorm:"primaryKey;size:22"`
	BoatID       string    `json:"boat_id" gorm:"column:boat_id;size:64;not null;index:idx_warnings_boat_id"`
	BoatName     string    `json:"boat_name" gorm:"column:boat_name;->;-:migration"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null;index:idx_warnings_timestamp"`
	WarningLevel int       `json:"warning_level" gorm:"not null"`
	Latitude     float64   `json:"latitude" gorm:"not null"`
	Longitude    float64   `json:"longitude" gorm:"not null"`
	Details      string    `json:"details" gorm:"type:text"`
}

// TableName overrides the table name
func (Warning) TableName() string {
	return "warnings"
}
