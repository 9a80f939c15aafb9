package model

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
)

// StationarySpeedKnots is the speed at or below which a vessel is treated as not moving.
const StationarySpeedKnots = 0.1

// GeoPoint is a WGS84 position in decimal degrees.
type GeoPoint struct {
	Lon float64
	Lat float64
}

// Valid reports whether the point lies within the geographic coordinate ranges.
// NaN coordinates are never valid.
func (p GeoPoint) Valid() bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// Orb converts the point to an orb.Point ([lon, lat])
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// MarshalJSON encodes the point as a GeoJSON style [lon, lat] pair
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

// UnmarshalJSON decodes a [lon, lat] pair
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [lon, lat], got %d values", len(pair))
	}
	p.Lon, p.Lat = pair[0], pair[1]
	return nil
}

// MotionState is a single vessel report: position, speed over ground and course.
type MotionState struct {
	Position   GeoPoint
	SpeedKnots float64 // >= 0
	BearingDeg float64 // [0, 360), 0 = north, clockwise
}

// Stationary reports whether the vessel is moving too slowly for dead reckoning.
func (s MotionState) Stationary() bool {
	return s.SpeedKnots <= StationarySpeedKnots
}

// PredictionPath starts with the current position followed by one projected
// point per configured horizon, ascending.
type PredictionPath []GeoPoint
