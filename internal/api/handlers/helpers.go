package routes

import (
	"errors"
	"fmt"
	"time"

	"fishguard/internal/model"

	"github.com/gin-gonic/gin"
)

// accepted layouts for start_time / end_time query parameters
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

// timeRange reads the required start_time and end_time query parameters
func timeRange(c *gin.Context) (time.Time, time.Time, error) {
	startRaw, endRaw := c.Query("start_time"), c.Query("end_time")
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, errors.New("start_time and end_time are required")
	}

	start, err := parseTime(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTime(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end_time is before start_time")
	}
	return start, end, nil
}

// ThinPositions keeps every n-th position so that roughly maxPoints remain.
// Histories at or under maxPoints are returned unchanged.
func ThinPositions(positions []model.Position, maxPoints int) []model.Position {
	if maxPoints <= 0 || len(positions) <= maxPoints {
		return positions
	}

	step := len(positions) / maxPoints
	thinned := make([]model.Position, 0, len(positions)/step+1)
	for i := 0; i < len(positions); i += step {
		thinned = append(thinned, positions[i])
	}
	return thinned
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}
