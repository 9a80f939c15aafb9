package util

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fishguard/internal/model"
)

var (
	ErrNotGPRMC          = errors.New("not a GPRMC sentence")
	ErrBadChecksum       = errors.New("NMEA checksum mismatch")
	ErrInvalidFix        = errors.New("GPRMC status is not valid (A)")
	ErrMalformedSentence = errors.New("malformed NMEA sentence")
)

// RMCFix is the navigation data carried by a $GPRMC sentence
type RMCFix struct {
	Time  time.Time
	State model.MotionState
}

// FormatGPRMC builds a $GPRMC sentence with checksum. Coordinates are written as
// DDMM.MM / DDDMM.MM, speed in knots and course in degrees with one decimal.
func FormatGPRMC(p model.GeoPoint, speedKnots, bearingDeg float64, ts time.Time) string {
	ts = ts.UTC()

	latDir := "N"
	if p.Lat < 0 {
		latDir = "S"
	}
	lonDir := "E"
	if p.Lon < 0 {
		lonDir = "W"
	}

	body := fmt.Sprintf("GPRMC,%s,A,%s,%s,%s,%s,%.1f,%.1f,%s,,,",
		ts.Format("150405.00"),
		formatNMEACoord(math.Abs(p.Lat), 2), latDir,
		formatNMEACoord(math.Abs(p.Lon), 3), lonDir,
		speedKnots, bearingDeg,
		ts.Format("020106"),
	)

	return fmt.Sprintf("$%s*%02X", body, nmeaChecksum(body))
}

func formatNMEACoord(deg float64, degWidth int) string {
	whole := math.Floor(deg)
	minutes := (deg - whole) * 60
	return fmt.Sprintf("%0*d%05.2f", degWidth, int(whole), minutes)
}

func nmeaChecksum(body string) byte {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return sum
}

// ParseGPRMC validates and decodes a $GPRMC sentence. Empty speed or course
// fields are read as zero.
func ParseGPRMC(sentence string) (RMCFix, error) {
	sentence = strings.TrimSpace(sentence)
	if !strings.HasPrefix(sentence, "$") {
		return RMCFix{}, ErrMalformedSentence
	}

	body, sum, found := strings.Cut(sentence[1:], "*")
	if !found || len(sum) != 2 {
		return RMCFix{}, ErrMalformedSentence
	}
	want, err := strconv.ParseUint(sum, 16, 8)
	if err != nil {
		return RMCFix{}, ErrMalformedSentence
	}
	if nmeaChecksum(body) != byte(want) {
		return RMCFix{}, ErrBadChecksum
	}

	fields := strings.Split(body, ",")
	if len(fields) < 10 || !strings.HasSuffix(fields[0], "RMC") {
		return RMCFix{}, ErrNotGPRMC
	}
	if fields[2] != "A" {
		return RMCFix{}, ErrInvalidFix
	}

	lat, err := parseNMEACoord(fields[3], fields[4], 2)
	if err != nil {
		return RMCFix{}, err
	}
	lon, err := parseNMEACoord(fields[5], fields[6], 3)
	if err != nil {
		return RMCFix{}, err
	}
	speed, err := parseOptionalFloat(fields[7])
	if err != nil {
		return RMCFix{}, fmt.Errorf("%w: speed: %v", ErrMalformedSentence, err)
	}
	course, err := parseOptionalFloat(fields[8])
	if err != nil {
		return RMCFix{}, fmt.Errorf("%w: course: %v", ErrMalformedSentence, err)
	}

	clock := fields[1]
	if i := strings.IndexByte(clock, '.'); i >= 0 {
		clock = clock[:i]
	}
	ts, err := time.ParseInLocation("020106150405", fields[9]+clock, time.UTC)
	if err != nil {
		return RMCFix{}, fmt.Errorf("%w: time: %v", ErrMalformedSentence, err)
	}

	return RMCFix{
		Time: ts,
		State: model.MotionState{
			Position:   model.GeoPoint{Lon: lon, Lat: lat},
			SpeedKnots: speed,
			BearingDeg: course,
		},
	}, nil
}

func parseNMEACoord(value, hemisphere string, degWidth int) (float64, error) {
	if len(value) < degWidth+1 {
		return 0, fmt.Errorf("%w: coordinate %q", ErrMalformedSentence, value)
	}
	deg, err := strconv.Atoi(value[:degWidth])
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", ErrMalformedSentence, value)
	}
	minutes, err := strconv.ParseFloat(value[degWidth:], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: coordinate %q", ErrMalformedSentence, value)
	}

	out := float64(deg) + minutes/60
	switch hemisphere {
	case "N", "E":
	case "S", "W":
		out = -out
	default:
		return 0, fmt.Errorf("%w: hemisphere %q", ErrMalformedSentence, hemisphere)
	}
	return out, nil
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
