package util

import (
	"errors"
	"math"
	"strings"

	"fishguard/internal/model"
)

// PolylinePrecision is the Google Maps coordinate factor (5 decimal places)
const PolylinePrecision = 1e5

var errTruncatedPolyline = errors.New("polyline is truncated")

// EncodePolyline encodes points with Google's Encoded Polyline Algorithm Format
func EncodePolyline(points []model.GeoPoint) string {
	var sb strings.Builder
	prevLat, prevLon := 0, 0

	for _, p := range points {
		lat := int(math.Round(p.Lat * PolylinePrecision))
		lon := int(math.Round(p.Lon * PolylinePrecision))
		writePolylineValue(&sb, lat-prevLat)
		writePolylineValue(&sb, lon-prevLon)
		prevLat, prevLon = lat, lon
	}

	return sb.String()
}

func writePolylineValue(sb *strings.Builder, v int) {
	shifted := v << 1
	if v < 0 {
		shifted = ^shifted
	}
	for shifted >= 0x20 {
		sb.WriteByte(byte((0x20 | (shifted & 0x1f)) + 63))
		shifted >>= 5
	}
	sb.WriteByte(byte(shifted + 63))
}

// DecodePolyline decodes a Google encoded polyline into points
func DecodePolyline(encoded string) ([]model.GeoPoint, error) {
	var points []model.GeoPoint
	index, lat, lon := 0, 0, 0

	for index < len(encoded) {
		dLat, next, err := readPolylineValue(encoded, index)
		if err != nil {
			return nil, err
		}
		dLon, next, err := readPolylineValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dLat
		lon += dLon
		points = append(points, model.GeoPoint{
			Lon: float64(lon) / PolylinePrecision,
			Lat: float64(lat) / PolylinePrecision,
		})
	}

	return points, nil
}

func readPolylineValue(encoded string, index int) (int, int, error) {
	shift, result := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, errTruncatedPolyline
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Sign is stored in the lowest bit
	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}
