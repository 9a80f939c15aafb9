package util

import (
	"math"

	"fishguard/internal/model"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for all spherical calculations
const EarthRadiusMeters = 6371000.0

// Destination returns the point reached by travelling distanceMeters from origin
// along a great circle with the given initial bearing (degrees, clockwise from north).
// The longitude of the result is not wrapped into [-180, 180].
func Destination(origin model.GeoPoint, bearingDeg, distanceMeters float64) model.GeoPoint {
	if distanceMeters == 0 {
		return origin
	}

	start := s2.LatLngFromDegrees(origin.Lat, origin.Lon)
	lat1 := start.Lat.Radians()
	lon1 := start.Lng.Radians()
	bearing := (s1.Angle(bearingDeg) * s1.Degree).Radians()
	delta := distanceMeters / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) +
		math.Cos(lat1)*math.Sin(delta)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(math.Sin(bearing)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2))

	return model.GeoPoint{
		Lon: s1.Angle(lon2).Degrees(),
		Lat: s1.Angle(lat2).Degrees(),
	}
}

// HaversineDistance returns the great-circle distance in meters between two points
func HaversineDistance(a, b model.GeoPoint) float64 {
	p1 := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lon))
	p2 := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lon))

	angle := s2.ChordAngleBetweenPoints(p1, p2).Angle()
	return angle.Radians() * EarthRadiusMeters
}

// InitialBearing returns the course in degrees [0, 360) to steer from a towards b
func InitialBearing(a, b model.GeoPoint) float64 {
	from := s2.LatLngFromDegrees(a.Lat, a.Lon)
	to := s2.LatLngFromDegrees(b.Lat, b.Lon)

	dLon := (to.Lng - from.Lng).Radians()
	y := math.Sin(dLon) * math.Cos(to.Lat.Radians())
	x := math.Cos(from.Lat.Radians())*math.Sin(to.Lat.Radians()) -
		math.Sin(from.Lat.Radians())*math.Cos(to.Lat.Radians())*math.Cos(dLon)

	deg := s1.Angle(math.Atan2(y, x)).Degrees()
	return math.Mod(deg+360, 360)
}

// MoveToward moves distanceMeters from start towards end along the great circle.
// If the distance exceeds the remaining length, end is returned.
func MoveToward(start, end model.GeoPoint, distanceMeters float64) model.GeoPoint {
	startPoint := s2.PointFromLatLng(s2.LatLngFromDegrees(start.Lat, start.Lon))
	endPoint := s2.PointFromLatLng(s2.LatLngFromDegrees(end.Lat, end.Lon))

	total := s2.ChordAngleBetweenPoints(startPoint, endPoint).Angle().Radians() * EarthRadiusMeters
	if distanceMeters >= total {
		return end
	}

	fraction := distanceMeters / total
	ll := s2.LatLngFromPoint(s2.Interpolate(fraction, startPoint, endPoint))
	return model.GeoPoint{Lon: ll.Lng.Degrees(), Lat: ll.Lat.Degrees()}
}
