package util

import (
	"math"
	"testing"

	"fishguard/internal/model"
)

const coordEpsilon = 1e-9

func closeTo(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestDestinationZeroDistanceReturnsOrigin(t *testing.T) {
	origins := []model.GeoPoint{
		{Lon: 0, Lat: 0},
		{Lon: 121.47, Lat: 31.23},
		{Lon: -179.9, Lat: -45.5},
		{Lon: 10, Lat: 89.9},
	}
	for _, origin := range origins {
		for bearing := 0.0; bearing < 360; bearing += 45 {
			got := Destination(origin, bearing, 0)
			if !closeTo(got.Lon, origin.Lon, coordEpsilon) || !closeTo(got.Lat, origin.Lat, coordEpsilon) {
				t.Fatalf("Destination(%v, %v, 0) = %v, want origin", origin, bearing, got)
			}
		}
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	origin := model.GeoPoint{Lon: 120.5, Lat: 30.25}
	for bearing := 0.0; bearing < 360; bearing += 30 {
		for _, d := range []float64{10, 1500, 25000} {
			out := Destination(origin, bearing, d)
			back := InitialBearing(out, origin)
			home := Destination(out, back, d)

			if dist := HaversineDistance(origin, home); dist > 0.01 {
				t.Fatalf("bearing %v distance %v: round trip missed origin by %.4fm", bearing, d, dist)
			}
		}
	}
}

func TestDestinationDueEastOnEquator(t *testing.T) {
	got := Destination(model.GeoPoint{Lon: 0, Lat: 0}, 90, 111194.93)
	if !closeTo(got.Lon, 1, 1e-4) || !closeTo(got.Lat, 0, 1e-9) {
		t.Fatalf("expected ~(1, 0), got %v", got)
	}
}

func TestDestinationDoesNotWrapLongitude(t *testing.T) {
	got := Destination(model.GeoPoint{Lon: 179.9, Lat: 0}, 90, 50000)
	if got.Lon <= 180 {
		t.Fatalf("expected unwrapped longitude past 180, got %v", got.Lon)
	}
}

func TestHaversineDistance(t *testing.T) {
	a := model.GeoPoint{Lon: 0, Lat: 0}
	b := model.GeoPoint{Lon: 0, Lat: 1}
	got := HaversineDistance(a, b)
	want := EarthRadiusMeters * math.Pi / 180
	if !closeTo(got, want, 0.01) {
		t.Fatalf("HaversineDistance = %v, want %v", got, want)
	}
	if d := HaversineDistance(a, a); d != 0 {
		t.Fatalf("distance to self = %v", d)
	}
}

func TestInitialBearing(t *testing.T) {
	origin := model.GeoPoint{Lon: 0, Lat: 0}
	cases := []struct {
		to   model.GeoPoint
		want float64
	}{
		{model.GeoPoint{Lon: 0, Lat: 1}, 0},
		{model.GeoPoint{Lon: 1, Lat: 0}, 90},
		{model.GeoPoint{Lon: 0, Lat: -1}, 180},
		{model.GeoPoint{Lon: -1, Lat: 0}, 270},
	}
	for _, c := range cases {
		if got := InitialBearing(origin, c.to); !closeTo(got, c.want, 1e-9) {
			t.Fatalf("InitialBearing to %v = %v, want %v", c.to, got, c.want)
		}
	}
}

func TestMoveToward(t *testing.T) {
	start := model.GeoPoint{Lon: 0, Lat: 0}
	end := model.GeoPoint{Lon: 0, Lat: 2}
	total := HaversineDistance(start, end)

	mid := MoveToward(start, end, total/2)
	if !closeTo(mid.Lat, 1, 1e-6) || !closeTo(mid.Lon, 0, 1e-9) {
		t.Fatalf("midpoint = %v, want (0, 1)", mid)
	}

	if got := MoveToward(start, end, total*2); got != end {
		t.Fatalf("overshoot = %v, want end %v", got, end)
	}
}
