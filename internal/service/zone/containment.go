package zone

import (
	"fishguard/internal/model"

	"github.com/paulmach/orb/planar"
)

// Contains reports whether point lies inside at least one zone of zs.
// Points on a polygon's outer boundary count as inside.
func Contains(point model.GeoPoint, zs *ZoneSet) bool {
	p := point.Orb()
	for _, z := range zs.Candidates(p) {
		if planar.PolygonContains(z.Polygon, p) {
			return true
		}
	}
	return false
}

// ZonesAt returns every zone containing point
func ZonesAt(point model.GeoPoint, zs *ZoneSet) []*ZoneSpatial {
	p := point.Orb()

	var out []*ZoneSpatial
	for _, z := range zs.Candidates(p) {
		if planar.PolygonContains(z.Polygon, p) {
			out = append(out, z)
		}
	}
	return out
}
