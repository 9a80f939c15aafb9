package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"fishguard/internal/service/zone"

	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// simplifyZones applies Douglas-Peucker to every polygon and drops polygons
// that collapse or fall under minArea
func simplifyZones(zones []*zone.ZoneSpatial, tolerance, minArea float64) []*zone.ZoneSpatial {
	var simplifier *simplify.DouglasPeuckerSimplifier
	if tolerance > 0 {
		simplifier = simplify.DouglasPeucker(tolerance)
		log.Printf("Simplifying %d polygons with tolerance %g", len(zones), tolerance)
	}

	kept := make([]*zone.ZoneSpatial, 0, len(zones))
	for _, z := range zones {
		polygon := z.Polygon
		if simplifier != nil {
			polygon = simplifier.Polygon(polygon.Clone())
		}
		if len(polygon) == 0 || len(polygon[0]) < 4 {
			continue
		}
		if minArea > 0 && planar.Area(polygon) < minArea {
			continue
		}

		out := *z
		out.Polygon = polygon
		out.BoundingBox = polygon.Bound()
		kept = append(kept, &out)
	}

	if dropped := len(zones) - len(kept); dropped > 0 {
		log.Printf("Dropped %d degenerate or small polygons", dropped)
	}
	return kept
}

// exportZonesToGeoJSON writes the zones as a WGS84 FeatureCollection
func exportZonesToGeoJSON(zones []*zone.ZoneSpatial, outputFile string) error {
	log.Printf("Exporting %d zones to GeoJSON file: %s", len(zones), outputFile)

	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		feature := geojson.NewFeature(z.Polygon)
		for k, v := range z.Properties {
			feature.Properties[k] = v
		}
		if z.Name != "" {
			feature.Properties["name"] = z.Name
		}
		fc.Append(feature)
	}

	jsonData, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		return err
	}

	log.Printf("Successfully exported zones to %s", outputFile)
	return nil
}
