package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"fishguard/internal/service/zone"
)

// Command line flags
var (
	osmFilePath  string
	geojsonInput string
	outputFile   string
	tagFilter    string
	tolerance    float64
	minAreaDeg2  float64
	nameFromTag  string
)

func init() {
	flag.StringVar(&osmFilePath, "osm-file", "", "Path to OSM PBF file to extract zones from")
	flag.StringVar(&geojsonInput, "geojson", "", "Path to an existing GeoJSON file (any supported CRS) to normalize")
	flag.StringVar(&outputFile, "output", "data/fishing_zones.geojson", "Output GeoJSON file")
	flag.StringVar(&tagFilter, "tag", "fishing", "OSM tag filter: key or key=value")
	flag.Float64Var(&tolerance, "simplify", 0, "Douglas-Peucker tolerance in degrees, 0 disables simplification")
	flag.Float64Var(&minAreaDeg2, "min-area", 0, "Drop polygons with a planar area below this value (square degrees)")
	flag.StringVar(&nameFromTag, "name-tag", "name", "OSM tag copied to the feature name")
}

func main() {
	flag.Parse()

	if (osmFilePath == "") == (geojsonInput == "") {
		log.Println("Exactly one of -osm-file or -geojson is required")
		flag.Usage()
		os.Exit(2)
	}

	var zones []*zone.ZoneSpatial
	var err error
	if osmFilePath != "" {
		key, value := parseTagFilter(tagFilter)
		p := NewOSMProcessor(key, value, nameFromTag)
		if err = p.ProcessOSMFile(osmFilePath); err == nil {
			zones = p.Zones
		}
	} else {
		log.Printf("Reading GeoJSON file: %s", geojsonInput)
		zones, err = zone.LoadGeoJSONFile(geojsonInput)
	}
	if err != nil {
		log.Fatalf("Failed to read zones: %v", err)
	}

	zones = simplifyZones(zones, tolerance, minAreaDeg2)
	if err := exportZonesToGeoJSON(zones, outputFile); err != nil {
		log.Fatalf("Failed to export zones: %v", err)
	}
}

// parseTagFilter splits "key=value" into its parts; a bare key matches any value but "no"
func parseTagFilter(filter string) (string, string) {
	key, value, _ := strings.Cut(filter, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value)
}
