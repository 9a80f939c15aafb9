package zone

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"fishguard/internal/model"

	"github.com/paulmach/orb"
)

const unitSquareGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "unit square"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[0,1],[1,1],[1,0],[0,0]]]}
    }
  ]
}`

func writeZoneFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write zone file: %v", err)
	}
	return path
}

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{{{minX, minY}, {minX, maxY}, {maxX, maxY}, {maxX, minY}, {minX, minY}}}
}

func countingLoader(calls *atomic.Int32, polygons ...orb.Polygon) Loader {
	return func(source string) ([]*ZoneSpatial, error) {
		calls.Add(1)
		zones := make([]*ZoneSpatial, len(polygons))
		for i, p := range polygons {
			zones[i] = &ZoneSpatial{Feature: i, Polygon: p, BoundingBox: p.Bound()}
		}
		return zones, nil
	}
}

func TestLoadOrGetCachedReusesSnapshot(t *testing.T) {
	var calls atomic.Int32
	svc := NewZoneService(countingLoader(&calls, square(0, 0, 1, 1)), nil)

	first, err := svc.LoadOrGetCached("zones-a")
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	second, err := svc.LoadOrGetCached("zones-a")
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected 1 load, got %d", calls.Load())
	}
	if first != second {
		t.Fatalf("expected the cached snapshot to be returned")
	}
	if svc.Current() != first {
		t.Fatalf("Current does not return the cached snapshot")
	}
}

func TestLoadOrGetCachedSwitchesSource(t *testing.T) {
	var calls atomic.Int32
	svc := NewZoneService(countingLoader(&calls, square(0, 0, 1, 1)), nil)

	a, _ := svc.LoadOrGetCached("zones-a")
	b, err := svc.LoadOrGetCached("zones-b")
	if err != nil {
		t.Fatalf("load of second source failed: %v", err)
	}
	if a == b || b.Source != "zones-b" {
		t.Fatalf("expected a new snapshot for zones-b, got source %q", b.Source)
	}

	// switching back reloads, only the latest source is cached
	if _, err := svc.LoadOrGetCached("zones-a"); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 loads, got %d", calls.Load())
	}
}

func TestLoadOrGetCachedKeepsCacheOnError(t *testing.T) {
	svc := GetZoneService()
	path := writeZoneFile(t, "zones.geojson", unitSquareGeoJSON)

	good, err := svc.LoadOrGetCached(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	_, err = svc.LoadOrGetCached(filepath.Join(t.TempDir(), "missing.geojson"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if svc.Current() != good {
		t.Fatalf("failed load must not replace the cached snapshot")
	}
}

func TestLoadOrGetCachedConcurrent(t *testing.T) {
	var calls atomic.Int32
	svc := NewZoneService(countingLoader(&calls, square(0, 0, 1, 1)), nil)

	var wg sync.WaitGroup
	results := make([]*ZoneSet, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			zs, err := svc.LoadOrGetCached("zones-a")
			if err != nil {
				t.Errorf("load failed: %v", err)
				return
			}
			results[i] = zs
		}(i)
	}
	wg.Wait()

	for i, zs := range results {
		if zs != results[0] {
			t.Fatalf("goroutine %d saw a different snapshot", i)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected concurrent loads to collapse into 1, got %d", calls.Load())
	}
}

func TestLoadGeoJSONFile(t *testing.T) {
	zones, err := LoadGeoJSONFile(writeZoneFile(t, "zones.geojson", unitSquareGeoJSON))
	if err != nil {
		t.Fatalf("LoadGeoJSONFile failed: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	if zones[0].Name != "unit square" {
		t.Fatalf("unexpected name %q", zones[0].Name)
	}
	if zones[0].BoundingBox != (orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}) {
		t.Fatalf("unexpected bounds %v", zones[0].BoundingBox)
	}
}

func TestLoadGeoJSONFileErrors(t *testing.T) {
	if _, err := LoadGeoJSONFile(filepath.Join(t.TempDir(), "nope.geojson")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := LoadGeoJSONFile(writeZoneFile(t, "bad.geojson", "{not json")); err == nil {
		t.Fatalf("expected parse error")
	}

	unsupported := `{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"EPSG:32650"}},"features":[]}`
	if _, err := LoadGeoJSONFile(writeZoneFile(t, "utm.geojson", unsupported)); !errors.Is(err, ErrUnsupportedCRS) {
		t.Fatalf("expected ErrUnsupportedCRS, got %v", err)
	}
}

func TestLoadGeoJSONFileReprojectsMercator(t *testing.T) {
	const mercator = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3857"}},
  "features": [
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[0,111325.14],[111319.49,111325.14],[111319.49,0],[0,0]]]}
    }
  ]
}`
	zones, err := LoadGeoJSONFile(writeZoneFile(t, "mercator.geojson", mercator))
	if err != nil {
		t.Fatalf("LoadGeoJSONFile failed: %v", err)
	}

	zs := NewZoneSet("mercator", zones)
	if !Contains(model.GeoPoint{Lon: 0.5, Lat: 0.5}, zs) {
		t.Fatalf("expected (0.5, 0.5) inside the reprojected zone")
	}
	if Contains(model.GeoPoint{Lon: 1.5, Lat: 0.5}, zs) {
		t.Fatalf("expected (1.5, 0.5) outside the reprojected zone")
	}

	upper := zones[0].BoundingBox.Max
	if upper[0] < 0.9999 || upper[0] > 1.0001 || upper[1] < 0.9999 || upper[1] > 1.0001 {
		t.Fatalf("expected ~1 degree square, got bound max %v", upper)
	}
}

func TestParseGeoJSONGeometryKinds(t *testing.T) {
	cases := []struct {
		name string
		data string
		want int
	}{
		{"bare polygon", `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[0,0]]]}`, 1},
		{"single feature", `{"type":"Feature","properties":null,"geometry":{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[0,0]]]}}`, 1},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[[[[0,0],[0,1],[1,1],[0,0]]],[[[5,5],[5,6],[6,6],[5,5]]]]}`, 2},
		{"points ignored", `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}]}`, 0},
		{"empty collection", `{"type":"FeatureCollection","features":[]}`, 0},
	}
	for _, c := range cases {
		zones, err := ParseGeoJSON([]byte(c.data))
		if err != nil {
			t.Fatalf("%s: ParseGeoJSON failed: %v", c.name, err)
		}
		if len(zones) != c.want {
			t.Fatalf("%s: expected %d zones, got %d", c.name, c.want, len(zones))
		}
	}
}
