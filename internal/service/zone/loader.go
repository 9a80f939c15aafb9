package zone

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

var (
	// ErrNotFound is returned when the zone source does not exist
	ErrNotFound = errors.New("zone source not found")

	// ErrUnsupportedCRS is returned for coordinate reference systems that cannot be reprojected
	ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")
)

// crsMember is the legacy GeoJSON "crs" member; RFC 7946 files omit it and are WGS84
type crsMember struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type geoJSONHeader struct {
	Type string     `json:"type"`
	CRS  *crsMember `json:"crs"`
}

// LoadGeoJSONFile reads permitted zones from a GeoJSON file. Polygon and
// MultiPolygon geometries are kept; other geometry types are ignored.
func LoadGeoJSONFile(path string) ([]*ZoneSpatial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, xerrors.New(fmt.Errorf("%w: %s", ErrNotFound, path))
		}
		return nil, xerrors.New(fmt.Errorf("read zone file %s: %w", path, err))
	}

	zones, err := ParseGeoJSON(data)
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("parse zone file %s: %w", path, err))
	}
	return zones, nil
}

// ParseGeoJSON decodes a FeatureCollection, Feature or bare geometry and
// normalizes it to WGS84.
func ParseGeoJSON(data []byte) ([]*ZoneSpatial, error) {
	var header geoJSONHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, err
	}

	toWGS84, err := projectionFor(header.CRS)
	if err != nil {
		return nil, err
	}

	var features []*geojson.Feature
	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		features = fc.Features
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		features = []*geojson.Feature{f}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		features = []*geojson.Feature{geojson.NewFeature(g.Geometry())}
	}

	var zones []*ZoneSpatial
	for i, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		geom := f.Geometry
		if toWGS84 != nil {
			geom = project.Geometry(orb.Clone(geom), toWGS84)
		}

		for _, poly := range polygonsOf(geom) {
			zones = append(zones, &ZoneSpatial{
				Feature:     i,
				Name:        f.Properties.MustString("name", ""),
				Polygon:     poly,
				BoundingBox: poly.Bound(),
				Properties:  f.Properties,
			})
		}
	}
	return zones, nil
}

func polygonsOf(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return nil
		}
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		out := make([]orb.Polygon, 0, len(geom))
		for _, p := range geom {
			if len(p) > 0 {
				out = append(out, p)
			}
		}
		return out
	case orb.Collection:
		var out []orb.Polygon
		for _, sub := range geom {
			out = append(out, polygonsOf(sub)...)
		}
		return out
	default:
		return nil
	}
}

// projectionFor returns nil when the data is already geographic WGS84
func projectionFor(crs *crsMember) (orb.Projection, error) {
	if crs == nil || crs.Properties.Name == "" {
		return nil, nil
	}

	name := strings.ToUpper(crs.Properties.Name)
	if strings.HasSuffix(name, "CRS84") {
		return nil, nil
	}

	code := name
	if i := strings.LastIndex(name, ":"); i >= 0 {
		code = name[i+1:]
	}
	switch code {
	case "4326":
		return nil, nil
	case "3857", "900913", "3785", "102100":
		return project.Mercator.ToWGS84, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCRS, crs.Properties.Name)
	}
}
