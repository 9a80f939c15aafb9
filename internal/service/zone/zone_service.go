package zone

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"fishguard/internal/metrics"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"golang.org/x/sync/singleflight"
)

const (
	// minimum R-tree edge, keeps degenerate (zero width or height) bounds indexable
	minRectEdge = 1e-12

	// half-size of the search rectangle used for point queries
	pointTolerance = 1e-9
)

// ZoneSpatial is one permitted-zone polygon with its cached bounding box, indexed in the R-tree
type ZoneSpatial struct {
	Feature     int            // index of the source feature
	Name        string         // "name" property of the source feature, if any
	Polygon     orb.Polygon    // WGS84 polygon
	BoundingBox orb.Bound      // bounds of Polygon
	Properties  map[string]any // source feature properties
}

// Bounds implements the rtreego.Spatial interface
func (z *ZoneSpatial) Bounds() rtreego.Rect {
	minX, minY := z.BoundingBox.Min[0], z.BoundingBox.Min[1]
	maxX, maxY := z.BoundingBox.Max[0], z.BoundingBox.Max[1]

	rect, _ := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, minRectEdge), math.Max(maxY-minY, minRectEdge)},
	)
	return rect
}

// ZoneSet is an immutable snapshot of the zones loaded from one source together
// with the index built over them. A ZoneSet is never modified after creation.
type ZoneSet struct {
	Source   string
	Zones    []*ZoneSpatial
	LoadedAt time.Time

	index *rtreego.Rtree
}

// NewZoneSet indexes zones for the given source identity
func NewZoneSet(source string, zones []*ZoneSpatial) *ZoneSet {
	objs := make([]rtreego.Spatial, len(zones))
	for i, z := range zones {
		objs[i] = z
	}

	return &ZoneSet{
		Source:   source,
		Zones:    zones,
		LoadedAt: time.Now(),
		index:    rtreego.NewTree(2, 25, 50, objs...), // 2D index with min 25, max 50 entries per node
	}
}

// Candidates returns the zones whose bounding box contains p
func (zs *ZoneSet) Candidates(p orb.Point) []*ZoneSpatial {
	if zs == nil || len(zs.Zones) == 0 {
		return nil
	}

	results := zs.index.SearchIntersect(rtreego.Point{p[0], p[1]}.ToRect(pointTolerance))
	if len(results) == 0 {
		return nil
	}

	out := make([]*ZoneSpatial, 0, len(results))
	for _, item := range results {
		out = append(out, item.(*ZoneSpatial))
	}
	return out
}

// Len returns the number of indexed polygons
func (zs *ZoneSet) Len() int {
	if zs == nil {
		return 0
	}
	return len(zs.Zones)
}

// Loader reads the zone polygons for a source identity
type Loader func(source string) ([]*ZoneSpatial, error)

// ZoneService caches the ZoneSet of the most recently requested source.
// Readers load the current snapshot without locking; a reload builds a complete
// new snapshot and swaps it in, so geometries and index are never seen out of sync.
type ZoneService struct {
	load    Loader
	current atomic.Pointer[ZoneSet]
	group   singleflight.Group
	logger  *slog.Logger
}

var (
	zoneServiceInstance *ZoneService
	zoneServiceOnce     sync.Once
)

// GetZoneService returns the process-wide ZoneService reading GeoJSON files
func GetZoneService() *ZoneService {
	zoneServiceOnce.Do(func() {
		zoneServiceInstance = NewZoneService(LoadGeoJSONFile, slog.Default())
	})
	return zoneServiceInstance
}

// NewZoneService creates a service with its own cache
func NewZoneService(load Loader, logger *slog.Logger) *ZoneService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ZoneService{load: load, logger: logger}
}

// LoadOrGetCached returns the cached ZoneSet when it was built from source,
// otherwise loads source, indexes it and replaces the cache wholesale.
// Concurrent loads of the same source are collapsed into one.
func (s *ZoneService) LoadOrGetCached(source string) (*ZoneSet, error) {
	if zs := s.current.Load(); zs != nil && zs.Source == source {
		return zs, nil
	}

	v, err, _ := s.group.Do(source, func() (interface{}, error) {
		// Another caller may have finished the same load while we waited
		if zs := s.current.Load(); zs != nil && zs.Source == source {
			return zs, nil
		}

		start := time.Now()
		zones, err := s.load(source)
		if err != nil {
			return nil, err
		}
		zs := NewZoneSet(source, zones)
		s.current.Store(zs)
		metrics.ZoneCacheLoadsTotal.Inc()

		s.logger.Info("zone cache rebuilt",
			slog.String("source", source),
			slog.Int("polygons", zs.Len()),
			slog.Duration("took", time.Since(start)),
		)
		return zs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ZoneSet), nil
}

// Current returns the cached ZoneSet, or nil before the first successful load
func (s *ZoneService) Current() *ZoneSet {
	return s.current.Load()
}
