package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fishguard/internal/config"
	"fishguard/internal/metrics"
	"fishguard/internal/model"
	"fishguard/internal/service/storage"
	"fishguard/internal/util"
)

// GPSReport is one inbound position report. Speed and bearing are optional;
// a missing speed makes the vessel stationary.
type GPSReport struct {
	BoatID     string
	BoatName   string
	Latitude   float64
	Longitude  float64
	SpeedKnots *float64
	BearingDeg *float64
	Timestamp  time.Time
}

// MotionState converts the report for the analyzer
func (r GPSReport) MotionState() model.MotionState {
	state := model.MotionState{
		Position: model.GeoPoint{Lon: r.Longitude, Lat: r.Latitude},
	}
	if r.SpeedKnots != nil {
		state.SpeedKnots = *r.SpeedKnots
	}
	if r.BearingDeg != nil {
		state.BearingDeg = *r.BearingDeg
	}
	return state
}

// Store persists reports and warnings
type Store interface {
	SaveReport(ctx context.Context, boat model.Boat, pos model.Position) error
	InsertWarning(ctx context.Context, w *model.Warning) error
	CountWarningsBetween(ctx context.Context, start, end time.Time) (int64, error)
	BoatName(ctx context.Context, boatID string) (string, error)
}

// Analyzer evaluates a single vessel state
type Analyzer interface {
	Evaluate(state model.MotionState, source string, cfg config.AnalysisConfig) model.AnalysisResult
}

// LevelStore remembers the last warning level of each boat. SwapLevel must be
// atomic per boat and report the previous level and whether it changed.
type LevelStore interface {
	SwapLevel(boatID string, level int) (int, bool)
}

// Broadcaster pushes an event to every connected client
type Broadcaster interface {
	Broadcast(event string, payload any)
}

type Options struct {
	Store        Store
	Analyzer     Analyzer
	Levels       LevelStore
	Broadcaster  Broadcaster
	ZonesPath    string
	Analysis     config.AnalysisConfig
	SendInterval time.Duration // minimum gap between gps_update pushes per boat
	Logger       *slog.Logger
	Now          func() time.Time
}

// TrackingService is the ingestion pipeline: persist, analyze, record warning
// level changes and push realtime updates.
type TrackingService struct {
	store        Store
	analyzer     Analyzer
	levels       LevelStore
	broadcaster  Broadcaster
	zonesPath    string
	analysis     config.AnalysisConfig
	sendInterval time.Duration
	logger       *slog.Logger
	now          func() time.Time

	lastSent *storage.ShardedMemoryStorage[string, time.Time]
}

func NewTrackingService(opts Options) *TrackingService {
	s := &TrackingService{
		store:        opts.Store,
		analyzer:     opts.Analyzer,
		levels:       opts.Levels,
		broadcaster:  opts.Broadcaster,
		zonesPath:    opts.ZonesPath,
		analysis:     opts.Analysis,
		sendInterval: opts.SendInterval,
		logger:       opts.Logger,
		now:          opts.Now,
		lastSent:     storage.NewShardedMemoryStorage[string, time.Time](16, nil).WithoutDirtyTracking(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ZonesPath returns the zone source the service analyzes against
func (s *TrackingService) ZonesPath() string {
	return s.zonesPath
}

// Analysis returns the analyzer configuration in use
func (s *TrackingService) Analysis() config.AnalysisConfig {
	return s.analysis
}

// Evaluate runs the analyzer without persisting anything
func (s *TrackingService) Evaluate(state model.MotionState) model.AnalysisResult {
	return s.analyzer.Evaluate(state, s.zonesPath, s.analysis)
}

// ProcessReport stores the report, analyzes it, records a warning when the
// boat's level changed to a positive value and pushes a throttled update.
// A storage failure is logged and returned, but analysis and pushes still run.
func (s *TrackingService) ProcessReport(ctx context.Context, r GPSReport) (model.AnalysisResult, error) {
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	state := r.MotionState()

	boat := model.Boat{ID: r.BoatID, Name: r.BoatName, LastUpdateTime: r.Timestamp}
	pos := model.Position{
		BoatID:     r.BoatID,
		Timestamp:  r.Timestamp,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		SpeedKnots: state.SpeedKnots,
		BearingDeg: state.BearingDeg,
	}
	var saveErr error
	if err := s.store.SaveReport(ctx, boat, pos); err != nil {
		s.logger.Error("failed to store position report, continuing with analysis",
			slog.String("boat_id", r.BoatID),
			slog.Any("error", err),
		)
		saveErr = fmt.Errorf("save report for boat %s: %w", r.BoatID, err)
	}

	result := s.Evaluate(state)
	if result.OK() {
		s.recordLevel(ctx, r, result)
	}
	s.pushUpdate(r, state, result)

	return result, saveErr
}

func (s *TrackingService) recordLevel(ctx context.Context, r GPSReport, result model.AnalysisResult) {
	last, changed := s.levels.SwapLevel(r.BoatID, result.Level)
	if !changed {
		if result.Level > 0 {
			s.logger.Debug("warning unchanged, not recorded",
				slog.String("boat_id", r.BoatID),
				slog.Int("level", result.Level),
			)
		}
		return
	}

	s.logger.Info("warning level changed",
		slog.String("boat_id", r.BoatID),
		slog.Int("from", last),
		slog.Int("to", result.Level),
	)
	if result.Level > 0 {
		s.insertWarning(ctx, r, result)
	}
}

func (s *TrackingService) insertWarning(ctx context.Context, r GPSReport, result model.AnalysisResult) {
	pathJSON, err := json.Marshal(result.Path)
	if err != nil {
		pathJSON = []byte("[]")
	}

	w := &model.Warning{
		ID:           util.ShortUUID(),
		BoatID:       r.BoatID,
		Timestamp:    r.Timestamp,
		WarningLevel: result.Level,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Details:      "prediction path: " + string(pathJSON),
	}
	if err := s.store.InsertWarning(ctx, w); err != nil {
		s.logger.Error("failed to store warning",
			slog.String("boat_id", r.BoatID),
			slog.Int("level", result.Level),
			slog.Any("error", err),
		)
		return
	}
	metrics.WarningsRecordedTotal.Inc()
	s.logger.Info("warning recorded",
		slog.String("boat_id", r.BoatID),
		slog.Int("level", result.Level),
	)

	boatName := r.BoatName
	if boatName == "" {
		if boatName, err = s.store.BoatName(ctx, r.BoatID); err != nil {
			s.logger.Warn("failed to look up boat name", slog.String("boat_id", r.BoatID), slog.Any("error", err))
		}
	}

	s.broadcaster.Broadcast(EventWarningCreated, WarningCreated{
		ID:             w.ID,
		BoatID:         w.BoatID,
		BoatName:       boatName,
		WarningLevel:   w.WarningLevel,
		Latitude:       w.Latitude,
		Longitude:      w.Longitude,
		Timestamp:      w.Timestamp.Format(time.RFC3339Nano),
		Details:        w.Details,
		PredictionPath: result.Path,
	})

	start, end := DayBounds(s.now())
	count, err := s.store.CountWarningsBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to count today's warnings", slog.Any("error", err))
		return
	}
	s.broadcaster.Broadcast(EventTodayWarningCount, WarningCount{Count: count})
}

func (s *TrackingService) pushUpdate(r GPSReport, state model.MotionState, result model.AnalysisResult) {
	now := s.now()
	send := s.lastSent.SetIf(r.BoatID, func(last time.Time, exists bool) (time.Time, bool) {
		if exists && now.Sub(last) <= s.sendInterval {
			return last, false
		}
		return now, true
	})
	if !send {
		s.logger.Debug("gps update throttled", slog.String("boat_id", r.BoatID))
		return
	}

	s.broadcaster.Broadcast(EventGPSUpdate, GPSUpdate{
		BoatID:         r.BoatID,
		BoatName:       r.BoatName,
		Lat:            r.Latitude,
		Lon:            r.Longitude,
		SpeedKnots:     state.SpeedKnots,
		BearingDeg:     state.BearingDeg,
		WarningLevel:   result.Level,
		PredictionPath: result.Path,
		Timestamp:      r.Timestamp.Format(time.RFC3339Nano),
	})
}

// DayBounds returns the first and last instant of t's calendar day in t's location
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
