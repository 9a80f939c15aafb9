package warning

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"fishguard/internal/config"
	"fishguard/internal/metrics"
	"fishguard/internal/model"
	"fishguard/internal/service/zone"
	"fishguard/internal/util"

	"github.com/mdobak/go-xerrors"
)

// ZoneProvider supplies the indexed zones for a source identity
type ZoneProvider interface {
	LoadOrGetCached(source string) (*zone.ZoneSet, error)
}

// Evaluator derives warning levels from vessel reports. It holds no per-vessel
// state and is safe for concurrent use.
type Evaluator struct {
	zones  ZoneProvider
	logger *slog.Logger
}

// NewEvaluator creates an evaluator reading zones from the given provider
func NewEvaluator(zones ZoneProvider, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{zones: zones, logger: logger}
}

// Evaluate determines the warning level for state against the zones loaded from
// source. It never panics: every failure is reported as a LevelError result.
//
// Level 1 means the vessel is already outside every zone. Otherwise each
// configured horizon is checked in ascending order and the level of the first
// projected position outside all zones is returned; 0 if none is.
func (e *Evaluator) Evaluate(state model.MotionState, source string, cfg config.AnalysisConfig) (result model.AnalysisResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := xerrors.New(fmt.Sprintf("warning analysis panicked: %v", r))
			e.logger.Error("unexpected failure during warning analysis",
				slog.Bool("critical", true),
				slog.String("source", source),
				slog.Any("state", state),
				slog.Any("error", err),
			)
			result = model.Failed(model.ErrComputation, err)
		}
		metrics.ObserveEvaluation(result.Level, time.Since(start))
	}()

	if err := cfg.Validate(); err != nil {
		e.logger.Error("malformed analysis configuration",
			slog.Bool("critical", true),
			slog.Any("error", err),
		)
		return model.Failed(model.ErrComputation, xerrors.New(fmt.Errorf("malformed analysis configuration: %w", err)))
	}

	if !state.Position.Valid() {
		e.logger.Warn("invalid coordinates, skipping analysis",
			slog.Float64("lon", state.Position.Lon),
			slog.Float64("lat", state.Position.Lat),
		)
		return model.Failed(model.ErrValidation,
			fmt.Errorf("coordinates (%v, %v) out of range", state.Position.Lon, state.Position.Lat))
	}

	zones, err := e.zones.LoadOrGetCached(source)
	if err != nil {
		e.logger.Error("zone source unavailable",
			slog.String("source", source),
			slog.Any("error", err),
		)
		return model.Failed(model.ErrZoneSource, err)
	}

	path := model.PredictionPath{state.Position}

	// Stationary vessels are reported as level 0 even when outside a zone
	if state.Stationary() {
		return model.AnalysisResult{Level: model.LevelNone, Path: path}
	}

	if err := checkComputable(state); err != nil {
		e.logger.Error("cannot project vessel position",
			slog.Bool("critical", true),
			slog.String("source", source),
			slog.Any("state", state),
			slog.Any("error", err),
		)
		return model.Failed(model.ErrComputation, err)
	}

	if !zone.Contains(state.Position, zones) {
		return model.AnalysisResult{Level: model.LevelOutside, Path: path}
	}

	path = append(path, Project(state, cfg)...)

	level := model.LevelNone
	for i, lh := range cfg.Levels {
		if !zone.Contains(path[i+1], zones) {
			level = lh.Level
			break
		}
	}

	return model.AnalysisResult{Level: level, Path: path}
}

// Project dead-reckons state forward to every configured horizon, in the
// configuration's ascending-horizon order.
func Project(state model.MotionState, cfg config.AnalysisConfig) []model.GeoPoint {
	speedMps := state.SpeedKnots * cfg.KnotsToMPS

	out := make([]model.GeoPoint, 0, len(cfg.Levels))
	for _, lh := range cfg.Levels {
		distance := speedMps * float64(lh.HorizonSeconds)
		out = append(out, util.Destination(state.Position, state.BearingDeg, distance))
	}
	return out
}

func checkComputable(state model.MotionState) error {
	if !finite(state.SpeedKnots) || !finite(state.BearingDeg) {
		return xerrors.New(errors.New("speed and bearing must be finite numbers"))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
