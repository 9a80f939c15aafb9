package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

const (
	// DefaultKnotsToMPS converts knots (nautical miles per hour) to meters per second
	DefaultKnotsToMPS = 1.852 / 3.6

	// DefaultWarningLevels maps level to lookahead horizon in seconds
	DefaultWarningLevels = "1:900,2:1800,3:3600"
)

// LevelHorizon pairs a warning level with its lookahead horizon
type LevelHorizon struct {
	Level          int `json:"level"`
	HorizonSeconds int `json:"horizon_seconds"`
}

// AnalysisConfig is the analyzer configuration. Levels are kept sorted by
// ascending horizon so the most urgent failing horizon is found first.
type AnalysisConfig struct {
	Levels     []LevelHorizon `json:"warning_levels"`
	KnotsToMPS float64        `json:"knots_to_mps"`
}

// NewAnalysisConfig validates a level -> horizon mapping and sorts it by horizon.
// A non-positive factor falls back to DefaultKnotsToMPS.
func NewAnalysisConfig(levels map[int]int, knotsToMPS float64) (AnalysisConfig, error) {
	if knotsToMPS <= 0 {
		knotsToMPS = DefaultKnotsToMPS
	}

	cfg := AnalysisConfig{
		Levels:     make([]LevelHorizon, 0, len(levels)),
		KnotsToMPS: knotsToMPS,
	}
	for level, horizon := range levels {
		cfg.Levels = append(cfg.Levels, LevelHorizon{Level: level, HorizonSeconds: horizon})
	}
	sort.Slice(cfg.Levels, func(i, j int) bool {
		a, b := cfg.Levels[i], cfg.Levels[j]
		if a.HorizonSeconds != b.HorizonSeconds {
			return a.HorizonSeconds < b.HorizonSeconds
		}
		return a.Level < b.Level
	})

	if err := cfg.Validate(); err != nil {
		return AnalysisConfig{}, err
	}
	return cfg, nil
}

// DefaultAnalysisConfig returns the built-in horizons
func DefaultAnalysisConfig() AnalysisConfig {
	levels, _ := ParseWarningLevels(DefaultWarningLevels)
	cfg, _ := NewAnalysisConfig(levels, DefaultKnotsToMPS)
	return cfg
}

// Validate checks the invariants the analyzer relies on
func (c AnalysisConfig) Validate() error {
	if math.IsNaN(c.KnotsToMPS) || math.IsInf(c.KnotsToMPS, 0) || c.KnotsToMPS <= 0 {
		return fmt.Errorf("knots to m/s factor must be positive, got %v", c.KnotsToMPS)
	}

	seen := make(map[int]struct{}, len(c.Levels))
	for i, lh := range c.Levels {
		if lh.Level < 1 {
			return fmt.Errorf("warning level must be >= 1, got %d", lh.Level)
		}
		if lh.HorizonSeconds < 0 {
			return fmt.Errorf("horizon for level %d must be >= 0, got %d", lh.Level, lh.HorizonSeconds)
		}
		if _, dup := seen[lh.Level]; dup {
			return fmt.Errorf("warning level %d configured twice", lh.Level)
		}
		seen[lh.Level] = struct{}{}
		if i > 0 && c.Levels[i-1].HorizonSeconds > lh.HorizonSeconds {
			return errors.New("warning levels are not sorted by horizon")
		}
	}
	return nil
}

// ParseWarningLevels parses "level:seconds" pairs separated by commas,
// e.g. "1:900,2:1800".
func ParseWarningLevels(raw string) (map[int]int, error) {
	levels := make(map[int]int)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		levelStr, horizonStr, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("invalid warning level entry %q, want level:seconds", item)
		}
		level, err := parseDecimal(levelStr)
		if err != nil {
			return nil, fmt.Errorf("invalid warning level %q: %w", levelStr, err)
		}
		horizon, err := parseDecimal(horizonStr)
		if err != nil {
			return nil, fmt.Errorf("invalid horizon %q: %w", horizonStr, err)
		}
		if _, dup := levels[level]; dup {
			return nil, fmt.Errorf("warning level %d configured twice", level)
		}
		levels[level] = horizon
	}
	return levels, nil
}

// parseDecimal reads a base 10 integer. Leading zeros are dropped first since
// cast treats them as an octal prefix.
func parseDecimal(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	sign := ""
	if strings.HasPrefix(raw, "-") || strings.HasPrefix(raw, "+") {
		sign, raw = raw[:1], raw[1:]
	}
	if trimmed := strings.TrimLeft(raw, "0"); trimmed != raw {
		if trimmed == "" {
			trimmed = "0"
		}
		raw = trimmed
	}
	return cast.ToIntE(sign + raw)
}
