package config

import (
	"math"
	"testing"
)

func TestParseWarningLevels(t *testing.T) {
	levels, err := ParseWarningLevels(" 1:900, 2:1800 ,3:3600,")
	if err != nil {
		t.Fatalf("ParseWarningLevels failed: %v", err)
	}
	want := map[int]int{1: 900, 2: 1800, 3: 3600}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), levels)
	}
	for level, horizon := range want {
		if levels[level] != horizon {
			t.Fatalf("level %d: horizon %d, want %d", level, levels[level], horizon)
		}
	}
}

func TestParseWarningLevelsDecimal(t *testing.T) {
	levels, err := ParseWarningLevels("1:0600,2:0900,03:000")
	if err != nil {
		t.Fatalf("ParseWarningLevels failed: %v", err)
	}
	if levels[1] != 600 || levels[2] != 900 || levels[3] != 0 {
		t.Fatalf("leading zeros must parse as decimal, got %v", levels)
	}
}

func TestParseWarningLevelsRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"1", "a:900", "1:abc", "1:900,1:1800", "1:0x10", "1:-"} {
		if _, err := ParseWarningLevels(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestNewAnalysisConfigSortsByHorizon(t *testing.T) {
	cfg, err := NewAnalysisConfig(map[int]int{3: 60, 1: 3600, 2: 600}, 0)
	if err != nil {
		t.Fatalf("NewAnalysisConfig failed: %v", err)
	}

	wantOrder := []int{3, 2, 1}
	for i, lh := range cfg.Levels {
		if lh.Level != wantOrder[i] {
			t.Fatalf("position %d: level %d, want %d", i, lh.Level, wantOrder[i])
		}
	}
	if cfg.KnotsToMPS != DefaultKnotsToMPS {
		t.Fatalf("expected default factor, got %v", cfg.KnotsToMPS)
	}
}

func TestNewAnalysisConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		levels map[int]int
	}{
		{"level zero", map[int]int{0: 600}},
		{"negative level", map[int]int{-2: 600}},
		{"negative horizon", map[int]int{1: -1}},
	}
	for _, c := range cases {
		if _, err := NewAnalysisConfig(c.levels, DefaultKnotsToMPS); err == nil {
			t.Fatalf("%s: expected validation error", c.name)
		}
	}

	if _, err := NewAnalysisConfig(map[int]int{}, DefaultKnotsToMPS); err != nil {
		t.Fatalf("empty level map should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	unsorted := AnalysisConfig{
		Levels:     []LevelHorizon{{Level: 1, HorizonSeconds: 600}, {Level: 2, HorizonSeconds: 300}},
		KnotsToMPS: DefaultKnotsToMPS,
	}
	if err := unsorted.Validate(); err == nil {
		t.Fatalf("expected error for unsorted levels")
	}

	duplicate := AnalysisConfig{
		Levels:     []LevelHorizon{{Level: 1, HorizonSeconds: 300}, {Level: 1, HorizonSeconds: 600}},
		KnotsToMPS: DefaultKnotsToMPS,
	}
	if err := duplicate.Validate(); err == nil {
		t.Fatalf("expected error for duplicate level")
	}

	for _, factor := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		cfg := AnalysisConfig{KnotsToMPS: factor}
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for factor %v", factor)
		}
	}
}

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()
	if len(cfg.Levels) != 3 {
		t.Fatalf("expected 3 default levels, got %d", len(cfg.Levels))
	}
	if cfg.Levels[0].Level != 1 || cfg.Levels[0].HorizonSeconds != 900 {
		t.Fatalf("unexpected first level %+v", cfg.Levels[0])
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigAnalysis(t *testing.T) {
	c := Config{WarningLevels: "1:300,2:600", KnotsToMPS: 0.5}
	cfg, err := c.Analysis()
	if err != nil {
		t.Fatalf("Analysis failed: %v", err)
	}
	if len(cfg.Levels) != 2 || cfg.KnotsToMPS != 0.5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
