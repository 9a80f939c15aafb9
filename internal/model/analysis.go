package model

import "fmt"

// Warning levels returned by the analyzer. Levels above LevelOutside are
// defined by the configured horizons.
const (
	LevelError   = -1
	LevelNone    = 0
	LevelOutside = 1
)

// ErrorKind classifies why an analysis did not complete
type ErrorKind int

const (
	ErrValidation ErrorKind = iota + 1
	ErrZoneSource
	ErrComputation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrValidation:
		return "validation"
	case ErrZoneSource:
		return "zone_source"
	case ErrComputation:
		return "computation"
	default:
		return "unknown"
	}
}

// AnalysisError is attached to an AnalysisResult whose level is LevelError.
type AnalysisError struct {
	Kind ErrorKind
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// AnalysisResult is the outcome of evaluating one MotionState.
// Err is set if and only if Level == LevelError.
type AnalysisResult struct {
	Level int            `json:"warning_level"`
	Path  PredictionPath `json:"prediction_path"`
	Err   *AnalysisError `json:"-"`
}

// Failed builds the error result: level -1 and an empty path.
func Failed(kind ErrorKind, err error) AnalysisResult {
	return AnalysisResult{
		Level: LevelError,
		Path:  PredictionPath{},
		Err:   &AnalysisError{Kind: kind, Err: err},
	}
}

// OK reports whether the analysis completed
func (r AnalysisResult) OK() bool {
	return r.Err == nil
}
