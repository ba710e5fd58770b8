// Package strategy implements the interchangeable pivot-identification
// strategies. Every scorer shares the same signature and is deterministic and
// side-effect-free; a strategy whose required capability is unavailable
// degrades to the ensemble scorer instead of failing.
package strategy

import (
	"pivotscan/internal/indicator"
	"pivotscan/pkg/model"
)

// Kind is the closed strategy enum. Names are resolved once at construction;
// the engine never dispatches on strings at detection time.
type Kind int

const (
	Ensemble Kind = iota
	Fractal
	Statistical
	Anomaly
	MultiTimeframe
	Microstructure
)

// ParseKind maps a caller-facing strategy name to its Kind. Unknown names and
// legacy aliases resolve to Ensemble.
func ParseKind(name string) Kind {
	switch name {
	case "fractal":
		return Fractal
	case "statistical":
		return Statistical
	case "anomaly":
		return Anomaly
	case "multiTimeframe", "multi_timeframe":
		return MultiTimeframe
	case "microstructure":
		return Microstructure
	default:
		// Includes "ensemble" and legacy aliases such as
		// "enterprise_ensemble" and "zigzag_atr".
		return Ensemble
	}
}

// Candidate is a pivot candidate with its acceptance score.
type Candidate struct {
	Index int
	Price float64
	Score float64 // 0-1
	Kind  model.PivotKind
}

// PivotSet is the result of one scoring pass. Filtered lists are subsets of
// the raw index lists, sorted descending by score with ties kept in temporal
// order. A set is created fresh per call and never persisted internally.
type PivotSet struct {
	RawHighs []int
	RawLows  []int

	FilteredHighs []Candidate
	FilteredLows  []Candidate

	// Per-point scores for every raw candidate, keyed by bar index.
	HighScores map[int]float64
	LowScores  map[int]float64

	// Degraded marks a set produced by the ensemble fallback after the
	// requested strategy reported its capability unavailable.
	Degraded      bool
	DegradeReason string
}

// Scorer is the single operation every strategy implements.
type Scorer interface {
	Name() string
	Score(bars []model.Bar, suite *indicator.Suite, sensitivity model.Sensitivity) PivotSet
}

// Preset bundles the two numbers a sensitivity level fixes: minimum
// raw-extrema spacing and the acceptance-score threshold. Presets are applied
// identically across strategies.
type Preset struct {
	MinDistance    int
	ScoreThreshold float64
}

// PresetFor returns the immutable preset for a sensitivity level.
func PresetFor(s model.Sensitivity) Preset {
	switch s {
	case model.Conservative:
		return Preset{MinDistance: 5, ScoreThreshold: 0.7}
	case model.Aggressive:
		return Preset{MinDistance: 2, ScoreThreshold: 0.3}
	default:
		return Preset{MinDistance: 3, ScoreThreshold: 0.5}
	}
}

// Capabilities carries the optional capabilities the statistical and anomaly
// filters depend on. A missing capability is an ordinary branch: the owning
// strategy degrades to the ensemble scorer.
type Capabilities struct {
	Stats   StatsProvider
	Anomaly AnomalyDetector
}

// DefaultCapabilities returns the built-in capability implementations.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		Stats:   TTester{},
		Anomaly: NewRobustDistanceDetector(0.15),
	}
}

// New constructs the scorer for a strategy kind. The reserved pass-through
// kinds delegate to the ensemble scorer under their own names so selecting
// them never errors.
func New(kind Kind, caps Capabilities, weights Weights) Scorer {
	ensemble := NewEnsembleScorer(weights)
	switch kind {
	case Fractal:
		return &FractalScorer{}
	case Statistical:
		return &StatisticalScorer{stats: caps.Stats, fallback: ensemble}
	case Anomaly:
		return &AnomalyScorer{detector: caps.Anomaly, fallback: ensemble}
	case MultiTimeframe:
		return passthrough{name: "multiTimeframe", EnsembleScorer: ensemble}
	case Microstructure:
		return passthrough{name: "microstructure", EnsembleScorer: ensemble}
	default:
		return ensemble
	}
}

// passthrough keeps a reserved strategy name selectable while delegating the
// actual scoring to the ensemble implementation.
type passthrough struct {
	name string
	*EnsembleScorer
}

func (p passthrough) Name() string { return p.name }

// closeSeries extracts the close array from bars.
func closeSeries(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// highLowSeries extracts the high and low arrays from bars.
func highLowSeries(bars []model.Bar) (highs, lows []float64) {
	highs = make([]float64, len(bars))
	lows = make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}
	return highs, lows
}
