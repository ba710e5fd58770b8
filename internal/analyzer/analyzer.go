// Package analyzer is the single public entry point of the pivot engine: it
// validates and preprocesses a bar series, builds the indicator suite,
// dispatches to the configured strategy scorer, assesses pivot quality and
// assembles the final result. Detect never fails: a bad series yields a
// well-formed empty result with a reason, never an error to the caller.
package analyzer

import (
	"fmt"
	"log"

	"pivotscan/internal/indicator"
	"pivotscan/internal/strategy"
	"pivotscan/pkg/model"
)

// MinBars is the minimum series length the engine accepts.
const MinBars = 30

// Status tags how a result was produced, so callers and tests can
// distinguish a clean computation from a fallback without sentinel values.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusEmpty    Status = "empty"
)

// FilterStats summarizes how much the strategy filter removed from the raw
// candidate pool.
type FilterStats struct {
	HighsDropped int     `json:"highs_dropped"`
	LowsDropped  int     `json:"lows_dropped"`
	FilterRatio  float64 `json:"filter_ratio"`
}

// Result is the standardized analysis output consumed by the chart, report
// and persistence collaborators.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`

	Strategy    string            `json:"strategy"`
	Sensitivity model.Sensitivity `json:"sensitivity"`
	Frequency   model.Frequency   `json:"frequency"`

	RawHighs []int `json:"raw_highs"`
	RawLows  []int `json:"raw_lows"`

	FilteredHighs []model.Pivot `json:"filtered_highs"`
	FilteredLows  []model.Pivot `json:"filtered_lows"`

	Quality model.QualityMetrics `json:"quality"`
	Suite   *indicator.Suite     `json:"-"`
	Report  Report               `json:"report"`
	Premium PremiumMetrics       `json:"premium"`
	Filter  FilterStats          `json:"filter_effectiveness"`
}

// Analyzer owns the static scoring configuration. It holds no per-call
// state: every Detect call reads only its own inputs and writes only its own
// return value, so calls are safe to run concurrently across symbols.
type Analyzer struct {
	weights strategy.Weights
	caps    strategy.Capabilities
}

// New creates an analyzer with the default weights and built-in
// capabilities.
func New() *Analyzer {
	return NewWithCapabilities(strategy.DefaultCapabilities())
}

// NewWithCapabilities creates an analyzer with injected capabilities, letting
// callers (and tests) swap or disable the statistical and anomaly backends.
func NewWithCapabilities(caps strategy.Capabilities) *Analyzer {
	return &Analyzer{
		weights: strategy.DefaultWeights(),
		caps:    caps,
	}
}

// Detect runs the full pipeline on one bar series. It is guaranteed not to
// panic or return an error: every internal fault is converted into an empty
// result carrying a diagnostic reason.
func (a *Analyzer) Detect(bars []model.Bar, cfg model.AnalysisConfig) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ANALYZER] recovered from unexpected fault: %v", r)
			result = emptyResult(cfg, fmt.Sprintf("unexpected fault: %v", r))
		}
	}()

	if len(bars) < MinBars {
		return emptyResult(cfg, fmt.Sprintf("insufficient data: %d bars, need at least %d", len(bars), MinBars))
	}

	cleaned := preprocess(bars)
	suite := indicator.Build(cleaned)

	scorer := strategy.New(strategy.ParseKind(cfg.Strategy), a.caps, a.weights)
	set := scorer.Score(cleaned, suite, cfg.Sensitivity)

	closes := make([]float64, len(cleaned))
	for i, b := range cleaned {
		closes[i] = b.Close
	}
	quality := AssessQuality(set.FilteredHighs, set.FilteredLows, closes)

	status := StatusOK
	reason := ""
	if set.Degraded {
		status = StatusDegraded
		reason = set.DegradeReason
	}

	return Result{
		Status:        status,
		Reason:        reason,
		Strategy:      scorer.Name(),
		Sensitivity:   cfg.Sensitivity,
		Frequency:     cfg.Frequency,
		RawHighs:      set.RawHighs,
		RawLows:       set.RawLows,
		FilteredHighs: toPivots(set.FilteredHighs, cleaned),
		FilteredLows:  toPivots(set.FilteredLows, cleaned),
		Quality:       quality,
		Suite:         suite,
		Report:        buildReport(scorer.Name(), cfg.Sensitivity, len(set.FilteredHighs), len(set.FilteredLows), quality, suite),
		Premium:       premiumMetrics(cleaned, set.FilteredLows, cfg.Frequency),
		Filter:        filterStats(set),
	}
}

func toPivots(cs []strategy.Candidate, bars []model.Bar) []model.Pivot {
	pivots := make([]model.Pivot, 0, len(cs))
	for _, c := range cs {
		pivots = append(pivots, model.Pivot{
			Index: c.Index,
			Time:  bars[c.Index].Time,
			Price: c.Price,
			Score: c.Score,
			Kind:  c.Kind,
		})
	}
	return pivots
}

func filterStats(set strategy.PivotSet) FilterStats {
	rawTotal := len(set.RawHighs) + len(set.RawLows)
	filteredTotal := len(set.FilteredHighs) + len(set.FilteredLows)
	fs := FilterStats{
		HighsDropped: len(set.RawHighs) - len(set.FilteredHighs),
		LowsDropped:  len(set.RawLows) - len(set.FilteredLows),
	}
	if rawTotal > 0 {
		fs.FilterRatio = 1 - float64(filteredTotal)/float64(rawTotal)
	}
	return fs
}

// emptyResult is the well-formed zero-pivot result used for short series and
// for faults caught at the facade boundary.
func emptyResult(cfg model.AnalysisConfig, reason string) Result {
	return Result{
		Status:        StatusEmpty,
		Reason:        reason,
		Strategy:      cfg.Strategy,
		Sensitivity:   cfg.Sensitivity,
		Frequency:     cfg.Frequency,
		RawHighs:      []int{},
		RawLows:       []int{},
		FilteredHighs: []model.Pivot{},
		FilteredLows:  []model.Pivot{},
		Quality:       neutralQuality(),
		Report: Report{
			Summary: fmt.Sprintf("Detection skipped: %s", reason),
		},
		Premium: PremiumMetrics{Reason: reason},
	}
}
