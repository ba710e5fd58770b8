package model

import "time"

// Bar represents a single OHLCV sample for a fixed period.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PivotKind distinguishes swing highs from swing lows.
type PivotKind string

const (
	PivotHigh PivotKind = "high"
	PivotLow  PivotKind = "low"
)

// Pivot is a retained swing point with its acceptance score.
type Pivot struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Score float64   `json:"score"` // 0-1
	Kind  PivotKind `json:"kind"`
}

// QualityMetrics summarizes retrospective pivot effectiveness.
// All numeric fields lie in [0,1].
type QualityMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Grade     string  `json:"grade"` // Poor, Fair, Good, Excellent
}

// Quality grade labels.
const (
	GradePoor      = "Poor"
	GradeFair      = "Fair"
	GradeGood      = "Good"
	GradeExcellent = "Excellent"
)

// Sensitivity selects a named bundle of minimum pivot spacing and
// acceptance-score threshold.
type Sensitivity string

const (
	Conservative Sensitivity = "conservative"
	Balanced     Sensitivity = "balanced"
	Aggressive   Sensitivity = "aggressive"
)

// ParseSensitivity maps a string to a Sensitivity, defaulting to Balanced
// for unknown values.
func ParseSensitivity(s string) Sensitivity {
	switch Sensitivity(s) {
	case Conservative, Balanced, Aggressive:
		return Sensitivity(s)
	}
	return Balanced
}

// Frequency is the bar period of the input series.
type Frequency string

const (
	Daily  Frequency = "daily"
	Weekly Frequency = "weekly"
)

// ParseFrequency maps a string to a Frequency, defaulting to Daily for
// unknown values.
func ParseFrequency(s string) Frequency {
	switch Frequency(s) {
	case Daily, Weekly:
		return Frequency(s)
	}
	return Daily
}

// AnalysisConfig is the caller-facing configuration for a single detection
// call. It is immutable per call; all other tuning constants are internal.
type AnalysisConfig struct {
	Strategy    string      `json:"strategy"`
	Sensitivity Sensitivity `json:"sensitivity"`
	Frequency   Frequency   `json:"frequency"`
}
