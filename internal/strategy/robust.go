package strategy

import (
	"math"
	"sort"
)

// AnomalyDetector scores feature vectors; a higher score means more
// anomalous. Like StatsProvider it is an injected capability so the anomaly
// filter can degrade cleanly when no detector is wired in.
type AnomalyDetector interface {
	Available() bool
	// Scores returns one non-negative anomaly magnitude per feature row.
	Scores(features [][]float64) []float64
}

// RobustDistanceDetector is the built-in unsupervised detector. It
// robust-scales every feature column by its median and interquartile range
// and scores each row by the Euclidean norm of the scaled vector, so points
// far from the bulk of the distribution score high regardless of outliers in
// the fit data.
type RobustDistanceDetector struct {
	contamination float64
}

// NewRobustDistanceDetector creates a detector with the given expected
// contamination fraction (the share of points treated as anomalous by
// DecisionThreshold).
func NewRobustDistanceDetector(contamination float64) *RobustDistanceDetector {
	if contamination <= 0 || contamination >= 1 {
		contamination = 0.15
	}
	return &RobustDistanceDetector{contamination: contamination}
}

// Available reports that the built-in detector is always usable.
func (d *RobustDistanceDetector) Available() bool { return true }

// Scores implements AnomalyDetector.
func (d *RobustDistanceDetector) Scores(features [][]float64) []float64 {
	n := len(features)
	scores := make([]float64, n)
	if n == 0 {
		return scores
	}
	cols := len(features[0])

	medians := make([]float64, cols)
	iqrs := make([]float64, cols)
	col := make([]float64, n)
	for c := 0; c < cols; c++ {
		for r := 0; r < n; r++ {
			v := features[r][c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			col[r] = v
		}
		medians[c] = quantile(col, 0.5)
		iqr := quantile(col, 0.75) - quantile(col, 0.25)
		if iqr == 0 {
			iqr = 1
		}
		iqrs[c] = iqr
	}

	for r := 0; r < n; r++ {
		var sq float64
		for c := 0; c < cols; c++ {
			v := features[r][c]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			z := (v - medians[c]) / iqrs[c]
			sq += z * z
		}
		scores[r] = math.Sqrt(sq)
	}
	return scores
}

// DecisionThreshold returns the score above which a point counts as
// anomalous under the configured contamination fraction.
func (d *RobustDistanceDetector) DecisionThreshold(scores []float64) float64 {
	return quantile(scores, 1-d.contamination)
}

// quantile returns the q-th quantile of xs (copied, sorted, linearly
// interpolated).
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
