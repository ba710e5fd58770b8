package analyzer

import (
	"math"

	"pivotscan/internal/strategy"
	"pivotscan/pkg/model"
)

// Quality assessment constants: the forward horizon in bars, the minimum move
// that counts as effective, and the floor score for sub-minimum moves.
const (
	qualityHorizon  = 5
	qualityMinMove  = 0.02
	qualityFloor    = 0.3
	qualityMoveGain = 10
)

// AssessQuality measures the retrospective effectiveness of the retained
// pivots against the close series: a retained high should be followed by a
// decline within the horizon, a retained low by a rise. Zero retained pivots
// or insufficient trailing bars yield the neutral defaults rather than a
// failure.
func AssessQuality(highs, lows []strategy.Candidate, closes []float64) model.QualityMetrics {
	retained := len(highs) + len(lows)
	if retained == 0 {
		return neutralQuality()
	}

	var effectiveness []float64
	for _, c := range highs {
		if score, ok := forwardMoveScore(closes, c.Index, true); ok {
			effectiveness = append(effectiveness, score)
		}
	}
	for _, c := range lows {
		if score, ok := forwardMoveScore(closes, c.Index, false); ok {
			effectiveness = append(effectiveness, score)
		}
	}
	if len(effectiveness) == 0 {
		return neutralQuality()
	}

	var sum float64
	for _, e := range effectiveness {
		sum += e
	}
	precision := sum / float64(len(effectiveness))
	recall := float64(len(effectiveness)) / float64(retained)

	f1 := 0.5
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return model.QualityMetrics{
		Precision: clampUnit(precision),
		Recall:    clampUnit(recall),
		F1:        clampUnit(f1),
		Grade:     gradeFor(f1),
	}
}

// forwardMoveScore rates the favorable move following one pivot. It reports
// ok=false when there are not enough trailing bars to judge.
func forwardMoveScore(closes []float64, idx int, isHigh bool) (float64, bool) {
	if idx >= len(closes)-qualityHorizon {
		return 0, false
	}
	price := closes[idx]
	if price <= 0 {
		return 0, false
	}

	future := closes[idx+1 : idx+1+qualityHorizon]
	var move float64
	if isHigh {
		min := future[0]
		for _, f := range future[1:] {
			if f < min {
				min = f
			}
		}
		move = (price - min) / price
	} else {
		max := future[0]
		for _, f := range future[1:] {
			if f > max {
				max = f
			}
		}
		move = (max - price) / price
	}

	if move > qualityMinMove {
		return math.Min(move*qualityMoveGain, 1), true
	}
	return qualityFloor, true
}

// gradeFor buckets an F1 score into the coarse quality grade.
func gradeFor(f1 float64) string {
	switch {
	case f1 >= 0.8:
		return model.GradeExcellent
	case f1 >= 0.6:
		return model.GradeGood
	case f1 >= 0.4:
		return model.GradeFair
	default:
		return model.GradePoor
	}
}

func neutralQuality() model.QualityMetrics {
	return model.QualityMetrics{
		Precision: 0.5,
		Recall:    0.5,
		F1:        0.5,
		Grade:     model.GradePoor,
	}
}

func clampUnit(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
