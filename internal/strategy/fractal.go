package strategy

import (
	"pivotscan/internal/indicator"
	"pivotscan/pkg/model"
)

// FractalScorer retains a candidate only when the local Hurst exponent over a
// ±10-bar window is below 0.5, i.e. the local regime is mean-reverting and a
// turn is statistically plausible. The per-point score is 1-H, so stronger
// mean reversion scores higher.
type FractalScorer struct{}

// Name returns the strategy name.
func (s *FractalScorer) Name() string { return "fractal" }

// Score implements Scorer.
func (s *FractalScorer) Score(bars []model.Bar, suite *indicator.Suite, sensitivity model.Sensitivity) PivotSet {
	preset := PresetFor(sensitivity)
	highs, lows := highLowSeries(bars)
	closes := closeSeries(bars)
	rawHighs, rawLows := FindExtrema(highs, lows, preset.MinDistance)

	set := PivotSet{
		RawHighs:   rawHighs,
		RawLows:    rawLows,
		HighScores: make(map[int]float64, len(rawHighs)),
		LowScores:  make(map[int]float64, len(rawLows)),
	}

	const hurstWindow = 10
	for _, idx := range rawHighs {
		h := indicator.LocalHurst(closes, idx, hurstWindow)
		score := clamp01(1 - h)
		set.HighScores[idx] = score
		if h < 0.5 {
			set.FilteredHighs = append(set.FilteredHighs, Candidate{
				Index: idx, Price: highs[idx], Score: score, Kind: model.PivotHigh,
			})
		}
	}
	for _, idx := range rawLows {
		h := indicator.LocalHurst(closes, idx, hurstWindow)
		score := clamp01(1 - h)
		set.LowScores[idx] = score
		if h < 0.5 {
			set.FilteredLows = append(set.FilteredLows, Candidate{
				Index: idx, Price: lows[idx], Score: score, Kind: model.PivotLow,
			})
		}
	}

	sortByScore(set.FilteredHighs)
	sortByScore(set.FilteredLows)
	return set
}
