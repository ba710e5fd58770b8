package strategy

import (
	"math"
	"sort"

	"pivotscan/internal/indicator"
	"pivotscan/pkg/model"
)

// Weights are the ensemble sub-score weights. They are immutable
// configuration constructed once and passed by value.
type Weights struct {
	Volatility float64
	Prominence float64
	Trend      float64
	Volume     float64
	Structure  float64
}

// DefaultWeights returns the standard ensemble weighting.
func DefaultWeights() Weights {
	return Weights{
		Volatility: 0.30,
		Prominence: 0.25,
		Trend:      0.20,
		Volume:     0.15,
		Structure:  0.10,
	}
}

// EnsembleScorer is the default strategy: a weighted sum of five normalized
// sub-scores per candidate, with candidates at or above the sensitivity
// threshold retained.
type EnsembleScorer struct {
	weights Weights
}

// NewEnsembleScorer creates the ensemble scorer with the given weights.
func NewEnsembleScorer(w Weights) *EnsembleScorer {
	return &EnsembleScorer{weights: w}
}

// Name returns the strategy name.
func (s *EnsembleScorer) Name() string { return "ensemble" }

// Score implements Scorer.
func (s *EnsembleScorer) Score(bars []model.Bar, suite *indicator.Suite, sensitivity model.Sensitivity) PivotSet {
	preset := PresetFor(sensitivity)
	highs, lows := highLowSeries(bars)
	rawHighs, rawLows := FindExtrema(highs, lows, preset.MinDistance)

	set := PivotSet{
		RawHighs:   rawHighs,
		RawLows:    rawLows,
		HighScores: make(map[int]float64, len(rawHighs)),
		LowScores:  make(map[int]float64, len(rawLows)),
	}

	for _, idx := range rawHighs {
		score := s.scoreCandidate(idx, highs, true, suite)
		set.HighScores[idx] = score
		if score >= preset.ScoreThreshold {
			set.FilteredHighs = append(set.FilteredHighs, Candidate{
				Index: idx, Price: highs[idx], Score: score, Kind: model.PivotHigh,
			})
		}
	}
	for _, idx := range rawLows {
		score := s.scoreCandidate(idx, lows, false, suite)
		set.LowScores[idx] = score
		if score >= preset.ScoreThreshold {
			set.FilteredLows = append(set.FilteredLows, Candidate{
				Index: idx, Price: lows[idx], Score: score, Kind: model.PivotLow,
			})
		}
	}

	// Sorting communicates priority only; every passing candidate stays.
	// Stable sort keeps ties in temporal order.
	sortByScore(set.FilteredHighs)
	sortByScore(set.FilteredLows)
	return set
}

func sortByScore(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Score > cs[j].Score
	})
}

// scoreCandidate computes the weighted multi-factor score for one candidate.
func (s *EnsembleScorer) scoreCandidate(idx int, prices []float64, isHigh bool, suite *indicator.Suite) float64 {
	w := s.weights
	score := w.Volatility * scoreVolatility(idx, &suite.Volatility)
	score += w.Prominence * scoreProminence(idx, prices, isHigh)
	score += w.Trend * scoreTrend(idx, &suite.Trend, isHigh)
	score += w.Volume * scoreVolume(idx, &suite.Volume)
	// Structural quality is a documented neutral placeholder; it must not
	// block otherwise-valid candidates.
	score += w.Structure * 0.5
	return clamp01(score)
}

// scoreVolatility rates the local ATR percentage against the dynamic
// threshold, capped at 1. Undefined values rate neutral.
func scoreVolatility(idx int, vol *indicator.VolatilitySuite) float64 {
	if idx >= len(vol.ATR14Pct) {
		return 0.5
	}
	local := vol.ATR14Pct[idx]
	threshold := vol.DynamicThreshold
	if math.IsNaN(local) || math.IsNaN(threshold) || threshold <= 0 {
		return 0.5
	}
	return math.Min(1, local/threshold)
}

// scoreProminence rates how far the candidate sticks out beyond the extreme
// of its ±5-bar neighborhood, scaled and clamped to [0,1].
func scoreProminence(idx int, prices []float64, isHigh bool) float64 {
	const window = 5
	start := idx - window
	if start < 0 {
		start = 0
	}
	end := idx + window + 1
	if end > len(prices) {
		end = len(prices)
	}

	current := prices[idx]
	if current <= 0 {
		return 0.5
	}

	first := true
	var extreme float64
	for j := start; j < end; j++ {
		if j == idx {
			continue
		}
		if first {
			extreme = prices[j]
			first = false
			continue
		}
		if isHigh && prices[j] > extreme {
			extreme = prices[j]
		}
		if !isHigh && prices[j] < extreme {
			extreme = prices[j]
		}
	}
	if first {
		return 0.5
	}

	var diff float64
	if isHigh {
		diff = (current - extreme) / current
	} else {
		diff = (extreme - current) / current
	}
	return clamp01(diff * 50)
}

// scoreTrend rewards highs above and lows below the medium moving average;
// counter-trend candidates get a fixed floor, never zero.
func scoreTrend(idx int, trend *indicator.TrendSuite, isHigh bool) float64 {
	if idx >= len(trend.PricePosition) {
		return 0.5
	}
	pos := trend.PricePosition[idx]
	if math.IsNaN(pos) {
		return 0.5
	}
	if (isHigh && pos > 0) || (!isHigh && pos < 0) {
		return math.Min(1, math.Abs(pos)*2)
	}
	return 0.3
}

// scoreVolume rates relative volume capped at 1, neutral when volume data is
// unavailable or undefined.
func scoreVolume(idx int, vol *indicator.VolumeSuite) float64 {
	if !vol.Available || idx >= len(vol.RelativeVolume) {
		return 0.5
	}
	rel := vol.RelativeVolume[idx]
	if math.IsNaN(rel) {
		return 0.5
	}
	return math.Min(1, rel/2)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
