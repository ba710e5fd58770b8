package strategy

import (
	"log"
	"math"

	"pivotscan/internal/indicator"
	"pivotscan/pkg/model"
)

// StatisticalScorer retains a candidate only when a one-sample significance
// test against its ±10-bar neighborhood (excluding the candidate) rejects the
// null hypothesis at alpha in the expected direction. Neighborhoods with
// fewer than five points reject the candidate outright.
type StatisticalScorer struct {
	stats    StatsProvider
	fallback *EnsembleScorer
}

const (
	statAlpha       = 0.05
	statWindow      = 10
	statMinInWindow = 5
)

// Name returns the strategy name.
func (s *StatisticalScorer) Name() string { return "statistical" }

// Score implements Scorer. When the stats capability is unavailable the
// ensemble scorer takes over rather than failing the analysis.
func (s *StatisticalScorer) Score(bars []model.Bar, suite *indicator.Suite, sensitivity model.Sensitivity) PivotSet {
	if s.stats == nil || !s.stats.Available() {
		log.Printf("[STRATEGY] statistical test capability unavailable, using ensemble scorer")
		set := s.fallback.Score(bars, suite, sensitivity)
		set.Degraded = true
		set.DegradeReason = "statistical test capability unavailable"
		return set
	}

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
		score, significant := s.testCandidate(highs, idx, true)
		set.HighScores[idx] = score
		if significant {
			set.FilteredHighs = append(set.FilteredHighs, Candidate{
				Index: idx, Price: highs[idx], Score: score, Kind: model.PivotHigh,
			})
		}
	}
	for _, idx := range rawLows {
		score, significant := s.testCandidate(lows, idx, false)
		set.LowScores[idx] = score
		if significant {
			set.FilteredLows = append(set.FilteredLows, Candidate{
				Index: idx, Price: lows[idx], Score: score, Kind: model.PivotLow,
			})
		}
	}

	sortByScore(set.FilteredHighs)
	sortByScore(set.FilteredLows)
	return set
}

// testCandidate runs the directional significance test for one candidate.
// The score is 1-p, so more significant candidates rank higher.
func (s *StatisticalScorer) testCandidate(prices []float64, idx int, isHigh bool) (score float64, significant bool) {
	start := idx - statWindow
	if start < 0 {
		start = 0
	}
	end := idx + statWindow + 1
	if end > len(prices) {
		end = len(prices)
	}

	neighborhood := make([]float64, 0, end-start-1)
	neighborhood = append(neighborhood, prices[start:idx]...)
	neighborhood = append(neighborhood, prices[idx+1:end]...)
	if len(neighborhood) < statMinInWindow {
		return 0, false
	}

	t, p, ok := s.stats.OneSampleTTest(neighborhood, prices[idx])
	if !ok {
		return 0, false
	}

	// A high is significant when the neighborhood mean sits significantly
	// below the candidate price (negative t), and symmetrically for lows.
	if p >= statAlpha {
		return clamp01(1 - p), false
	}
	if isHigh && t >= 0 {
		return clamp01(1 - p), false
	}
	if !isHigh && t <= 0 {
		return clamp01(1 - p), false
	}
	if math.IsNaN(p) {
		return 0, false
	}
	return clamp01(1 - p), true
}
