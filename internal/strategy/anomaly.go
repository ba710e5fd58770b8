package strategy

import (
	"log"
	"math"

	"pivotscan/internal/indicator"
	"pivotscan/pkg/model"
)

// AnomalyScorer treats pivots as statistical outliers: it builds a per-bar
// feature vector from price levels, ATR percentage and trend position, scores
// every bar with an unsupervised anomaly detector, and keeps the raw
// candidates whose anomaly magnitude lands in the top 30%. The cutoff
// percentile is computed once across highs and lows together, not per kind.
type AnomalyScorer struct {
	detector AnomalyDetector
	fallback *EnsembleScorer
}

const (
	anomalyMinSamples = 20
	anomalyKeepShare  = 0.30
)

// Name returns the strategy name.
func (s *AnomalyScorer) Name() string { return "anomaly" }

// Score implements Scorer. Without a usable detector, or with fewer than 20
// bars of features, the ensemble scorer takes over.
func (s *AnomalyScorer) Score(bars []model.Bar, suite *indicator.Suite, sensitivity model.Sensitivity) PivotSet {
	if s.detector == nil || !s.detector.Available() || len(bars) < anomalyMinSamples {
		log.Printf("[STRATEGY] anomaly detector unavailable or sample too small (%d bars), using ensemble scorer", len(bars))
		set := s.fallback.Score(bars, suite, sensitivity)
		set.Degraded = true
		set.DegradeReason = "anomaly detection capability unavailable"
		return set
	}

	preset := PresetFor(sensitivity)
	highs, lows := highLowSeries(bars)
	rawHighs, rawLows := FindExtrema(highs, lows, preset.MinDistance)

	magnitudes := s.detector.Scores(buildFeatures(bars, suite))

	set := PivotSet{
		RawHighs:   rawHighs,
		RawLows:    rawLows,
		HighScores: make(map[int]float64, len(rawHighs)),
		LowScores:  make(map[int]float64, len(rawLows)),
	}

	// One shared cutoff across both kinds.
	combined := make([]float64, 0, len(rawHighs)+len(rawLows))
	maxMag := 0.0
	for _, idx := range append(append([]int{}, rawHighs...), rawLows...) {
		m := magnitudes[idx]
		combined = append(combined, m)
		if m > maxMag {
			maxMag = m
		}
	}
	if len(combined) == 0 {
		return set
	}
	cutoff := quantile(combined, 1-anomalyKeepShare)

	normalize := func(m float64) float64 {
		if maxMag <= 0 || math.IsNaN(m) {
			return 0.5
		}
		return clamp01(m / maxMag)
	}

	for _, idx := range rawHighs {
		m := magnitudes[idx]
		score := normalize(m)
		set.HighScores[idx] = score
		if m >= cutoff {
			set.FilteredHighs = append(set.FilteredHighs, Candidate{
				Index: idx, Price: highs[idx], Score: score, Kind: model.PivotHigh,
			})
		}
	}
	for _, idx := range rawLows {
		m := magnitudes[idx]
		score := normalize(m)
		set.LowScores[idx] = score
		if m >= cutoff {
			set.FilteredLows = append(set.FilteredLows, Candidate{
				Index: idx, Price: lows[idx], Score: score, Kind: model.PivotLow,
			})
		}
	}

	sortByScore(set.FilteredHighs)
	sortByScore(set.FilteredLows)
	return set
}

// buildFeatures assembles the per-bar feature matrix: price levels plus ATR
// percentage and trend position, with undefined values zeroed.
func buildFeatures(bars []model.Bar, suite *indicator.Suite) [][]float64 {
	features := make([][]float64, len(bars))
	for i, b := range bars {
		atrPct := 0.0
		if i < len(suite.Volatility.ATR14Pct) && !math.IsNaN(suite.Volatility.ATR14Pct[i]) {
			atrPct = suite.Volatility.ATR14Pct[i]
		}
		pos := 0.0
		if i < len(suite.Trend.PricePosition) && !math.IsNaN(suite.Trend.PricePosition[i]) {
			pos = suite.Trend.PricePosition[i]
		}
		features[i] = []float64{b.Close, b.High, b.Low, atrPct, pos}
	}
	return features
}
