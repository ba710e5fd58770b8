package analyzer

import (
	"math"

	"pivotscan/internal/indicator"
	"pivotscan/pkg/model"
)

// preprocess returns a cleaned copy of the input bars: interquartile-range
// outlier clipping per price field, forward/backward gap filling, and OHLC
// ordering re-enforced so high >= max(open, close) and low <= min(open,
// close) hold before any indicator computation. The input slice is never
// mutated.
func preprocess(bars []model.Bar) []model.Bar {
	cleaned := append([]model.Bar(nil), bars...)

	open := make([]float64, len(cleaned))
	high := make([]float64, len(cleaned))
	low := make([]float64, len(cleaned))
	close := make([]float64, len(cleaned))
	for i, b := range cleaned {
		open[i], high[i], low[i], close[i] = b.Open, b.High, b.Low, b.Close
	}

	for _, field := range [][]float64{open, high, low, close} {
		clipOutliers(field)
		fillGaps(field)
	}

	for i := range cleaned {
		cleaned[i].Open = open[i]
		cleaned[i].Close = close[i]
		cleaned[i].High = math.Max(math.Max(open[i], close[i]), math.Max(high[i], low[i]))
		cleaned[i].Low = math.Min(math.Min(open[i], close[i]), math.Min(high[i], low[i]))
	}
	return cleaned
}

// clipOutliers clamps values outside 1.5 IQR of the quartiles, in place.
func clipOutliers(xs []float64) {
	q1 := indicator.NaNPercentile(xs, 25)
	q3 := indicator.NaNPercentile(xs, 75)
	if math.IsNaN(q1) || math.IsNaN(q3) {
		return
	}
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	for i, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		if x < lower {
			xs[i] = lower
		} else if x > upper {
			xs[i] = upper
		}
	}
}

// fillGaps replaces undefined values by the previous defined value, then
// back-fills any undefined prefix, in place.
func fillGaps(xs []float64) {
	for i := 1; i < len(xs); i++ {
		if !defined(xs[i]) && defined(xs[i-1]) {
			xs[i] = xs[i-1]
		}
	}
	for i := len(xs) - 2; i >= 0; i-- {
		if !defined(xs[i]) && defined(xs[i+1]) {
			xs[i] = xs[i+1]
		}
	}
}

func defined(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
