package indicator

import (
	"math"
	"sort"
)

// nanSlice returns a slice of length n filled with NaN.
func nanSlice(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = math.NaN()
	}
	return xs
}

// markWarmup overwrites the first n values with NaN so warm-up periods read
// as undefined rather than zero.
func markWarmup(xs []float64, n int) []float64 {
	if n > len(xs) {
		n = len(xs)
	}
	for i := 0; i < n; i++ {
		xs[i] = math.NaN()
	}
	return xs
}

// rollingMean computes a simple rolling mean with NaN for the warm-up period.
func rollingMean(xs []float64, period int) []float64 {
	out := nanSlice(len(xs))
	if period < 1 || len(xs) < period {
		return out
	}
	var sum float64
	for i, x := range xs {
		sum += x
		if i >= period {
			sum -= xs[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// trueRange computes the per-bar true range. The first bar uses the plain
// high-low range since there is no prior close.
func trueRange(high, low, close []float64) []float64 {
	n := len(close)
	tr := make([]float64, n)
	if n == 0 {
		return tr
	}
	tr[0] = high[0] - low[0]
	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// NaNPercentile returns the pct-th percentile of the non-NaN values in xs
// using linear interpolation. Returns NaN when no finite values exist.
func NaNPercentile(xs []float64, pct float64) float64 {
	vals := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			vals = append(vals, x)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	if len(vals) == 1 {
		return vals[0]
	}
	rank := pct / 100 * float64(len(vals)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return vals[lo]
	}
	frac := rank - float64(lo)
	return vals[lo]*(1-frac) + vals[hi]*frac
}

// NaNMean returns the mean of the non-NaN values, or NaN when none exist.
func NaNMean(xs []float64) float64 {
	var sum float64
	var n int
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			sum += x
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// NaNStd returns the population standard deviation of the non-NaN values.
func NaNStd(xs []float64) float64 {
	mean := NaNMean(xs)
	if math.IsNaN(mean) {
		return math.NaN()
	}
	var sum float64
	var n int
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			d := x - mean
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(n))
}

// LastValid returns the last non-NaN value in xs, or def when none exists.
func LastValid(xs []float64, def float64) float64 {
	for i := len(xs) - 1; i >= 0; i-- {
		if !math.IsNaN(xs[i]) && !math.IsInf(xs[i], 0) {
			return xs[i]
		}
	}
	return def
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
