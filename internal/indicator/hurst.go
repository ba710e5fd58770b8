package indicator

import "math"

// HurstExponent estimates the Hurst exponent of a price series via
// rescaled-range (R/S) analysis. Values above 0.5 indicate trending behavior,
// below 0.5 mean reversion. The estimate is clamped to [0.1, 0.9]; degenerate
// inputs (too short, non-positive prices, flat returns) yield the neutral 0.5.
func HurstExponent(prices []float64) float64 {
	n := len(prices)
	if n < 20 {
		return 0.5
	}

	logReturns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		prev, cur := prices[i-1], prices[i]
		if prev <= 0 || cur <= 0 || math.IsNaN(prev) || math.IsNaN(cur) {
			return 0.5
		}
		logReturns = append(logReturns, math.Log(cur/prev))
	}

	type rsPoint struct {
		window int
		rs     float64
	}
	var rsValues []rsPoint

	for _, window := range logSpacedWindows(n) {
		if window >= n || window < 2 {
			continue
		}
		segments := n / window
		var rsSum float64
		var rsCount int
		for s := 0; s < segments; s++ {
			start := s * window
			end := start + window
			if end > len(logReturns) {
				end = len(logReturns)
			}
			if end-start < 2 {
				continue
			}
			segment := logReturns[start:end]

			mean := 0.0
			for _, r := range segment {
				mean += r
			}
			mean /= float64(len(segment))

			// Range of cumulative deviations and standard deviation.
			var cum, minCum, maxCum, sq float64
			for _, r := range segment {
				cum += r - mean
				if cum < minCum {
					minCum = cum
				}
				if cum > maxCum {
					maxCum = cum
				}
				sq += (r - mean) * (r - mean)
			}
			std := math.Sqrt(sq / float64(len(segment)))
			if std > 0 {
				rsSum += (maxCum - minCum) / std
				rsCount++
			}
		}
		if rsCount > 0 {
			rsValues = append(rsValues, rsPoint{window: window, rs: rsSum / float64(rsCount)})
		}
	}

	if len(rsValues) < 3 {
		return 0.5
	}

	// Hurst exponent is the slope of log(R/S) against log(window).
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range rsValues {
		x := math.Log(float64(p.window))
		y := math.Log(p.rs)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	m := float64(len(rsValues))
	denom := m*sumXX - sumX*sumX
	if denom == 0 {
		return 0.5
	}
	slope := (m*sumXY - sumX*sumY) / denom

	return clamp(slope, 0.1, 0.9)
}

// LocalHurst estimates the Hurst exponent on a window of ±window bars around
// idx. Windows with fewer than 10 points return the neutral 0.5.
func LocalHurst(prices []float64, idx, window int) float64 {
	start := idx - window
	if start < 0 {
		start = 0
	}
	end := idx + window
	if end > len(prices) {
		end = len(prices)
	}
	local := prices[start:end]
	if len(local) < 10 {
		return 0.5
	}
	return HurstExponent(local)
}

// logSpacedWindows returns up to 10 log-spaced window sizes between 10 and
// n/4, mirroring the rescaled-range convention.
func logSpacedWindows(n int) []int {
	upper := n / 4
	if upper < 2 {
		return nil
	}
	lo := 1.0 // log10(10)
	hi := math.Log10(float64(upper))
	const count = 10
	seen := make(map[int]bool)
	windows := make([]int, 0, count)
	for i := 0; i < count; i++ {
		exp := lo + (hi-lo)*float64(i)/float64(count-1)
		w := int(math.Pow(10, exp))
		if w < 2 || seen[w] {
			continue
		}
		seen[w] = true
		windows = append(windows, w)
	}
	return windows
}
