package strategy

// FindExtrema locates unfiltered local maxima in highs and local minima in
// lows. A bar qualifies only if it is strictly more extreme than every bar
// within minDistance on both sides, which also guarantees that no two
// same-kind points sit closer than minDistance apart. Points within
// minDistance of either edge are excluded. The result is intentionally
// permissive: it is the candidate pool the strategy scorers filter.
func FindExtrema(highs, lows []float64, minDistance int) (highIdx, lowIdx []int) {
	if minDistance < 1 {
		minDistance = 1
	}
	n := len(highs)
	for i := minDistance; i < n-minDistance; i++ {
		isHigh := true
		isLow := true
		for j := i - minDistance; j <= i+minDistance; j++ {
			if j == i {
				continue
			}
			if highs[j] >= highs[i] {
				isHigh = false
			}
			if lows[j] <= lows[i] {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			highIdx = append(highIdx, i)
		}
		if isLow {
			lowIdx = append(lowIdx, i)
		}
	}
	return highIdx, lowIdx
}
