package strategy

import (
	"math"
	"testing"
)

func TestFindExtremaVShape(t *testing.T) {
	highs, lows := vShapeSeries(60)
	highIdx, lowIdx := FindExtrema(highs, lows, 3)

	if len(highIdx) != 0 {
		t.Errorf("Expected no interior highs in a V-shaped series, got %v", highIdx)
	}
	if len(lowIdx) != 1 || lowIdx[0] != 30 {
		t.Errorf("Expected exactly one low at index 30, got %v", lowIdx)
	}
}

func TestFindExtremaNestedBySpacing(t *testing.T) {
	highs, lows := noisySeries(120)

	h2, l2 := FindExtrema(highs, lows, 2)
	h3, l3 := FindExtrema(highs, lows, 3)
	h5, l5 := FindExtrema(highs, lows, 5)

	assertSubset(t, "highs 3 in 2", h3, h2)
	assertSubset(t, "highs 5 in 3", h5, h3)
	assertSubset(t, "lows 3 in 2", l3, l2)
	assertSubset(t, "lows 5 in 3", l5, l3)
}

func TestFindExtremaFlatSeries(t *testing.T) {
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	highIdx, lowIdx := FindExtrema(flat, flat, 3)
	if len(highIdx) != 0 || len(lowIdx) != 0 {
		t.Errorf("Expected no extrema in a flat series, got highs %v lows %v", highIdx, lowIdx)
	}
}

func TestFindExtremaExcludesBoundary(t *testing.T) {
	// Monotone series: the endpoints are the only extrema and must be excluded.
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 100 + float64(i)
		lows[i] = 99 + float64(i)
	}
	highIdx, lowIdx := FindExtrema(highs, lows, 3)
	if len(highIdx) != 0 || len(lowIdx) != 0 {
		t.Errorf("Expected boundary extrema to be excluded, got highs %v lows %v", highIdx, lowIdx)
	}
}

func TestFindExtremaMinDistanceFloor(t *testing.T) {
	highs, lows := vShapeSeries(60)
	h0, l0 := FindExtrema(highs, lows, 0)
	h1, l1 := FindExtrema(highs, lows, 1)
	if len(h0) != len(h1) || len(l0) != len(l1) {
		t.Error("Expected minDistance below 1 to behave like 1")
	}
}

// vShapeSeries builds high/low arrays for a clean V with the trough at
// index 30.
func vShapeSeries(n int) (highs, lows []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	for i := 0; i < n; i++ {
		var close float64
		if i <= 30 {
			close = 100 - float64(i)
		} else {
			close = 70 + float64(i-30)
		}
		highs[i] = close + 0.5
		lows[i] = close - 0.5
	}
	return highs, lows
}

// noisySeries builds a deterministic oscillating series with extrema at many
// spacings.
func noisySeries(n int) (highs, lows []float64) {
	highs = make([]float64, n)
	lows = make([]float64, n)
	for i := 0; i < n; i++ {
		close := 100 + 8*math.Sin(float64(i)/4) + 3*math.Sin(float64(i)/1.7)
		highs[i] = close + 0.8
		lows[i] = close - 0.8
	}
	return highs, lows
}

func assertSubset(t *testing.T, label string, sub, super []int) {
	t.Helper()
	superSet := make(map[int]bool, len(super))
	for _, idx := range super {
		superSet[idx] = true
	}
	for _, idx := range sub {
		if !superSet[idx] {
			t.Errorf("%s: index %d missing from superset %v", label, idx, super)
		}
	}
}
