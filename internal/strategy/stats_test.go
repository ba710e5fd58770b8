package strategy

import (
	"math"
	"testing"
)

func TestOneSampleTTestShiftedSample(t *testing.T) {
	tester := TTester{}
	sample := []float64{1, 2, 3, 4, 5}

	tStat, p, ok := tester.OneSampleTTest(sample, 10)
	if !ok {
		t.Fatal("Expected the test to be performable")
	}
	if tStat >= 0 {
		t.Errorf("Expected negative t for a sample below mu, got %f", tStat)
	}
	if p >= 0.01 {
		t.Errorf("Expected strong significance, got p=%f", p)
	}

	tStat, p, _ = tester.OneSampleTTest(sample, -4)
	if tStat <= 0 {
		t.Errorf("Expected positive t for a sample above mu, got %f", tStat)
	}
	if p >= 0.01 {
		t.Errorf("Expected strong significance, got p=%f", p)
	}
}

func TestOneSampleTTestAtMean(t *testing.T) {
	tester := TTester{}
	_, p, ok := tester.OneSampleTTest([]float64{1, 2, 3, 4, 5}, 3)
	if !ok {
		t.Fatal("Expected the test to be performable")
	}
	if math.Abs(p-1) > 1e-9 {
		t.Errorf("Expected p=1 when mu equals the sample mean, got %f", p)
	}
}

func TestOneSampleTTestZeroVariance(t *testing.T) {
	tester := TTester{}

	tStat, p, ok := tester.OneSampleTTest([]float64{5, 5, 5}, 5)
	if !ok || tStat != 0 || p != 1 {
		t.Errorf("Constant sample at mu: expected t=0 p=1 ok, got t=%f p=%f ok=%v", tStat, p, ok)
	}

	tStat, p, ok = tester.OneSampleTTest([]float64{5, 5, 5}, 3)
	if !ok || !math.IsInf(tStat, 1) || p != 0 {
		t.Errorf("Constant sample above mu: expected t=+Inf p=0 ok, got t=%f p=%f ok=%v", tStat, p, ok)
	}
}

func TestOneSampleTTestTooSmall(t *testing.T) {
	tester := TTester{}
	if _, _, ok := tester.OneSampleTTest([]float64{1}, 0); ok {
		t.Error("Expected ok=false for a single-point sample")
	}
}

func TestOneSampleTTestPValueRange(t *testing.T) {
	tester := TTester{}
	samples := [][]float64{
		{1, 2, 3},
		{-3, 0, 3, 6},
		{0.1, 0.2, 0.15, 0.12, 0.18, 0.11},
	}
	for _, sample := range samples {
		for _, mu := range []float64{-5, 0, 0.15, 2, 100} {
			_, p, ok := tester.OneSampleTTest(sample, mu)
			if !ok {
				t.Fatalf("Expected ok for sample %v", sample)
			}
			if p < 0 || p > 1 || math.IsNaN(p) {
				t.Errorf("p-value %f outside [0,1] for sample %v mu %f", p, sample, mu)
			}
		}
	}
}

func TestRegIncompleteBetaEdges(t *testing.T) {
	if got := regIncompleteBeta(2, 0.5, 0); got != 0 {
		t.Errorf("I_0 should be 0, got %f", got)
	}
	if got := regIncompleteBeta(2, 0.5, 1); got != 1 {
		t.Errorf("I_1 should be 1, got %f", got)
	}
	// I_x(0.5, 0.5) at x=0.5 is exactly 0.5 by symmetry.
	if got := regIncompleteBeta(0.5, 0.5, 0.5); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("I_0.5(0.5, 0.5) should be 0.5, got %f", got)
	}
}
