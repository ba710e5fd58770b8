package analyzer

import (
	"math"
	"testing"

	"pivotscan/internal/strategy"
	"pivotscan/pkg/model"
)

func TestAssessQualityNoPivots(t *testing.T) {
	q := AssessQuality(nil, nil, []float64{100, 101, 102})
	if q.Precision != 0.5 || q.Recall != 0.5 || q.F1 != 0.5 {
		t.Errorf("Expected neutral 0.5 metrics, got %+v", q)
	}
	if q.Grade != model.GradePoor {
		t.Errorf("Expected grade %q, got %q", model.GradePoor, q.Grade)
	}
}

func TestAssessQualityEffectiveLow(t *testing.T) {
	// A low at index 2 followed by a 10% rise within the horizon.
	closes := []float64{102, 101, 100, 104, 107, 110, 109, 108, 107}
	lows := []strategy.Candidate{{Index: 2, Price: 100, Kind: model.PivotLow}}

	q := AssessQuality(nil, lows, closes)

	// Move is 10%, capped at min(0.10*10, 1) = 1.
	if math.Abs(q.Precision-1) > 1e-9 {
		t.Errorf("Expected precision 1, got %f", q.Precision)
	}
	if math.Abs(q.Recall-1) > 1e-9 {
		t.Errorf("Expected recall 1 with every pivot judgeable, got %f", q.Recall)
	}
	if q.Grade != model.GradeExcellent {
		t.Errorf("Expected grade %q, got %q", model.GradeExcellent, q.Grade)
	}
}

func TestAssessQualityRecallPenalizesUnjudgeable(t *testing.T) {
	// One judgeable low and one too close to the series end.
	closes := []float64{102, 101, 100, 104, 107, 110, 109, 100, 108}
	lows := []strategy.Candidate{
		{Index: 2, Price: 100, Kind: model.PivotLow},
		{Index: 7, Price: 100, Kind: model.PivotLow},
	}

	q := AssessQuality(nil, lows, closes)
	if math.Abs(q.Recall-0.5) > 1e-9 {
		t.Errorf("Expected recall 0.5 with one of two pivots judgeable, got %f", q.Recall)
	}
}

func TestForwardMoveScore(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		idx    int
		isHigh bool
		want   float64
		ok     bool
	}{
		{
			name:   "low with 5% rise",
			closes: []float64{100, 101, 103, 105, 104, 102},
			idx:    0,
			isHigh: false,
			want:   0.5,
			ok:     true,
		},
		{
			name:   "high with 4% drop",
			closes: []float64{100, 99, 97, 96, 98, 99},
			idx:    0,
			isHigh: true,
			want:   0.4,
			ok:     true,
		},
		{
			name:   "sub-minimum move gets the floor",
			closes: []float64{100, 100.5, 101, 100.8, 100.2, 100.1},
			idx:    0,
			isHigh: false,
			want:   qualityFloor,
			ok:     true,
		},
		{
			name:   "too close to the end",
			closes: []float64{100, 101, 102},
			idx:    0,
			isHigh: false,
			ok:     false,
		},
		{
			name:   "non-positive price",
			closes: []float64{0, 101, 102, 103, 104, 105},
			idx:    0,
			isHigh: false,
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := forwardMoveScore(tt.closes, tt.idx, tt.isHigh)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("score = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		f1   float64
		want string
	}{
		{0.85, model.GradeExcellent},
		{0.8, model.GradeExcellent},
		{0.7, model.GradeGood},
		{0.6, model.GradeGood},
		{0.5, model.GradeFair},
		{0.4, model.GradeFair},
		{0.39, model.GradePoor},
		{0, model.GradePoor},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.f1); got != tt.want {
			t.Errorf("gradeFor(%f) = %q, want %q", tt.f1, got, tt.want)
		}
	}
}
