package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pivotscan/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "pivots.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadPivots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pivots := []model.Pivot{
		{Time: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Price: 98.5, Score: 0.8, Kind: model.PivotLow},
		{Time: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), Price: 110.2, Score: 0.7, Kind: model.PivotHigh},
	}
	if err := s.SavePivots(ctx, "AAPL", model.Daily, "run-1", pivots); err != nil {
		t.Fatalf("SavePivots: %v", err)
	}

	got, err := s.Pivots(ctx, "AAPL", model.Daily)
	if err != nil {
		t.Fatalf("Pivots: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 pivots, got %d", len(got))
	}
	if got[0].Kind != model.PivotLow || got[0].Price != 98.5 {
		t.Errorf("Unexpected first pivot: %+v", got[0])
	}
	if !got[0].Time.Equal(pivots[0].Time) {
		t.Errorf("Expected date round-trip, got %v", got[0].Time)
	}
}

func TestSavePivotsUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	first := []model.Pivot{{Time: date, Price: 98.5, Score: 0.6, Kind: model.PivotLow}}
	if err := s.SavePivots(ctx, "AAPL", model.Daily, "run-1", first); err != nil {
		t.Fatalf("SavePivots: %v", err)
	}

	second := []model.Pivot{{Time: date, Price: 98.5, Score: 0.9, Kind: model.PivotLow}}
	if err := s.SavePivots(ctx, "AAPL", model.Daily, "run-2", second); err != nil {
		t.Fatalf("SavePivots (upsert): %v", err)
	}

	got, err := s.Pivots(ctx, "AAPL", model.Daily)
	if err != nil {
		t.Fatalf("Pivots: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected the duplicate key to be overwritten, got %d rows", len(got))
	}
	if got[0].Score != 0.9 {
		t.Errorf("Expected the newer score 0.9, got %f", got[0].Score)
	}
}

func TestPivotsSeparatedByFrequency(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	daily := []model.Pivot{{Time: date, Price: 98.5, Score: 0.6, Kind: model.PivotLow}}
	if err := s.SavePivots(ctx, "AAPL", model.Daily, "run-1", daily); err != nil {
		t.Fatalf("SavePivots daily: %v", err)
	}

	weekly, err := s.Pivots(ctx, "AAPL", model.Weekly)
	if err != nil {
		t.Fatalf("Pivots weekly: %v", err)
	}
	if len(weekly) != 0 {
		t.Errorf("Expected no weekly pivots, got %d", len(weekly))
	}
}

func TestSavePivotsEmpty(t *testing.T) {
	s := openTestStore(t)
	if err := s.SavePivots(context.Background(), "AAPL", model.Daily, "run-1", nil); err != nil {
		t.Errorf("Expected saving zero pivots to be a no-op, got %v", err)
	}
}
