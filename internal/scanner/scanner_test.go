package scanner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pivotscan/pkg/model"
)

// memSource is an in-memory BarSource for tests.
type memSource struct {
	bars map[string][]model.Bar
}

func (m *memSource) Symbols(ctx context.Context) ([]string, error) {
	syms := make([]string, 0, len(m.bars))
	for s := range m.bars {
		syms = append(syms, s)
	}
	return syms, nil
}

func (m *memSource) Bars(ctx context.Context, symbol string) ([]model.Bar, error) {
	bars, ok := m.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	return bars, nil
}

func testBars(n int) []model.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		var close float64
		if i <= n/2 {
			close = 100 - float64(i)
		} else {
			close = 100 - float64(n/2) + float64(i-n/2)
		}
		bars[i] = model.Bar{
			Time:   base.AddDate(0, 0, i),
			Open:   close,
			High:   close + 0.5,
			Low:    close - 0.5,
			Close:  close,
			Volume: 100000,
		}
	}
	return bars
}

func testConfig() model.AnalysisConfig {
	return model.AnalysisConfig{
		Strategy:    "ensemble",
		Sensitivity: model.Balanced,
		Frequency:   model.Daily,
	}
}

func TestScanAll(t *testing.T) {
	source := &memSource{bars: map[string][]model.Bar{
		"AAA": testBars(60),
		"BBB": testBars(80),
	}}
	s := NewScanner(source, testConfig(), 4, 30*time.Second)

	result, err := s.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll: %v", err)
	}
	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if result.TotalScanned != 2 {
		t.Errorf("Expected 2 scanned, got %d", result.TotalScanned)
	}
	if len(result.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(result.Results))
	}
	for _, r := range result.Results {
		if r.Result.Status == "" {
			t.Errorf("%s: missing result status", r.Symbol)
		}
	}
}

func TestScanSkipsFailingSymbol(t *testing.T) {
	source := &memSource{bars: map[string][]model.Bar{
		"GOOD": testBars(60),
	}}
	s := NewScanner(source, testConfig(), 2, 30*time.Second)

	result, err := s.Scan(context.Background(), []string{"GOOD", "MISSING"})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.TotalScanned != 2 {
		t.Errorf("Expected both symbols counted, got %d", result.TotalScanned)
	}
	if len(result.Results) != 1 || result.Results[0].Symbol != "GOOD" {
		t.Errorf("Expected only the loadable symbol in results, got %+v", result.Results)
	}
}

func TestScanProgressReachesTotal(t *testing.T) {
	source := &memSource{bars: map[string][]model.Bar{
		"AAA": testBars(60),
		"BBB": testBars(60),
		"CCC": testBars(60),
	}}
	s := NewScanner(source, testConfig(), 1, 30*time.Second)

	var last int
	s.SetProgressCallback(func(scanned, total int) {
		if scanned > last {
			last = scanned
		}
		if total != 3 {
			t.Errorf("Expected total 3, got %d", total)
		}
	})

	if _, err := s.Scan(context.Background(), []string{"AAA", "BBB", "CCC"}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if last != 3 {
		t.Errorf("Expected progress to reach 3, got %d", last)
	}
}

func TestScanEmptySymbolList(t *testing.T) {
	s := NewScanner(&memSource{}, testConfig(), 2, time.Second)
	result, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("Expected no results, got %d", len(result.Results))
	}
	if result.RunID == "" {
		t.Error("Expected a run ID even for an empty scan")
	}
}

func TestNewScannerWorkerFloor(t *testing.T) {
	s := NewScanner(&memSource{}, testConfig(), 0, time.Second)
	if s.workers != 1 {
		t.Errorf("Expected worker floor of 1, got %d", s.workers)
	}
}
