package scanner

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pivotscan/internal/analyzer"
	"pivotscan/pkg/model"
)

// BarSource supplies bar series per symbol.
type BarSource interface {
	Symbols(ctx context.Context) ([]string, error)
	Bars(ctx context.Context, symbol string) ([]model.Bar, error)
}

// ProgressCallback is called with progress updates
type ProgressCallback func(scanned, total int)

// SymbolResult pairs one symbol with its analysis result.
type SymbolResult struct {
	Symbol string          `json:"symbol"`
	Result analyzer.Result `json:"result"`
}

// ScanResult aggregates one batch run.
type ScanResult struct {
	RunID        string         `json:"run_id"`
	TotalScanned int            `json:"total_scanned"`
	Results      []SymbolResult `json:"results"`
	ScanTime     time.Duration  `json:"scan_time"`
}

// Scanner performs parallel pivot scanning across symbols
type Scanner struct {
	source       BarSource
	config       model.AnalysisConfig
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
}

// NewScanner creates a new scanner
func NewScanner(source BarSource, cfg model.AnalysisConfig, workers int, timeout time.Duration) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		source:  source,
		config:  cfg,
		workers: workers,
		timeout: timeout,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// ScanAll scans every symbol the source knows about.
func (s *Scanner) ScanAll(ctx context.Context) (*ScanResult, error) {
	symbols, err := s.source.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, symbols)
}

// Scan scans the given symbols with a worker pool. A symbol whose bars
// cannot be loaded is logged and skipped; it never aborts the batch.
func (s *Scanner) Scan(ctx context.Context, symbols []string) (*ScanResult, error) {
	startTime := time.Now()
	runID := uuid.NewString()

	if len(symbols) == 0 {
		return &ScanResult{
			RunID:    runID,
			Results:  []SymbolResult{},
			ScanTime: time.Since(startTime),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	jobChan := make(chan string, len(symbols))
	resultChan := make(chan SymbolResult, len(symbols))

	for _, sym := range symbols {
		jobChan <- sym
	}
	close(jobChan)

	var scannedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := analyzer.New()

			for symbol := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					bars, err := s.source.Bars(ctx, symbol)
					if err != nil {
						log.Printf("[SCAN] %s: loading bars failed: %v", symbol, err)
					} else {
						resultChan <- SymbolResult{
							Symbol: symbol,
							Result: a.Detect(bars, s.config),
						}
					}

					count := atomic.AddInt64(&scannedCount, 1)
					if s.progressFunc != nil {
						s.progressFunc(int(count), len(symbols))
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var results []SymbolResult
	for r := range resultChan {
		results = append(results, r)
	}

	return &ScanResult{
		RunID:        runID,
		TotalScanned: len(symbols),
		Results:      results,
		ScanTime:     time.Since(startTime),
	}, nil
}
