// Package loader reads bar series from per-symbol CSV files. One file per
// symbol, named <SYMBOL>.csv, with a header row and columns
// date,open,high,low,close[,volume].
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"pivotscan/pkg/model"
)

// CSVSource serves bars from a directory of CSV files.
type CSVSource struct {
	dir string
}

// NewCSVSource creates a source rooted at dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Symbols lists the symbols available in the directory, one per CSV file.
func (s *CSVSource) Symbols(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir %s: %w", s.dir, err)
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		symbols = append(symbols, strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name))))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Bars loads one symbol's series, sorted ascending by time with duplicate
// timestamps dropped (first occurrence wins).
func (s *CSVSource) Bars(ctx context.Context, symbol string) ([]model.Bar, error) {
	path := filepath.Join(s.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		// Try the lowercase variant before giving up.
		lower := filepath.Join(s.dir, strings.ToLower(symbol)+".csv")
		if f2, err2 := os.Open(lower); err2 == nil {
			f = f2
		} else {
			return nil, fmt.Errorf("opening bars for %s: %w", symbol, err)
		}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	var bars []model.Bar
	for i, rec := range records {
		if i == 0 && isHeader(rec) {
			continue
		}
		bar, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	deduped := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Time.Equal(bars[i-1].Time) {
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[len(rec)-1]), 64)
	return err != nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseRecord(rec []string) (model.Bar, error) {
	if len(rec) < 5 {
		return model.Bar{}, fmt.Errorf("expected at least 5 columns, got %d", len(rec))
	}

	var bar model.Bar
	var err error
	raw := strings.TrimSpace(rec[0])
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, raw); err == nil {
			bar.Time = t
			break
		}
	}
	if bar.Time.IsZero() {
		return model.Bar{}, fmt.Errorf("unparseable date %q", raw)
	}

	fields := []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close}
	for i, dst := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("column %d: %w", i+2, err)
		}
		*dst = v
	}
	if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[5]), 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("volume column: %w", err)
		}
		bar.Volume = v
	}
	return bar, nil
}
