package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"pivotscan/internal/config"
	"pivotscan/internal/loader"
	"pivotscan/internal/scanner"
	"pivotscan/internal/store"
	"pivotscan/pkg/model"
)

var (
	cfgFile      string
	dataDir      string
	symbolList   string
	strategyName string
	sensitivity  string
	frequency    string
	workers      int
	format       string
	dbPath       string
	savePivots   bool
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pivotscan",
		Short: "Swing high/low scanner with multiple detection strategies",
		Long: `Pivotscan detects swing highs and lows in OHLCV series using an
indicator-driven scoring engine.

Strategies:
  ensemble     - Weighted volatility/prominence/trend/volume/structure scoring
  fractal      - Hurst-exponent filter on top of raw extrema
  statistical  - Local-significance t-test filter
  anomaly      - Robust-distance outlier scoring

Examples:
  pivotscan --data ./data --sensitivity balanced
  pivotscan --symbols AAPL,MSFT --strategy fractal --format json
  pivotscan --data ./data --save --db pivots.db`,
		RunE: run,
	}

	// Flags
	rootCmd.Flags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.Flags().StringVar(&dataDir, "data", "", "directory of per-symbol CSV files")
	rootCmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated list of symbols to scan (default: all in data dir)")
	rootCmd.Flags().StringVar(&strategyName, "strategy", "", "strategy: ensemble, fractal, statistical, anomaly")
	rootCmd.Flags().StringVar(&sensitivity, "sensitivity", "", "sensitivity: conservative, balanced, aggressive")
	rootCmd.Flags().StringVar(&frequency, "frequency", "", "bar frequency: daily, weekly")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers")
	rootCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path for --save")
	rootCmd.Flags().BoolVar(&savePivots, "save", false, "persist retained pivots to the database")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "show per-symbol reports")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Override config with CLI flags
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if strategyName != "" {
		cfg.Analysis.Strategy = strategyName
	}
	if sensitivity != "" {
		cfg.Analysis.Sensitivity = sensitivity
	}
	if frequency != "" {
		cfg.Analysis.Frequency = frequency
	}
	if workers > 0 {
		cfg.Scanner.Workers = workers
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Stopping scan...")
		cancel()
	}()

	source := loader.NewCSVSource(cfg.Data.Dir)

	var symbols []string
	if symbolList != "" {
		for _, sym := range strings.Split(symbolList, ",") {
			sym = strings.ToUpper(strings.TrimSpace(sym))
			if sym != "" {
				symbols = append(symbols, sym)
			}
		}
	} else {
		symbols, err = source.Symbols(ctx)
		if err != nil {
			return fmt.Errorf("listing symbols: %w", err)
		}
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols to scan")
	}

	analysisCfg := cfg.AnalysisModel()
	if analysisCfg.Strategy == "" {
		analysisCfg.Strategy = "ensemble"
	}
	fmt.Printf("Scanning %d symbols (%s strategy, %s sensitivity, %s bars)...\n\n",
		len(symbols), analysisCfg.Strategy, analysisCfg.Sensitivity, analysisCfg.Frequency)

	s := scanner.NewScanner(source, analysisCfg, cfg.Scanner.Workers, cfg.Scanner.Timeout)

	// Setup progress bar
	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	s.SetProgressCallback(func(scanned, total int) {
		bar.Set(scanned)
	})

	result, err := s.Scan(ctx, symbols)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	bar.Finish()
	fmt.Println()

	if savePivots {
		if cfg.Store.Path == "" {
			return fmt.Errorf("--save requires --db or store.path in the config")
		}
		if err := persist(ctx, cfg.Store.Path, result, analysisCfg.Frequency); err != nil {
			return fmt.Errorf("saving pivots: %w", err)
		}
		fmt.Printf("Saved pivots to %s (run %s)\n\n", cfg.Store.Path, result.RunID)
	}

	if format == "json" {
		return outputJSON(result)
	}
	return outputTable(result)
}

func persist(ctx context.Context, path string, result *scanner.ScanResult, freq model.Frequency) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, r := range result.Results {
		pivots := append(append([]model.Pivot{}, r.Result.FilteredHighs...), r.Result.FilteredLows...)
		if err := st.SavePivots(ctx, r.Symbol, freq, result.RunID, pivots); err != nil {
			return err
		}
	}
	return nil
}

func outputTable(result *scanner.ScanResult) error {
	results := result.Results
	if len(results) == 0 {
		fmt.Println("No symbols analyzed.")
		fmt.Printf("Scanned %d symbols in %s\n", result.TotalScanned, result.ScanTime.Round(time.Second))
		return nil
	}

	// Sort by quality F1 descending, ties by pivot count.
	sort.Slice(results, func(i, j int) bool {
		qi, qj := results[i].Result.Quality.F1, results[j].Result.Quality.F1
		if qi != qj {
			return qi > qj
		}
		ni := len(results[i].Result.FilteredHighs) + len(results[i].Result.FilteredLows)
		nj := len(results[j].Result.FilteredHighs) + len(results[j].Result.FilteredLows)
		return ni > nj
	})

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Symbol", "Status", "Highs", "Lows", "F1", "Grade", "Premium"}),
	)

	for _, r := range results {
		premium := "-"
		if r.Result.Premium.IsPremium {
			premium = "yes"
		}
		table.Append([]string{
			r.Symbol,
			string(r.Result.Status),
			fmt.Sprintf("%d", len(r.Result.FilteredHighs)),
			fmt.Sprintf("%d", len(r.Result.FilteredLows)),
			fmt.Sprintf("%.0f%%", r.Result.Quality.F1*100),
			r.Result.Quality.Grade,
			premium,
		})
	}

	table.Render()

	if verbose {
		fmt.Println("\n--- Detection Details ---")
		count := 0
		for _, r := range results {
			if count >= 5 { // Show top 5 only
				break
			}
			fmt.Printf("\n[%s] %s\n", r.Symbol, r.Result.Report.Summary)
			fmt.Printf("  %s\n", r.Result.Report.MethodInfo)
			fmt.Printf("  %s\n", r.Result.Report.QualityAssessment)
			if r.Result.Premium.Reason != "" {
				fmt.Printf("  Premium: %s\n", r.Result.Premium.Reason)
			}
			fmt.Printf("  >> %s\n", r.Result.Report.Recommendation)
			count++
		}
	}

	fmt.Printf("\nScanned %d symbols in %s\n", result.TotalScanned, result.ScanTime.Round(time.Second))
	return nil
}

func outputJSON(result *scanner.ScanResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
