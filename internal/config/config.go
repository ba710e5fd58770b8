package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pivotscan/pkg/model"
)

// Config represents the application configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Store    StoreConfig    `yaml:"store"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// DataConfig holds bar-source settings
type DataConfig struct {
	Dir string `yaml:"dir"` // directory of per-symbol CSV files
}

// StoreConfig holds pivot persistence settings
type StoreConfig struct {
	Path string `yaml:"path"` // sqlite database path; empty disables persistence
}

// ScannerConfig holds scanner settings
type ScannerConfig struct {
	Workers int           `yaml:"workers"`
	Timeout time.Duration `yaml:"timeout"`
}

// AnalysisConfig holds detection settings
type AnalysisConfig struct {
	Strategy    string `yaml:"strategy"`
	Sensitivity string `yaml:"sensitivity"`
	Frequency   string `yaml:"frequency"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "data",
		},
		Store: StoreConfig{
			Path: "",
		},
		Scanner: ScannerConfig{
			Workers: 10,
			Timeout: 60 * time.Second,
		},
		Analysis: AnalysisConfig{
			Strategy:    "ensemble",
			Sensitivity: string(model.Balanced),
			Frequency:   string(model.Daily),
		},
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if dir := os.Getenv("PIVOTSCAN_DATA_DIR"); dir != "" {
		cfg.Data.Dir = dir
	}
	if path := os.Getenv("PIVOTSCAN_DB"); path != "" {
		cfg.Store.Path = path
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// AnalysisModel converts the string fields to the typed analysis config.
// Unknown values fall back to the engine defaults rather than failing.
func (c *Config) AnalysisModel() model.AnalysisConfig {
	return model.AnalysisConfig{
		Strategy:    c.Analysis.Strategy,
		Sensitivity: model.ParseSensitivity(c.Analysis.Sensitivity),
		Frequency:   model.ParseFrequency(c.Analysis.Frequency),
	}
}
