package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pivotscan/pkg/model"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scanner.Workers != 10 {
		t.Errorf("Expected default 10 workers, got %d", cfg.Scanner.Workers)
	}
	if cfg.Analysis.Strategy != "ensemble" {
		t.Errorf("Expected default ensemble strategy, got %q", cfg.Analysis.Strategy)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data:
  dir: /tmp/bars
scanner:
  workers: 4
  timeout: 45s
analysis:
  strategy: fractal
  sensitivity: aggressive
  frequency: weekly
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.Dir != "/tmp/bars" {
		t.Errorf("Expected data dir override, got %q", cfg.Data.Dir)
	}
	if cfg.Scanner.Workers != 4 || cfg.Scanner.Timeout != 45*time.Second {
		t.Errorf("Expected scanner overrides, got %+v", cfg.Scanner)
	}
	if cfg.Analysis.Strategy != "fractal" {
		t.Errorf("Expected strategy override, got %q", cfg.Analysis.Strategy)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scanner: [not a map"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected an error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing data dir", func(c *Config) { c.Data.Dir = "" }, true},
		{"zero workers", func(c *Config) { c.Scanner.Workers = 0 }, true},
		{"non-positive timeout", func(c *Config) { c.Scanner.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalysisModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Sensitivity = "bogus"
	cfg.Analysis.Frequency = "hourly"

	m := cfg.AnalysisModel()
	if m.Sensitivity != model.Balanced {
		t.Errorf("Expected unknown sensitivity to fall back to balanced, got %q", m.Sensitivity)
	}
	if m.Frequency != model.Daily {
		t.Errorf("Expected unknown frequency to fall back to daily, got %q", m.Frequency)
	}
	if m.Strategy != "ensemble" {
		t.Errorf("Expected strategy passthrough, got %q", m.Strategy)
	}
}
