package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Pipeline.OCRThreshold != 0.7 {
		t.Errorf("OCRThreshold = %v, want 0.7", cfg.Pipeline.OCRThreshold)
	}
	if cfg.PDF.Backend != "pdftotext" {
		t.Errorf("Backend = %q, want pdftotext", cfg.PDF.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cibil.yaml")
	body := `
log:
  level: debug
  format: text
pipeline:
  workers: 4
  ocr: "off"
database:
  driver: sqlite
  dsn: "file:reports.db"
watch:
  roots: ["/data/in"]
  debounce: 2s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CIBIL_WORKERS", "8")
	t.Setenv("GRPC_ADDR", ":9999")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Format != "text" || cfg.Log.Level != "debug" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Pipeline.Workers != 8 {
		t.Errorf("Workers = %d, want env override 8", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.OCR != OCROff {
		t.Errorf("OCR = %q, want off", cfg.Pipeline.OCR)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Debounce = %v, want 2s", cfg.Watch.Debounce)
	}
	if len(cfg.Watch.Roots) != 1 || cfg.Watch.Roots[0] != "/data/in" {
		t.Errorf("Roots = %v", cfg.Watch.Roots)
	}
	if cfg.Server.GRPCAddr != ":9999" {
		t.Errorf("GRPCAddr = %q", cfg.Server.GRPCAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDriverGuessedFromDSN(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/cibil")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, want postgres", cfg.Database.Driver)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad backend", func(c *Config) { c.PDF.Backend = "ghostscript" }},
		{"threshold above one", func(c *Config) { c.Pipeline.OCRThreshold = 1.5 }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"driver without dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"bad ocr mode", func(c *Config) { c.Pipeline.OCR = "maybe" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v should wrap ErrInvalidInput", err)
			}
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("pipeline: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
