package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	PDF      PDFConfig      `yaml:"pdf"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | text
}

// OCR modes for PipelineConfig.OCR.
const (
	OCRAuto = "auto"
	OCROn   = "on"
	OCROff  = "off"
)

// PipelineConfig holds aggregation pipeline configuration
type PipelineConfig struct {
	Workers      int     `yaml:"workers"`       // per-page parallelism; 1 = sequential
	OCR          string  `yaml:"ocr"`           // auto | on | off
	OCRThreshold float64 `yaml:"ocr_threshold"` // pages below this confidence are enhanced
}

// PDFConfig holds text extraction configuration
type PDFConfig struct {
	Backend       string `yaml:"backend"` // pdftotext | native
	Pdftotext     string `yaml:"pdftotext"`
	Pdftoppm      string `yaml:"pdftoppm"`
	Tesseract     string `yaml:"tesseract"`
	TesseractLang string `yaml:"tesseract_lang"`
	TessdataDir   string `yaml:"tessdata_dir"`
	DPI           int    `yaml:"dpi"`
	MaxPages      int    `yaml:"max_pages"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // sqlite | postgres | "" (no store)
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// WatchConfig holds directory watch configuration
type WatchConfig struct {
	Roots          []string      `yaml:"roots"`
	Debounce       time.Duration `yaml:"debounce"`
	InitialScan    bool          `yaml:"initial_scan"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	ProcessTimeout time.Duration `yaml:"process_timeout"`
	OutputDir      string        `yaml:"output_dir"` // empty = next to the source file
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Pipeline: PipelineConfig{
			Workers:      1,
			OCR:          OCRAuto,
			OCRThreshold: 0.7,
		},
		PDF: PDFConfig{
			Backend:       "pdftotext",
			Pdftotext:     "pdftotext",
			Pdftoppm:      "pdftoppm",
			Tesseract:     "tesseract",
			TesseractLang: "eng",
			DPI:           300,
		},
		Database: DatabaseConfig{
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{GRPCAddr: ":8080"},
		Watch: WatchConfig{
			Debounce:       500 * time.Millisecond,
			InitialScan:    true,
			Workers:        2,
			QueueSize:      64,
			ProcessTimeout: 3 * time.Minute,
		},
	}
}

// LoadConfig loads defaults, then the YAML file at path (if any), then environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "parse "+path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("CIBIL_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("CIBIL_LOG_FORMAT", c.Log.Format)

	c.Pipeline.Workers = getEnvAsInt("CIBIL_WORKERS", c.Pipeline.Workers)
	c.Pipeline.OCR = getEnv("CIBIL_OCR", c.Pipeline.OCR)
	c.Pipeline.OCRThreshold = getEnvAsFloat64("CIBIL_OCR_THRESHOLD", c.Pipeline.OCRThreshold)

	c.PDF.Backend = getEnv("CIBIL_PDF_BACKEND", c.PDF.Backend)
	c.PDF.Pdftotext = getEnv("PDFTOTEXT", c.PDF.Pdftotext)
	c.PDF.Pdftoppm = getEnv("PDFTOPPM", c.PDF.Pdftoppm)
	c.PDF.Tesseract = getEnv("TESSERACT", c.PDF.Tesseract)
	c.PDF.TesseractLang = getEnv("TESSERACT_LANG", c.PDF.TesseractLang)
	c.PDF.TessdataDir = getEnv("TESSDATA_PREFIX", c.PDF.TessdataDir)
	c.PDF.DPI = getEnvAsInt("CIBIL_OCR_DPI", c.PDF.DPI)
	c.PDF.MaxPages = getEnvAsInt("CIBIL_MAX_PAGES", c.PDF.MaxPages)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)
	if c.Database.Driver == "" && c.Database.DSN != "" {
		c.Database.Driver = GuessDriver(c.Database.DSN)
	}

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)

	if roots := getEnv("CIBIL_WATCH_DIRS", ""); roots != "" {
		c.Watch.Roots = splitList(roots)
	}
	c.Watch.Debounce = getEnvAsDuration("CIBIL_WATCH_DEBOUNCE", c.Watch.Debounce)
	c.Watch.Workers = getEnvAsInt("CIBIL_WATCH_WORKERS", c.Watch.Workers)
	c.Watch.QueueSize = getEnvAsInt("CIBIL_WATCH_QUEUE_SIZE", c.Watch.QueueSize)
	c.Watch.ProcessTimeout = getEnvAsDuration("CIBIL_WATCH_TIMEOUT", c.Watch.ProcessTimeout)
	c.Watch.OutputDir = getEnv("CIBIL_WATCH_OUTPUT_DIR", c.Watch.OutputDir)
}

// GuessDriver picks postgres for postgres:// URLs and sqlite for anything else.
func GuessDriver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("log.format", c.Log.Format, OneOf("json", "text"))
	v.Field("log.level", strings.ToLower(c.Log.Level), OneOf("debug", "info", "warn", "error"))
	v.Field("pipeline.workers", c.Pipeline.Workers, MinInt(1))
	v.Field("pipeline.ocr", c.Pipeline.OCR, OneOf(OCRAuto, OCROn, OCROff))
	v.Field("pipeline.ocr_threshold", c.Pipeline.OCRThreshold, UnitInterval)
	v.Field("pdf.backend", c.PDF.Backend, OneOf("pdftotext", "native"))
	v.Field("pdf.dpi", c.PDF.DPI, MinInt(72))
	v.Field("database.driver", c.Database.Driver, OneOf("", "sqlite", "postgres"))
	if c.Database.Driver != "" {
		v.Field("database.dsn", c.Database.DSN, Required)
	}
	v.Field("watch.workers", c.Watch.Workers, MinInt(1))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
