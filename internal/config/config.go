// Package config provides unified configuration for the benchmark CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Benchmark-wide constants.
const (
	// DefaultTargetSizeGB is the default dataset size for the write phase.
	DefaultTargetSizeGB = 10.0

	// BatchSize is the number of records generated per batch.
	BatchSize = 100_000

	// DefaultRuns is the number of repetitions per read measurement.
	DefaultRuns = 3

	// DefaultTimeoutSeconds bounds each individual read operation.
	DefaultTimeoutSeconds = 600

	// DefaultFilterCategory is the category used by filtered-read tests.
	DefaultFilterCategory = "Electronics"

	// AvgRecordSizeBytes is the rough in-memory record size used to
	// estimate record counts from a target dataset size.
	AvgRecordSizeBytes = 200
)

// DefaultFormats is the format list benchmarked when none is given.
var DefaultFormats = []string{"parquet", "avro", "protobuf"}

// Result file names used as the handoff contract between phases.
const (
	WriteResultsFile = "write_results.json"
	ReadResultsFile  = "read_results.json"
	ReportFile       = "report.md"
)

// Config holds the unified configuration for all benchmark phases.
type Config struct {
	// DataDir is the base directory for data files and results
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Formats is the list of format names to benchmark
	Formats []string `json:"formats" yaml:"formats"`

	// Write phase configuration
	Write WriteConfig `json:"write" yaml:"write"`

	// Read phase configuration
	Read ReadConfig `json:"read" yaml:"read"`

	// ReportFile overrides the rendered report path. Empty means
	// report.md under DataDir.
	ReportFile string `json:"report_file" yaml:"report_file"`

	// Storage configuration for artifact archiving
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// WriteConfig holds write phase configuration.
type WriteConfig struct {
	// TargetSizeGB is the target dataset size in gigabytes
	TargetSizeGB float64 `json:"target_size_gb" yaml:"target_size_gb"`

	// Seed makes generated data reproducible when non-zero
	Seed int64 `json:"seed" yaml:"seed"`
}

// ReadConfig holds read phase configuration.
type ReadConfig struct {
	// Runs is the number of repetitions per measurement category
	Runs int `json:"runs" yaml:"runs"`

	// TimeoutSeconds bounds each individual operation run
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`

	// FilterCategory is the category for filtered-read tests
	FilterCategory string `json:"filter_category" yaml:"filter_category"`
}

// StorageConfig holds artifact storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3, or empty to disable archiving
	Type string `json:"type" yaml:"type"`

	// Path is the local archive path (for local type)
	Path string `json:"path" yaml:"path"`

	// Prefix is the object path prefix for archived artifacts
	Prefix string `json:"prefix" yaml:"prefix"`

	// ArchiveData controls whether data files are archived along with
	// results and the report
	ArchiveData bool `json:"archive_data" yaml:"archive_data"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local runs.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Formats: append([]string(nil), DefaultFormats...),
		Write: WriteConfig{
			TargetSizeGB: DefaultTargetSizeGB,
		},
		Read: ReadConfig{
			Runs:           DefaultRuns,
			TimeoutSeconds: DefaultTimeoutSeconds,
			FilterCategory: DefaultFilterCategory,
		},
		Storage: StorageConfig{
			Type:   "",
			Prefix: "formbench",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if len(c.Formats) == 0 {
		c.Formats = append([]string(nil), DefaultFormats...)
	}
	if c.Storage.Type == "local" && c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "archive")
	}
}

// WriteResultsPath returns the default path for persisted write results.
func (c *Config) WriteResultsPath() string {
	return filepath.Join(c.DataDir, WriteResultsFile)
}

// ReadResultsPath returns the default path for persisted read results.
func (c *Config) ReadResultsPath() string {
	return filepath.Join(c.DataDir, ReadResultsFile)
}

// ReportPath returns the path for the rendered report, honoring the
// ReportFile override.
func (c *Config) ReportPath() string {
	if c.ReportFile != "" {
		return c.ReportFile
	}
	return filepath.Join(c.DataDir, ReportFile)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Write.TargetSizeGB <= 0 {
		return fmt.Errorf("write.target_size_gb must be positive, got %g", c.Write.TargetSizeGB)
	}

	if c.Read.Runs < 1 {
		return fmt.Errorf("read.runs must be at least 1, got %d", c.Read.Runs)
	}

	if c.Read.TimeoutSeconds < 1 {
		return fmt.Errorf("read.timeout_seconds must be at least 1, got %d", c.Read.TimeoutSeconds)
	}

	switch c.Storage.Type {
	case "", "local", "s3":
		// Valid types; empty disables archiving
	default:
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the FORMBENCH_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("FORMBENCH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FORMBENCH_FORMATS"); v != "" {
		cfg.Formats = SplitFormats(v)
	}

	// Write configuration
	if v := os.Getenv("FORMBENCH_TARGET_SIZE_GB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Write.TargetSizeGB = f
		}
	}
	if v := os.Getenv("FORMBENCH_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Write.Seed = n
		}
	}

	// Read configuration
	if v := os.Getenv("FORMBENCH_RUNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Read.Runs = n
		}
	}
	if v := os.Getenv("FORMBENCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Read.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("FORMBENCH_FILTER_CATEGORY"); v != "" {
		cfg.Read.FilterCategory = v
	}
	if v := os.Getenv("FORMBENCH_REPORT_FILE"); v != "" {
		cfg.ReportFile = v
	}

	// Storage configuration
	if v := os.Getenv("FORMBENCH_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("FORMBENCH_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("FORMBENCH_STORAGE_PREFIX"); v != "" {
		cfg.Storage.Prefix = v
	}
	if v := os.Getenv("FORMBENCH_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("FORMBENCH_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("FORMBENCH_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
}

// SplitFormats parses a comma-separated format list into normalized names.
func SplitFormats(s string) []string {
	parts := strings.Split(s, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.ToLower(strings.TrimSpace(p))
		if name != "" {
			formats = append(formats, name)
		}
	}
	return formats
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
