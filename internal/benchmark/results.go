// Package benchmark implements the write and read measurement phases
// and their persisted result types.
package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	bencherrors "github.com/formbench/formbench/internal/errors"
)

// WriteResult captures one format's write-phase metrics. The JSON
// field set is the handoff contract between phases; every field is
// always present.
type WriteResult struct {
	FormatName       string  `json:"format_name"`
	FileSizeBytes    int64   `json:"file_size_bytes"`
	WriteTimeSeconds float64 `json:"write_time_seconds"`
	RecordCount      int     `json:"record_count"`
	FilePath         string  `json:"file_path"`
}

// ReadResult captures one format's read-phase metrics. A nil duration
// means every attempted run of that operation timed out; the paired
// timeout flag is then true. Nil fields serialize as JSON null, never
// omitted.
type ReadResult struct {
	FormatName              string   `json:"format_name"`
	ReadFullTimeSeconds     *float64 `json:"read_full_time_seconds"`
	ReadFullTimeout         bool     `json:"read_full_timeout"`
	ReadFilteredTimeSeconds *float64 `json:"read_filtered_time_seconds"`
	ReadFilteredTimeout     bool     `json:"read_filtered_timeout"`
	AggregateTimeSeconds    *float64 `json:"aggregate_time_seconds"`
	AggregateTimeout        bool     `json:"aggregate_timeout"`
	FileSizeBytes           int64    `json:"file_size_bytes"`
	RecordCount             *int64   `json:"record_count"`
}

// CombinedResult joins a WriteResult and ReadResult by format name for
// reporting.
type CombinedResult struct {
	FormatName              string
	FileSizeBytes           int64
	WriteTimeSeconds        float64
	ReadFullTimeSeconds     *float64
	ReadFilteredTimeSeconds *float64
	AggregateTimeSeconds    *float64
	RecordCount             int
}

// Combine joins write and read results by format name. Read results
// with no matching write entry are dropped silently.
func Combine(writes []WriteResult, reads []ReadResult) []CombinedResult {
	byFormat := make(map[string]ReadResult, len(reads))
	for _, r := range reads {
		byFormat[r.FormatName] = r
	}

	combined := make([]CombinedResult, 0, len(writes))
	for _, w := range writes {
		r, ok := byFormat[w.FormatName]
		if !ok {
			continue
		}
		combined = append(combined, CombinedResult{
			FormatName:              w.FormatName,
			FileSizeBytes:           w.FileSizeBytes,
			WriteTimeSeconds:        w.WriteTimeSeconds,
			ReadFullTimeSeconds:     r.ReadFullTimeSeconds,
			ReadFilteredTimeSeconds: r.ReadFilteredTimeSeconds,
			AggregateTimeSeconds:    r.AggregateTimeSeconds,
			RecordCount:             w.RecordCount,
		})
	}
	return combined
}

// SaveWriteResults persists write results as a JSON array.
func SaveWriteResults(results []WriteResult, path string) error {
	return saveJSON(results, path)
}

// LoadWriteResults loads persisted write results.
func LoadWriteResults(path string) ([]WriteResult, error) {
	var results []WriteResult
	if err := loadJSON(path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SaveReadResults persists read results as a JSON array.
func SaveReadResults(results []ReadResult, path string) error {
	return saveJSON(results, path)
}

// LoadReadResults loads persisted read results.
func LoadReadResults(path string) ([]ReadResult, error) {
	var results []ReadResult
	if err := loadJSON(path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func saveJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results file %s: %w", path, err)
	}
	return nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bencherrors.Wrap(bencherrors.ErrCategoryReport, bencherrors.CodeResultsMissing,
				fmt.Sprintf("results file not found: %s", path), err)
		}
		return fmt.Errorf("read results file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse results file %s: %w", path, err)
	}
	return nil
}
