package benchmark

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	bencherrors "github.com/formbench/formbench/internal/errors"
)

func floatPtr(v float64) *float64 { return &v }

func TestWriteResultsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "write_results.json")

	in := []WriteResult{
		{FormatName: "parquet", FileSizeBytes: 1024, WriteTimeSeconds: 1.5, RecordCount: 100, FilePath: "/tmp/benchmark_data.parquet"},
		{FormatName: "avro", FileSizeBytes: 2048, WriteTimeSeconds: 2.25, RecordCount: 100, FilePath: "/tmp/benchmark_data.avro"},
	}
	if err := SaveWriteResults(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := LoadWriteResults(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in:  %+v\n out: %+v", in, out)
	}
}

func TestReadResultsNullFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "read_results.json")

	count := int64(100)
	in := []ReadResult{
		{
			FormatName:              "protobuf",
			ReadFullTimeSeconds:     floatPtr(3.5),
			ReadFilteredTimeSeconds: nil,
			ReadFilteredTimeout:     true,
			AggregateTimeSeconds:    nil,
			AggregateTimeout:        true,
			FileSizeBytes:           4096,
			RecordCount:             &count,
		},
	}
	if err := SaveReadResults(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Timed-out categories serialize as explicit nulls, never omitted
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`"read_filtered_time_seconds": null`,
		`"aggregate_time_seconds": null`,
		`"read_filtered_timeout": true`,
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("JSON missing %s:\n%s", want, raw)
		}
	}

	out, err := LoadReadResults(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch:\n in:  %+v\n out: %+v", in, out)
	}
}

func TestLoadResultsMissingFile(t *testing.T) {
	_, err := LoadWriteResults(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing results file")
	}
	if bencherrors.GetCode(err) != bencherrors.CodeResultsMissing {
		t.Errorf("error code = %q, want %q", bencherrors.GetCode(err), bencherrors.CodeResultsMissing)
	}
}

func TestCombine(t *testing.T) {
	writes := []WriteResult{
		{FormatName: "parquet", FileSizeBytes: 100, WriteTimeSeconds: 1, RecordCount: 10},
		{FormatName: "avro", FileSizeBytes: 200, WriteTimeSeconds: 2, RecordCount: 10},
	}
	reads := []ReadResult{
		{FormatName: "avro", ReadFullTimeSeconds: floatPtr(0.5)},
		{FormatName: "parquet", ReadFullTimeSeconds: floatPtr(0.25)},
		{FormatName: "protobuf", ReadFullTimeSeconds: floatPtr(0.75)}, // no write entry
	}

	combined := Combine(writes, reads)
	if len(combined) != 2 {
		t.Fatalf("combined %d entries, want 2", len(combined))
	}
	// Write-result order is preserved
	if combined[0].FormatName != "parquet" || combined[1].FormatName != "avro" {
		t.Errorf("unexpected order: %s, %s", combined[0].FormatName, combined[1].FormatName)
	}
	if combined[0].FileSizeBytes != 100 || *combined[0].ReadFullTimeSeconds != 0.25 {
		t.Errorf("parquet entry not joined correctly: %+v", combined[0])
	}
	if combined[0].RecordCount != 10 {
		t.Errorf("record count = %d, want 10", combined[0].RecordCount)
	}
}
