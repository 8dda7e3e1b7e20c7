package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formbench/formbench/internal/benchmark"
)

func floatPtr(v float64) *float64 { return &v }

func threeFormatResults() []benchmark.CombinedResult {
	return []benchmark.CombinedResult{
		{
			FormatName:              "protobuf",
			FileSizeBytes:           200,
			WriteTimeSeconds:        2.0,
			ReadFullTimeSeconds:     floatPtr(4.0),
			ReadFilteredTimeSeconds: floatPtr(3.0),
			AggregateTimeSeconds:    floatPtr(2.0),
			RecordCount:             1500000,
		},
		{
			FormatName:              "parquet",
			FileSizeBytes:           50,
			WriteTimeSeconds:        1.0,
			ReadFullTimeSeconds:     floatPtr(2.5),
			ReadFilteredTimeSeconds: floatPtr(0.5),
			AggregateTimeSeconds:    floatPtr(0.25),
			RecordCount:             1500000,
		},
		{
			FormatName:              "avro",
			FileSizeBytes:           100,
			WriteTimeSeconds:        1.5,
			ReadFullTimeSeconds:     nil,
			ReadFilteredTimeSeconds: floatPtr(2.0),
			AggregateTimeSeconds:    floatPtr(1.0),
			RecordCount:             1500000,
		},
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "0.50 KB"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1 << 20, "1.00 MB"},
		{5 * (1 << 20), "5.00 MB"},
		{1 << 30, "1.00 GB"},
		{int64(2.5 * float64(1<<30)), "2.50 GB"},
	}
	for _, c := range cases {
		if got := formatSize(c.bytes); got != c.want {
			t.Errorf("formatSize(%d) = %q, want %q", c.bytes, got, c.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds *float64
		want    string
	}{
		{nil, "TIMEOUT"},
		{floatPtr(0.5), "0.50 s"},
		{floatPtr(59.99), "59.99 s"},
		{floatPtr(60), "1.00 min"},
		{floatPtr(150), "2.50 min"},
	}
	for _, c := range cases {
		if got := formatTime(c.seconds); got != c.want {
			t.Errorf("formatTime(%v) = %q, want %q", c.seconds, got, c.want)
		}
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		value    *float64
		baseline *float64
		want     string
	}{
		{nil, floatPtr(1), "TIMEOUT"},
		{floatPtr(1), nil, "N/A"},
		{floatPtr(1), floatPtr(0), "N/A"},
		{floatPtr(50), floatPtr(50), "+0.0%"},
		{floatPtr(200), floatPtr(50), "+300.0%"},
		{floatPtr(100), floatPtr(50), "+100.0%"},
	}
	for _, c := range cases {
		if got := percentage(c.value, c.baseline); got != c.want {
			t.Errorf("percentage(%v, %v) = %q, want %q", c.value, c.baseline, got, c.want)
		}
	}
}

func TestGroupThousands(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1500000, "1,500,000"},
		{53687091, "53,687,091"},
	}
	for _, c := range cases {
		if got := groupThousands(c.n); got != c.want {
			t.Errorf("groupThousands(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestSummaryTable(t *testing.T) {
	g := NewGenerator(threeFormatResults())
	table := g.SummaryTable()

	lines := strings.Split(table, "\n")
	if len(lines) != 5 {
		t.Fatalf("table has %d lines, want 5 (header, separator, 3 rows):\n%s", len(lines), table)
	}
	// Sorted by format name
	if !strings.Contains(lines[2], "AVRO") || !strings.Contains(lines[3], "PARQUET") || !strings.Contains(lines[4], "PROTOBUF") {
		t.Errorf("rows not sorted by format name:\n%s", table)
	}
	// avro's full scan timed out
	if !strings.Contains(lines[2], "TIMEOUT") {
		t.Errorf("avro row missing TIMEOUT:\n%s", table)
	}
	if !strings.Contains(lines[3], "0.05 KB") {
		t.Errorf("parquet row missing file size:\n%s", table)
	}
}

func TestComparisonTable(t *testing.T) {
	g := NewGenerator(threeFormatResults())
	table := g.ComparisonTable()

	lines := strings.Split(table, "\n")
	avroRow, parquetRow, protobufRow := lines[2], lines[3], lines[4]

	// Best size is parquet at 50 bytes; avro is 100, protobuf 200
	if !strings.Contains(parquetRow, "+0.0%") {
		t.Errorf("best entry should read +0.0%%:\n%s", parquetRow)
	}
	if !strings.Contains(avroRow, "+100.0%") {
		t.Errorf("avro size should be +100.0%%:\n%s", avroRow)
	}
	if !strings.Contains(protobufRow, "+300.0%") {
		t.Errorf("protobuf size should be +300.0%%:\n%s", protobufRow)
	}
	// avro's timed-out full scan renders TIMEOUT and is excluded from
	// the best, so protobuf compares against parquet's 2.5s
	if !strings.Contains(avroRow, "TIMEOUT") {
		t.Errorf("avro full scan should read TIMEOUT:\n%s", avroRow)
	}
	if !strings.Contains(protobufRow, "+60.0%") {
		t.Errorf("protobuf full scan should be +60.0%% over parquet:\n%s", protobufRow)
	}
}

func TestComparisonTableAllTimedOut(t *testing.T) {
	results := []benchmark.CombinedResult{
		{FormatName: "parquet", FileSizeBytes: 50, WriteTimeSeconds: 1, RecordCount: 10},
		{FormatName: "avro", FileSizeBytes: 100, WriteTimeSeconds: 2, RecordCount: 10},
	}
	g := NewGenerator(results)
	table := g.ComparisonTable()

	// No valid baseline for any read metric
	if !strings.Contains(table, "TIMEOUT") {
		t.Errorf("expected TIMEOUT entries:\n%s", table)
	}
	if strings.Contains(table, "N/A") {
		t.Errorf("nil values should render TIMEOUT, not N/A:\n%s", table)
	}
}

func TestAnalysis(t *testing.T) {
	g := NewGenerator(threeFormatResults())
	analysis := g.Analysis()

	for _, want := range []string{
		"## Analysis",
		"### File Size (Storage Efficiency)",
		"- **Best:** PARQUET (0.05 KB)",
		"- **Worst:** PROTOBUF (0.20 KB)",
		"PARQUET achieves 4.00x better compression than PROTOBUF",
		"### Write Performance",
		"- **Fastest:** PARQUET (1.00 s)",
		"### Full Scan Performance",
		"### Aggregation Performance",
		// parquet: 2.5s full / 0.5s filtered = 5x
		"Parquet shows 5.0x speedup with predicate pushdown",
	} {
		if !strings.Contains(analysis, want) {
			t.Errorf("analysis missing %q:\n%s", want, analysis)
		}
	}
}

func TestAnalysisAllTimedOut(t *testing.T) {
	results := []benchmark.CombinedResult{
		{FormatName: "parquet", FileSizeBytes: 50, WriteTimeSeconds: 1, RecordCount: 10},
	}
	g := NewGenerator(results)
	analysis := g.Analysis()

	for _, want := range []string{
		"- All formats timed out during full scan",
		"- All formats timed out during filtered reads",
		"- All formats timed out during aggregation",
	} {
		if !strings.Contains(analysis, want) {
			t.Errorf("analysis missing %q:\n%s", want, analysis)
		}
	}
	if strings.Contains(analysis, "predicate pushdown") {
		t.Errorf("pushdown callout should not appear for timed-out reads:\n%s", analysis)
	}
}

func TestFullReportAndSave(t *testing.T) {
	g := NewGenerator(threeFormatResults())
	full := g.FullReport()

	for _, want := range []string{
		"# Data Format Benchmark Results",
		"Total records: 1,500,000",
		"## Summary",
		"## Relative Performance",
		"## Analysis",
	} {
		if !strings.Contains(full, want) {
			t.Errorf("report missing %q", want)
		}
	}

	path := filepath.Join(t.TempDir(), "report.md")
	if err := g.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(saved) != full {
		t.Error("saved report differs from rendered report")
	}
}
