// Package report renders benchmark results as a markdown report with
// summary, relative-performance, and analysis sections.
package report

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/formbench/formbench/internal/benchmark"
)

// Generator renders a report for a set of combined results. Results
// are kept sorted by format name so table order is stable.
type Generator struct {
	results []benchmark.CombinedResult
}

// NewGenerator creates a generator over results.
func NewGenerator(results []benchmark.CombinedResult) *Generator {
	sorted := make([]benchmark.CombinedResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FormatName < sorted[j].FormatName
	})
	return &Generator{results: sorted}
}

// formatSize renders a byte count in the largest unit of KB, MB, or GB
// that yields a value of at least one, with two decimal places.
func formatSize(bytes int64) string {
	gb := float64(bytes) / (1 << 30)
	if gb >= 1 {
		return fmt.Sprintf("%.2f GB", gb)
	}
	mb := float64(bytes) / (1 << 20)
	if mb >= 1 {
		return fmt.Sprintf("%.2f MB", mb)
	}
	return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
}

// formatTime renders a duration in seconds, switching to minutes at
// sixty seconds. A nil value means the operation timed out.
func formatTime(seconds *float64) string {
	if seconds == nil {
		return "TIMEOUT"
	}
	if *seconds >= 60 {
		return fmt.Sprintf("%.2f min", *seconds/60)
	}
	return fmt.Sprintf("%.2f s", *seconds)
}

// percentage renders the relative difference of value against the best
// (minimum) observed value. The best entry itself reads "+0.0%".
func percentage(value, baseline *float64) string {
	if value == nil {
		return "TIMEOUT"
	}
	if baseline == nil || *baseline == 0 {
		return "N/A"
	}
	diff := (*value - *baseline) / *baseline * 100
	sign := ""
	if diff >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, diff)
}

// groupThousands renders n with comma separators.
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// markdownTable renders a GitHub-style table with columns padded to
// their widest cell.
func markdownTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteString("\n")
	}

	writeRow(headers)
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

// SummaryTable renders per-format sizes and timings.
func (g *Generator) SummaryTable() string {
	headers := []string{"Format", "File Size", "Write Time", "Full Scan", "Filtered Read", "Aggregation"}

	rows := make([][]string, 0, len(g.results))
	for _, r := range g.results {
		write := r.WriteTimeSeconds
		rows = append(rows, []string{
			strings.ToUpper(r.FormatName),
			formatSize(r.FileSizeBytes),
			formatTime(&write),
			formatTime(r.ReadFullTimeSeconds),
			formatTime(r.ReadFilteredTimeSeconds),
			formatTime(r.AggregateTimeSeconds),
		})
	}
	return markdownTable(headers, rows)
}

// bestOf returns the minimum of the non-nil values, or nil if every
// value is nil.
func bestOf(values []*float64) *float64 {
	var best *float64
	for _, v := range values {
		if v == nil {
			continue
		}
		if best == nil || *v < *best {
			best = v
		}
	}
	return best
}

// ComparisonTable renders each metric as a percentage over the best
// observed value for that metric. Timed-out entries are excluded when
// picking the best.
func (g *Generator) ComparisonTable() string {
	if len(g.results) == 0 {
		return "No results to compare"
	}

	var sizes, writes, fulls, filtereds, aggs []*float64
	for i := range g.results {
		r := &g.results[i]
		size := float64(r.FileSizeBytes)
		sizes = append(sizes, &size)
		writes = append(writes, &r.WriteTimeSeconds)
		fulls = append(fulls, r.ReadFullTimeSeconds)
		filtereds = append(filtereds, r.ReadFilteredTimeSeconds)
		aggs = append(aggs, r.AggregateTimeSeconds)
	}
	bestSize := bestOf(sizes)
	bestWrite := bestOf(writes)
	bestFull := bestOf(fulls)
	bestFiltered := bestOf(filtereds)
	bestAgg := bestOf(aggs)

	headers := []string{"Format", "Size vs Best", "Write vs Best", "Full Scan vs Best", "Filtered vs Best", "Aggregate vs Best"}

	rows := make([][]string, 0, len(g.results))
	for i := range g.results {
		r := &g.results[i]
		rows = append(rows, []string{
			strings.ToUpper(r.FormatName),
			percentage(sizes[i], bestSize),
			percentage(writes[i], bestWrite),
			percentage(fulls[i], bestFull),
			percentage(filtereds[i], bestFiltered),
			percentage(aggs[i], bestAgg),
		})
	}
	return markdownTable(headers, rows)
}

// Analysis renders the conclusions section.
func (g *Generator) Analysis() string {
	if len(g.results) == 0 {
		return "No results to analyze"
	}

	var lines []string
	lines = append(lines, "\n## Analysis\n")

	bestSize := g.results[0]
	worstSize := g.results[0]
	for _, r := range g.results[1:] {
		if r.FileSizeBytes < bestSize.FileSizeBytes {
			bestSize = r
		}
		if r.FileSizeBytes > worstSize.FileSizeBytes {
			worstSize = r
		}
	}

	lines = append(lines, "### File Size (Storage Efficiency)")
	lines = append(lines, fmt.Sprintf("- **Best:** %s (%s)",
		strings.ToUpper(bestSize.FormatName), formatSize(bestSize.FileSizeBytes)))
	lines = append(lines, fmt.Sprintf("- **Worst:** %s (%s)",
		strings.ToUpper(worstSize.FormatName), formatSize(worstSize.FileSizeBytes)))
	if bestSize.FileSizeBytes > 0 {
		ratio := float64(worstSize.FileSizeBytes) / float64(bestSize.FileSizeBytes)
		lines = append(lines, fmt.Sprintf("- %s achieves %.2fx better compression than %s",
			strings.ToUpper(bestSize.FormatName), ratio, strings.ToUpper(worstSize.FormatName)))
	}

	bestWrite := g.results[0]
	for _, r := range g.results[1:] {
		if r.WriteTimeSeconds < bestWrite.WriteTimeSeconds {
			bestWrite = r
		}
	}
	lines = append(lines, "\n### Write Performance")
	w := bestWrite.WriteTimeSeconds
	lines = append(lines, fmt.Sprintf("- **Fastest:** %s (%s)",
		strings.ToUpper(bestWrite.FormatName), formatTime(&w)))

	lines = append(lines, g.fastestLine("\n### Full Scan Performance",
		"All formats timed out during full scan",
		func(r benchmark.CombinedResult) *float64 { return r.ReadFullTimeSeconds })...)
	lines = append(lines, g.fastestLine("\n### Filtered Read Performance",
		"All formats timed out during filtered reads",
		func(r benchmark.CombinedResult) *float64 { return r.ReadFilteredTimeSeconds })...)
	lines = append(lines, g.fastestLine("\n### Aggregation Performance",
		"All formats timed out during aggregation",
		func(r benchmark.CombinedResult) *float64 { return r.AggregateTimeSeconds })...)

	for _, r := range g.results {
		if r.FormatName != "parquet" {
			continue
		}
		if r.ReadFullTimeSeconds == nil || r.ReadFilteredTimeSeconds == nil || *r.ReadFilteredTimeSeconds == 0 {
			continue
		}
		speedup := *r.ReadFullTimeSeconds / *r.ReadFilteredTimeSeconds
		if speedup > 2 {
			lines = append(lines, fmt.Sprintf("- Parquet shows %.1fx speedup with predicate pushdown", speedup))
		}
	}

	return strings.Join(lines, "\n")
}

func (g *Generator) fastestLine(header, timeoutMsg string, metric func(benchmark.CombinedResult) *float64) []string {
	lines := []string{header}

	var best *benchmark.CombinedResult
	for i := range g.results {
		v := metric(g.results[i])
		if v == nil {
			continue
		}
		if best == nil || *v < *metric(*best) {
			best = &g.results[i]
		}
	}
	if best == nil {
		return append(lines, "- "+timeoutMsg)
	}
	return append(lines, fmt.Sprintf("- **Fastest:** %s (%s)",
		strings.ToUpper(best.FormatName), formatTime(metric(*best))))
}

// FullReport renders the complete report.
func (g *Generator) FullReport() string {
	recordCount := 0
	if len(g.results) > 0 {
		recordCount = g.results[0].RecordCount
	}

	parts := []string{
		"# Data Format Benchmark Results",
		"",
		fmt.Sprintf("Total records: %s", groupThousands(recordCount)),
		"",
		"## Summary",
		"",
		g.SummaryTable(),
		"",
		"## Relative Performance",
		"",
		g.ComparisonTable(),
		"",
		g.Analysis(),
	}
	return strings.Join(parts, "\n")
}

// Save writes the full report to path.
func (g *Generator) Save(path string) error {
	if err := os.WriteFile(path, []byte(g.FullReport()), 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	log.Printf("report saved to %s", path)
	return nil
}

// Print writes the full report to stdout.
func (g *Generator) Print() {
	fmt.Println("\n" + g.FullReport())
}
