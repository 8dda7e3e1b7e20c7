package benchmark

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bencherrors "github.com/formbench/formbench/internal/errors"
	"github.com/formbench/formbench/internal/format"
	"github.com/formbench/formbench/internal/observability"
	"github.com/formbench/formbench/pkg/types"
)

// Operation names used in run statistics.
const (
	OpFullScan     = "full_scan"
	OpFilteredScan = "filtered_scan"
	OpAggregate    = "aggregate"
)

// ReadBenchmark measures full-scan, filtered-scan, and aggregation
// reads against previously written files. Each run is independently
// bounded by the watchdog timeout; the first timeout in a category
// short-circuits that category's remaining runs.
type ReadBenchmark struct {
	inputDir       string
	runs           int
	filterCategory string
	timeout        time.Duration
	stats          *observability.RunStats
}

// NewReadBenchmark creates a read benchmark over files in inputDir.
// stats may be nil.
func NewReadBenchmark(inputDir string, runs int, filterCategory string, timeout time.Duration, stats *observability.RunStats) *ReadBenchmark {
	return &ReadBenchmark{
		inputDir:       inputDir,
		runs:           runs,
		filterCategory: filterCategory,
		timeout:        timeout,
		stats:          stats,
	}
}

// categoryOutcome is the result of one measurement category's run loop.
type categoryOutcome struct {
	avgSeconds *float64
	timedOut   bool
	lastValue  int
	completed  int
}

// runCategory executes op up to b.runs times. Completed durations are
// averaged; the first timeout ends the loop with no further attempts.
// op errors (codec failures) propagate immediately.
func (b *ReadBenchmark) runCategory(formatName, operation string, op func() (int, error)) (categoryOutcome, error) {
	var outcome categoryOutcome
	var totalSeconds float64

	for run := 0; run < b.runs; run++ {
		clearCache()

		elapsed, value, timedOut, err := timeOperation(op, b.timeout)
		if err != nil {
			return outcome, fmt.Errorf("%s %s run %d: %w", formatName, operation, run+1, err)
		}
		if timedOut {
			fmt.Printf("  run %d/%d: TIMEOUT (>%s)\n", run+1, b.runs, b.timeout)
			outcome.timedOut = true
			break
		}

		totalSeconds += elapsed.Seconds()
		outcome.lastValue = value
		outcome.completed++
		b.stats.Record(formatName, operation, elapsed)
		fmt.Printf("  run %d/%d: %.2fs (%d)\n", run+1, b.runs, elapsed.Seconds(), value)
	}

	if outcome.completed > 0 {
		avg := totalSeconds / float64(outcome.completed)
		outcome.avgSeconds = &avg
	}
	return outcome, nil
}

// RunSingleFormat runs all three measurement categories for one format.
func (b *ReadBenchmark) RunSingleFormat(h format.Handler) (ReadResult, error) {
	path := format.FilePath(h, filepath.Join(b.inputDir, BaseFilename))

	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ReadResult{}, bencherrors.Wrap(bencherrors.ErrCategoryFormat, bencherrors.CodeFileNotFound,
				fmt.Sprintf("data file not found: %s", path), err)
		}
		return ReadResult{}, fmt.Errorf("%s: stat data file: %w", h.Name(), err)
	}

	log.Printf("reading %s (%d bytes, %d runs, timeout %s)", h.Name(), st.Size(), b.runs, b.timeout)

	fmt.Println("full scan:")
	fullScan, err := b.runCategory(h.Name(), OpFullScan, func() (int, error) {
		count := 0
		err := h.ReadFull(path, func(types.Order) error {
			count++
			return nil
		})
		return count, err
	})
	if err != nil {
		return ReadResult{}, err
	}

	fmt.Printf("filtered read (category=%q):\n", b.filterCategory)
	filtered, err := b.runCategory(h.Name(), OpFilteredScan, func() (int, error) {
		count := 0
		err := h.ReadFiltered(path, b.filterCategory, func(types.Order) error {
			count++
			return nil
		})
		return count, err
	})
	if err != nil {
		return ReadResult{}, err
	}

	fmt.Println("aggregation (sum by country):")
	aggregate, err := b.runCategory(h.Name(), OpAggregate, func() (int, error) {
		sums, err := h.Aggregate(path)
		return len(sums), err
	})
	if err != nil {
		return ReadResult{}, err
	}

	result := ReadResult{
		FormatName:              h.Name(),
		ReadFullTimeSeconds:     fullScan.avgSeconds,
		ReadFullTimeout:         fullScan.timedOut,
		ReadFilteredTimeSeconds: filtered.avgSeconds,
		ReadFilteredTimeout:     filtered.timedOut,
		AggregateTimeSeconds:    aggregate.avgSeconds,
		AggregateTimeout:        aggregate.timedOut,
		FileSizeBytes:           st.Size(),
	}
	if fullScan.completed > 0 {
		count := int64(fullScan.lastValue)
		result.RecordCount = &count
	}
	return result, nil
}

// RunAllFormats runs the read benchmark for every handler in order.
func (b *ReadBenchmark) RunAllFormats(handlers []format.Handler) ([]ReadResult, error) {
	log.Printf("read benchmark: %d formats, %d runs per category, filter category %q",
		len(handlers), b.runs, b.filterCategory)

	results := make([]ReadResult, 0, len(handlers))
	for _, h := range handlers {
		result, err := b.RunSingleFormat(h)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
