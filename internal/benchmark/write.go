package benchmark

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/formbench/formbench/internal/format"
	"github.com/formbench/formbench/internal/generator"
)

// BaseFilename is the base name (without extension) of every data file.
const BaseFilename = "benchmark_data"

// WriteBenchmark measures streaming writes, one format at a time.
type WriteBenchmark struct {
	outputDir string
}

// NewWriteBenchmark creates a write benchmark writing into outputDir.
func NewWriteBenchmark(outputDir string) (*WriteBenchmark, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", outputDir, err)
	}
	return &WriteBenchmark{outputDir: outputDir}, nil
}

// RunSingleFormat stream-generates totalRecords orders and writes them
// through the handler, measuring only the write wall-clock time.
// Cleanup of a pre-existing output file happens first and is not
// measured. Handler errors propagate; no partial result is produced.
func (b *WriteBenchmark) RunSingleFormat(h format.Handler, totalRecords int, seed int64) (WriteResult, error) {
	log.Printf("writing %s (streaming mode)", h.Name())

	path := format.FilePath(h, filepath.Join(b.outputDir, BaseFilename))

	// Overwrite semantics, not append
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return WriteResult{}, fmt.Errorf("remove existing file %s: %w", path, err)
	}

	gen := generator.New(seed)
	stream := gen.GenerateStream(totalRecords)

	progress := func(written int) {
		fmt.Printf("\r  %s: %d/%d records", h.Name(), written, totalRecords)
	}

	start := time.Now()
	written, err := h.WriteStream(stream, path, progress)
	elapsed := time.Since(start)
	fmt.Println()
	if err != nil {
		return WriteResult{}, fmt.Errorf("%s: streaming write: %w", h.Name(), err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return WriteResult{}, fmt.Errorf("%s: stat output file: %w", h.Name(), err)
	}

	seconds := elapsed.Seconds()
	fmt.Printf("  wrote %d records in %.2fs\n", written, seconds)
	fmt.Printf("  file size: %d bytes (%.2f MB)\n", st.Size(), float64(st.Size())/1024/1024)
	if seconds > 0 {
		fmt.Printf("  throughput: %.0f records/sec\n", float64(written)/seconds)
	}

	return WriteResult{
		FormatName:       h.Name(),
		FileSizeBytes:    st.Size(),
		WriteTimeSeconds: seconds,
		RecordCount:      written,
		FilePath:         path,
	}, nil
}

// RunAllFormats runs the write benchmark for every handler in order.
// The first failure aborts the whole phase.
func (b *WriteBenchmark) RunAllFormats(handlers []format.Handler, totalRecords int, seed int64) ([]WriteResult, error) {
	log.Printf("write benchmark: %d records per format across %d formats", totalRecords, len(handlers))
	if seed != 0 {
		log.Printf("seed: %d", seed)
	}

	results := make([]WriteResult, 0, len(handlers))
	for _, h := range handlers {
		result, err := b.RunSingleFormat(h, totalRecords, seed)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
