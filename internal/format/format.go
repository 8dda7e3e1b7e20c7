// Package format provides a uniform contract over the benchmarked
// on-disk encodings. Each handler exposes write, streaming write, full
// scan, filtered scan, and aggregation over one concrete format.
package format

import (
	"fmt"
	"sort"
	"strings"

	bencherrors "github.com/formbench/formbench/internal/errors"
	"github.com/formbench/formbench/pkg/types"
)

// ScanFunc receives each decoded order during a scan. Returning an
// error aborts the scan and propagates to the caller.
type ScanFunc func(types.Order) error

// ProgressFunc receives the cumulative record count after each written
// batch.
type ProgressFunc func(written int)

// Handler is the uniform contract implemented once per format.
type Handler interface {
	// Name returns the format name used in results and reports.
	Name() string

	// Extension returns the file extension, including the dot.
	Extension() string

	// Write writes a fully materialized batch to path.
	Write(orders []types.Order, path string) error

	// WriteStream consumes batches and writes them incrementally, so
	// the full dataset is never held in memory. It returns the number
	// of records written and reports cumulative progress per batch.
	WriteStream(batches <-chan []types.Order, path string, progress ProgressFunc) (int, error)

	// ReadFull scans every record in the file.
	ReadFull(path string, fn ScanFunc) error

	// ReadFiltered scans records whose category equals category,
	// pushing the predicate into the codec layer where the format
	// supports it.
	ReadFiltered(path string, category string, fn ScanFunc) error

	// Aggregate sums total_amount grouped by shipping_country.
	Aggregate(path string) (map[string]float64, error)
}

// FilePath joins a base path (without extension) with the handler's
// extension.
func FilePath(h Handler, basePath string) string {
	return basePath + h.Extension()
}

// registry maps format names to constructors.
var registry = map[string]func() Handler{
	"parquet":  func() Handler { return NewParquetHandler() },
	"avro":     func() Handler { return NewAvroHandler() },
	"protobuf": func() Handler { return NewProtobufHandler() },
	"sqlite":   func() Handler { return NewSQLiteHandler() },
}

// Names returns the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns a handler for the named format.
func New(name string) (Handler, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, bencherrors.NewConfigError(
			bencherrors.CodeUnknownFormat,
			fmt.Sprintf("unknown format: %s (available: %s)", name, strings.Join(Names(), ", ")),
		)
	}
	return ctor(), nil
}

// NewAll resolves a list of format names into handlers, failing on the
// first unknown name.
func NewAll(names []string) ([]Handler, error) {
	handlers := make([]Handler, 0, len(names))
	for _, name := range names {
		h, err := New(name)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}
