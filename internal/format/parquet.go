package format

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/formbench/formbench/pkg/types"
)

const parquetRowGroupSize = 100_000

// parquetOrder is the flat row shape written to parquet files. The
// order date is stored as Unix milliseconds.
type parquetOrder struct {
	OrderID         string  `parquet:"order_id"`
	CustomerID      int64   `parquet:"customer_id"`
	ProductID       int64   `parquet:"product_id"`
	ProductName     string  `parquet:"product_name"`
	Category        string  `parquet:"category"`
	Quantity        int32   `parquet:"quantity"`
	Price           float64 `parquet:"price"`
	TotalAmount     float64 `parquet:"total_amount"`
	OrderDate       int64   `parquet:"order_date"`
	ShippingCountry string  `parquet:"shipping_country"`
	PaymentMethod   string  `parquet:"payment_method"`
	IsReturned      bool    `parquet:"is_returned"`
}

// parquetAggRow is the two-column projection used by aggregation.
type parquetAggRow struct {
	TotalAmount     float64 `parquet:"total_amount"`
	ShippingCountry string  `parquet:"shipping_country"`
}

func toParquetOrder(o types.Order) parquetOrder {
	return parquetOrder{
		OrderID:         o.OrderID,
		CustomerID:      o.CustomerID,
		ProductID:       o.ProductID,
		ProductName:     o.ProductName,
		Category:        o.Category,
		Quantity:        o.Quantity,
		Price:           o.Price,
		TotalAmount:     o.TotalAmount,
		OrderDate:       o.OrderDateMillis(),
		ShippingCountry: o.ShippingCountry,
		PaymentMethod:   o.PaymentMethod,
		IsReturned:      o.IsReturned,
	}
}

func fromParquetOrder(r parquetOrder) types.Order {
	return types.Order{
		OrderID:         r.OrderID,
		CustomerID:      r.CustomerID,
		ProductID:       r.ProductID,
		ProductName:     r.ProductName,
		Category:        r.Category,
		Quantity:        r.Quantity,
		Price:           r.Price,
		TotalAmount:     r.TotalAmount,
		OrderDate:       time.UnixMilli(r.OrderDate),
		ShippingCountry: r.ShippingCountry,
		PaymentMethod:   r.PaymentMethod,
		IsReturned:      r.IsReturned,
	}
}

// ParquetHandler implements Handler for the Apache Parquet columnar
// format with snappy-compressed row groups.
type ParquetHandler struct{}

// NewParquetHandler creates a parquet format handler.
func NewParquetHandler() *ParquetHandler {
	return &ParquetHandler{}
}

func (h *ParquetHandler) Name() string      { return "parquet" }
func (h *ParquetHandler) Extension() string { return ".parquet" }

func (h *ParquetHandler) newWriter(f *os.File) *parquet.GenericWriter[parquetOrder] {
	return parquet.NewGenericWriter[parquetOrder](f,
		parquet.Compression(&parquet.Snappy),
		parquet.MaxRowsPerRowGroup(parquetRowGroupSize),
	)
}

// Write writes a fully materialized batch to a parquet file.
func (h *ParquetHandler) Write(orders []types.Order, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("parquet: create %s: %w", path, err)
	}
	defer f.Close()

	w := h.newWriter(f)
	rows := make([]parquetOrder, len(orders))
	for i, o := range orders {
		rows[i] = toParquetOrder(o)
	}
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("parquet: write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("parquet: close writer: %w", err)
	}
	return f.Close()
}

// WriteStream appends batches to the parquet writer as they arrive,
// so only one batch is resident at a time.
func (h *ParquetHandler) WriteStream(batches <-chan []types.Order, path string, progress ProgressFunc) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("parquet: create %s: %w", path, err)
	}
	defer f.Close()

	w := h.newWriter(f)
	total := 0
	rows := make([]parquetOrder, 0, parquetRowGroupSize)

	for batch := range batches {
		if len(batch) == 0 {
			continue
		}
		rows = rows[:0]
		for _, o := range batch {
			rows = append(rows, toParquetOrder(o))
		}
		if _, err := w.Write(rows); err != nil {
			return total, fmt.Errorf("parquet: write rows: %w", err)
		}
		total += len(batch)
		if progress != nil {
			progress(total)
		}
	}

	if err := w.Close(); err != nil {
		return total, fmt.Errorf("parquet: close writer: %w", err)
	}
	return total, f.Close()
}

// ReadFull scans all rows in the file.
func (h *ParquetHandler) ReadFull(path string, fn ScanFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("parquet: open %s: %w", path, err)
	}
	defer f.Close()

	r := parquet.NewGenericReader[parquetOrder](f)
	defer r.Close()
	return scanParquetRows(r, func(row parquetOrder) error {
		return fn(fromParquetOrder(row))
	})
}

// ReadFiltered scans rows whose category matches, skipping row groups
// whose column statistics exclude the value (predicate pushdown).
func (h *ParquetHandler) ReadFiltered(path string, category string, fn ScanFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("parquet: open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("parquet: stat %s: %w", path, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return fmt.Errorf("parquet: open file: %w", err)
	}

	schema := parquet.SchemaOf(parquetOrder{})
	leaf, ok := schema.Lookup("category")
	if !ok {
		return fmt.Errorf("parquet: schema has no category column")
	}

	for _, rg := range pf.RowGroups() {
		chunk := rg.ColumnChunks()[leaf.ColumnIndex]
		if !parquetChunkMayContain(chunk, category) {
			continue
		}
		r := parquet.NewGenericRowGroupReader[parquetOrder](rg)
		err := scanParquetRows(r, func(row parquetOrder) error {
			if row.Category != category {
				return nil
			}
			return fn(fromParquetOrder(row))
		})
		r.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Aggregate sums total_amount by shipping_country, reading only the
// two columns it needs via schema projection.
func (h *ParquetHandler) Aggregate(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parquet: open %s: %w", path, err)
	}
	defer f.Close()

	r := parquet.NewGenericReader[parquetAggRow](f)
	defer r.Close()

	sums := make(map[string]float64)
	err = scanParquetRows(r, func(row parquetAggRow) error {
		sums[row.ShippingCountry] += row.TotalAmount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sums, nil
}

// parquetChunkMayContain reports whether a column chunk's page
// statistics allow the value to be present. Missing statistics force a
// scan.
func parquetChunkMayContain(chunk parquet.ColumnChunk, value string) bool {
	idx, err := chunk.ColumnIndex()
	if err != nil || idx == nil {
		return true
	}
	pages := idx.NumPages()
	if pages == 0 {
		return true
	}
	for p := 0; p < pages; p++ {
		if idx.NullPage(p) {
			continue
		}
		min := string(idx.MinValue(p).ByteArray())
		max := string(idx.MaxValue(p).ByteArray())
		if value >= min && value <= max {
			return true
		}
	}
	return false
}

func scanParquetRows[T any](r *parquet.GenericReader[T], fn func(T) error) error {
	buf := make([]T, 4096)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			if ferr := fn(buf[i]); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parquet: read rows: %w", err)
		}
	}
}
