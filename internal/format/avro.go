package format

import (
	"fmt"
	"os"
	"time"

	"github.com/hamba/avro/v2/ocf"

	"github.com/formbench/formbench/pkg/types"
)

// avroSchema is the writer schema embedded in every container file.
const avroSchema = `{
	"type": "record",
	"name": "Order",
	"namespace": "formbench",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "customer_id", "type": "long"},
		{"name": "product_id", "type": "long"},
		{"name": "product_name", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "quantity", "type": "int"},
		{"name": "price", "type": "double"},
		{"name": "total_amount", "type": "double"},
		{"name": "order_date", "type": "long"},
		{"name": "shipping_country", "type": "string"},
		{"name": "payment_method", "type": "string"},
		{"name": "is_returned", "type": "boolean"}
	]
}`

// avroOrder is the record shape encoded into the container. The order
// date is stored as Unix milliseconds.
type avroOrder struct {
	OrderID         string  `avro:"order_id"`
	CustomerID      int64   `avro:"customer_id"`
	ProductID       int64   `avro:"product_id"`
	ProductName     string  `avro:"product_name"`
	Category        string  `avro:"category"`
	Quantity        int32   `avro:"quantity"`
	Price           float64 `avro:"price"`
	TotalAmount     float64 `avro:"total_amount"`
	OrderDate       int64   `avro:"order_date"`
	ShippingCountry string  `avro:"shipping_country"`
	PaymentMethod   string  `avro:"payment_method"`
	IsReturned      bool    `avro:"is_returned"`
}

func toAvroOrder(o types.Order) avroOrder {
	return avroOrder{
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

func fromAvroOrder(r avroOrder) types.Order {
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

// AvroHandler implements Handler for the Apache Avro object container
// format with an embedded schema and snappy block compression.
//
// Avro has no column statistics, so filtered reads and aggregations
// decode every record.
type AvroHandler struct{}

// NewAvroHandler creates an avro format handler.
func NewAvroHandler() *AvroHandler {
	return &AvroHandler{}
}

func (h *AvroHandler) Name() string      { return "avro" }
func (h *AvroHandler) Extension() string { return ".avro" }

// Write writes a fully materialized batch to an avro container file.
func (h *AvroHandler) Write(orders []types.Order, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("avro: create %s: %w", path, err)
	}
	defer f.Close()

	enc, err := ocf.NewEncoder(avroSchema, f, ocf.WithCodec(ocf.Snappy))
	if err != nil {
		return fmt.Errorf("avro: new encoder: %w", err)
	}
	for _, o := range orders {
		if err := enc.Encode(toAvroOrder(o)); err != nil {
			return fmt.Errorf("avro: encode record: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("avro: close encoder: %w", err)
	}
	return f.Close()
}

// WriteStream appends batches to a single container encoder as they
// arrive.
func (h *AvroHandler) WriteStream(batches <-chan []types.Order, path string, progress ProgressFunc) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("avro: create %s: %w", path, err)
	}
	defer f.Close()

	enc, err := ocf.NewEncoder(avroSchema, f, ocf.WithCodec(ocf.Snappy))
	if err != nil {
		return 0, fmt.Errorf("avro: new encoder: %w", err)
	}

	total := 0
	for batch := range batches {
		for _, o := range batch {
			if err := enc.Encode(toAvroOrder(o)); err != nil {
				return total, fmt.Errorf("avro: encode record: %w", err)
			}
		}
		total += len(batch)
		if progress != nil {
			progress(total)
		}
	}

	if err := enc.Close(); err != nil {
		return total, fmt.Errorf("avro: close encoder: %w", err)
	}
	return total, f.Close()
}

// ReadFull scans all records in the container.
func (h *AvroHandler) ReadFull(path string, fn ScanFunc) error {
	return h.scan(path, func(rec avroOrder) error {
		return fn(fromAvroOrder(rec))
	})
}

// ReadFiltered scans records whose category matches. Filtering happens
// record by record after decoding.
func (h *AvroHandler) ReadFiltered(path string, category string, fn ScanFunc) error {
	return h.scan(path, func(rec avroOrder) error {
		if rec.Category != category {
			return nil
		}
		return fn(fromAvroOrder(rec))
	})
}

// Aggregate sums total_amount by shipping_country over a full decode.
func (h *AvroHandler) Aggregate(path string) (map[string]float64, error) {
	sums := make(map[string]float64)
	err := h.scan(path, func(rec avroOrder) error {
		sums[rec.ShippingCountry] += rec.TotalAmount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sums, nil
}

func (h *AvroHandler) scan(path string, fn func(avroOrder) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("avro: open %s: %w", path, err)
	}
	defer f.Close()

	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("avro: new decoder: %w", err)
	}
	for dec.HasNext() {
		var rec avroOrder
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("avro: decode record: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := dec.Error(); err != nil {
		return fmt.Errorf("avro: read container: %w", err)
	}
	return nil
}
