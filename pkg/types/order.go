// Package types provides core data types shared across the benchmark.
package types

import "time"

// Order represents a single synthetic e-commerce order. Orders are
// immutable once generated; every format handler encodes and decodes
// exactly this shape.
type Order struct {
	// OrderID is an opaque unique identifier (UUID string)
	OrderID string `json:"order_id"`

	// CustomerID identifies the customer who placed the order
	CustomerID int64 `json:"customer_id"`

	// ProductID identifies the ordered product
	ProductID int64 `json:"product_id"`

	// ProductName is free-form generated text
	ProductName string `json:"product_name"`

	// Category is drawn from a finite vocabulary (e.g., "Electronics")
	Category string `json:"category"`

	// Quantity is the number of units ordered, in [1,10]
	Quantity int32 `json:"quantity"`

	// Price is the unit price in [5.0, 500.0], rounded to 2 decimals
	Price float64 `json:"price"`

	// TotalAmount is Quantity*Price rounded to 2 decimals
	TotalAmount float64 `json:"total_amount"`

	// OrderDate is the order timestamp. All formats persist it at
	// millisecond resolution.
	OrderDate time.Time `json:"order_date"`

	// ShippingCountry is drawn from a finite vocabulary
	ShippingCountry string `json:"shipping_country"`

	// PaymentMethod is drawn from a finite vocabulary
	PaymentMethod string `json:"payment_method"`

	// IsReturned marks returned orders (~5% of generated data)
	IsReturned bool `json:"is_returned"`
}

// OrderDateMillis returns the order timestamp as Unix milliseconds,
// the resolution every on-disk format stores.
func (o Order) OrderDateMillis() int64 {
	return o.OrderDate.UnixMilli()
}

// Equal reports whether two orders are field-for-field identical at
// the declared millisecond timestamp resolution.
func (o Order) Equal(other Order) bool {
	return o.OrderID == other.OrderID &&
		o.CustomerID == other.CustomerID &&
		o.ProductID == other.ProductID &&
		o.ProductName == other.ProductName &&
		o.Category == other.Category &&
		o.Quantity == other.Quantity &&
		o.Price == other.Price &&
		o.TotalAmount == other.TotalAmount &&
		o.OrderDateMillis() == other.OrderDateMillis() &&
		o.ShippingCountry == other.ShippingCountry &&
		o.PaymentMethod == other.PaymentMethod &&
		o.IsReturned == other.IsReturned
}
