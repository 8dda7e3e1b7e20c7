// Package generator produces synthetic e-commerce order data in
// bounded-size batches.
package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/formbench/formbench/internal/config"
	"github.com/formbench/formbench/pkg/types"
)

// referenceTime anchors generated order dates for seeded runs so that
// the full record sequence is reproducible across processes.
var referenceTime = time.Unix(1_700_000_000, 0).UTC()

// Generator produces synthetic orders. A non-zero seed makes the whole
// sequence deterministic: one seeded source drives the numeric
// distributions, the UUID bytes, and the product-name faker.
type Generator struct {
	rng    *rand.Rand
	faker  *gofakeit.Faker
	seeded bool
}

// New creates a generator. seed == 0 means unseeded (non-reproducible).
func New(seed int64) *Generator {
	if seed == 0 {
		return &Generator{
			rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
			faker: gofakeit.New(0),
		}
	}
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		faker:  gofakeit.New(uint64(seed)),
		seeded: true,
	}
}

// GenerateOne generates a single order record.
func (g *Generator) GenerateOne() types.Order {
	quantity := int32(g.rng.Intn(10) + 1)
	price := round2(5.0 + g.rng.Float64()*495.0)
	total := round2(float64(quantity) * price)

	// Order date within the last 2 years. Seeded runs anchor on a fixed
	// reference time so the sequence is identical across processes.
	now := time.Now()
	if g.seeded {
		now = referenceTime
	}
	daysAgo := g.rng.Intn(731)
	orderDate := now.AddDate(0, 0, -daysAgo).Truncate(time.Millisecond)

	// rand.Rand.Read never fails
	id, _ := uuid.NewRandomFromReader(g.rng)

	return types.Order{
		OrderID:         id.String(),
		CustomerID:      g.rng.Int63n(1_000_000) + 1,
		ProductID:       g.rng.Int63n(100_000) + 1,
		ProductName:     g.faker.ProductName(),
		Category:        config.Categories[g.rng.Intn(len(config.Categories))],
		Quantity:        quantity,
		Price:           price,
		TotalAmount:     total,
		OrderDate:       orderDate,
		ShippingCountry: config.ShippingCountries[g.rng.Intn(len(config.ShippingCountries))],
		PaymentMethod:   config.PaymentMethods[g.rng.Intn(len(config.PaymentMethods))],
		IsReturned:      g.rng.Float64() < 0.05,
	}
}

// GenerateBatch returns exactly n freshly generated orders.
func (g *Generator) GenerateBatch(n int) []types.Order {
	orders := make([]types.Order, n)
	for i := range orders {
		orders[i] = g.GenerateOne()
	}
	return orders
}

// GenerateStream produces batches of at most config.BatchSize orders
// whose sizes sum exactly to total. The channel is closed after the
// last batch.
func (g *Generator) GenerateStream(total int) <-chan []types.Order {
	out := make(chan []types.Order, 1)
	go func() {
		defer close(out)
		remaining := total
		for remaining > 0 {
			n := config.BatchSize
			if remaining < n {
				n = remaining
			}
			out <- g.GenerateBatch(n)
			remaining -= n
		}
	}()
	return out
}

// EstimateRecordsForSize estimates the record count needed to reach the
// target size in gigabytes. This is a rough sizing heuristic based on
// the in-memory record size, not format-aware.
func (g *Generator) EstimateRecordsForSize(targetSizeGB float64) int {
	targetBytes := targetSizeGB * 1024 * 1024 * 1024
	return int(targetBytes / config.AvgRecordSizeBytes)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
