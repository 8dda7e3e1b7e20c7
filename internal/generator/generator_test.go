package generator

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spaolacci/murmur3"

	"github.com/formbench/formbench/internal/config"
	"github.com/formbench/formbench/pkg/types"
)

// fingerprint hashes a sequence of orders so two runs can be compared
// without holding both sequences in memory.
func fingerprint(t *testing.T, orders []types.Order) uint64 {
	t.Helper()
	h := murmur3.New64()
	for _, o := range orders {
		b, err := json.Marshal(o)
		if err != nil {
			t.Fatalf("marshal order: %v", err)
		}
		h.Write(b)
	}
	return h.Sum64()
}

func TestGenerator_SeededDeterminism(t *testing.T) {
	a := New(42).GenerateBatch(5000)
	b := New(42).GenerateBatch(5000)

	if len(a) != len(b) {
		t.Fatalf("batch sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("order %d differs:\n%+v\n%+v", i, a[i], b[i])
		}
	}
	if fingerprint(t, a) != fingerprint(t, b) {
		t.Error("seeded sequences have different fingerprints")
	}
}

func TestGenerator_DifferentSeedsDiffer(t *testing.T) {
	a := New(1).GenerateBatch(100)
	b := New(2).GenerateBatch(100)
	if fingerprint(t, a) == fingerprint(t, b) {
		t.Error("different seeds produced identical sequences")
	}
}

func TestProperty_OrderInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("generated orders satisfy field invariants", prop.ForAll(
		func(seed int64) bool {
			g := New(seed)
			for _, o := range g.GenerateBatch(200) {
				if o.Quantity < 1 || o.Quantity > 10 {
					return false
				}
				if o.Price < 5.0 || o.Price > 500.0 {
					return false
				}
				want := math.Round(float64(o.Quantity)*o.Price*100) / 100
				if o.TotalAmount != want {
					return false
				}
				if o.OrderID == "" {
					return false
				}
				if !contains(config.Categories, o.Category) {
					return false
				}
				if !contains(config.ShippingCountries, o.ShippingCountry) {
					return false
				}
				if !contains(config.PaymentMethods, o.PaymentMethod) {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1<<40),
	))

	properties.Property("same seed reproduces order IDs", prop.ForAll(
		func(seed int64) bool {
			a := New(seed).GenerateBatch(50)
			b := New(seed).GenerateBatch(50)
			for i := range a {
				if a[i].OrderID != b[i].OrderID || a[i].ProductName != b[i].ProductName {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t)
}

func TestGenerator_StreamBatchSizes(t *testing.T) {
	g := New(7)
	total := config.BatchSize*2 + 123

	var got int
	for batch := range g.GenerateStream(total) {
		if len(batch) == 0 || len(batch) > config.BatchSize {
			t.Fatalf("batch size %d out of bounds", len(batch))
		}
		got += len(batch)
	}
	if got != total {
		t.Errorf("stream produced %d records, want %d", got, total)
	}
}

func TestGenerator_StreamMatchesBatch(t *testing.T) {
	streamed := make([]types.Order, 0, 300)
	for batch := range New(99).GenerateStream(300) {
		streamed = append(streamed, batch...)
	}
	direct := New(99).GenerateBatch(300)

	for i := range direct {
		if !direct[i].Equal(streamed[i]) {
			t.Fatalf("order %d differs between stream and batch generation", i)
		}
	}
}

func TestGenerator_EstimateRecordsForSize(t *testing.T) {
	g := New(0)

	if got := g.EstimateRecordsForSize(1.0); got != (1<<30)/config.AvgRecordSizeBytes {
		t.Errorf("1 GB estimate = %d, want %d", got, (1<<30)/config.AvgRecordSizeBytes)
	}
	if got := g.EstimateRecordsForSize(0.001); got <= 0 {
		t.Errorf("small target should still estimate a positive count, got %d", got)
	}
}

func contains(vocab []string, v string) bool {
	for _, s := range vocab {
		if s == v {
			return true
		}
	}
	return false
}
