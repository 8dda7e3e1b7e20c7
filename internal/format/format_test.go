package format

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	bencherrors "github.com/formbench/formbench/internal/errors"
	"github.com/formbench/formbench/internal/generator"
	"github.com/formbench/formbench/pkg/types"
)

func allHandlers(t *testing.T) []Handler {
	t.Helper()
	handlers, err := NewAll([]string{"parquet", "avro", "protobuf", "sqlite"})
	if err != nil {
		t.Fatalf("NewAll failed: %v", err)
	}
	return handlers
}

func writeTestFile(t *testing.T, h Handler, orders []types.Order) string {
	t.Helper()
	path := FilePath(h, filepath.Join(t.TempDir(), "orders"))
	if err := h.Write(orders, path); err != nil {
		t.Fatalf("%s: Write failed: %v", h.Name(), err)
	}
	return path
}

func readAll(t *testing.T, h Handler, path string) []types.Order {
	t.Helper()
	var out []types.Order
	if err := h.ReadFull(path, func(o types.Order) error {
		out = append(out, o)
		return nil
	}); err != nil {
		t.Fatalf("%s: ReadFull failed: %v", h.Name(), err)
	}
	return out
}

func sortOrders(orders []types.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID < orders[j].OrderID })
}

func TestRegistry_UnknownFormat(t *testing.T) {
	_, err := New("orc")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	want := bencherrors.New(bencherrors.ErrCategoryConfig, bencherrors.CodeUnknownFormat, "")
	if !errors.Is(err, want) {
		t.Errorf("error should be CONFIG:UNKNOWN_FORMAT, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	names := Names()
	want := []string{"avro", "parquet", "protobuf", "sqlite"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestHandlers_Extensions(t *testing.T) {
	want := map[string]string{
		"parquet":  ".parquet",
		"avro":     ".avro",
		"protobuf": ".pb",
		"sqlite":   ".sqlite",
	}
	for _, h := range allHandlers(t) {
		if h.Extension() != want[h.Name()] {
			t.Errorf("%s: extension %q, want %q", h.Name(), h.Extension(), want[h.Name()])
		}
		if got := FilePath(h, "/tmp/base"); got != "/tmp/base"+want[h.Name()] {
			t.Errorf("%s: FilePath = %q", h.Name(), got)
		}
	}
}

func TestHandlers_RoundTrip(t *testing.T) {
	orders := generator.New(11).GenerateBatch(500)

	for _, h := range allHandlers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			path := writeTestFile(t, h, orders)

			got := readAll(t, h, path)
			if len(got) != len(orders) {
				t.Fatalf("read %d orders, want %d", len(got), len(orders))
			}

			want := append([]types.Order(nil), orders...)
			sortOrders(want)
			sortOrders(got)
			for i := range want {
				if !want[i].Equal(got[i]) {
					t.Fatalf("order %d differs:\nwrote %+v\nread  %+v", i, want[i], got[i])
				}
			}
		})
	}
}

func TestHandlers_ReadFiltered(t *testing.T) {
	orders := generator.New(12).GenerateBatch(800)
	const category = "Electronics"

	for _, h := range allHandlers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			path := writeTestFile(t, h, orders)

			var want []types.Order
			for _, o := range orders {
				if o.Category == category {
					want = append(want, o)
				}
			}
			if len(want) == 0 {
				t.Fatal("test data has no matching orders; adjust seed")
			}

			var got []types.Order
			if err := h.ReadFiltered(path, category, func(o types.Order) error {
				got = append(got, o)
				return nil
			}); err != nil {
				t.Fatalf("ReadFiltered failed: %v", err)
			}

			if len(got) != len(want) {
				t.Fatalf("filtered read returned %d orders, want %d", len(got), len(want))
			}
			sortOrders(want)
			sortOrders(got)
			for i := range want {
				if !want[i].Equal(got[i]) {
					t.Fatalf("filtered order %d differs", i)
				}
			}
		})
	}
}

func TestHandlers_Aggregate(t *testing.T) {
	orders := generator.New(13).GenerateBatch(600)

	want := make(map[string]float64)
	for _, o := range orders {
		want[o.ShippingCountry] += o.TotalAmount
	}

	for _, h := range allHandlers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			path := writeTestFile(t, h, orders)

			got, err := h.Aggregate(path)
			if err != nil {
				t.Fatalf("Aggregate failed: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("aggregate has %d countries, want %d", len(got), len(want))
			}
			for country, sum := range want {
				if math.Abs(got[country]-sum) > 1e-6 {
					t.Errorf("%s: sum %.6f, want %.6f", country, got[country], sum)
				}
			}
		})
	}
}

func TestHandlers_WriteStream(t *testing.T) {
	gen := generator.New(14)
	orders := gen.GenerateBatch(700)

	for _, h := range allHandlers(t) {
		t.Run(h.Name(), func(t *testing.T) {
			path := FilePath(h, filepath.Join(t.TempDir(), "orders"))

			batches := make(chan []types.Order, 3)
			batches <- orders[:300]
			batches <- orders[300:650]
			batches <- orders[650:]
			close(batches)

			var progress []int
			n, err := h.WriteStream(batches, path, func(written int) {
				progress = append(progress, written)
			})
			if err != nil {
				t.Fatalf("WriteStream failed: %v", err)
			}
			if n != len(orders) {
				t.Errorf("WriteStream wrote %d records, want %d", n, len(orders))
			}
			wantProgress := []int{300, 650, 700}
			if len(progress) != len(wantProgress) {
				t.Fatalf("progress callbacks %v, want %v", progress, wantProgress)
			}
			for i := range wantProgress {
				if progress[i] != wantProgress[i] {
					t.Errorf("progress[%d] = %d, want %d", i, progress[i], wantProgress[i])
				}
			}

			st, err := os.Stat(path)
			if err != nil {
				t.Fatalf("output file missing: %v", err)
			}
			if st.Size() == 0 {
				t.Error("output file is empty")
			}

			got := readAll(t, h, path)
			if len(got) != len(orders) {
				t.Errorf("read back %d records, want %d", len(got), len(orders))
			}
		})
	}
}
