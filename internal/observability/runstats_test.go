package observability

import (
	"sync"
	"testing"
	"time"
)

func TestRunStats_Snapshot(t *testing.T) {
	s := NewRunStats()
	s.Record("parquet", "full_scan", 100*time.Millisecond)
	s.Record("parquet", "full_scan", 300*time.Millisecond)
	s.Record("parquet", "aggregate", 50*time.Millisecond)
	s.Record("avro", "full_scan", 200*time.Millisecond)

	snapshot := s.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("snapshot has %d entries, want 3", len(snapshot))
	}

	// Sorted by format then operation
	if snapshot[0].Format != "avro" || snapshot[1].Operation != "aggregate" {
		t.Errorf("unexpected snapshot order: %+v", snapshot)
	}

	var full OperationStats
	for _, st := range snapshot {
		if st.Format == "parquet" && st.Operation == "full_scan" {
			full = st
		}
	}
	if full.Count != 2 {
		t.Errorf("count = %d, want 2", full.Count)
	}
	if full.Min != 100*time.Millisecond || full.Max != 300*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 100ms/300ms", full.Min, full.Max)
	}
	if full.Mean != 200*time.Millisecond {
		t.Errorf("mean = %v, want 200ms", full.Mean)
	}
}

func TestRunStats_NilSafe(t *testing.T) {
	var s *RunStats
	s.Record("parquet", "full_scan", time.Second)
	if got := s.Snapshot(); got != nil {
		t.Errorf("nil tracker snapshot = %v, want nil", got)
	}
}

func TestRunStats_ConcurrentRecord(t *testing.T) {
	s := NewRunStats()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Record("protobuf", "filtered_scan", time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snapshot := s.Snapshot()
	if len(snapshot) != 1 || snapshot[0].Count != 1000 {
		t.Errorf("expected 1 key with 1000 runs, got %+v", snapshot)
	}
}
