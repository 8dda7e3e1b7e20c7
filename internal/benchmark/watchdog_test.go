package benchmark

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestTimeOperation_Completes(t *testing.T) {
	elapsed, value, timedOut, err := timeOperation(func() (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	}, time.Second)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timedOut {
		t.Fatal("operation should not have timed out")
	}
	if value != 42 {
		t.Errorf("value = %d, want 42", value)
	}
	if elapsed < 10*time.Millisecond {
		t.Errorf("elapsed %v is shorter than the operation", elapsed)
	}
}

func TestTimeOperation_TimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, _, timedOut, err := timeOperation(func() (int, error) {
		<-release
		return 0, nil
	}, 50*time.Millisecond)
	waited := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !timedOut {
		t.Fatal("operation should have timed out")
	}
	// The controller must return at the deadline, not wait for the worker
	if waited > time.Second {
		t.Errorf("controller blocked %v past the deadline", waited)
	}
}

func TestTimeOperation_PropagatesError(t *testing.T) {
	opErr := fmt.Errorf("truncated record")
	_, _, timedOut, err := timeOperation(func() (int, error) {
		return 0, opErr
	}, time.Second)

	if timedOut {
		t.Fatal("error should not be reported as timeout")
	}
	if err != opErr {
		t.Errorf("err = %v, want %v", err, opErr)
	}
}

func TestRunCategory_TimeoutShortCircuit(t *testing.T) {
	b := NewReadBenchmark(t.TempDir(), 5, "Electronics", 30*time.Millisecond, nil)

	var attempts atomic.Int32
	release := make(chan struct{})
	defer close(release)

	outcome, err := b.runCategory("test", OpFullScan, func() (int, error) {
		attempts.Add(1)
		<-release
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := attempts.Load(); got != 1 {
		t.Errorf("attempted %d runs, want exactly 1", got)
	}
	if !outcome.timedOut {
		t.Error("timeout flag should be set")
	}
	if outcome.avgSeconds != nil {
		t.Errorf("average should be nil, got %v", *outcome.avgSeconds)
	}
	if outcome.completed != 0 {
		t.Errorf("completed = %d, want 0", outcome.completed)
	}
}

func TestRunCategory_AllRunsComplete(t *testing.T) {
	b := NewReadBenchmark(t.TempDir(), 3, "Electronics", time.Second, nil)

	var attempts atomic.Int32
	outcome, err := b.runCategory("test", OpAggregate, func() (int, error) {
		attempts.Add(1)
		time.Sleep(10 * time.Millisecond)
		return 50, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempted %d runs, want 3", got)
	}
	if outcome.timedOut {
		t.Error("timeout flag should not be set")
	}
	if outcome.avgSeconds == nil {
		t.Fatal("average should be populated")
	}
	if *outcome.avgSeconds < 0.01 {
		t.Errorf("average %.4fs is shorter than the operation", *outcome.avgSeconds)
	}
	if outcome.lastValue != 50 {
		t.Errorf("lastValue = %d, want 50", outcome.lastValue)
	}
}

func TestRunCategory_PartialTimeout(t *testing.T) {
	b := NewReadBenchmark(t.TempDir(), 5, "Electronics", 75*time.Millisecond, nil)

	// First two runs complete, third blocks past the deadline
	var attempts atomic.Int32
	release := make(chan struct{})
	defer close(release)

	outcome, err := b.runCategory("test", OpFilteredScan, func() (int, error) {
		n := attempts.Add(1)
		if n >= 3 {
			<-release
		}
		return int(n), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := attempts.Load(); got != 3 {
		t.Errorf("attempted %d runs, want 3 (2 completed + 1 timed out)", got)
	}
	if !outcome.timedOut {
		t.Error("timeout flag should be set")
	}
	// Mean of completed runs is still reported alongside the flag
	if outcome.avgSeconds == nil {
		t.Error("average of completed runs should be populated")
	}
	if outcome.completed != 2 {
		t.Errorf("completed = %d, want 2", outcome.completed)
	}
}
