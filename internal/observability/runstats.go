// Package observability provides run-duration tracking for benchmark
// operations.
package observability

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// RunStats tracks completed run durations keyed by format and
// operation. The read benchmark records every completed run; snapshots
// feed the post-phase stats block.
type RunStats struct {
	mu   sync.RWMutex
	runs map[statKey][]time.Duration
}

type statKey struct {
	Format    string
	Operation string
}

// OperationStats summarizes the recorded runs of one format/operation
// pair.
type OperationStats struct {
	Format    string
	Operation string
	Count     int
	Min       time.Duration
	Mean      time.Duration
	Max       time.Duration
}

// NewRunStats creates an empty tracker.
func NewRunStats() *RunStats {
	return &RunStats{
		runs: make(map[statKey][]time.Duration),
	}
}

// Record records one completed run. Thread-safe.
func (s *RunStats) Record(format, operation string, d time.Duration) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := statKey{Format: format, Operation: operation}
	s.runs[key] = append(s.runs[key], d)
}

// Snapshot returns per-key summaries sorted by format then operation.
func (s *RunStats) Snapshot() []OperationStats {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OperationStats, 0, len(s.runs))
	for key, durations := range s.runs {
		st := OperationStats{
			Format:    key.Format,
			Operation: key.Operation,
			Count:     len(durations),
			Min:       durations[0],
			Max:       durations[0],
		}
		var total time.Duration
		for _, d := range durations {
			total += d
			if d < st.Min {
				st.Min = d
			}
			if d > st.Max {
				st.Max = d
			}
		}
		st.Mean = total / time.Duration(len(durations))
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Format != out[j].Format {
			return out[i].Format < out[j].Format
		}
		return out[i].Operation < out[j].Operation
	})
	return out
}

// String renders the snapshot as aligned text lines.
func (s *RunStats) String() string {
	snapshot := s.Snapshot()
	if len(snapshot) == 0 {
		return "no completed runs recorded"
	}

	var b strings.Builder
	for _, st := range snapshot {
		fmt.Fprintf(&b, "%s/%s: runs=%d min=%v mean=%v max=%v\n",
			st.Format, st.Operation, st.Count, st.Min.Round(time.Millisecond),
			st.Mean.Round(time.Millisecond), st.Max.Round(time.Millisecond))
	}
	return strings.TrimRight(b.String(), "\n")
}
