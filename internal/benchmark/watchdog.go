package benchmark

import "time"

type opOutcome struct {
	value int
	err   error
}

// timeOperation runs op in a worker goroutine and waits at most
// timeout for it to finish. Format-library calls are opaque and cannot
// be interrupted, so on expiry the worker is abandoned, not killed: it
// may keep consuming CPU and IO until the underlying call returns, at
// which point its own defers release any file handles. The buffered
// channel lets the abandoned worker deliver and exit instead of
// leaking blocked.
func timeOperation(op func() (int, error), timeout time.Duration) (elapsed time.Duration, value int, timedOut bool, err error) {
	done := make(chan opOutcome, 1)
	start := time.Now()

	go func() {
		v, opErr := op()
		done <- opOutcome{value: v, err: opErr}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case outcome := <-done:
		return time.Since(start), outcome.value, false, outcome.err
	case <-timer.C:
		return 0, 0, true, nil
	}
}
