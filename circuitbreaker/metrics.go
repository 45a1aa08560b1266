package circuitbreaker

import "github.com/faultline/faultline/metrics"

// Metrics is a point-in-time snapshot of a CircuitBreaker's counters,
// exposed per spec section 6 ("handle.metrics()").
type Metrics struct {
	State                State
	SuccessfulCalls       int64
	FailedCalls           int64
	NotPermittedCalls     int64
	IgnoredCalls          int64
	BufferedCalls         int
	FailureRate           float64
	SlowCallRate          float64
}

// Metrics returns a snapshot of this instance's current counters and
// active window.
func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	state := cb.currentStateLocked()
	var snap metrics.Snapshot
	switch state {
	case StateHalfOpen:
		snap = cb.halfOpenWindow.Snapshot()
	default:
		snap = cb.closedWindow.Snapshot()
	}
	cb.mu.Unlock()

	return Metrics{
		State:             state,
		SuccessfulCalls:   cb.successCalls.Load(),
		FailedCalls:       cb.failedCalls.Load(),
		NotPermittedCalls: cb.notPermitted.Load(),
		IgnoredCalls:      cb.ignoredCalls.Load(),
		BufferedCalls:     snap.BufferedCalls,
		FailureRate:       snap.FailureRate(),
		SlowCallRate:      snap.SlowCallRate(),
	}
}
