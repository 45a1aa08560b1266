// Package ratelimiter implements spec section 4.3's atomic refill model: a
// single CAS-updated state record tracking the active cycle, remaining
// permits, and the wait owed to the caller that just reserved one.
//
//	if err := rl.AcquirePermission(); err != nil {
//	    return err // *RequestNotPermittedError
//	}
//	result, err := doCall()
//
// Unlike CircuitBreaker and Bulkhead, RateLimiter never takes a lock on the
// hot path: every reservation is a single compare-and-swap retry loop over
// cycleState, so AcquirePermission and TryAcquirePermission compose safely
// under arbitrary concurrency without contending on a mutex.
package ratelimiter
