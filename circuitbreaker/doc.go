// Package circuitbreaker implements a concurrent state machine over a
// sliding window of call outcomes: Closed, Open, HalfOpen, Disabled, and
// ForcedOpen, gated by failure rate and (optionally) slow-call rate.
//
// # Permission protocol
//
//	if err := cb.AcquirePermission(); err != nil {
//	    return err // *NotPermittedError
//	}
//	start := time.Now()
//	result, err := doCall()
//	if err != nil {
//	    cb.OnError(time.Since(start), err)
//	} else {
//	    cb.OnSuccess(time.Since(start))
//	}
//
// A caller that decides not to execute after acquiring a permission (a
// cancellation) must call ReleasePermission instead of OnSuccess/OnError,
// returning the permission without recording an outcome.
//
// # Contract
//
//   - Concurrency: every exported method is safe for concurrent use; state
//     and window updates happen inside a single short critical section.
//   - While Closed, thresholds are only evaluated once the window holds at
//     least Config.MinimumNumberOfCalls (RingBufferSizeInClosedState by
//     default). While HalfOpen, they are evaluated once
//     RingBufferSizeInHalfOpenState probe outcomes have been recorded.
//   - Open -> HalfOpen happens lazily on the next permission request once
//     WaitDurationInOpenState has elapsed, and additionally via a
//     background timer when AutomaticTransitionFromOpenToHalfOpenEnabled.
//   - Disabled and ForcedOpen never record outcomes; Disabled permits
//     everything, ForcedOpen denies everything.
package circuitbreaker
