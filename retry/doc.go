// Package retry implements bounded re-execution driven by a per-call
// Context, per spec section 4.6.
//
//	rc := r.NewContext()
//	for {
//	    result, err := doCall()
//	    if err != nil {
//	        wait, final := rc.OnError(err)
//	        if final != nil {
//	            return final // *MaxRetriesExceededError, or err itself if ignored/non-retryable
//	        }
//	        time.Sleep(wait)
//	        continue
//	    }
//	    wait, retry := rc.OnResult(result)
//	    if !retry {
//	        return nil
//	    }
//	    time.Sleep(wait)
//	}
//
// Execute wraps this loop around a func(context.Context) (T, error) for
// callers that do not need the lower-level Context protocol directly.
//
// Total executions never exceed Config.MaxAttempts; the first attempt is
// never delayed. Exactly one of UseExponentialBackoff / UseRandomizedInterval
// may be set.
package retry
