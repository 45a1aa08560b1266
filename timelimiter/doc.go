// Package timelimiter implements spec section 4.7's bounded-wait wrapper
// around a future-like producer.
//
//	result, err := timelimiter.Execute(ctx, tl, func(ctx context.Context) (Response, error) {
//	    return client.Do(ctx, req)
//	})
//	if err != nil {
//	    var te *timelimiter.TimeoutError
//	    if errors.As(err, &te) { ... }
//	}
//
// Execute always returns by Config.Timeout (or sooner, if the caller's own
// ctx is canceled first); a producer that ignores context cancellation
// keeps running in the background when Config.CancelRunningFuture is
// false, but its result is discarded.
package timelimiter
