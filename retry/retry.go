// Package retry implements spec section 4.6's per-call Context protocol:
// bounded re-execution driven by interval functions (fixed, exponential,
// or randomized backoff) and result/error predicates.
package retry

import (
	"context"
	"time"

	"github.com/faultline/faultline/event"
)

// Retry is a named retry policy; Context objects created from it drive one
// logical call's bounded re-execution.
type Retry struct {
	name string
	cfg  Config
	pub  *event.Publisher
}

// New creates a Retry named name with the given configuration.
func New(name string, cfg Config) (*Retry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Retry{name: name, cfg: cfg, pub: event.NewPublisher()}, nil
}

// Name returns the retry policy's registry name.
func (r *Retry) Name() string { return r.name }

// Config returns a copy of the configuration used to construct this
// instance.
func (r *Retry) Config() Config { return r.cfg }

// Events returns the publisher emitting this instance's lifecycle events.
func (r *Retry) Events() *event.Publisher { return r.pub }

// NewContext creates a Context for one logical call.
func (r *Retry) NewContext() *Context { return &Context{retry: r} }

// Context tracks one logical call's attempt count and last error across
// its bounded re-execution.
type Context struct {
	retry   *Retry
	attempt int
	lastErr error
}

// Attempt returns how many attempts have completed so far.
func (c *Context) Attempt() int { return c.attempt }

// OnResult records a successful attempt's result. If Config.RetryOnResult
// says the result is still retryable and attempts remain, it returns the
// wait before the next attempt and retry=true; otherwise the call is done
// and the caller should use result as final.
func (c *Context) OnResult(result any) (wait time.Duration, retry bool) {
	c.attempt++

	if c.retry.cfg.RetryOnResult == nil || !c.retry.cfg.RetryOnResult(result) {
		c.retry.publish(event.KindSuccess)
		return 0, false
	}
	if c.attempt >= c.retry.cfg.MaxAttempts {
		c.retry.publish(event.KindRetryExhausted)
		return 0, false
	}

	wait = c.retry.cfg.intervalFunction()(c.attempt)
	c.retry.publish(event.KindRetry)
	return wait, true
}

// OnError classifies err: ignored errors are returned immediately with no
// retry; non-retryable errors are likewise returned immediately;
// retryable errors either yield the wait before the next attempt (final is
// nil in that case) or, once MaxAttempts is reached, a
// *MaxRetriesExceededError wrapping err.
func (c *Context) OnError(err error) (wait time.Duration, final error) {
	c.attempt++
	cfg := c.retry.cfg

	if cfg.IgnoreError != nil && cfg.IgnoreError(err) {
		return 0, err
	}
	if cfg.RetryOnError != nil && !cfg.RetryOnError(err) {
		return 0, err
	}

	c.lastErr = err
	if c.attempt >= cfg.MaxAttempts {
		c.retry.publish(event.KindRetryExhausted)
		return 0, &MaxRetriesExceededError{Name: c.retry.name, Attempts: c.attempt, Last: err}
	}

	wait = cfg.intervalFunction()(c.attempt)
	c.retry.publish(event.KindRetry)
	return wait, nil
}

// OnSuccess is called when the caller decides no further retry is needed,
// for call shapes that do not route through OnResult.
func (c *Context) OnSuccess() {
	c.retry.publish(event.KindSuccess)
}

func (r *Retry) publish(kind event.Kind) {
	r.pub.Publish(event.Event{InstanceName: r.name, Kind: kind})
}

// Execute drives op through this Retry's Context until it succeeds (per
// Config.RetryOnResult), exhausts its attempts, or a non-retryable /
// ignored error or ctx.Done() stops it early.
func Execute[T any](ctx context.Context, r *Retry, op func(context.Context) (T, error)) (T, error) {
	rc := r.NewContext()

	for {
		result, err := op(ctx)
		if err != nil {
			wait, final := rc.OnError(err)
			if final != nil {
				return result, final
			}
			select {
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		wait, retry := rc.OnResult(result)
		if !retry {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
}
