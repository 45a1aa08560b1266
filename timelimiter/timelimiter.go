// Package timelimiter implements spec section 4.7: a bounded-wait wrapper
// around a future-like producer, with optional cancellation of the
// producer when the bound elapses.
package timelimiter

import (
	"context"
	"time"

	"github.com/faultline/faultline/event"
)

// TimeLimiter is a named bound on how long a producer may run.
type TimeLimiter struct {
	name string
	cfg  Config
	pub  *event.Publisher
}

// New creates a TimeLimiter named name with the given configuration.
func New(name string, cfg Config) (*TimeLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TimeLimiter{name: name, cfg: cfg, pub: event.NewPublisher()}, nil
}

// Name returns the limiter's registry name.
func (tl *TimeLimiter) Name() string { return tl.name }

// Config returns a copy of the configuration used to construct this
// instance.
func (tl *TimeLimiter) Config() Config { return tl.cfg }

// Events returns the publisher emitting this instance's lifecycle events.
func (tl *TimeLimiter) Events() *event.Publisher { return tl.pub }

// result carries a producer's outcome back to Execute over a channel.
type result[T any] struct {
	value T
	err   error
}

// Execute runs producer and waits up to Config.Timeout for it to finish.
// On timeout it returns a *TimeoutError; if Config.CancelRunningFuture is
// set, the context passed to producer is canceled so a well-behaved
// producer can stop promptly, though Execute itself never blocks past the
// timeout waiting for that to happen.
func Execute[T any](ctx context.Context, tl *TimeLimiter, producer func(context.Context) (T, error)) (T, error) {
	runCtx, cancel := context.WithCancel(ctx)
	timer := time.NewTimer(tl.cfg.Timeout)
	defer timer.Stop()

	done := make(chan result[T], 1)
	go func() {
		v, err := producer(runCtx)
		done <- result[T]{value: v, err: err}
		cancel()
	}()

	select {
	case r := <-done:
		cancel()
		if r.err != nil {
			tl.pub.Publish(event.Event{InstanceName: tl.name, Kind: event.KindError})
		} else {
			tl.pub.Publish(event.Event{InstanceName: tl.name, Kind: event.KindSuccess})
		}
		return r.value, r.err
	case <-ctx.Done():
		cancel()
		var zero T
		return zero, ctx.Err()
	case <-timer.C:
		if tl.cfg.CancelRunningFuture {
			cancel()
		}
		tl.pub.Publish(event.Event{InstanceName: tl.name, Kind: event.KindTimeout})
		var zero T
		return zero, &TimeoutError{Name: tl.name, Timeout: tl.cfg.Timeout}
	}
}
