package circuitbreaker

import (
	"errors"
	"time"
)

// WindowType selects which metrics.Window backs a CircuitBreaker.
type WindowType int

const (
	// CountBased buffers the last RingBufferSizeInClosedState /
	// RingBufferSizeInHalfOpenState outcomes per state.
	CountBased WindowType = iota
	// TimeBased buffers outcomes recorded within
	// TimeBasedSlidingWindowSize.
	TimeBased
)

// disabledSlowCallRateThreshold marks SlowCallRateThreshold as unset; 0 is
// not usable as the sentinel because a 0% threshold is a valid (if
// pathological) configuration that opens as soon as the window reaches its
// minimum number of calls.
const disabledSlowCallRateThreshold = -1

// Config configures a CircuitBreaker. The zero value is not valid; use
// DefaultConfig and override fields, or construct directly and call
// Validate.
type Config struct {
	// FailureRateThreshold is the failure percentage (0-100) that opens
	// the circuit once MinimumNumberOfCalls have been recorded.
	FailureRateThreshold float64

	// SlowCallRateThreshold is the percentage (0-100) of slow calls that
	// independently opens the circuit. Slow-call evaluation is disabled
	// while SlowCallDurationThreshold is 0; DefaultConfig also sets this
	// field to an internal "disabled" sentinel. 0 is an active threshold.
	SlowCallRateThreshold float64
	// SlowCallDurationThreshold is the call duration above which an
	// outcome is counted as slow. 0 disables slow-call evaluation.
	SlowCallDurationThreshold time.Duration

	// WindowType selects CountBased (default) or TimeBased aggregation.
	WindowType WindowType
	// RingBufferSizeInClosedState is the CountBased window capacity while
	// Closed, and the default MinimumNumberOfCalls.
	RingBufferSizeInClosedState int
	// RingBufferSizeInHalfOpenState is the CountBased window capacity
	// while HalfOpen, and the number of probe calls permitted per
	// half-open period.
	RingBufferSizeInHalfOpenState int
	// TimeBasedSlidingWindowSize is the TimeBased window duration.
	TimeBasedSlidingWindowSize time.Duration
	// TimeBasedSlidingWindowBuckets is the number of time-wheel buckets
	// backing a TimeBased window.
	TimeBasedSlidingWindowBuckets int
	// MinimumNumberOfCalls overrides the default population gate
	// (RingBufferSizeInClosedState) before rates are evaluated. 0 means
	// "use the default".
	MinimumNumberOfCalls int

	// WaitDurationInOpenState is how long Open lasts before a probe is
	// admitted.
	WaitDurationInOpenState time.Duration
	// AutomaticTransitionFromOpenToHalfOpenEnabled starts a background
	// timer so Open -> HalfOpen happens even without traffic.
	AutomaticTransitionFromOpenToHalfOpenEnabled bool

	// RecordError reports whether err should count toward the failure
	// rate. nil records every non-nil error (the default).
	RecordError func(error) bool
	// IgnoreError reports whether err should be excluded from both the
	// failure rate and the recorded-call count entirely.
	IgnoreError func(error) bool

	// OnStateChange is an optional direct callback invoked synchronously
	// on every transition, in addition to the STATE_TRANSITION event.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns resilience4j's published defaults.
func DefaultConfig() Config {
	return Config{
		FailureRateThreshold:          50,
		SlowCallRateThreshold:         disabledSlowCallRateThreshold,
		SlowCallDurationThreshold:     0,
		WindowType:                    CountBased,
		RingBufferSizeInClosedState:   100,
		RingBufferSizeInHalfOpenState: 10,
		WaitDurationInOpenState:       60 * time.Second,
		AutomaticTransitionFromOpenToHalfOpenEnabled: false,
	}
}

// Validate rejects configurations spec section 3 calls out as invariant
// violations rather than letting them silently misbehave at runtime.
func (c Config) Validate() error {
	if c.FailureRateThreshold <= 0 || c.FailureRateThreshold > 100 {
		return errors.New("circuitbreaker: FailureRateThreshold must be in (0, 100]")
	}
	if c.SlowCallRateThreshold != disabledSlowCallRateThreshold &&
		(c.SlowCallRateThreshold < 0 || c.SlowCallRateThreshold > 100) {
		return errors.New("circuitbreaker: SlowCallRateThreshold must be in [0, 100]")
	}
	if c.WaitDurationInOpenState <= 0 {
		return errors.New("circuitbreaker: WaitDurationInOpenState must be positive")
	}
	switch c.WindowType {
	case CountBased:
		if c.RingBufferSizeInClosedState <= 0 {
			return errors.New("circuitbreaker: RingBufferSizeInClosedState must be positive")
		}
	case TimeBased:
		if c.TimeBasedSlidingWindowSize <= 0 {
			return errors.New("circuitbreaker: TimeBasedSlidingWindowSize must be positive")
		}
		if c.TimeBasedSlidingWindowBuckets <= 0 {
			return errors.New("circuitbreaker: TimeBasedSlidingWindowBuckets must be positive")
		}
	default:
		return errors.New("circuitbreaker: unknown WindowType")
	}
	if c.RingBufferSizeInHalfOpenState <= 0 {
		return errors.New("circuitbreaker: RingBufferSizeInHalfOpenState must be positive")
	}
	return nil
}

func (c Config) slowCallEvaluationEnabled() bool {
	return c.SlowCallDurationThreshold > 0 && c.SlowCallRateThreshold != disabledSlowCallRateThreshold
}

func (c Config) minimumNumberOfCalls() int {
	if c.MinimumNumberOfCalls > 0 {
		return c.MinimumNumberOfCalls
	}
	return c.RingBufferSizeInClosedState
}

func (c Config) classify(err error) callOutcome {
	if err == nil {
		return outcomeSuccess
	}
	if c.IgnoreError != nil && c.IgnoreError(err) {
		return outcomeIgnored
	}
	if c.RecordError != nil && !c.RecordError(err) {
		return outcomeIgnored
	}
	return outcomeFailure
}

// mergeConfig overlays non-zero-valued overlay fields onto base, used by
// Registry.Resolve's baseConfig inheritance (spec section 4.1).
func mergeConfig(base, overlay Config) Config {
	out := base
	if overlay.FailureRateThreshold != 0 {
		out.FailureRateThreshold = overlay.FailureRateThreshold
	}
	if overlay.SlowCallRateThreshold != 0 {
		out.SlowCallRateThreshold = overlay.SlowCallRateThreshold
	}
	if overlay.SlowCallDurationThreshold != 0 {
		out.SlowCallDurationThreshold = overlay.SlowCallDurationThreshold
	}
	if overlay.RingBufferSizeInClosedState != 0 {
		out.RingBufferSizeInClosedState = overlay.RingBufferSizeInClosedState
	}
	if overlay.RingBufferSizeInHalfOpenState != 0 {
		out.RingBufferSizeInHalfOpenState = overlay.RingBufferSizeInHalfOpenState
	}
	if overlay.TimeBasedSlidingWindowSize != 0 {
		out.TimeBasedSlidingWindowSize = overlay.TimeBasedSlidingWindowSize
	}
	if overlay.TimeBasedSlidingWindowBuckets != 0 {
		out.TimeBasedSlidingWindowBuckets = overlay.TimeBasedSlidingWindowBuckets
	}
	if overlay.MinimumNumberOfCalls != 0 {
		out.MinimumNumberOfCalls = overlay.MinimumNumberOfCalls
	}
	if overlay.WaitDurationInOpenState != 0 {
		out.WaitDurationInOpenState = overlay.WaitDurationInOpenState
	}
	if overlay.WindowType != base.WindowType {
		out.WindowType = overlay.WindowType
	}
	if overlay.AutomaticTransitionFromOpenToHalfOpenEnabled {
		out.AutomaticTransitionFromOpenToHalfOpenEnabled = true
	}
	if overlay.RecordError != nil {
		out.RecordError = overlay.RecordError
	}
	if overlay.IgnoreError != nil {
		out.IgnoreError = overlay.IgnoreError
	}
	if overlay.OnStateChange != nil {
		out.OnStateChange = overlay.OnStateChange
	}
	return out
}
