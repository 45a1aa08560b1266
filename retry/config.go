package retry

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// IntervalFunction computes the wait before the given attempt number
// (1-indexed: the wait taken after attempt 1 fails, before attempt 2).
type IntervalFunction func(attempt int) time.Duration

// FixedInterval returns an IntervalFunction that always waits d.
func FixedInterval(d time.Duration) IntervalFunction {
	return func(attempt int) time.Duration { return d }
}

// ExponentialBackoff returns an IntervalFunction computing
// initial * multiplier^(attempt-1), capped at maxInterval.
func ExponentialBackoff(initial time.Duration, multiplier float64, maxInterval time.Duration) IntervalFunction {
	return func(attempt int) time.Duration {
		d := time.Duration(float64(initial) * math.Pow(multiplier, float64(attempt-1)))
		if maxInterval > 0 && d > maxInterval {
			d = maxInterval
		}
		return d
	}
}

// RandomizedInterval returns an IntervalFunction computing
// d * (1 + U(-factor, +factor)), where U is a uniform random draw.
func RandomizedInterval(d time.Duration, factor float64) IntervalFunction {
	return func(attempt int) time.Duration {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		r := rand.Float64()*2*factor - factor
		return time.Duration(float64(d) * (1 + r))
	}
}

// Config configures a Retry.
type Config struct {
	// MaxAttempts is the maximum number of executions, including the
	// first. The first attempt is never delayed.
	MaxAttempts int
	// WaitDuration is the fixed wait used when no backoff flag below is
	// set and IntervalFunction is nil.
	WaitDuration time.Duration

	// UseExponentialBackoff selects the exponential interval function
	// (initial=WaitDuration, multiplier=ExponentialMultiplier, capped at
	// MaxInterval). Mutually exclusive with UseRandomizedInterval.
	UseExponentialBackoff       bool
	ExponentialMultiplier       float64
	MaxInterval                 time.Duration
	// UseRandomizedInterval selects the randomized interval function
	// (base=WaitDuration, factor=RandomizationFactor). Mutually
	// exclusive with UseExponentialBackoff.
	UseRandomizedInterval bool
	RandomizationFactor   float64

	// IntervalFunction, if set, overrides WaitDuration and the two flags
	// above entirely.
	IntervalFunction IntervalFunction

	// RetryOnResult reports whether a successful result should still
	// trigger a retry.
	RetryOnResult func(result any) bool
	// RetryOnError reports whether err is retryable. nil retries every
	// non-nil error (the default).
	RetryOnError func(err error) bool
	// IgnoreError reports whether err should be rethrown immediately
	// without counting as a retryable failure.
	IgnoreError func(err error) bool
}

// DefaultConfig returns resilience4j's published defaults: 3 attempts,
// 500ms fixed wait.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, WaitDuration: 500 * time.Millisecond}
}

// Validate rejects configurations that cannot produce a well-defined
// interval function.
func (c Config) Validate() error {
	if c.MaxAttempts <= 0 {
		return errors.New("retry: MaxAttempts must be positive")
	}
	if c.WaitDuration < 0 {
		return errors.New("retry: WaitDuration must not be negative")
	}
	if c.UseExponentialBackoff && c.UseRandomizedInterval {
		return errors.New("retry: UseExponentialBackoff and UseRandomizedInterval are mutually exclusive")
	}
	if c.UseExponentialBackoff && c.ExponentialMultiplier <= 1 {
		return errors.New("retry: ExponentialMultiplier must be > 1")
	}
	if c.UseRandomizedInterval && (c.RandomizationFactor <= 0 || c.RandomizationFactor >= 1) {
		return errors.New("retry: RandomizationFactor must be in (0, 1)")
	}
	return nil
}

// intervalFunction resolves the effective IntervalFunction per the
// precedence documented on Config.
func (c Config) intervalFunction() IntervalFunction {
	if c.IntervalFunction != nil {
		return c.IntervalFunction
	}
	if c.UseExponentialBackoff {
		return ExponentialBackoff(c.WaitDuration, c.ExponentialMultiplier, c.MaxInterval)
	}
	if c.UseRandomizedInterval {
		return RandomizedInterval(c.WaitDuration, c.RandomizationFactor)
	}
	return FixedInterval(c.WaitDuration)
}

func mergeConfig(base, overlay Config) Config {
	out := base
	if overlay.MaxAttempts != 0 {
		out.MaxAttempts = overlay.MaxAttempts
	}
	if overlay.WaitDuration != 0 {
		out.WaitDuration = overlay.WaitDuration
	}
	if overlay.UseExponentialBackoff {
		out.UseExponentialBackoff = true
		out.UseRandomizedInterval = false
	}
	if overlay.ExponentialMultiplier != 0 {
		out.ExponentialMultiplier = overlay.ExponentialMultiplier
	}
	if overlay.MaxInterval != 0 {
		out.MaxInterval = overlay.MaxInterval
	}
	if overlay.UseRandomizedInterval {
		out.UseRandomizedInterval = true
		out.UseExponentialBackoff = false
	}
	if overlay.RandomizationFactor != 0 {
		out.RandomizationFactor = overlay.RandomizationFactor
	}
	if overlay.IntervalFunction != nil {
		out.IntervalFunction = overlay.IntervalFunction
	}
	if overlay.RetryOnResult != nil {
		out.RetryOnResult = overlay.RetryOnResult
	}
	if overlay.RetryOnError != nil {
		out.RetryOnError = overlay.RetryOnError
	}
	if overlay.IgnoreError != nil {
		out.IgnoreError = overlay.IgnoreError
	}
	return out
}
