package timelimiter

import (
	"errors"
	"time"
)

// Config configures a TimeLimiter.
type Config struct {
	// Timeout is the maximum duration Execute waits for the producer.
	Timeout time.Duration
	// CancelRunningFuture cancels the producer's context when Timeout
	// elapses. When false, the producer keeps running in the background
	// (its result, if any, is discarded) after Execute has already
	// returned *TimeoutError.
	CancelRunningFuture bool
}

// DefaultConfig returns resilience4j's published default: a 1 second
// timeout that cancels the running future.
func DefaultConfig() Config {
	return Config{Timeout: time.Second, CancelRunningFuture: true}
}

// Validate rejects configurations that cannot bound a wait.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("timelimiter: Timeout must be positive")
	}
	return nil
}

func mergeConfig(base, overlay Config) Config {
	out := base
	if overlay.Timeout != 0 {
		out.Timeout = overlay.Timeout
	}
	if overlay.CancelRunningFuture {
		out.CancelRunningFuture = true
	}
	return out
}
