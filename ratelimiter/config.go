package ratelimiter

import (
	"errors"
	"time"
)

// Config configures a RateLimiter.
type Config struct {
	// LimitForPeriod is the number of permits available per refresh cycle.
	LimitForPeriod int
	// LimitRefreshPeriod is the duration of one cycle.
	LimitRefreshPeriod time.Duration
	// TimeoutDuration is the longest a caller will wait for a permit
	// before reservePermission reports failure.
	TimeoutDuration time.Duration
}

// DefaultConfig returns resilience4j's published defaults: 50 permits per
// 500ms, with callers willing to wait up to 5s.
func DefaultConfig() Config {
	return Config{
		LimitForPeriod:     50,
		LimitRefreshPeriod: 500 * time.Millisecond,
		TimeoutDuration:    5 * time.Second,
	}
}

// Validate rejects configurations that cannot be converted into a correct
// cycle computation.
func (c Config) Validate() error {
	if c.LimitForPeriod <= 0 {
		return errors.New("ratelimiter: LimitForPeriod must be positive")
	}
	if c.LimitRefreshPeriod <= 0 {
		return errors.New("ratelimiter: LimitRefreshPeriod must be positive")
	}
	if c.TimeoutDuration < 0 {
		return errors.New("ratelimiter: TimeoutDuration must not be negative")
	}
	return nil
}

// mergeConfig overlays non-zero-valued overlay fields onto base, used by
// Registry's baseConfig inheritance.
func mergeConfig(base, overlay Config) Config {
	out := base
	if overlay.LimitForPeriod != 0 {
		out.LimitForPeriod = overlay.LimitForPeriod
	}
	if overlay.LimitRefreshPeriod != 0 {
		out.LimitRefreshPeriod = overlay.LimitRefreshPeriod
	}
	if overlay.TimeoutDuration != 0 {
		out.TimeoutDuration = overlay.TimeoutDuration
	}
	return out
}
