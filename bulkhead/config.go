package bulkhead

import (
	"errors"
	"time"
)

// Config configures a Bulkhead.
type Config struct {
	// MaxConcurrentCalls is the maximum number of in-flight permits.
	MaxConcurrentCalls int
	// MaxWaitTime is how long AcquirePermission blocks for a free permit
	// before failing. Zero means fail immediately if none is free.
	MaxWaitTime time.Duration
}

// DefaultConfig returns resilience4j's published defaults.
func DefaultConfig() Config {
	return Config{MaxConcurrentCalls: 25, MaxWaitTime: 0}
}

// Validate rejects configurations that cannot back a semaphore.
func (c Config) Validate() error {
	if c.MaxConcurrentCalls <= 0 {
		return errors.New("bulkhead: MaxConcurrentCalls must be positive")
	}
	if c.MaxWaitTime < 0 {
		return errors.New("bulkhead: MaxWaitTime must not be negative")
	}
	return nil
}

func mergeConfig(base, overlay Config) Config {
	out := base
	if overlay.MaxConcurrentCalls != 0 {
		out.MaxConcurrentCalls = overlay.MaxConcurrentCalls
	}
	if overlay.MaxWaitTime != 0 {
		out.MaxWaitTime = overlay.MaxWaitTime
	}
	return out
}

// ThreadPoolConfig configures a ThreadPoolBulkhead.
type ThreadPoolConfig struct {
	// CoreThreadPoolSize is the number of workers kept running even when
	// idle.
	CoreThreadPoolSize int
	// MaxThreadPoolSize is the maximum number of workers, core plus
	// overflow, that may run concurrently.
	MaxThreadPoolSize int
	// QueueCapacity is how many submitted tasks may wait for a free
	// worker before Submit is rejected.
	QueueCapacity int
	// KeepAliveDuration is how long an idle overflow (non-core) worker
	// waits for a task before retiring.
	KeepAliveDuration time.Duration
}

// DefaultThreadPoolConfig returns resilience4j's published defaults.
func DefaultThreadPoolConfig() ThreadPoolConfig {
	return ThreadPoolConfig{
		CoreThreadPoolSize: 1,
		MaxThreadPoolSize:  4,
		QueueCapacity:      100,
		KeepAliveDuration:  20 * time.Second,
	}
}

// Validate rejects thread-pool configurations that cannot back a bounded
// worker pool.
func (c ThreadPoolConfig) Validate() error {
	if c.CoreThreadPoolSize <= 0 {
		return errors.New("bulkhead: CoreThreadPoolSize must be positive")
	}
	if c.MaxThreadPoolSize < c.CoreThreadPoolSize {
		return errors.New("bulkhead: MaxThreadPoolSize must be >= CoreThreadPoolSize")
	}
	if c.QueueCapacity < 0 {
		return errors.New("bulkhead: QueueCapacity must not be negative")
	}
	if c.KeepAliveDuration <= 0 {
		return errors.New("bulkhead: KeepAliveDuration must be positive")
	}
	return nil
}

func mergeThreadPoolConfig(base, overlay ThreadPoolConfig) ThreadPoolConfig {
	out := base
	if overlay.CoreThreadPoolSize != 0 {
		out.CoreThreadPoolSize = overlay.CoreThreadPoolSize
	}
	if overlay.MaxThreadPoolSize != 0 {
		out.MaxThreadPoolSize = overlay.MaxThreadPoolSize
	}
	if overlay.QueueCapacity != 0 {
		out.QueueCapacity = overlay.QueueCapacity
	}
	if overlay.KeepAliveDuration != 0 {
		out.KeepAliveDuration = overlay.KeepAliveDuration
	}
	return out
}
