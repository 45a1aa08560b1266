// Package ratelimiter implements an atomic, lock-free token-refill limiter
// that partitions time into fixed cycles and reserves permits with a
// compare-and-swap loop rather than a mutex.
package ratelimiter

import (
	"sync/atomic"
	"time"

	"github.com/faultline/faultline/event"
)

// cycleState is the single record CAS'd on every reservation attempt, per
// the atomic refill model: (activeCycle, activePermissions, nanosToWait).
type cycleState struct {
	activeCycle       int64
	activePermissions int64
	nanosToWait       int64
}

// RateLimiter partitions time into fixed cycles of Config.LimitRefreshPeriod
// starting at construction, and reserves permits against a single
// atomically-updated state record. No lock is ever taken on the hot path.
type RateLimiter struct {
	name   string
	period time.Duration
	pub    *event.Publisher
	start  time.Time
	now    func() time.Time

	limitForPeriod  atomic.Int64
	timeoutDuration atomic.Int64

	state atomic.Pointer[cycleState]
}

// New creates a RateLimiter named name with the given configuration.
func New(name string, cfg Config) (*RateLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rl := &RateLimiter{
		name:   name,
		period: cfg.LimitRefreshPeriod,
		pub:    event.NewPublisher(),
		start:  time.Now(),
		now:    time.Now,
	}
	rl.limitForPeriod.Store(int64(cfg.LimitForPeriod))
	rl.timeoutDuration.Store(int64(cfg.TimeoutDuration))
	rl.state.Store(&cycleState{activeCycle: 0, activePermissions: int64(cfg.LimitForPeriod)})
	return rl, nil
}

// Name returns the limiter's registry name.
func (rl *RateLimiter) Name() string { return rl.name }

// Config returns the configuration currently in effect, reflecting any
// ChangeLimitForPeriod / ChangeTimeoutDuration calls.
func (rl *RateLimiter) Config() Config {
	return Config{
		LimitForPeriod:     int(rl.limitForPeriod.Load()),
		LimitRefreshPeriod: rl.period,
		TimeoutDuration:    time.Duration(rl.timeoutDuration.Load()),
	}
}

// Events returns the publisher emitting this instance's lifecycle events.
func (rl *RateLimiter) Events() *event.Publisher { return rl.pub }

// TryAcquirePermission reserves one permit without waiting, reporting
// whether it was immediately available (nanosToWait == 0).
func (rl *RateLimiter) TryAcquirePermission() bool {
	wait := rl.reservePermission()
	return wait == 0
}

// AcquirePermission reserves a permit, sleeping up to the reserved wait,
// and returns a *RequestNotPermittedError if the reservation could not be
// satisfied within Config.TimeoutDuration.
func (rl *RateLimiter) AcquirePermission() error {
	wait := rl.reservePermission()
	if wait < 0 {
		rl.pub.Publish(event.Event{InstanceName: rl.name, Kind: event.KindPermitRejected})
		return &RequestNotPermittedError{Name: rl.name}
	}
	if wait > 0 {
		time.Sleep(time.Duration(wait))
	}
	rl.pub.Publish(event.Event{InstanceName: rl.name, Kind: event.KindPermitAcquired})
	return nil
}

// reservePermission implements spec section 4.3's CAS loop: it returns the
// non-negative nanosecond wait before a reserved permit becomes usable, or
// -1 if honoring the reservation would exceed Config.TimeoutDuration.
func (rl *RateLimiter) reservePermission() time.Duration {
	period := int64(rl.period)
	limit := rl.limitForPeriod.Load()

	for {
		old := rl.state.Load()
		elapsed := rl.now().Sub(rl.start).Nanoseconds()
		if elapsed < 0 {
			elapsed = 0
		}
		cycle := elapsed / period

		next := cycleState{activeCycle: old.activeCycle, activePermissions: old.activePermissions}
		if cycle > old.activeCycle {
			next.activeCycle = cycle
			next.activePermissions = limit
		}
		next.activePermissions--

		if next.activePermissions >= 0 {
			next.nanosToWait = 0
		} else {
			cyclesToWait := ceilDiv(-next.activePermissions, limit)
			next.nanosToWait = cyclesToWait*period - elapsed%period
		}

		if !rl.state.CompareAndSwap(old, &next) {
			continue
		}

		if next.nanosToWait > rl.timeoutDuration.Load() {
			return -1
		}
		return time.Duration(next.nanosToWait)
	}
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// ChangeLimitForPeriod updates the permits granted per refresh cycle; the
// change is visible to every acquisition starting with the next cycle
// boundary.
func (rl *RateLimiter) ChangeLimitForPeriod(limit int) {
	rl.limitForPeriod.Store(int64(limit))
}

// ChangeTimeoutDuration updates the longest wait a caller will accept.
func (rl *RateLimiter) ChangeTimeoutDuration(d time.Duration) {
	rl.timeoutDuration.Store(int64(d))
}

// Metrics is a point-in-time snapshot of a RateLimiter's cycle state.
type Metrics struct {
	AvailablePermissions int64
	NanosToWait          int64
}

// Metrics returns a snapshot of the current cycle's permit accounting.
func (rl *RateLimiter) Metrics() Metrics {
	s := rl.state.Load()
	if rl.now().Sub(rl.start).Nanoseconds()/int64(rl.period) > s.activeCycle {
		return Metrics{AvailablePermissions: rl.limitForPeriod.Load()}
	}
	return Metrics{AvailablePermissions: s.activePermissions, NanosToWait: s.nanosToWait}
}
