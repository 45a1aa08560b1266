package health

import (
	"context"

	"github.com/faultline/faultline/bulkhead"
	"github.com/faultline/faultline/circuitbreaker"
	"github.com/faultline/faultline/observe"
	"github.com/faultline/faultline/ratelimiter"
)

// CircuitBreakerChecker reports StatusHealthy while cb is closed or disabled, degraded
// while half-open (probing recovery), and unhealthy while it is open or
// forced open, so an Aggregator can surface a breaker trip as a failing
// dependency.
func CircuitBreakerChecker(cb *circuitbreaker.CircuitBreaker) Checker {
	meta := observe.CallMeta{Primitive: "circuitbreaker", Instance: cb.Name()}
	return NewCheckerFunc("circuitbreaker."+cb.Name(), func(ctx context.Context) Result {
		m := cb.Metrics()
		details := map[string]any{
			"state":               m.State.String(),
			"failure_rate":        m.FailureRate,
			"not_permitted_calls": m.NotPermittedCalls,
		}

		switch m.State {
		case circuitbreaker.StateClosed, circuitbreaker.StateDisabled:
			return Healthy("circuit closed").WithDetails(details).WithMeta(meta)
		case circuitbreaker.StateHalfOpen:
			return Degraded("circuit half-open, probing recovery").WithDetails(details).WithMeta(meta)
		default: // StateOpen, StateForcedOpen
			return Unhealthy("circuit open", nil).WithDetails(details).WithMeta(meta)
		}
	})
}

// BulkheadChecker reports degraded once a semaphore bulkhead is fully
// occupied, since callers are now waiting rather than failing outright.
func BulkheadChecker(b *bulkhead.Bulkhead) Checker {
	meta := observe.CallMeta{Primitive: "bulkhead", Instance: b.Name()}
	return NewCheckerFunc("bulkhead."+b.Name(), func(ctx context.Context) Result {
		m := b.Metrics()
		details := map[string]any{
			"active_calls": m.ActiveCalls,
			"max_calls":    m.MaxActiveCalls,
		}
		if m.AvailableCalls == 0 {
			return Degraded("bulkhead saturated").WithDetails(details).WithMeta(meta)
		}
		return Healthy("bulkhead has capacity").WithDetails(details).WithMeta(meta)
	})
}

// ThreadPoolBulkheadChecker reports degraded once the pool has
// MaxThreadPoolSize workers and the wait queue is full, since the next
// Submit that finds no idle worker will be rejected.
func ThreadPoolBulkheadChecker(tp *bulkhead.ThreadPoolBulkhead) Checker {
	meta := observe.CallMeta{Primitive: "threadpoolbulkhead", Instance: tp.Name()}
	return NewCheckerFunc("threadpoolbulkhead."+tp.Name(), func(ctx context.Context) Result {
		m := tp.Metrics()
		details := map[string]any{
			"pool_size":     m.CurrentThreadPoolSize,
			"max_pool_size": m.MaxThreadPoolSize,
			"queue_depth":   m.QueueDepth,
			"queue_cap":     m.QueueCapacity,
		}
		if m.CurrentThreadPoolSize >= m.MaxThreadPoolSize && m.QueueDepth >= m.QueueCapacity {
			return Degraded("thread pool and queue both saturated").WithDetails(details).WithMeta(meta)
		}
		return Healthy("thread pool has capacity").WithDetails(details).WithMeta(meta)
	})
}

// RateLimiterChecker reports degraded once a cycle's permits are fully
// consumed, which is expected steady-state behavior under load rather
// than a failure, hence Degraded rather than Unhealthy.
func RateLimiterChecker(rl *ratelimiter.RateLimiter) Checker {
	meta := observe.CallMeta{Primitive: "ratelimiter", Instance: rl.Name()}
	return NewCheckerFunc("ratelimiter."+rl.Name(), func(ctx context.Context) Result {
		m := rl.Metrics()
		details := map[string]any{
			"available_permissions": m.AvailablePermissions,
			"limit_for_period":      rl.Config().LimitForPeriod,
		}
		if m.AvailablePermissions <= 0 {
			return Degraded("rate limiter exhausted for current cycle").WithDetails(details).WithMeta(meta)
		}
		return Healthy("rate limiter has available permits").WithDetails(details).WithMeta(meta)
	})
}
