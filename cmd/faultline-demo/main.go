// Command faultline-demo drives a simulated flaky backend call through
// the full faultline stack: rate limiter, bulkhead, circuit breaker,
// retry, and time limiter, composed in that order, with every instance's
// lifecycle events observed through observe.Bridge and exposed through a
// health.Aggregator.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/faultline/faultline/bulkhead"
	"github.com/faultline/faultline/circuitbreaker"
	"github.com/faultline/faultline/health"
	"github.com/faultline/faultline/observe"
	"github.com/faultline/faultline/ratelimiter"
	"github.com/faultline/faultline/retry"
	"github.com/faultline/faultline/timelimiter"
	"github.com/spf13/cobra"
)

var (
	calls      int
	failRate   float64
	minLatency time.Duration
	maxLatency time.Duration
	logLevel   string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faultline-demo",
		Short: "Drive a simulated flaky call through faultline's primitives",
		Long: `faultline-demo wires a rate limiter, bulkhead, circuit breaker, retry
policy, and time limiter around a simulated backend call, in the order
resilience4j recommends composing them, and prints every state
transition and the final health snapshot.`,
		RunE: runDemo,
	}
	cmd.Flags().IntVar(&calls, "calls", 40, "number of simulated calls to drive through the stack")
	cmd.Flags().Float64Var(&failRate, "fail-rate", 0.35, "probability that the simulated backend fails (0.0-1.0)")
	cmd.Flags().DurationVar(&minLatency, "min-latency", 10*time.Millisecond, "minimum simulated backend latency")
	cmd.Flags().DurationVar(&maxLatency, "max-latency", 120*time.Millisecond, "maximum simulated backend latency")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level for the observability bridge (debug|info|warn|error)")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "faultline-demo:", err)
		os.Exit(1)
	}
}

// stack bundles one instance of each primitive, composed around a single
// logical dependency, plus the health checks that watch them.
type stack struct {
	limiter    *ratelimiter.RateLimiter
	bulkhead   *bulkhead.Bulkhead
	breaker    *circuitbreaker.CircuitBreaker
	retrier    *retry.Retry
	deadline   *timelimiter.TimeLimiter
	aggregator *health.Aggregator
}

func buildStack() (*stack, error) {
	limiter, err := ratelimiter.New("orders-api", ratelimiter.Config{
		LimitForPeriod:     5,
		LimitRefreshPeriod: 500 * time.Millisecond,
		TimeoutDuration:    200 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	bh, err := bulkhead.New("orders-api", bulkhead.Config{
		MaxConcurrentCalls: 4,
		MaxWaitTime:        50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("bulkhead: %w", err)
	}

	cb, err := circuitbreaker.New("orders-api", circuitbreaker.Config{
		FailureRateThreshold:          50,
		RingBufferSizeInClosedState:   10,
		RingBufferSizeInHalfOpenState: 3,
		MinimumNumberOfCalls:          5,
		WaitDurationInOpenState:       time.Second,
		AutomaticTransitionFromOpenToHalfOpenEnabled: true,
	})
	if err != nil {
		return nil, fmt.Errorf("circuit breaker: %w", err)
	}

	rt, err := retry.New("orders-api", retry.Config{
		MaxAttempts:      3,
		IntervalFunction: retry.ExponentialBackoff(20*time.Millisecond, 2.0, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("retry: %w", err)
	}

	tl, err := timelimiter.New("orders-api", timelimiter.Config{
		Timeout:             150 * time.Millisecond,
		CancelRunningFuture: true,
	})
	if err != nil {
		return nil, fmt.Errorf("time limiter: %w", err)
	}

	agg := health.NewAggregator()
	agg.Register("ratelimiter", health.RateLimiterChecker(limiter))
	agg.Register("bulkhead", health.BulkheadChecker(bh))
	agg.Register("circuitbreaker", health.CircuitBreakerChecker(cb))

	return &stack{
		limiter:    limiter,
		bulkhead:   bh,
		breaker:    cb,
		retrier:    rt,
		deadline:   tl,
		aggregator: agg,
	}, nil
}

// flakyBackend simulates the dependency guarded by the stack: it sleeps a
// random duration in [minLatency, maxLatency] and fails with probability
// failRate.
func flakyBackend(ctx context.Context) (string, error) {
	d := minLatency
	if maxLatency > minLatency {
		d += time.Duration(rand.Int63n(int64(maxLatency - minLatency)))
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if rand.Float64() < failRate {
		return "", errors.New("orders-api: simulated backend failure")
	}
	return "ok", nil
}

// guardedCall runs one logical call through rate limiter, bulkhead,
// circuit breaker, retry, and time limiter, in that order: the limiter
// and bulkhead gate entry, the breaker records the outcome of each
// attempt, retry drives re-execution, and the time limiter bounds each
// individual attempt.
func guardedCall(ctx context.Context, s *stack) (string, error) {
	if err := s.limiter.AcquirePermission(); err != nil {
		return "", err
	}
	if err := s.bulkhead.AcquirePermission(); err != nil {
		return "", err
	}
	defer s.bulkhead.OnComplete()

	return retry.Execute(ctx, s.retrier, func(ctx context.Context) (string, error) {
		if err := s.breaker.AcquirePermission(); err != nil {
			return "", err
		}

		start := time.Now()
		result, err := timelimiter.Execute(ctx, s.deadline, flakyBackend)
		elapsed := time.Since(start)

		if err != nil {
			s.breaker.OnError(elapsed, err)
			return "", err
		}
		s.breaker.OnSuccess(elapsed)
		return result, nil
	})
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "faultline-demo",
		Version:     "0.1.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: true, Level: logLevel},
	})
	if err != nil {
		return fmt.Errorf("observer: %w", err)
	}
	defer func() { _ = obs.Shutdown(ctx) }()

	bridge, err := observe.BridgeFromObserver(obs)
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}

	s, err := buildStack()
	if err != nil {
		return err
	}

	subs := []closer{
		bridge.Attach(s.limiter.Events(), observe.CallMeta{Primitive: "ratelimiter", Instance: s.limiter.Name()}),
		bridge.Attach(s.bulkhead.Events(), observe.CallMeta{Primitive: "bulkhead", Instance: s.bulkhead.Name()}),
		bridge.Attach(s.breaker.Events(), observe.CallMeta{Primitive: "circuitbreaker", Instance: s.breaker.Name()}),
		bridge.Attach(s.retrier.Events(), observe.CallMeta{Primitive: "retry", Instance: s.retrier.Name()}),
		bridge.Attach(s.deadline.Events(), observe.CallMeta{Primitive: "timelimiter", Instance: s.deadline.Name()}),
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()

	var succeeded, failed int
	for i := 0; i < calls; i++ {
		result, err := guardedCall(ctx, s)
		if err != nil {
			failed++
			fmt.Printf("call %2d: FAILED  (%v)\n", i+1, err)
		} else {
			succeeded++
			fmt.Printf("call %2d: ok      (%s)\n", i+1, result)
		}
	}

	fmt.Printf("\n%d succeeded, %d failed out of %d calls\n", succeeded, failed, calls)

	results := s.aggregator.CheckAll(ctx)
	fmt.Printf("\noverall health: %s\n", s.aggregator.OverallStatus(results))
	for name, r := range results {
		fmt.Printf("  %-16s %-10s %s\n", name, r.Status, r.Message)
	}
	return nil
}

type closer interface {
	Close()
}
