// Package health exposes the runtime state of faultline's resilience
// primitives as pollable health checks and Kubernetes-compatible HTTP
// endpoints.
//
// A CircuitBreaker, Bulkhead, or RateLimiter already knows whether it is
// healthy from its own metrics: an open circuit, a saturated bulkhead, and
// an exhausted rate limiter are all distinguishable states. The checkers in
// faultline.go translate each primitive's Metrics()/State() snapshot into a
// Result on demand, so the same instance that's emitting lifecycle events
// through observe.Bridge can also answer "/readyz".
//
// # Status Types
//
// The [Status] type represents component health:
//
//   - [StatusHealthy]: Component is functioning normally
//   - [StatusDegraded]: Component is functioning but with issues
//   - [StatusUnhealthy]: Component is not functioning properly
//
// # Core Components
//
//   - [Checker]: Interface for health checks (Name() + Check())
//   - [CheckerFunc]: Adapter for function-based checkers
//   - [Result]: Health check outcome with status, message, details, duration,
//     and an optional Meta identifying the faultline primitive instance it
//     describes
//   - [Aggregator]: Combines multiple checkers into composite health, and can
//     log non-healthy results through an observe.Logger
//   - [CircuitBreakerChecker], [BulkheadChecker], [ThreadPoolBulkheadChecker],
//     [RateLimiterChecker]: checkers over faultline's own primitives
//
// # Quick Start
//
//	agg := health.NewAggregator()
//	agg.Register("orders-breaker", health.CircuitBreakerChecker(breaker))
//	agg.Register("orders-bulkhead", health.BulkheadChecker(bulkhead))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides Kubernetes-compatible HTTP handlers:
//
//   - [LivenessHandler]: Simple /healthz endpoint - always returns 200 if running
//   - [ReadinessHandler]: Runs all checks, returns 503 if any unhealthy
//   - [DetailedHandler]: Returns JSON with full check details, including each
//     check's Primitive/Instance when the Result carries one
//   - [SingleCheckHandler]: Check a specific component by name
//   - [RegisterHandlers]: Convenience function to register all handlers
//
// Example registration:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, aggregator)
//	// Registers: /healthz, /readyz, /health
//
// # Aggregation Behavior
//
// The [Aggregator] computes overall status using worst-case logic:
//
//   - If ANY check is Unhealthy → overall Unhealthy
//   - If ANY check is Degraded (and none Unhealthy) → overall Degraded
//   - If ALL checks are Healthy → overall Healthy
//
// Checks can run in parallel (default) or sequentially via [AggregatorConfig].
//
// # Thread Safety
//
// All exported types are safe for concurrent use:
//
//   - [Aggregator]: sync.RWMutex protects registration and check execution
//   - [CheckerFunc]: Delegates to user function, ensure your function is safe
//   - [Result]: Immutable after creation
//
// # Error Handling
//
// Two typed errors carry structured detail (use errors.As):
//
//   - [CheckerNotFoundError]: Check() was called for a name no Checker is
//     registered under
//   - [CheckTimeoutError]: a Checker did not return within the Aggregator's
//     configured Timeout
package health
