// Package metrics aggregates call outcomes into the sliding window a
// CircuitBreaker gates its state transitions on.
//
// # Contract
//
//   - Concurrency: both Window implementations are safe for concurrent use
//     via a short mutex-protected critical section around the counter
//     update; no user code runs while the lock is held.
//   - CountWindow holds exactly the last Capacity() outcomes (spec's
//     "ring-buffer size"); TimeWindow holds every outcome recorded within
//     its configured duration, evicted by a fixed-size time wheel.
//   - Snapshot.FailureRate/SlowCallRate return -1 when BufferedCalls is 0,
//     signalling "not enough data" rather than a misleading 0%.
package metrics
