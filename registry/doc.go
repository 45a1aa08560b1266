// Package registry implements the generic name -> entry table shared by
// every primitive's per-kind Registry facade (circuitbreaker.Registry,
// ratelimiter.Registry, bulkhead.Registry, retry.Registry).
//
// # Contract
//
//   - Uniqueness: ComputeIfAbsent is atomic per name; concurrent callers
//     racing on the same unseen name all observe the single winning
//     factory's result.
//   - No lock across user code: the factory passed to ComputeIfAbsent runs
//     without any Registry lock held, so it may safely call back into the
//     same Registry (e.g. Registry.DefaultConfig) without deadlocking.
//   - Configuration composition: Resolve overlays an instance's own config
//     onto a named base config via the caller-supplied Merge function;
//     unset fields in the overlay must not clobber the base. The name
//     "default" is reserved and AddConfiguration rejects writes to it.
//   - Events: every mutation (entry added, removed, replaced) publishes
//     exactly one event.Event on Events().
package registry
