// Package event is the shared lifecycle-event plumbing used by every
// fault-tolerance primitive in this module (circuitbreaker, ratelimiter,
// bulkhead, retry, timelimiter).
//
// # Contract
//
//   - Concurrency: Publisher.Publish is safe for concurrent callers; it is
//     the single producer path each primitive uses after recording an
//     outcome.
//   - Delivery: each Subscription owns an independent bounded ring buffer.
//     A full ring drops its oldest event rather than block the producer;
//     Subscription.Dropped reports how many were lost.
//   - Isolation: a Listener that panics is recovered per-event and does not
//     affect the producer or other subscriptions.
//   - Ordering: events from one Publisher are delivered to one Listener in
//     publish order. No ordering is promised across different Publishers
//     (i.e. across primitive instances).
package event
