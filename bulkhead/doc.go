// Package bulkhead implements two concurrency-limiting primitives from
// spec sections 4.4 and 4.5: Bulkhead, a counting semaphore with a bounded
// wait for permits, and ThreadPoolBulkhead, a real bounded worker pool.
//
//	if err := bh.AcquirePermission(); err != nil {
//	    return err // *FullError
//	}
//	defer bh.OnComplete()
//	return doCall()
//
// ThreadPoolBulkhead instead owns execution directly:
//
//	err := pool.Submit(func() { doCall() })
//
// # Contract
//
//   - Bulkhead never exceeds Config.MaxConcurrentCalls outstanding
//     permits; OnComplete is required on every acquired path.
//   - ThreadPoolBulkhead never silently discards a submission: it runs
//     immediately, queues (bounded by QueueCapacity), or rejects.
package bulkhead
