package metrics

import (
	"sync"
	"time"
)

// TimeWindow aggregates outcomes recorded within the last Duration,
// bucketed into BucketCount equal slices (a simple time wheel) so that
// Record is O(BucketCount) worst case instead of rescanning every
// individual outcome. minCalls is the population CircuitBreaker requires
// before a rate is meaningful and is what Capacity reports.
type TimeWindow struct {
	mu sync.Mutex

	bucketSpan time.Duration
	buckets    []bucket
	epoch      int64 // bucket index of buckets[cursor]
	cursor     int
	minCalls   int

	now func() time.Time
}

type bucket struct {
	total  int
	failed int
	slow   int
	valid  bool
}

// NewTimeWindow creates a TimeWindow spanning duration, split into
// bucketCount slices, requiring minCalls recorded outcomes before a rate
// is considered meaningful.
func NewTimeWindow(duration time.Duration, bucketCount, minCalls int) *TimeWindow {
	if bucketCount <= 0 {
		bucketCount = 1
	}
	if duration <= 0 {
		duration = time.Second
	}
	if minCalls <= 0 {
		minCalls = 1
	}
	return &TimeWindow{
		bucketSpan: duration / time.Duration(bucketCount),
		buckets:    make([]bucket, bucketCount),
		minCalls:   minCalls,
		now:        time.Now,
	}
}

func (w *TimeWindow) Record(o Outcome) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.advanceLocked()

	b := &w.buckets[w.cursor]
	b.valid = true
	b.total++
	if o.Failed {
		b.failed++
	}
	if o.Slow {
		b.slow++
	}

	return w.snapshotLocked()
}

func (w *TimeWindow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advanceLocked()
	return w.snapshotLocked()
}

// advanceLocked rolls the time wheel forward to the bucket for "now",
// invalidating any buckets the wheel passed over (they fell out of the
// window).
func (w *TimeWindow) advanceLocked() {
	currentEpoch := w.now().UnixNano() / int64(w.bucketSpan)
	if w.epoch == 0 && !w.anyValidLocked() {
		w.epoch = currentEpoch
		return
	}

	delta := currentEpoch - w.epoch
	if delta <= 0 {
		return
	}

	n := len(w.buckets)
	if delta >= int64(n) {
		for i := range w.buckets {
			w.buckets[i] = bucket{}
		}
	} else {
		for i := int64(1); i <= delta; i++ {
			idx := (w.cursor + int(i)) % n
			w.buckets[idx] = bucket{}
		}
	}

	w.cursor = (w.cursor + int(delta)) % n
	w.epoch = currentEpoch
}

func (w *TimeWindow) anyValidLocked() bool {
	for _, b := range w.buckets {
		if b.valid {
			return true
		}
	}
	return false
}

func (w *TimeWindow) snapshotLocked() Snapshot {
	var s Snapshot
	for _, b := range w.buckets {
		if !b.valid {
			continue
		}
		s.BufferedCalls += b.total
		s.FailedCalls += b.failed
		s.SlowCalls += b.slow
	}
	return s
}

func (w *TimeWindow) Capacity() int { return w.minCalls }

func (w *TimeWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.buckets {
		w.buckets[i] = bucket{}
	}
	w.epoch = 0
	w.cursor = 0
}

var _ Window = (*TimeWindow)(nil)
