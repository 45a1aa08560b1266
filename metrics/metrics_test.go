package metrics

import (
	"testing"
	"time"
)

func TestCountWindowTracksLastNOutcomes(t *testing.T) {
	w := NewCountWindow(4)

	// S1 scenario from the fault-tolerance spec: F,F,S,S then one more F
	// evicts the oldest F, leaving F,S,S,F in the buffer -> 50% failure.
	w.Record(Outcome{Failed: true})
	w.Record(Outcome{Failed: true})
	w.Record(Outcome{Failed: false})
	snap := w.Record(Outcome{Failed: false})

	if snap.BufferedCalls != 4 {
		t.Fatalf("expected buffer full at 4, got %d", snap.BufferedCalls)
	}
	if snap.FailureRate() != 50 {
		t.Fatalf("expected 50%% failure rate, got %v", snap.FailureRate())
	}

	snap = w.Record(Outcome{Failed: true})
	if snap.BufferedCalls != 4 {
		t.Fatalf("expected buffer to stay full at 4, got %d", snap.BufferedCalls)
	}
	if snap.FailureRate() != 50 {
		t.Fatalf("expected 50%% failure rate after eviction, got %v", snap.FailureRate())
	}
}

func TestCountWindowReportsInsufficientDataAsNegativeOne(t *testing.T) {
	w := NewCountWindow(4)
	if rate := w.Snapshot().FailureRate(); rate != -1 {
		t.Fatalf("expected -1 for empty window, got %v", rate)
	}
}

func TestCountWindowTracksSlowCalls(t *testing.T) {
	w := NewCountWindow(2)
	w.Record(Outcome{Slow: true})
	snap := w.Record(Outcome{Slow: false})

	if snap.SlowCallRate() != 50 {
		t.Fatalf("expected 50%% slow rate, got %v", snap.SlowCallRate())
	}
}

func TestCountWindowReset(t *testing.T) {
	w := NewCountWindow(2)
	w.Record(Outcome{Failed: true})
	w.Reset()

	snap := w.Snapshot()
	if snap.BufferedCalls != 0 {
		t.Fatalf("expected empty window after Reset, got %d buffered", snap.BufferedCalls)
	}
}

func TestTimeWindowAggregatesWithinDuration(t *testing.T) {
	fakeNow := time.Unix(0, 0)
	w := NewTimeWindow(100*time.Millisecond, 10, 1)
	w.now = func() time.Time { return fakeNow }

	w.Record(Outcome{Failed: true})
	w.Record(Outcome{Failed: false})

	snap := w.Snapshot()
	if snap.BufferedCalls != 2 || snap.FailedCalls != 1 {
		t.Fatalf("expected 2 buffered / 1 failed, got %+v", snap)
	}
}

func TestTimeWindowEvictsExpiredBuckets(t *testing.T) {
	fakeNow := time.Unix(0, 0)
	w := NewTimeWindow(100*time.Millisecond, 10, 1)
	w.now = func() time.Time { return fakeNow }

	w.Record(Outcome{Failed: true})

	fakeNow = fakeNow.Add(200 * time.Millisecond) // two full window durations later
	snap := w.Snapshot()
	if snap.BufferedCalls != 0 {
		t.Fatalf("expected expired outcomes to be evicted, got %+v", snap)
	}
}
