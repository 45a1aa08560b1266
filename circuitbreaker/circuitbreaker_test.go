package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/faultline/faultline/event"
)

func closedConfig(ringSize int, failureThreshold float64) Config {
	cfg := DefaultConfig()
	cfg.RingBufferSizeInClosedState = ringSize
	cfg.RingBufferSizeInHalfOpenState = 2
	cfg.FailureRateThreshold = failureThreshold
	cfg.WaitDurationInOpenState = time.Hour // never elapses during these tests
	return cfg
}

func TestOpensWhenFailureRateCrossesThresholdOnceBufferFull(t *testing.T) {
	cb, err := New("svc", closedConfig(4, 50))
	if err != nil {
		t.Fatal(err)
	}

	feed := []bool{true, true, false, false} // F, F, S, S
	for i, failed := range feed {
		if !cb.TryAcquirePermission() {
			t.Fatalf("call %d: expected permission while closed", i+1)
		}
		if failed {
			cb.OnError(time.Millisecond, errors.New("boom"))
		} else {
			cb.OnSuccess(time.Millisecond)
		}
	}

	// Buffer is full (F,F,S,S) at exactly the 50% threshold: the
	// "failure-rate >= threshold" rule in the state-transition table
	// opens the circuit as soon as minimumNumberOfCalls is reached,
	// which here coincides with the buffer filling on the 4th call.
	if got := cb.State(); got != StateOpen {
		t.Fatalf("expected OPEN once buffered failure rate hits threshold, got %s", got)
	}
}

func TestProbeThenClose(t *testing.T) {
	cfg := closedConfig(4, 50)
	cfg.RingBufferSizeInHalfOpenState = 2
	cb, err := New("svc", cfg)
	if err != nil {
		t.Fatal(err)
	}
	cb.TransitionToState(StateHalfOpen)

	if !cb.TryAcquirePermission() {
		t.Fatal("expected permission for first half-open probe")
	}
	cb.OnSuccess(time.Millisecond)
	if !cb.TryAcquirePermission() {
		t.Fatal("expected permission for second half-open probe")
	}
	cb.OnSuccess(time.Millisecond)

	if got := cb.State(); got != StateClosed {
		t.Fatalf("expected CLOSED after two successful probes, got %s", got)
	}
}

func TestHalfOpenReopensOnProbeFailure(t *testing.T) {
	cfg := closedConfig(4, 50)
	cfg.RingBufferSizeInHalfOpenState = 2
	cb, err := New("svc", cfg)
	if err != nil {
		t.Fatal(err)
	}
	cb.TransitionToState(StateHalfOpen)

	cb.TryAcquirePermission()
	cb.OnSuccess(time.Millisecond)
	cb.TryAcquirePermission()
	cb.OnError(time.Millisecond, errors.New("boom"))

	if got := cb.State(); got != StateOpen {
		t.Fatalf("expected OPEN after a failing probe, got %s", got)
	}
}

func TestNotPermittedCounterIncrementsExactlyOncePerDeniedCall(t *testing.T) {
	cfg := closedConfig(2, 50)
	cb, err := New("svc", cfg)
	if err != nil {
		t.Fatal(err)
	}
	cb.TransitionToState(StateOpen)

	for i := 0; i < 5; i++ {
		if cb.TryAcquirePermission() {
			t.Fatalf("call %d: expected denial while open", i+1)
		}
	}

	if got := cb.Metrics().NotPermittedCalls; got != 5 {
		t.Fatalf("expected NotPermittedCalls=5, got %d", got)
	}
}

func TestDisabledStatePermitsAndNeverRecords(t *testing.T) {
	cb, err := New("svc", closedConfig(2, 50))
	if err != nil {
		t.Fatal(err)
	}
	cb.TransitionToState(StateDisabled)

	for i := 0; i < 4; i++ {
		if !cb.TryAcquirePermission() {
			t.Fatal("expected DISABLED to always permit")
		}
		cb.OnError(time.Millisecond, errors.New("boom"))
	}

	if got := cb.State(); got != StateDisabled {
		t.Fatalf("expected to remain DISABLED, got %s", got)
	}
	if got := cb.Metrics().FailedCalls; got != 0 {
		t.Fatalf("expected DISABLED to never record outcomes, got %d failed calls", got)
	}
}

func TestForcedOpenDeniesEverything(t *testing.T) {
	cb, err := New("svc", closedConfig(2, 50))
	if err != nil {
		t.Fatal(err)
	}
	cb.TransitionToState(StateForcedOpen)

	if cb.TryAcquirePermission() {
		t.Fatal("expected FORCED_OPEN to deny every call")
	}
}

func TestOpenTransitionsToHalfOpenAfterWaitDurationElapses(t *testing.T) {
	cfg := closedConfig(2, 50)
	cfg.WaitDurationInOpenState = 20 * time.Millisecond
	cb, err := New("svc", cfg)
	if err != nil {
		t.Fatal(err)
	}
	cb.TransitionToState(StateOpen)

	if cb.TryAcquirePermission() {
		t.Fatal("expected denial immediately after opening")
	}

	time.Sleep(30 * time.Millisecond)

	if !cb.TryAcquirePermission() {
		t.Fatal("expected a probe permission once wait duration elapsed")
	}
	if got := cb.State(); got != StateHalfOpen {
		t.Fatalf("expected HALF_OPEN after lazy transition, got %s", got)
	}
}

func TestIgnoredErrorsDoNotCountTowardFailureRate(t *testing.T) {
	cfg := closedConfig(2, 50)
	errIgnored := errors.New("ignored")
	cfg.IgnoreError = func(err error) bool { return errors.Is(err, errIgnored) }
	cb, err := New("svc", cfg)
	if err != nil {
		t.Fatal(err)
	}

	cb.TryAcquirePermission()
	cb.OnError(time.Millisecond, errIgnored)
	cb.TryAcquirePermission()
	cb.OnError(time.Millisecond, errIgnored)

	if got := cb.State(); got != StateClosed {
		t.Fatalf("expected ignored errors to never open the circuit, got %s", got)
	}
	if got := cb.Metrics().IgnoredCalls; got != 2 {
		t.Fatalf("expected 2 ignored calls, got %d", got)
	}
}

func TestConfigIsImmutableAfterConstruction(t *testing.T) {
	cfg := closedConfig(4, 50)
	cb, err := New("svc", cfg)
	if err != nil {
		t.Fatal(err)
	}

	got := cb.Config()
	got.FailureRateThreshold = 1
	if cb.Config().FailureRateThreshold == 1 {
		t.Fatal("expected mutating a returned Config copy to not affect the breaker")
	}
}

func TestTransitionSequenceIsDeterministicForIdenticalOutcomes(t *testing.T) {
	run := func() []string {
		cb, err := New("svc", closedConfig(4, 50))
		if err != nil {
			t.Fatal(err)
		}

		var mu sync.Mutex
		var seq []string
		sub := cb.Events().Subscribe(event.OfKind(event.KindStateTransition), func(e event.Event) {
			tr := e.Payload.(event.StateTransition)
			mu.Lock()
			seq = append(seq, tr.From+"->"+tr.To)
			mu.Unlock()
		}, 0)
		defer sub.Close()

		feed := []bool{true, true, false, false}
		for _, failed := range feed {
			cb.TryAcquirePermission()
			if failed {
				cb.OnError(time.Millisecond, errors.New("boom"))
			} else {
				cb.OnSuccess(time.Millisecond)
			}
		}

		deadline := time.Now().Add(time.Second)
		for {
			mu.Lock()
			n := len(seq)
			mu.Unlock()
			if n > 0 || time.Now().After(deadline) {
				break
			}
			time.Sleep(time.Millisecond)
		}

		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seq...)
	}

	first := run()
	second := run()

	if len(first) == 0 || len(second) == 0 {
		t.Fatal("expected at least one state transition event")
	}
	if len(first) != len(second) {
		t.Fatalf("transition sequence length differs: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("transition sequence diverged at %d: %v vs %v", i, first, second)
		}
	}
}
