package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faultline/faultline/event"
	"github.com/faultline/faultline/metrics"
)

type callOutcome int

const (
	outcomeSuccess callOutcome = iota
	outcomeFailure
	outcomeIgnored
)

// CircuitBreaker is a concurrent state machine over a sliding window of
// call outcomes, per spec sections 3 and 4.2.
type CircuitBreaker struct {
	name string
	cfg  Config
	pub  *event.Publisher

	mu              sync.Mutex
	state           State
	closedWindow    metrics.Window
	halfOpenWindow  metrics.Window
	openedAt        time.Time
	halfOpenPermits int
	openTimer       *time.Timer

	successCalls     atomic.Int64
	failedCalls      atomic.Int64
	notPermitted     atomic.Int64
	ignoredCalls     atomic.Int64
}

// New creates a CircuitBreaker named name with the given configuration,
// starting in StateClosed.
func New(name string, cfg Config) (*CircuitBreaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cb := &CircuitBreaker{
		name: name,
		cfg:  cfg,
		pub:  event.NewPublisher(),
	}
	cb.closedWindow = cb.newWindow(cfg.RingBufferSizeInClosedState)
	cb.halfOpenWindow = cb.newWindow(cfg.RingBufferSizeInHalfOpenState)
	return cb, nil
}

func (cb *CircuitBreaker) newWindow(countCapacity int) metrics.Window {
	if cb.cfg.WindowType == TimeBased {
		return metrics.NewTimeWindow(cb.cfg.TimeBasedSlidingWindowSize, cb.cfg.TimeBasedSlidingWindowBuckets, cb.cfg.minimumNumberOfCalls())
	}
	return metrics.NewCountWindow(countCapacity)
}

// Name returns the circuit breaker's registry name.
func (cb *CircuitBreaker) Name() string { return cb.name }

// Config returns the configuration used to construct this instance. The
// returned value is a copy; mutating it has no effect (spec invariant 2).
func (cb *CircuitBreaker) Config() Config { return cb.cfg }

// Events returns the publisher emitting this instance's lifecycle events.
func (cb *CircuitBreaker) Events() *event.Publisher { return cb.pub }

// State returns the current state, resolving a lazily-due
// Open -> HalfOpen transition first.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// TryAcquirePermission attempts a non-blocking permission acquisition.
func (cb *CircuitBreaker) TryAcquirePermission() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.acquireLocked()
}

// AcquirePermission acquires a permission or returns a *NotPermittedError.
func (cb *CircuitBreaker) AcquirePermission() error {
	if cb.TryAcquirePermission() {
		return nil
	}
	cb.mu.Lock()
	state := cb.state
	cb.mu.Unlock()
	return &NotPermittedError{Name: cb.name, State: state}
}

// ReleasePermission returns an acquired-but-unused permission (a cancel
// path) without recording any outcome.
func (cb *CircuitBreaker) ReleasePermission() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateHalfOpen && cb.halfOpenPermits > 0 {
		cb.halfOpenPermits--
	}
}

// OnSuccess records a successful call of the given duration.
func (cb *CircuitBreaker) OnSuccess(elapsed time.Duration) {
	cb.record(elapsed, outcomeSuccess)
}

// OnError records a failed call, classifying err per Config.RecordError /
// Config.IgnoreError.
func (cb *CircuitBreaker) OnError(elapsed time.Duration, err error) {
	cb.record(elapsed, cb.cfg.classify(err))
}

// Reset clears all recorded outcomes and returns to StateClosed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	old := cb.state
	cb.closedWindow.Reset()
	cb.halfOpenWindow.Reset()
	cb.halfOpenPermits = 0
	cb.stopOpenTimerLocked()
	cb.state = StateClosed
	cb.mu.Unlock()

	cb.successCalls.Store(0)
	cb.failedCalls.Store(0)
	cb.notPermitted.Store(0)
	cb.ignoredCalls.Store(0)

	cb.pub.Publish(event.Event{InstanceName: cb.name, Kind: event.KindReset})
	if old != StateClosed {
		cb.notifyTransition(old, StateClosed)
	}
}

// TransitionToState forces the breaker into target, bypassing the normal
// evaluation rules. Valid for any target state; used to implement
// Disable/ForceOpen/ForceClosed-style manual control.
func (cb *CircuitBreaker) TransitionToState(target State) {
	cb.mu.Lock()
	cb.transitionLocked(target)
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) acquireLocked() bool {
	state := cb.currentStateLocked()

	switch state {
	case StateClosed, StateDisabled:
		return true
	case StateForcedOpen:
		cb.notPermitted.Add(1)
		cb.publishNotPermittedLocked()
		return false
	case StateOpen:
		cb.notPermitted.Add(1)
		cb.publishNotPermittedLocked()
		return false
	case StateHalfOpen:
		if cb.halfOpenPermits >= cb.cfg.RingBufferSizeInHalfOpenState {
			cb.notPermitted.Add(1)
			cb.publishNotPermittedLocked()
			return false
		}
		cb.halfOpenPermits++
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) publishNotPermittedLocked() {
	cb.pub.Publish(event.Event{InstanceName: cb.name, Kind: event.KindNotPermitted})
}

// currentStateLocked resolves a due Open -> HalfOpen transition before
// returning the state. Must be called with cb.mu held.
func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.cfg.WaitDurationInOpenState {
		cb.transitionLocked(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) record(elapsed time.Duration, outcome callOutcome) {
	cb.mu.Lock()
	state := cb.currentStateLocked()

	switch state {
	case StateDisabled, StateForcedOpen:
		cb.mu.Unlock()
		return
	}

	if outcome == outcomeIgnored {
		cb.mu.Unlock()
		cb.ignoredCalls.Add(1)
		cb.pub.Publish(event.Event{InstanceName: cb.name, Kind: event.KindIgnoredError, Elapsed: elapsed})
		return
	}

	slow := cb.cfg.slowCallEvaluationEnabled() && elapsed >= cb.cfg.SlowCallDurationThreshold
	w := cb.windowForLocked(state)
	snap := w.Record(metrics.Outcome{Failed: outcome == outcomeFailure, Slow: slow})

	if outcome == outcomeFailure {
		cb.failedCalls.Add(1)
	} else {
		cb.successCalls.Add(1)
	}

	switch state {
	case StateClosed:
		if cb.shouldOpen(snap) {
			cb.transitionLocked(StateOpen)
		}
	case StateHalfOpen:
		if snap.BufferedCalls >= cb.cfg.RingBufferSizeInHalfOpenState {
			if cb.ratesExceeded(snap) {
				cb.transitionLocked(StateOpen)
			} else {
				cb.transitionLocked(StateClosed)
			}
		}
	}
	cb.mu.Unlock()

	kind := event.KindSuccess
	if outcome == outcomeFailure {
		kind = event.KindError
	}
	if slow {
		if outcome == outcomeFailure {
			kind = event.KindSlowError
		} else {
			kind = event.KindSlowSuccess
		}
	}
	cb.pub.Publish(event.Event{InstanceName: cb.name, Kind: kind, Elapsed: elapsed})
}

func (cb *CircuitBreaker) windowForLocked(state State) metrics.Window {
	if state == StateHalfOpen {
		return cb.halfOpenWindow
	}
	return cb.closedWindow
}

func (cb *CircuitBreaker) shouldOpen(snap metrics.Snapshot) bool {
	minCalls := cb.cfg.minimumNumberOfCalls()
	if snap.BufferedCalls < minCalls {
		return false
	}
	return cb.ratesExceeded(snap)
}

// ratesExceeded reports whether snap's failure rate, or its slow-call rate
// when slow-call evaluation is enabled, meets the configured threshold.
func (cb *CircuitBreaker) ratesExceeded(snap metrics.Snapshot) bool {
	if snap.FailureRate() >= cb.cfg.FailureRateThreshold {
		return true
	}
	if cb.cfg.slowCallEvaluationEnabled() && snap.SlowCallRate() >= cb.cfg.SlowCallRateThreshold {
		return true
	}
	return false
}

// transitionLocked must be called with cb.mu held; it updates state and
// related bookkeeping, then publishes the STATE_TRANSITION event and
// invokes Config.OnStateChange synchronously while cb.mu is still held.
// Publish never blocks; an OnStateChange callback that calls back into cb
// deadlocks.
func (cb *CircuitBreaker) transitionLocked(target State) {
	old := cb.state
	if old == target {
		return
	}
	cb.state = target

	switch target {
	case StateOpen:
		cb.openedAt = time.Now()
		cb.armOpenTimerLocked()
	case StateHalfOpen:
		cb.stopOpenTimerLocked()
		cb.halfOpenWindow.Reset()
		cb.halfOpenPermits = 0
	case StateClosed:
		cb.stopOpenTimerLocked()
		cb.closedWindow.Reset()
	}

	cb.pub.Publish(event.Event{
		InstanceName: cb.name,
		Kind:         event.KindStateTransition,
		Payload:      event.StateTransition{From: old.String(), To: target.String()},
	})
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.name, old, target)
	}
}

// notifyTransition publishes a transition that was applied without
// transitionLocked; Reset calls it after releasing cb.mu.
func (cb *CircuitBreaker) notifyTransition(from, to State) {
	cb.pub.Publish(event.Event{
		InstanceName: cb.name,
		Kind:         event.KindStateTransition,
		Payload:      event.StateTransition{From: from.String(), To: to.String()},
	})
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.name, from, to)
	}
}

func (cb *CircuitBreaker) armOpenTimerLocked() {
	if !cb.cfg.AutomaticTransitionFromOpenToHalfOpenEnabled {
		return
	}
	cb.openTimer = time.AfterFunc(cb.cfg.WaitDurationInOpenState, func() {
		cb.mu.Lock()
		if cb.state == StateOpen {
			cb.transitionLocked(StateHalfOpen)
		}
		cb.mu.Unlock()
	})
}

func (cb *CircuitBreaker) stopOpenTimerLocked() {
	if cb.openTimer != nil {
		cb.openTimer.Stop()
		cb.openTimer = nil
	}
}
