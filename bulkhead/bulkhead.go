// Package bulkhead implements spec section 4.4's counting-semaphore
// Bulkhead and section 4.5's bounded worker-pool ThreadPoolBulkhead.
package bulkhead

import (
	"sync"
	"time"

	"github.com/faultline/faultline/event"
)

// Bulkhead is a counting semaphore enforcing a concurrency cap with a
// bounded wait for permits that are not immediately free.
type Bulkhead struct {
	name string
	cfg  Config
	pub  *event.Publisher
	sem  chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
}

// New creates a Bulkhead named name with the given configuration.
func New(name string, cfg Config) (*Bulkhead, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bulkhead{
		name: name,
		cfg:  cfg,
		pub:  event.NewPublisher(),
		sem:  make(chan struct{}, cfg.MaxConcurrentCalls),
	}, nil
}

// Name returns the bulkhead's registry name.
func (b *Bulkhead) Name() string { return b.name }

// Config returns a copy of the configuration used to construct this
// instance.
func (b *Bulkhead) Config() Config { return b.cfg }

// Events returns the publisher emitting this instance's lifecycle events.
func (b *Bulkhead) Events() *event.Publisher { return b.pub }

// TryAcquirePermission attempts a non-blocking permit acquisition.
func (b *Bulkhead) TryAcquirePermission() bool {
	select {
	case b.sem <- struct{}{}:
		b.onAcquired()
		return true
	default:
		return false
	}
}

// AcquirePermission waits up to Config.MaxWaitTime for a free permit,
// returning a *FullError on timeout.
func (b *Bulkhead) AcquirePermission() error {
	select {
	case b.sem <- struct{}{}:
		b.onAcquired()
		return nil
	default:
	}

	if b.cfg.MaxWaitTime <= 0 {
		b.pub.Publish(event.Event{InstanceName: b.name, Kind: event.KindPermitRejected})
		return &FullError{Name: b.name}
	}

	timer := time.NewTimer(b.cfg.MaxWaitTime)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		b.onAcquired()
		return nil
	case <-timer.C:
		b.pub.Publish(event.Event{InstanceName: b.name, Kind: event.KindPermitRejected})
		return &FullError{Name: b.name}
	}
}

func (b *Bulkhead) onAcquired() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
	b.pub.Publish(event.Event{InstanceName: b.name, Kind: event.KindPermitAcquired})
}

// OnComplete releases one permit. Required on every path after a
// successful acquire, whether the guarded call succeeded or failed.
func (b *Bulkhead) OnComplete() {
	select {
	case <-b.sem:
		b.mu.Lock()
		b.active--
		b.mu.Unlock()
	default:
		// OnComplete without a matching acquire; nothing to release.
	}
}

// Metrics is a point-in-time snapshot of a Bulkhead's occupancy.
type Metrics struct {
	AvailableCalls   int
	MaxAllowedCalls  int
	ActiveCalls      int
	MaxActiveCalls   int
}

// Metrics returns a snapshot of the bulkhead's current occupancy.
func (b *Bulkhead) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Metrics{
		AvailableCalls:  b.cfg.MaxConcurrentCalls - b.active,
		MaxAllowedCalls: b.cfg.MaxConcurrentCalls,
		ActiveCalls:     b.active,
		MaxActiveCalls:  b.maxActive,
	}
}
