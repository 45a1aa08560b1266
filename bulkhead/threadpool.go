package bulkhead

import (
	"sync"
	"time"

	"github.com/faultline/faultline/event"
)

// ThreadPoolBulkhead is a bounded worker pool: submitted tasks run
// immediately on an idle worker, queue up to Config.QueueCapacity when
// every worker is busy, and are rejected once both the pool and the queue
// are saturated. Core workers never retire; overflow workers (beyond
// CoreThreadPoolSize, up to MaxThreadPoolSize) retire after sitting idle
// for KeepAliveDuration.
type ThreadPoolBulkhead struct {
	name string
	cfg  ThreadPoolConfig
	pub  *event.Publisher

	direct chan func()   // unbuffered: a send only succeeds if a worker is already waiting
	queue  chan func()   // bounded wait queue
	done   chan struct{} // closed by Shutdown; never by Submit, so sends never race a close

	mu      sync.Mutex
	workers int
	closed  bool
}

// NewThreadPool creates a ThreadPoolBulkhead named name, starting
// Config.CoreThreadPoolSize core workers immediately.
func NewThreadPool(name string, cfg ThreadPoolConfig) (*ThreadPoolBulkhead, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tp := &ThreadPoolBulkhead{
		name:   name,
		cfg:    cfg,
		pub:    event.NewPublisher(),
		direct: make(chan func()),
		queue:  make(chan func(), cfg.QueueCapacity),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.CoreThreadPoolSize; i++ {
		tp.startWorker(true, nil)
	}
	return tp, nil
}

// Name returns the pool's registry name.
func (tp *ThreadPoolBulkhead) Name() string { return tp.name }

// Config returns a copy of the configuration used to construct this
// instance.
func (tp *ThreadPoolBulkhead) Config() ThreadPoolConfig { return tp.cfg }

// Events returns the publisher emitting this instance's lifecycle events.
func (tp *ThreadPoolBulkhead) Events() *event.Publisher { return tp.pub }

// Submit runs task immediately if a worker is idle, queues it (bounded by
// QueueCapacity) if every worker is busy, spins up an overflow worker if
// the pool has not yet reached MaxThreadPoolSize, or rejects with a
// *FullError. Submit never blocks beyond these checks.
func (tp *ThreadPoolBulkhead) Submit(task func()) error {
	tp.mu.Lock()
	closed := tp.closed
	tp.mu.Unlock()
	if closed {
		tp.pub.Publish(event.Event{InstanceName: tp.name, Kind: event.KindPermitRejected})
		return &FullError{Name: tp.name}
	}

	select {
	case tp.direct <- task:
		tp.pub.Publish(event.Event{InstanceName: tp.name, Kind: event.KindPermitAcquired})
		return nil
	default:
	}

	select {
	case tp.queue <- task:
		tp.pub.Publish(event.Event{InstanceName: tp.name, Kind: event.KindPermitAcquired})
		return nil
	default:
	}

	tp.mu.Lock()
	if tp.closed {
		tp.mu.Unlock()
		tp.pub.Publish(event.Event{InstanceName: tp.name, Kind: event.KindPermitRejected})
		return &FullError{Name: tp.name}
	}
	if tp.workers < tp.cfg.MaxThreadPoolSize {
		tp.mu.Unlock()
		tp.startWorker(false, task)
		tp.pub.Publish(event.Event{InstanceName: tp.name, Kind: event.KindPermitAcquired})
		return nil
	}
	tp.mu.Unlock()

	tp.pub.Publish(event.Event{InstanceName: tp.name, Kind: event.KindPermitRejected})
	return &FullError{Name: tp.name}
}

// startWorker spawns a worker goroutine. first, if non-nil, is an initial
// task the worker runs before entering its receive loop (used to hand an
// overflow worker its triggering task without a channel round-trip).
func (tp *ThreadPoolBulkhead) startWorker(core bool, first func()) {
	tp.mu.Lock()
	tp.workers++
	tp.mu.Unlock()

	go func() {
		defer func() {
			tp.mu.Lock()
			tp.workers--
			tp.mu.Unlock()
		}()

		if first != nil {
			tp.runTask(first)
		}

		for {
			select {
			case task := <-tp.direct:
				tp.runTask(task)
				continue
			case task := <-tp.queue:
				tp.runTask(task)
				continue
			default:
			}

			if core {
				select {
				case task := <-tp.direct:
					tp.runTask(task)
				case task := <-tp.queue:
					tp.runTask(task)
				case <-tp.done:
					if !tp.drainOnce() {
						return
					}
				}
				continue
			}

			select {
			case task := <-tp.direct:
				tp.runTask(task)
			case task := <-tp.queue:
				tp.runTask(task)
			case <-tp.done:
				if !tp.drainOnce() {
					return
				}
			case <-time.After(tp.cfg.KeepAliveDuration):
				return
			}
		}
	}()
}

func (tp *ThreadPoolBulkhead) runTask(task func()) {
	defer func() { _ = recover() }()
	task()
}

// drainOnce runs one remaining queued task and reports whether it found
// one. Called once Shutdown has fired, so workers keep draining the queue
// instead of retiring while work is still waiting.
func (tp *ThreadPoolBulkhead) drainOnce() bool {
	select {
	case task := <-tp.queue:
		tp.runTask(task)
		return true
	default:
		return false
	}
}

// Metrics is a point-in-time snapshot of a ThreadPoolBulkhead's occupancy.
type Metrics struct {
	CurrentThreadPoolSize int
	CoreThreadPoolSize    int
	MaxThreadPoolSize     int
	QueueCapacity         int
	QueueDepth            int
}

// Metrics returns a snapshot of the pool's current size and queue depth.
func (tp *ThreadPoolBulkhead) Metrics() Metrics {
	tp.mu.Lock()
	workers := tp.workers
	tp.mu.Unlock()
	return Metrics{
		CurrentThreadPoolSize: workers,
		CoreThreadPoolSize:    tp.cfg.CoreThreadPoolSize,
		MaxThreadPoolSize:     tp.cfg.MaxThreadPoolSize,
		QueueCapacity:         tp.cfg.QueueCapacity,
		QueueDepth:            len(tp.queue),
	}
}

// Shutdown stops accepting new submissions and signals every worker to
// drain the remaining queue and retire.
func (tp *ThreadPoolBulkhead) Shutdown() {
	tp.mu.Lock()
	if tp.closed {
		tp.mu.Unlock()
		return
	}
	tp.closed = true
	tp.mu.Unlock()
	close(tp.done)
}
