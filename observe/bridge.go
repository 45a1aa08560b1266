package observe

import (
	"context"
	"time"

	"github.com/faultline/faultline/event"
)

// failureKinds classifies which event.Kind values represent a failure
// outcome for metrics and logging purposes. Kinds absent from this set
// (success, permit-acquired, reset, registry lifecycle) are logged at
// Info and never increment the failure counter.
var failureKinds = map[event.Kind]bool{
	event.KindError:          true,
	event.KindSlowError:      true,
	event.KindNotPermitted:   true,
	event.KindRetryExhausted: true,
	event.KindTimeout:        true,
}

// Bridge drives tracing, metrics, and logging from a primitive's
// event.Publisher, replacing the call-wrapping middleware pattern with
// one that consumes lifecycle events after the fact: by the time a
// primitive publishes, the call it concerns has already finished.
type Bridge struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewBridge creates a new Bridge with the given observability components.
func NewBridge(tracer Tracer, metrics Metrics, logger Logger) *Bridge {
	return &Bridge{tracer: tracer, metrics: metrics, logger: logger}
}

// BridgeFromObserver creates a Bridge from an Observer. This is a
// convenience function for common use cases.
func BridgeFromObserver(obs Observer) (*Bridge, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewBridge(tracer, metrics, obs.Logger()), nil
}

// Attach subscribes to pub and records every event it emits under meta
// until the returned Subscription is closed. If meta.Instance is empty,
// every recorded event is logged at Error instead of being attributed
// normally, since an unidentified instance defeats the point of
// per-instance observability.
func (b *Bridge) Attach(pub *event.Publisher, meta CallMeta) *event.Subscription {
	return pub.Subscribe(event.AcceptAll, func(e event.Event) {
		defer b.recoverAndLog(meta, e)
		if meta.Instance == "" {
			b.logger.Error(context.Background(), ErrMissingInstanceName.Error(), Field{Key: "faultline.primitive", Value: meta.Primitive})
		}
		b.record(meta, e)
	}, event.DefaultBufferSize)
}

// recoverAndLog catches a panic from recording e and logs it through the
// same Logger every other Bridge event goes through, rather than letting it
// be silently discarded by the Publisher's own generic recovery. It must be
// called via defer directly in the Listener, since event.Publisher recovers
// around the Listener as a backstop and would otherwise swallow the panic
// before this logging ever ran.
func (b *Bridge) recoverAndLog(meta CallMeta, e event.Event) {
	r := recover()
	if r == nil {
		return
	}
	b.logger.Error(context.Background(), "faultline: panic recovered while handling event",
		Field{Key: "faultline.primitive", Value: meta.Primitive},
		Field{Key: "faultline.instance", Value: meta.Instance},
		Field{Key: "faultline.event.kind", Value: string(e.Kind)},
		Field{Key: "panic", Value: r},
	)
}

func (b *Bridge) record(meta CallMeta, e event.Event) {
	ctx := context.Background()
	failed := failureKinds[e.Kind]

	_, span := b.tracer.StartSpan(ctx, meta, string(e.Kind))
	var spanErr error
	if failed {
		spanErr = &eventError{kind: e.Kind}
	}
	b.tracer.EndSpan(span, spanErr)

	b.metrics.RecordEvent(ctx, meta, string(e.Kind), e.Elapsed, failed)

	callLogger := b.logger.WithCall(meta)
	fields := []Field{{Key: "faultline.event.kind", Value: string(e.Kind)}}
	if e.Elapsed > 0 {
		fields = append(fields, Field{Key: "duration_ms", Value: float64(e.Elapsed.Microseconds()) / 1000.0})
	}
	if tr, ok := e.Payload.(event.StateTransition); ok {
		fields = append(fields, Field{Key: "from", Value: tr.From}, Field{Key: "to", Value: tr.To})
	}

	msg := "faultline event: " + string(e.Kind)
	switch {
	case failed:
		callLogger.Warn(ctx, msg, fields...)
	default:
		callLogger.Info(ctx, msg, fields...)
	}
}

// eventError adapts an event.Kind into an error for span status
// recording, since lifecycle events carry no error value of their own.
type eventError struct {
	kind event.Kind
}

func (e *eventError) Error() string { return "faultline: " + string(e.kind) }

// waitForDrain gives a Bridge's subscription goroutine time to process
// already-published events before a test or caller inspects side effects.
// Subscriptions drain asynchronously; this is a pragmatic settle delay
// rather than a synchronization guarantee.
func waitForDrain() { time.Sleep(20 * time.Millisecond) }
