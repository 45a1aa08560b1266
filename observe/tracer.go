package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta identifies which primitive instance a lifecycle event came
// from for telemetry purposes.
type CallMeta struct {
	Primitive string // circuitbreaker|ratelimiter|bulkhead|threadpoolbulkhead|retry|timelimiter
	Instance  string // the primitive's registry name
}

// SpanName returns the deterministic span name for this instance.
// Format: faultline.<primitive>.<instance>
func (m CallMeta) SpanName() string {
	return "faultline." + m.Primitive + "." + m.Instance
}

// ID returns the fully qualified instance identifier.
func (m CallMeta) ID() string {
	return m.Primitive + "." + m.Instance
}

// Tracer wraps OpenTelemetry tracing with per-instance span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one lifecycle event.
	StartSpan(ctx context.Context, meta CallMeta, kind string) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with instance metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta, kind string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("faultline.instance.id", meta.ID()),
		attribute.String("faultline.primitive", meta.Primitive),
		attribute.String("faultline.instance", meta.Instance),
		attribute.String("faultline.event.kind", kind),
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("faultline.event.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CallMeta, kind string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
