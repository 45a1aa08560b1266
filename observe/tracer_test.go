package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCallMeta_SpanName(t *testing.T) {
	meta := CallMeta{Primitive: "circuitbreaker", Instance: "payments"}

	expected := "faultline.circuitbreaker.payments"
	if got := meta.SpanName(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestCallMeta_ID(t *testing.T) {
	meta := CallMeta{Primitive: "ratelimiter", Instance: "search"}

	expected := "ratelimiter.search"
	if got := meta.ID(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := CallMeta{Primitive: "circuitbreaker", Instance: "payments"}

	ctx, span := tr.StartSpan(context.Background(), meta, "SUCCESS")
	tr.EndSpan(span, nil)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name() != "faultline.circuitbreaker.payments" {
		t.Errorf("expected span name 'faultline.circuitbreaker.payments', got %q", s.Name())
	}

	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	if v, ok := attrMap["faultline.instance.id"]; !ok || v.AsString() != "circuitbreaker.payments" {
		t.Errorf("expected faultline.instance.id='circuitbreaker.payments', got %v", v)
	}
	if v, ok := attrMap["faultline.primitive"]; !ok || v.AsString() != "circuitbreaker" {
		t.Errorf("expected faultline.primitive='circuitbreaker', got %v", v)
	}
	if v, ok := attrMap["faultline.instance"]; !ok || v.AsString() != "payments" {
		t.Errorf("expected faultline.instance='payments', got %v", v)
	}
	if v, ok := attrMap["faultline.event.kind"]; !ok || v.AsString() != "SUCCESS" {
		t.Errorf("expected faultline.event.kind='SUCCESS', got %v", v)
	}
}

func TestTracer_ContextPropagation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := CallMeta{Primitive: "retry", Instance: "child"}

	parentCtx, parentSpan := tracer.Start(context.Background(), "parent")

	childCtx, childSpan := tr.StartSpan(parentCtx, meta, "RETRY")
	tr.EndSpan(childSpan, nil)
	parentSpan.End()
	_ = childCtx

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	var child sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "faultline.retry.child" {
			child = s
			break
		}
	}
	if child == nil {
		t.Fatal("child span not found")
	}

	if child.Parent().TraceID() != parentSpan.SpanContext().TraceID() {
		t.Error("child span should have same trace ID as parent")
	}
	if !child.Parent().SpanID().IsValid() {
		t.Error("child span should have valid parent span ID")
	}
}

func TestTracer_ErrorRecording(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := CallMeta{Primitive: "bulkhead", Instance: "inventory"}

	ctx, span := tr.StartSpan(context.Background(), meta, "ERROR")
	testErr := errors.New("execution failed")
	tr.EndSpan(span, testErr)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}

	attrs := s.Attributes()
	var eventError bool
	for _, a := range attrs {
		if string(a.Key) == "faultline.event.error" {
			eventError = a.Value.AsBool()
			break
		}
	}
	if !eventError {
		t.Error("expected faultline.event.error=true")
	}
}
