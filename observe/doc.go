// Package observe provides OpenTelemetry-based observability for
// fault-tolerance primitive instances.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers attach a Bridge to a primitive's
// event.Publisher (CircuitBreaker.Events(), RateLimiter.Events(), and so
// on) rather than wrapping the call itself.
//
// # Overview
//
// observe provides three observability pillars:
//   - Tracing: OpenTelemetry spans per lifecycle event
//   - Metrics: Event counters, failure counters, and duration histograms
//   - Logging: Structured JSON logging with automatic field redaction
//
// # Core Components
//
//   - [Observer]: Main facade providing Tracer, Meter, and Logger access
//   - [Tracer]: Span creation with instance metadata as span attributes
//   - [Metrics]: Records event counts, failures, and duration histograms
//   - [Logger]: Structured JSON logging with sensitive field redaction
//   - [Bridge]: Subscribes to a primitive's event.Publisher and records
//     every event it emits
//
// # Quick Start
//
//	cfg := observe.Config{
//	    ServiceName: "checkout-service",
//	    Version:     "1.0.0",
//	    Tracing:     observe.TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 1.0},
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	}
//
//	obs, err := observe.NewObserver(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer obs.Shutdown(ctx)
//
//	bridge, _ := observe.BridgeFromObserver(obs)
//	sub := bridge.Attach(cb.Events(), observe.CallMeta{Primitive: "circuitbreaker", Instance: cb.Name()})
//	defer sub.Close()
//
// # Telemetry Details
//
// Tracing creates one span per lifecycle event, named:
//
//	faultline.<primitive>.<instance>
//
// Span attributes include:
//   - faultline.instance.id: "<primitive>.<instance>"
//   - faultline.primitive: the primitive kind
//   - faultline.instance: the instance's registry name
//   - faultline.event.kind: the event.Kind that was recorded
//
// Metrics recorded:
//   - faultline.events.total (counter): Every event, by instance and kind
//   - faultline.events.failed (counter): Events classified as a failure outcome
//   - faultline.events.duration_ms (histogram): Elapsed duration, where the event carries one
//
// # Sensitive Field Redaction
//
// The logger automatically redacts these fields to prevent credential leakage:
//   - input, inputs
//   - password, secret, token
//   - api_key, apiKey, credential
//
// See [RedactedFields] for the complete list.
//
// # Exporter Configuration
//
// Tracing exporters:
//   - "otlp": OTLP gRPC (requires OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT)
//   - "jaeger": Jaeger via OTLP (requires OTEL_EXPORTER_JAEGER_ENDPOINT)
//   - "stdout": Console output for development
//   - "none" or "": Disabled (no-op)
//
// Metrics exporters:
//   - "otlp": OTLP gRPC (requires OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT)
//   - "prometheus": Prometheus scrape endpoint
//   - "stdout": Console output for development
//   - "none" or "": Disabled (no-op)
//
// # Thread Safety
//
// All exported types are safe for concurrent use after construction:
//   - [Observer]: Tracer(), Meter(), Logger() are safe; Shutdown() is idempotent
//   - [Tracer]: StartSpan() and EndSpan() are safe for concurrent use
//   - [Metrics]: RecordEvent() is safe for concurrent use
//   - [Logger]: All logging methods are mutex-protected
//   - [Bridge]: Attach() may be called concurrently for distinct publishers
//
// # Error Handling
//
// Configuration errors (use errors.Is for checking):
//   - [ErrMissingServiceName]: Config.ServiceName is empty
//   - [ErrInvalidSamplePct]: Tracing.SamplePct not in [0.0, 1.0]
//   - [ErrInvalidTracingExporter]: Unknown tracing exporter name
//   - [ErrInvalidMetricsExporter]: Unknown metrics exporter name
//   - [ErrInvalidLogLevel]: Unknown log level
//
// Exporter errors:
//   - [ErrEndpointNotConfigured]: Required endpoint env var not set
//
// Runtime errors:
//   - [ErrNilObserver]: Nil Observer passed to function
//   - [ErrMissingInstanceName]: CallMeta.Instance is empty
package observe
