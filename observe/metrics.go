package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records lifecycle-event metrics for fault-tolerance primitives.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordEvent records one lifecycle event, its elapsed duration (if
	// any), and whether it represents a failure outcome.
	RecordEvent(ctx context.Context, meta CallMeta, kind string, elapsed time.Duration, failed bool)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"faultline.events.total",
		metric.WithDescription("Total number of lifecycle events emitted by a primitive instance"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"faultline.events.failed",
		metric.WithDescription("Total number of lifecycle events classified as a failure outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"faultline.events.duration_ms",
		metric.WithDescription("Elapsed duration recorded on lifecycle events, in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordEvent records metrics for one lifecycle event.
func (m *metricsImpl) RecordEvent(ctx context.Context, meta CallMeta, kind string, elapsed time.Duration, failed bool) {
	attrs := []attribute.KeyValue{
		attribute.String("faultline.instance.id", meta.ID()),
		attribute.String("faultline.primitive", meta.Primitive),
		attribute.String("faultline.instance", meta.Instance),
		attribute.String("faultline.event.kind", kind),
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if failed {
		m.errorCount.Add(ctx, 1, opt)
	}
	if elapsed > 0 {
		m.durationHist.Record(ctx, float64(elapsed.Microseconds())/1000.0, opt)
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordEvent(ctx context.Context, meta CallMeta, kind string, elapsed time.Duration, failed bool) {
}
