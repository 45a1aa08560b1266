package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_TotalCounterIncrements(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CallMeta{Primitive: "circuitbreaker", Instance: "my_cb"}
	m.RecordEvent(context.Background(), meta, "SUCCESS", 100*time.Millisecond, false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "faultline.events.total")
	if found == nil {
		t.Fatal("faultline.events.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("expected count 1, got %d", sum.DataPoints[0].Value)
	}
}

func TestMetrics_FailedCounterNotIncrementedOnSuccess(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CallMeta{Primitive: "circuitbreaker", Instance: "success_instance"}
	m.RecordEvent(context.Background(), meta, "SUCCESS", 50*time.Millisecond, false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "faultline.events.failed")
	if found == nil {
		return
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		return
	}
	if len(sum.DataPoints) > 0 && sum.DataPoints[0].Value != 0 {
		t.Errorf("expected failed count 0, got %d", sum.DataPoints[0].Value)
	}
}

func TestMetrics_FailedCounterIncrementsOnFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CallMeta{Primitive: "circuitbreaker", Instance: "failing_instance"}
	m.RecordEvent(context.Background(), meta, "ERROR", 50*time.Millisecond, true)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "faultline.events.failed")
	if found == nil {
		t.Fatal("faultline.events.failed metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("expected failed count 1, got %d", sum.DataPoints[0].Value)
	}
}

func TestMetrics_DurationHistogramRecords(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CallMeta{Primitive: "retry", Instance: "timed_instance"}
	duration := 50 * time.Millisecond
	m.RecordEvent(context.Background(), meta, "RETRY", duration, false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "faultline.events.duration_ms")
	if found == nil {
		t.Fatal("faultline.events.duration_ms metric not found")
	}

	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}

	dp := hist.DataPoints[0]
	if dp.Sum < 40 || dp.Sum > 60 {
		t.Errorf("expected duration ~50ms, got %f", dp.Sum)
	}
}

func TestMetrics_ZeroElapsedSkipsHistogram(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CallMeta{Primitive: "bulkhead", Instance: "instant"}
	m.RecordEvent(context.Background(), meta, "PERMIT_ACQUIRED", 0, false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "faultline.events.duration_ms")
	if found != nil {
		if hist, ok := found.Data.(metricdata.Histogram[float64]); ok {
			for _, dp := range hist.DataPoints {
				if dp.Count != 0 {
					t.Errorf("expected no histogram samples for zero elapsed, got count %d", dp.Count)
				}
			}
		}
	}
}

func TestMetrics_LabelsApplied(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CallMeta{Primitive: "ratelimiter", Instance: "search"}
	m.RecordEvent(context.Background(), meta, "PERMIT_REJECTED", 10*time.Millisecond, false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "faultline.events.total")
	if found == nil {
		t.Fatal("faultline.events.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}

	attrs := sum.DataPoints[0].Attributes
	var foundID, foundPrimitive, foundKind bool
	for iter := attrs.Iter(); iter.Next(); {
		kv := iter.Attribute()
		switch string(kv.Key) {
		case "faultline.instance.id":
			foundID = true
			if kv.Value.AsString() != "ratelimiter.search" {
				t.Errorf("expected faultline.instance.id='ratelimiter.search', got %q", kv.Value.AsString())
			}
		case "faultline.primitive":
			foundPrimitive = true
			if kv.Value.AsString() != "ratelimiter" {
				t.Errorf("expected faultline.primitive='ratelimiter', got %q", kv.Value.AsString())
			}
		case "faultline.event.kind":
			foundKind = true
			if kv.Value.AsString() != "PERMIT_REJECTED" {
				t.Errorf("expected faultline.event.kind='PERMIT_REJECTED', got %q", kv.Value.AsString())
			}
		}
	}

	if !foundID {
		t.Error("faultline.instance.id attribute not found")
	}
	if !foundPrimitive {
		t.Error("faultline.primitive attribute not found")
	}
	if !foundKind {
		t.Error("faultline.event.kind attribute not found")
	}
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	m, err := newMetrics(meter)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	meta := CallMeta{Primitive: "timelimiter", Instance: "concurrent_instance"}
	const numGoroutines = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			m.RecordEvent(context.Background(), meta, "SUCCESS", time.Millisecond, false)
		}()
	}

	wg.Wait()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := findMetric(rm, "faultline.events.total")
	if found == nil {
		t.Fatal("faultline.events.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != numGoroutines {
		t.Errorf("expected count %d, got %d", numGoroutines, sum.DataPoints[0].Value)
	}
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
