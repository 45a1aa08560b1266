package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/faultline/faultline/event"
	"github.com/faultline/faultline/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "example-service",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: false},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	cfg := observe.Config{
		ServiceName: "", // Empty - will fail validation
	}

	ctx := context.Background()
	_, err := observe.NewObserver(ctx, cfg)
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "my-service",
		Version:     "1.0.0",
		Tracing: observe.TracingConfig{
			Enabled:   true,
			Exporter:  "stdout",
			SamplePct: 0.5,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  true,
			Exporter: "prometheus",
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid:", err)
	} else {
		fmt.Println("Configuration is valid")
	}
	// Output:
	// Configuration is valid
}

func ExampleCallMeta_SpanName() {
	meta := observe.CallMeta{Primitive: "circuitbreaker", Instance: "payments"}
	fmt.Println(meta.SpanName())
	// Output:
	// faultline.circuitbreaker.payments
}

func ExampleCallMeta_ID() {
	meta := observe.CallMeta{Primitive: "ratelimiter", Instance: "search"}
	fmt.Println(meta.ID())
	// Output:
	// ratelimiter.search
}

func ExampleNewLoggerWithWriter() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	ctx := context.Background()
	logger.Info(ctx, "application started", observe.Field{Key: "version", Value: "1.0.0"})

	fmt.Println("Logged message contains 'application started':", bytes.Contains(buf.Bytes(), []byte("application started")))
	// Output:
	// Logged message contains 'application started': true
}

func ExampleLogger_WithCall() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	meta := observe.CallMeta{Primitive: "circuitbreaker", Instance: "payments"}

	callLogger := logger.WithCall(meta)

	ctx := context.Background()
	callLogger.Info(ctx, "instance observed")

	output := buf.String()
	fmt.Println("Contains faultline.primitive:", bytes.Contains([]byte(output), []byte("faultline.primitive")))
	fmt.Println("Contains faultline.instance:", bytes.Contains([]byte(output), []byte("faultline.instance")))
	// Output:
	// Contains faultline.primitive: true
	// Contains faultline.instance: true
}

func ExampleBridge_Attach() {
	ctx := context.Background()

	cfg := observe.Config{
		ServiceName: "example",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: false},
	}
	obs, _ := observe.NewObserver(ctx, cfg)
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	bridge, _ := observe.BridgeFromObserver(obs)

	pub := event.NewPublisher()
	sub := bridge.Attach(pub, observe.CallMeta{Primitive: "circuitbreaker", Instance: "demo"})
	defer sub.Close()

	pub.Publish(event.Event{InstanceName: "demo", Kind: event.KindSuccess})

	fmt.Println("Event published")
	// Output:
	// Event published
}

func ExampleParseLogLevel() {
	levels := []string{"debug", "info", "warn", "error", "unknown"}
	for _, s := range levels {
		level := observe.ParseLogLevel(s)
		fmt.Printf("%s -> %s\n", s, level)
	}
	// Output:
	// debug -> debug
	// info -> info
	// warn -> warn
	// error -> error
	// unknown -> info
}
