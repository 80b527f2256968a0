// Package telemetry sets up the OpenTelemetry providers behind pkg/metrics.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/yanqian/safetravels/pkg/metrics"
)

// Options controls provider setup.
type Options struct {
	Enabled      bool
	ServiceName  string
	StdoutTraces bool
	// Writer receives exported spans; stderr when nil so the MCP stdio
	// transport keeps stdout to itself.
	Writer io.Writer
}

// ShutdownFunc flushes and stops the providers.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup returns a recorder wired to the configured providers. Disabled
// telemetry yields a no-op recorder.
func Setup(opts Options, logger *slog.Logger) (*metrics.Recorder, ShutdownFunc, error) {
	if !opts.Enabled {
		return metrics.NewNoop(), noopShutdown, nil
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "safetravels"
	}
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("service.version", metrics.InstrumentationVersion),
		),
		resource.WithFromEnv(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if opts.StdoutTraces {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(opts.Writer))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
		logger.Info("telemetry stdout trace exporter enabled")
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Metrics go to whatever meter provider the process registered globally.
	recorder, err := metrics.New(otel.GetMeterProvider(), tracerProvider)
	if err != nil {
		_ = tracerProvider.Shutdown(context.Background())
		return nil, nil, fmt.Errorf("failed to create instruments: %w", err)
	}

	return recorder, func(ctx context.Context) error {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}
