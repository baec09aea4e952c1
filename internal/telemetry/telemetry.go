package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ShutdownFunc flushes and stops the exporters.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init configures OpenTelemetry tracing and metrics with OTLP gRPC exporters.
//
// Exporter endpoints and headers come from the standard OTEL_EXPORTER_OTLP_* environment
// variables. A provider that fails to start is logged and skipped so the API keeps serving
// without it.
func Init(ctx context.Context, serviceName, version string) (ShutdownFunc, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithContainer(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceShutdown, err := initTraceProvider(ctx, res)
	if err != nil {
		log.Warn().Err(err).Msg("Tracing disabled, trace provider failed to start")
		traceShutdown = noopShutdown
	}

	metricShutdown, err := initMeterProvider(ctx, res)
	if err != nil {
		log.Warn().Err(err).Msg("Metrics disabled, meter provider failed to start")
		metricShutdown = noopShutdown
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("service", serviceName).Str("version", version).Msg("OpenTelemetry initialized")

	return func(ctx context.Context) error {
		return errors.Join(traceShutdown(ctx), metricShutdown(ctx))
	}, nil
}

func initTraceProvider(ctx context.Context, res *resource.Resource) (ShutdownFunc, error) {
	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func initMeterProvider(ctx context.Context, res *resource.Resource) (ShutdownFunc, error) {
	exporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return mp.Shutdown, nil
}
