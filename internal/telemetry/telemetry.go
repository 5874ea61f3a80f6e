// Package telemetry installs the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Options names the process and where its spans go. An empty Endpoint
// disables export.
type Options struct {
	Service     string
	Environment string
	Endpoint    string
	Insecure    bool
}

type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup exports spans over OTLP/gRPC and installs W3C trace context
// propagation. Tracing stays off when no endpoint is configured or the
// exporter cannot be built; the returned Shutdown is then a no-op.
func Setup(ctx context.Context, opts Options) Shutdown {
	if opts.Endpoint == "" {
		return noop
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOptions(opts)...)
	if err != nil {
		log.Printf("telemetry: exporter for %s at %s: %v", opts.Service, opts.Endpoint, err)
		return noop
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(describe(ctx, opts)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return provider.Shutdown
}

func exporterOptions(opts Options) []otlptracegrpc.Option {
	out := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		out = append(out, otlptracegrpc.WithInsecure())
	}
	return out
}

// describe builds the resource attached to every span. Detection errors
// are logged and the partial resource is kept.
func describe(ctx context.Context, opts Options) *resource.Resource {
	attrs := []resource.Option{
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(semconv.ServiceName(opts.Service)),
		resource.WithTelemetrySDK(),
	}
	if opts.Environment != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.DeploymentEnvironment(opts.Environment)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		log.Printf("telemetry: resource for %s: %v", opts.Service, err)
	}
	return res
}
