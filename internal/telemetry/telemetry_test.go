package telemetry

import (
	"context"
	"testing"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown := Setup(context.Background(), Options{Service: "trax-test"})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestDescribeCarriesServiceAndEnvironment(t *testing.T) {
	res := describe(context.Background(), Options{Service: "trax-api", Environment: "staging"})
	if res == nil {
		t.Fatal("expected a resource")
	}
	set := res.Set()
	if v, ok := set.Value(semconv.ServiceNameKey); !ok || v.AsString() != "trax-api" {
		t.Fatalf("unexpected service name %v", v)
	}
	if v, ok := set.Value(semconv.DeploymentEnvironmentKey); !ok || v.AsString() != "staging" {
		t.Fatalf("unexpected environment %v", v)
	}
}

func TestDescribeOmitsEmptyEnvironment(t *testing.T) {
	res := describe(context.Background(), Options{Service: "trax"})
	if _, ok := res.Set().Value(semconv.DeploymentEnvironmentKey); ok {
		t.Fatal("expected no environment attribute")
	}
}

func TestExporterOptionsInsecure(t *testing.T) {
	if got := len(exporterOptions(Options{Endpoint: "collector:4317"})); got != 1 {
		t.Fatalf("expected endpoint only, got %d options", got)
	}
	if got := len(exporterOptions(Options{Endpoint: "collector:4317", Insecure: true})); got != 2 {
		t.Fatalf("expected endpoint and insecure, got %d options", got)
	}
}
