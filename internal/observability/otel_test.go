package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/islechat/go-wa-backend/internal/config"
)

func preserveOTelGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func swapExporter(t *testing.T, fn func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error)) {
	t.Helper()
	prev := newExporter
	newExporter = fn
	t.Cleanup(func() { newExporter = prev })
}

func TestSetupOTel_Disabled_NoOp(t *testing.T) {
	preserveOTelGlobals(t)

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled:     false,
		Endpoint:    "ignored:4317",
		ServiceName: "wa-backend",
		SampleRatio: 1.0,
	}, "0.0.0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned error: %v", err)
	}
}

func TestSetupOTel_InstallsProviderAndPropagator(t *testing.T) {
	preserveOTelGlobals(t)

	exp := tracetest.NewInMemoryExporter()
	swapExporter(t, func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
		return exp, nil
	})

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: "wa-backend",
		SampleRatio: 1.0,
	}, "1.0.0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatal("expected *sdktrace.TracerProvider installed")
	}

	ctx, span := otel.Tracer("pipeline").Start(context.Background(), "pipeline.HandleBatch")
	span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if carrier.Get("traceparent") == "" {
		t.Fatal("expected traceparent header injected")
	}

	tp := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(exp.GetSpans()) == 0 {
		t.Fatal("expected recorded spans after flush")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSetupOTel_ExporterError(t *testing.T) {
	preserveOTelGlobals(t)

	boom := errors.New("collector unreachable")
	swapExporter(t, func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
		return nil, boom
	})

	if _, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "wa-backend",
		SampleRatio: 1.0,
	}, "1.0.0"); !errors.Is(err, boom) {
		t.Fatalf("expected exporter error, got %v", err)
	}
}
