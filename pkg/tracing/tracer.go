package tracing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"shop-demo/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// Tracer interface for tracing.
type Tracer interface {
	// Start a new span.
	Start(ctx context.Context, spanName string) (context.Context, oteltrace.Span)
	StartSpanFromHeader(ctx context.Context, h http.Header, spanName string) (context.Context, oteltrace.Span)
	InjectHTTP(ctx context.Context, h http.Header)
	Shutdown(ctx context.Context) error
}

// tracer to implement Tracer.
type tracer struct {
	tracer oteltrace.Tracer
	tp     *trace.TracerProvider
}

func (t tracer) Start(ctx context.Context, spanName string) (context.Context, oteltrace.Span) {
	return t.tracer.Start(ctx, spanName)
}

func (t tracer) StartSpanFromHeader(
	ctx context.Context,
	h http.Header,
	spanName string,
) (context.Context, oteltrace.Span) {
	return t.Start(propagation.TraceContext{}.Extract(ctx, propagation.HeaderCarrier(h)), spanName)
}

func (t tracer) InjectHTTP(ctx context.Context, h http.Header) {
	propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(h))
}

func (t tracer) Shutdown(ctx context.Context) error {
	_ = t.tp.ForceFlush(ctx)

	return t.tp.Shutdown(ctx)
}

// NewTracer creates a new tracer for serviceName. A nil exporter still
// produces valid, propagated span contexts; they are just not exported.
func NewTracer(serviceName string, exporter trace.SpanExporter) Tracer {
	tp := newTraceProvider(serviceName, exporter)

	return tracer{
		tracer: tp.Tracer(serviceName),
		tp:     tp,
	}
}

// NewExporter builds the exporter selected in cfg. It returns nil for "none".
func NewExporter(ctx context.Context, cfg config.TracingConfig, stdout io.Writer) (trace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", "none":
		return nil, nil
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(stdout))
	case "otlp":
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithReconnectionPeriod(5*time.Second),
			otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
		)
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.Exporter)
	}
}

func newTraceProvider(serviceName string, exporter trace.SpanExporter) *trace.TracerProvider {
	opts := []trace.TracerProviderOption{
		// Record information about this application in a Resource.
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	}
	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}
	tp := trace.NewTracerProvider(opts...)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{}),
	)

	otel.SetTracerProvider(tp)

	return tp
}
