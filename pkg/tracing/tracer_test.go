package tracing

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shop-demo/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// newSyncTracer exports spans synchronously so tests can read them right away.
func newSyncTracer(exporter trace.SpanExporter) Tracer {
	tp := trace.NewTracerProvider(trace.WithSyncer(exporter))
	return tracer{tracer: tp.Tracer("test"), tp: tp}
}

func TestTracer_BasicFlow(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	testTracer := newSyncTracer(exporter)

	_, s := testTracer.Start(context.Background(), "test")
	s.SetAttributes(attribute.String("test", "test"))
	s.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "test", spans[0].Name)
}

func TestTracer_TraceThroughHeader(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	testTracer := newSyncTracer(exporter)

	ctx, parent := testTracer.Start(context.Background(), "parent")
	h := http.Header{}
	testTracer.InjectHTTP(ctx, h)
	require.NotEmpty(t, h.Get("traceparent"))

	_, child := testTracer.StartSpanFromHeader(context.Background(), h, "child")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, parent.SpanContext().TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, parent.SpanContext().SpanID(), spans[0].Parent.SpanID())
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exporter := tracetest.NewInMemoryExporter()
	testTracer := newSyncTracer(exporter)

	r := gin.New()
	r.Use(Middleware(testTracer))
	r.GET("/api/products", func(c *gin.Context) {
		assert.True(t, oteltrace.SpanContextFromContext(c.Request.Context()).IsValid())
		c.JSON(http.StatusOK, []string{})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.NotEmpty(t, rec.Header().Get("traceparent"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/products", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.Int("http.status_code", http.StatusOK))
}

func TestNewExporter(t *testing.T) {
	var buf bytes.Buffer

	exp, err := NewExporter(context.Background(), config.TracingConfig{Exporter: "none"}, &buf)
	require.NoError(t, err)
	assert.Nil(t, exp)

	exp, err = NewExporter(context.Background(), config.TracingConfig{Exporter: "stdout"}, &buf)
	require.NoError(t, err)
	require.NotNil(t, exp)

	tr := NewTracer("shop-demo-test", exp)
	_, s := tr.Start(context.Background(), "exported")
	s.End()
	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "exported")

	_, err = NewExporter(context.Background(), config.TracingConfig{Exporter: "zipkin"}, &buf)
	assert.Error(t, err)
}
