package tracing

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Middleware starts a span per request, continuing any trace in the
// incoming headers, and echoes the trace context on the response.
func Middleware(t Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "fallback"
		}

		ctx, span := t.StartSpanFromHeader(c.Request.Context(), c.Request.Header, c.Request.Method+" "+route)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		// Headers must be set before the handler writes the body.
		t.InjectHTTP(ctx, c.Writer.Header())

		c.Next()

		span.SetAttributes(
			attribute.String("http.method", strings.ToUpper(c.Request.Method)),
			attribute.String("http.route", route),
			attribute.String("http.url", c.Request.URL.String()),
			attribute.Int("http.status_code", c.Writer.Status()),
		)
		if c.Writer.Status() >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
		}
	}
}
