package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appctx "salesledger/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	keyRequestID = "request_id"
	keyTraceID   = "trace_id"
)

var tracer = otel.Tracer("salesledger/http")

// Trace middleware adds request tracing context and opens a server span.
// Incoming correlation headers are reused, missing ones are generated.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := appctx.NewTraceContext(c.GetHeader(HeaderTraceID), c.GetHeader(HeaderRequestID))

		ctx, span := tracer.Start(
			appctx.WithTrace(c.Request.Context(), tc),
			c.Request.Method+" "+c.Request.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("request.id", tc.RequestID)),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Set(keyTraceID, tc.TraceID)
		c.Set(keyRequestID, tc.RequestID)
		c.Header(HeaderRequestID, tc.RequestID)
		c.Header(HeaderTraceID, tc.TraceID)

		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}
