package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attributes added to server spans
const (
	AttrRequestID     = "request_id"
	AttrCorrelationID = "correlation_id"
	AttrInvoiceID     = "invoice_id"
)

// Tracing returns otelgin middleware for serviceName. Inbound W3C trace
// context is extracted so sales and billing spans share one trace.
func Tracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TracingAttributeInjector enriches the current server span.
// Place it after Tracing and RequestID.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String(AttrRequestID, id))
			}
			if corr := c.GetHeader("X-Correlation-Id"); corr != "" && len(corr) <= MaxRequestIDLength {
				span.SetAttributes(attribute.String(AttrCorrelationID, corr))
			}
			if id := c.Param("invoiceId"); id != "" {
				span.SetAttributes(attribute.String(AttrInvoiceID, id))
			}
		}
		c.Next()
	}
}

// SpanErrorMarker marks spans of 5xx responses as errors. Client errors are
// recorded as an attribute only.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
