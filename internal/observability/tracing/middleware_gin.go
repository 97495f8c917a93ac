package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/freelanceflow/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const httpTracerName = "freelanceflow/http"

// GinMiddleware opens a server span per request. Spans are renamed to the
// matched route once it is known, and carry the :id path parameter so an
// export or a payment can be found by invoice id.
func GinMiddleware(tp trace.TracerProvider) gin.HandlerFunc {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(httpTracerName)
	propagator := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		method := strings.ToUpper(c.Request.Method)
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName(method + " " + route)

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		}
		if requestID := logger.RequestIDFromContext(ctx); requestID != "" {
			attrs = append(attrs, attribute.String("request_id", requestID))
		}
		if id := c.Param("id"); id != "" {
			attrs = append(attrs, attribute.String(resourceAttribute(route), id))
		}
		if disposition := c.Writer.Header().Get("Content-Disposition"); disposition != "" {
			attrs = append(attrs, attribute.String("http.response.attachment", disposition))
		}
		span.SetAttributes(attrs...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				span.RecordError(lastErr.Err)
				span.SetStatus(codes.Error, lastErr.Err.Error())
				return
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func resourceAttribute(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/invoices/"):
		return "freelanceflow.invoice_id"
	case strings.HasPrefix(route, "/api/clients/"):
		return "freelanceflow.client_id"
	case strings.HasPrefix(route, "/api/confirmations/"):
		return "freelanceflow.confirmation_id"
	case strings.HasPrefix(route, "/api/notifications/"):
		return "freelanceflow.notification_id"
	default:
		return "freelanceflow.resource_id"
	}
}
