package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger emits one structured access log line per request, after the handler
// so trace context from otelgin is already on the request context.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case c.Writer.Status() >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case c.Writer.Status() >= 400:
			slog.WarnContext(ctx, "request rejected", attrs...)
		default:
			slog.InfoContext(ctx, "request completed", attrs...)
		}
	}
}
