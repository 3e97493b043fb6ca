package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

// Logger returns a gin middleware that logs each HTTP request using the provided
// slog.Logger. It records the method, path, matched route, status code, latency,
// response size and client IP, plus the raw query of list requests and the
// authenticated admin when there is one.
//
// The log level is chosen based on the response status code:
//   - 2xx/3xx: Info
//   - 4xx: Warn
//   - 5xx: Error
//
// It uses slog's Context-aware methods (InfoContext, WarnContext, ErrorContext)
// so that the ContextHandler automatically attaches the request_id from context.
func Logger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes", max(c.Writer.Size(), 0)),
			slog.String("client_ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}
		ctx := c.Request.Context()
		if id, ok := AdminID(c); ok && !hasContextAttr(ctx, "admin_id") {
			attrs = append(attrs, slog.Uint64("admin_id", uint64(id)))
		}

		msg := "request"

		switch {
		case status >= 500:
			log.LogAttrs(ctx, slog.LevelError, msg, attrs...)
		case status >= 400:
			log.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
		default:
			log.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
		}
	}
}

// hasContextAttr reports whether key already travels in the context attrs,
// in which case the ContextHandler adds it to the record.
func hasContextAttr(ctx context.Context, key string) bool {
	for _, a := range logger.FromContext(ctx) {
		if a.Key == key {
			return true
		}
	}
	return false
}
