package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

var upstreamRequestID = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls whether an incoming X-Request-ID is reused.
type RequestIDConfig struct {
	// TrustUpstream keeps a well-formed X-Request-ID set by a proxy in front
	// of the server.
	TrustUpstream bool
}

// RequestID tags every request with a fresh UUID and ignores upstream ids.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig stores the id on the gin context, echoes it in the
// X-Request-ID response header and adds it to the request context's log
// attributes. adminctl prints it when a call fails.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		if upstream := c.GetHeader(requestIDHeader); cfg.TrustUpstream && upstreamRequestID.MatchString(upstream) {
			id = upstream
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(
			logger.WithContextAttrs(c.Request.Context(), slog.String(requestIDKey, id)),
		)
		c.Next()
	}
}

// GetRequestID returns the id RequestID assigned, or "" outside it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
