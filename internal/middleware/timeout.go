package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/backoffice/internal/pkg"
)

// Timeout bounds the request context by d. Database calls made with the
// request context fail once the deadline passes; when the handler wrote
// nothing by then, a 408 envelope is sent. A non-positive d disables it.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.AbortWithStatusJSON(http.StatusRequestTimeout, pkg.Response{
				Code:    http.StatusRequestTimeout,
				Message: "request timeout",
			})
		}
	}
}
