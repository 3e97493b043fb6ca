package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/backoffice/internal/pkg"
)

// Recovery turns a handler panic into a 500 response and an error log entry
// carrying the stack.
//
// API routes (/api/...) and clients that do not ask for HTML get the JSON
// envelope. The message carries the request id, when RequestID ran first, so
// adminctl users can quote it. Browsers get errors/500.html, or plain text
// when no renderer is configured.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("route", c.FullPath()),
				slog.String("stack", string(debug.Stack())),
			)
			c.Abort()

			if wantsHTML(c) {
				renderPanicPage(c)
				return
			}
			msg := "internal server error"
			if id := GetRequestID(c); id != "" {
				msg = fmt.Sprintf("%s (request %s)", msg, id)
			}
			c.JSON(http.StatusInternalServerError, pkg.Response{
				Code:    http.StatusInternalServerError,
				Message: msg,
			})
		}()
		c.Next()
	}
}

func wantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}

func renderPanicPage(c *gin.Context) {
	defer func() {
		if recover() != nil {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("500 Internal Server Error"))
		}
	}()
	c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
}
