package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/backoffice/internal/pkg"
)

var errorTemplates = map[int]string{
	http.StatusBadRequest:          "errors/400.html",
	http.StatusNotFound:            "errors/404.html",
	http.StatusInternalServerError: "errors/500.html",
}

// renderError answers with the JSON envelope or an error page, depending on
// prefersJSON. Codes without a template use errors/500.html; a failing
// renderer degrades to plain text.
func renderError(c *gin.Context, code int, message string) {
	if prefersJSON(c) {
		c.JSON(code, pkg.Response{Code: code, Message: message})
		return
	}

	defer func() {
		if recover() != nil {
			c.Data(code, "text/plain; charset=utf-8", []byte(fmt.Sprintf("%d %s", code, statusLabel(code))))
		}
	}()
	tmpl, ok := errorTemplates[code]
	if !ok {
		tmpl = errorTemplates[http.StatusInternalServerError]
	}
	c.HTML(code, tmpl, gin.H{
		"Title":   statusLabel(code),
		"Status":  code,
		"Message": message,
	})
}

// prefersJSON is true for every /api/ route and for clients that ask for
// JSON without HTML. Browsers send text/html or */*; an empty Accept header
// is treated like a browser.
func prefersJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := strings.ToLower(c.GetHeader("Accept"))
	switch {
	case strings.Contains(accept, "text/html"):
		return false
	case strings.Contains(accept, "application/json"):
		return true
	default:
		return !strings.Contains(accept, "*/*") && strings.TrimSpace(accept) != ""
	}
}

func statusLabel(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return "Error"
}
