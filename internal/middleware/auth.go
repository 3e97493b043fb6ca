package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/backoffice/internal/pkg"
)

const adminIDContextKey = "admin_id"

// TokenVerifier validates bearer tokens. *pkg.TokenService implements it.
type TokenVerifier interface {
	Verify(raw string) (*pkg.TokenClaims, error)
}

// Auth returns a gin middleware that requires a valid "Authorization: Bearer"
// token on every request whose path is not public.
//
// A public path matches exactly, or by prefix when it ends with "/*".
// On success the admin id is stored in the gin.Context (see AdminID) and in the
// Go context via logger.WithContextAttrs.
func Auth(verifier TokenVerifier, publicPaths []string) gin.HandlerFunc {
	exact := make(map[string]struct{}, len(publicPaths))
	var prefixes []string
	for _, p := range publicPaths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			prefixes = append(prefixes, prefix+"/")
			continue
		}
		exact[p] = struct{}{}
	}

	isPublic := func(path string) bool {
		if _, ok := exact[path]; ok {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		if isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := verifier.Verify(raw)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "token rejected", slog.Any("error", err))
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(adminIDContextKey, claims.AdminID)
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.Uint64("admin_id", uint64(claims.AdminID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// AdminID returns the authenticated admin id set by Auth.
func AdminID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(adminIDContextKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="backoffice"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.Response{
		Code:    http.StatusUnauthorized,
		Message: msg,
	})
}
