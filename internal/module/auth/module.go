package auth

import "github.com/gin-gonic/gin"

// Module mounts the sign-in endpoints under the API group. Login and
// register must be listed in auth.public_paths; /auth/me needs a token.
type Module struct {
	h *Handler
}

// NewModule panics on a nil handler.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("auth: nil handler")
	}
	return &Module{h: h}
}

func (m *Module) RegisterRoutes(api *gin.RouterGroup, _ *gin.RouterGroup) {
	g := api.Group("/auth")
	g.POST("/login", m.h.login)
	g.POST("/register", m.h.register)
	g.GET("/me", m.h.profile)
}
