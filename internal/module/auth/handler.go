package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/middleware"
	"github.com/simp-lee/backoffice/internal/pkg"
)

// Handler serves /auth.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	session, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, session)
}

// register signs the new admin in right away, so the answer carries a token.
func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	session, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, session)
}

// profile answers for the admin named by the bearer token. Without the auth
// middleware in front there is no admin id and the answer is 401.
func (h *Handler) profile(c *gin.Context) {
	id, ok := middleware.AdminID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	p, err := h.svc.Profile(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}
