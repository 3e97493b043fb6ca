package auth

import (
	"time"

	"github.com/simp-lee/backoffice/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRequest creates an active admin without a role.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Session is the answer to a login or a registration: a bearer token and
// the admin it was issued to.
type Session struct {
	Token     string  `json:"token"`
	ExpiresAt int64   `json:"expires_at"`
	Admin     Profile `json:"admin"`
}

// Profile is an admin account without its password hash.
type Profile struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleID    *uint     `json:"role_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func profileOf(a *domain.Admin) Profile {
	return Profile{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		RoleID:    a.RoleID,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}
