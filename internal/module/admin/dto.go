package admin

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/backoffice/internal/domain"
)

// CreateAdminRequest represents the input for creating an admin.
type CreateAdminRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
	RoleID   *uint  `json:"role_id" form:"role_id" binding:"omitempty,gt=0"`
	Active   *bool  `json:"active" form:"active"`
}

// Apply copies the request onto a and stores the password hash.
func (r *CreateAdminRequest) Apply(a *domain.Admin) error {
	hash, err := HashPassword(r.Password)
	if err != nil {
		return err
	}
	a.Name = strings.TrimSpace(r.Name)
	a.Email = strings.ToLower(strings.TrimSpace(r.Email))
	a.PasswordHash = hash
	a.RoleID = r.RoleID
	a.Active = r.Active == nil || *r.Active
	return nil
}

// UpdateAdminRequest represents the input for updating an admin.
// An empty password keeps the current one.
type UpdateAdminRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"omitempty,min=8,max=72"`
	RoleID   *uint  `json:"role_id" form:"role_id" binding:"omitempty,gt=0"`
	Active   *bool  `json:"active" form:"active"`
}

// Apply copies the request onto a.
func (r *UpdateAdminRequest) Apply(a *domain.Admin) error {
	if r.Password != "" {
		hash, err := HashPassword(r.Password)
		if err != nil {
			return err
		}
		a.PasswordHash = hash
	}
	a.Name = strings.TrimSpace(r.Name)
	a.Email = strings.ToLower(strings.TrimSpace(r.Email))
	a.RoleID = r.RoleID
	if r.Active != nil {
		a.Active = *r.Active
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}
