package user

import (
	"strings"

	"github.com/simp-lee/backoffice/internal/domain"
)

// UserRequest represents the input for creating or updating a user.
type UserRequest struct {
	Name   string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email  string `json:"email" form:"email" binding:"required,email"`
	Phone  string `json:"phone" form:"phone" binding:"omitempty,max=32"`
	Status string `json:"status" form:"status" binding:"omitempty,oneof=ACTIVE PENDING SUSPENDED"`
}

// Apply copies the request onto u. An omitted status keeps the current one,
// or ACTIVE for a new user.
func (r *UserRequest) Apply(u *domain.User) error {
	u.Name = strings.TrimSpace(r.Name)
	u.Email = strings.ToLower(strings.TrimSpace(r.Email))
	u.Phone = strings.TrimSpace(r.Phone)
	switch {
	case r.Status != "":
		u.Status = r.Status
	case u.Status == "":
		u.Status = domain.UserStatusActive
	}
	return nil
}
