package location

import (
	"strings"

	"github.com/simp-lee/backoffice/internal/domain"
)

// StateRequest represents the input for creating or updating a state.
type StateRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Code string `json:"code" form:"code" binding:"required,alpha,min=2,max=8"`
}

// Apply copies the request onto s. Codes are stored upper-case.
func (r *StateRequest) Apply(s *domain.State) error {
	s.Name = strings.TrimSpace(r.Name)
	s.Code = strings.ToUpper(r.Code)
	return nil
}

// CityRequest represents the input for creating or updating a city.
type CityRequest struct {
	Name    string `json:"name" form:"name" binding:"required,min=2,max=100"`
	StateID uint   `json:"state_id" form:"state_id" binding:"required,gt=0"`
}

// Apply copies the request onto c.
func (r *CityRequest) Apply(c *domain.City) error {
	c.Name = strings.TrimSpace(r.Name)
	c.StateID = r.StateID
	return nil
}
