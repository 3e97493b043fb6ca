// Package student manages learners enrolled through partner programs.
package student

import (
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// StudentRequest represents the input for creating or updating a student.
type StudentRequest struct {
	FirstName string `json:"first_name" form:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" form:"last_name" binding:"required,max=100"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Grade     string `json:"grade" form:"grade" binding:"omitempty,max=16"`
	Status    string `json:"status" form:"status" binding:"omitempty,oneof=ACTIVE GRADUATED WITHDRAWN"`
}

// Apply copies the request onto s.
func (r *StudentRequest) Apply(s *domain.Student) error {
	s.FirstName = strings.TrimSpace(r.FirstName)
	s.LastName = strings.TrimSpace(r.LastName)
	s.Email = strings.ToLower(strings.TrimSpace(r.Email))
	s.Grade = strings.TrimSpace(r.Grade)
	switch {
	case r.Status != "":
		s.Status = r.Status
	case s.Status == "":
		s.Status = "ACTIVE"
	}
	return nil
}

// Definition describes the students collection.
func Definition() resource.Definition[domain.Student] {
	return resource.Definition[domain.Student]{
		Collection: "students",
		Title:      "Students",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "first_name", Title: "First name", Sortable: true, Filterable: true},
			{ID: "last_name", Title: "Last name", Sortable: true, Filterable: true},
			{ID: "email", Title: "Email", Filterable: true},
			{ID: "grade", Title: "Grade", Sortable: true, Filterable: true},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
		},
		SearchFields: []string{"first_name", "last_name", "email"},
		DefaultSort:  "last_name:asc",
		NewPayload:   func() resource.Payload[domain.Student] { return &StudentRequest{} },
	}
}

// NewModule wires the students collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Student] {
	return resource.New(db, Definition(), opts)
}
