// Package admin manages back-office operator accounts.
package admin

import (
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// Definition describes the admins collection.
func Definition() resource.Definition[domain.Admin] {
	return resource.Definition[domain.Admin]{
		Collection: "admins",
		Title:      "Admins",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "email", Title: "Email", Sortable: true, Filterable: true},
			{ID: "role_id", Title: "Role", Filterable: true},
			{ID: "active", Title: "Active"},
		},
		SearchFields:     []string{"name", "email"},
		DefaultSort:      "id:desc",
		NewPayload:       func() resource.Payload[domain.Admin] { return &CreateAdminRequest{} },
		NewUpdatePayload: func() resource.Payload[domain.Admin] { return &UpdateAdminRequest{} },
	}
}

// NewModule wires the admins collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Admin] {
	return resource.New(db, Definition(), opts)
}
