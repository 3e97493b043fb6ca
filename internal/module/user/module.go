// Package user manages platform end users.
package user

import (
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// Definition describes the users collection.
func Definition() resource.Definition[domain.User] {
	return resource.Definition[domain.User]{
		Collection: "users",
		Title:      "Users",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "email", Title: "Email", Sortable: true, Filterable: true},
			{ID: "phone", Title: "Phone"},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
			{ID: "created_at", Title: "Created", Sortable: true},
		},
		SearchFields: []string{"name", "email", "phone"},
		DefaultSort:  "id:desc",
		NewPayload:   func() resource.Payload[domain.User] { return &UserRequest{} },
	}
}

// NewModule wires the users collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.User] {
	return resource.New(db, Definition(), opts)
}
