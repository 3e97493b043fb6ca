// Package article manages editorial content.
package article

import (
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
)

// Definition describes the articles collection.
func Definition() resource.Definition[domain.Article] {
	return resource.Definition[domain.Article]{
		Collection: "articles",
		Title:      "Articles",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "title", Title: "Title", Sortable: true, Filterable: true},
			{ID: "slug", Title: "Slug", Filterable: true},
			{ID: "status", Title: "Status", Sortable: true, Filterable: true},
			{ID: "author_id", Title: "Author", Filterable: true},
			{ID: "updated_at", Title: "Updated", Sortable: true},
		},
		SearchFields: []string{"title", "slug", "body"},
		DefaultSort:  "updated_at:desc",
		NewPayload:   func() resource.Payload[domain.Article] { return &ArticleRequest{} },
	}
}

// NewModule wires the articles collection.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Article] {
	return resource.New(db, Definition(), opts)
}
