package article

import (
	"regexp"
	"strings"

	"github.com/simp-lee/backoffice/internal/domain"
)

// ArticleRequest represents the input for creating or updating an article.
type ArticleRequest struct {
	Title    string `json:"title" form:"title" binding:"required,min=3,max=200"`
	Slug     string `json:"slug" form:"slug" binding:"omitempty,max=200"`
	Body     string `json:"body" form:"body"`
	Status   string `json:"status" form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	AuthorID uint   `json:"author_id" form:"author_id" binding:"required,gt=0"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Apply copies the request onto a. An omitted slug is derived from the title.
func (r *ArticleRequest) Apply(a *domain.Article) error {
	slug := Slugify(r.Slug)
	if slug == "" {
		slug = Slugify(r.Title)
	}
	if slug == "" {
		return domain.NewAppError(domain.CodeValidation, "slug must contain letters or digits", nil)
	}
	if r.Status == "PUBLISHED" && strings.TrimSpace(r.Body) == "" {
		return domain.NewAppError(domain.CodeValidation, "a published article needs a body", nil)
	}

	a.Title = strings.TrimSpace(r.Title)
	a.Slug = slug
	a.Body = r.Body
	a.AuthorID = r.AuthorID
	switch {
	case r.Status != "":
		a.Status = r.Status
	case a.Status == "":
		a.Status = "DRAFT"
	}
	return nil
}
