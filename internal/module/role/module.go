// Package role manages named permission sets assigned to admins.
// Permissions are static data; nothing in the API enforces them.
package role

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
	"github.com/simp-lee/backoffice/internal/module/resource"
	"github.com/simp-lee/backoffice/internal/pkg"
)

// RoleRequest represents the input for creating or updating a role.
type RoleRequest struct {
	Name        string   `json:"name" form:"name" binding:"required,min=2,max=64"`
	Description string   `json:"description" form:"description" binding:"max=255"`
	Permissions []string `json:"permissions" form:"permissions" binding:"dive,required"`
}

// Apply copies the request onto r. Permissions are de-duplicated and sorted.
func (req *RoleRequest) Apply(r *domain.Role) error {
	perms := make([]string, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		p = strings.TrimSpace(p)
		if !slices.Contains(domain.Permissions, p) {
			return domain.NewAppError(domain.CodeValidation, "unknown permission: "+p, nil)
		}
		perms = append(perms, p)
	}
	slices.Sort(perms)

	r.Name = strings.TrimSpace(req.Name)
	r.Description = strings.TrimSpace(req.Description)
	r.Permissions = slices.Compact(perms)
	return nil
}

// roleService detaches admins from a role before deleting it.
type roleService struct {
	resource.Service[domain.Role]
	db *gorm.DB
}

func (s *roleService) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Admin{}).Where("role_id = ?", id).Update("role_id", nil).Error; err != nil {
			return resource.MapError(err)
		}
		result := tx.Delete(&domain.Role{}, id)
		if result.Error != nil {
			return resource.MapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// Definition describes the roles collection.
func Definition() resource.Definition[domain.Role] {
	return resource.Definition[domain.Role]{
		Collection: "roles",
		Title:      "Roles",
		Columns: []listquery.Column{
			{ID: "id", Title: "ID", Sortable: true},
			{ID: "name", Title: "Name", Sortable: true, Filterable: true},
			{ID: "description", Title: "Description"},
			{ID: "permissions", Title: "Permissions"},
		},
		SearchFields: []string{"name", "description"},
		DefaultSort:  "name:asc",
		NewPayload:   func() resource.Payload[domain.Role] { return &RoleRequest{} },
	}
}

// NewModule wires the roles collection and GET /roles/permissions.
func NewModule(db *gorm.DB, opts resource.Options) *resource.Module[domain.Role] {
	def := Definition()
	svc := &roleService{Service: resource.NewService(resource.NewRepository(db, def)), db: db}
	return resource.NewWithService(def, svc, opts).
		Extend(func(api, _ *gin.RouterGroup) {
			api.GET("/roles/permissions", func(c *gin.Context) {
				pkg.Success(c, domain.Permissions)
			})
		})
}
