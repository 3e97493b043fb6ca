package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/module/admin"
	"github.com/simp-lee/backoffice/internal/module/article"
	"github.com/simp-lee/backoffice/internal/module/auth"
	"github.com/simp-lee/backoffice/internal/module/campaign"
	"github.com/simp-lee/backoffice/internal/module/dashboard"
	"github.com/simp-lee/backoffice/internal/module/location"
	"github.com/simp-lee/backoffice/internal/module/report"
	"github.com/simp-lee/backoffice/internal/module/resource"
	"github.com/simp-lee/backoffice/internal/module/review"
	"github.com/simp-lee/backoffice/internal/module/role"
	"github.com/simp-lee/backoffice/internal/module/student"
	"github.com/simp-lee/backoffice/internal/module/user"
	"github.com/simp-lee/backoffice/internal/module/vendors"
	"github.com/simp-lee/backoffice/internal/module/voucher"
)

// Module defines the contract for a self-registering business module.
// Each module registers its own API and page routes.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup)
}

// collectionModule is a resource module that also appears on the dashboard.
type collectionModule interface {
	Module
	Collection() string
	Title() string
	Count(ctx context.Context) (int64, error)
}

// buildModules wires every module: the collections in dashboard order, the
// dashboard itself and, when tokens is non-nil, the auth endpoints.
func buildModules(db *gorm.DB, opts resource.Options, tokens auth.TokenIssuer) []Module {
	states, cities := location.NewModules(db, opts)
	collections := []collectionModule{
		user.NewModule(db, opts),
		admin.NewModule(db, opts),
		role.NewModule(db, opts),
		vendors.NewModule(db, opts),
		article.NewModule(db, opts),
		review.NewModule(db, opts),
		report.NewModule(db, opts),
		states,
		cities,
		campaign.NewModule(db, opts),
		student.NewModule(db, opts),
		voucher.NewModule(db, opts),
	}

	modules := make([]Module, 0, len(collections)+2)
	sources := make([]dashboard.Source, 0, len(collections))
	for _, m := range collections {
		modules = append(modules, m)
		sources = append(sources, dashboard.Source{Collection: m.Collection(), Title: m.Title(), Counter: m})
	}
	modules = append(modules, dashboard.NewModule(dashboard.NewService(sources...)))

	if tokens != nil {
		svc := auth.NewService(tokens, auth.NewAdminStore(db))
		modules = append(modules, auth.NewModule(auth.NewHandler(svc)))
	}
	return modules
}
