package resource

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/pkg"
)

// Options carries the settings every resource module shares.
type Options struct {
	Limits pkg.PageLimits
}

// Module implements the app.Module interface for one collection.
type Module[T any] struct {
	def         Definition[T]
	svc         Service[T]
	handler     *Handler[T]
	pageHandler *PageHandler[T]
	extra       []func(api, pages *gin.RouterGroup)
}

// New wires repository -> service -> handler for def using the default service.
// It panics on an invalid definition; definitions are static program data.
func New[T any](db *gorm.DB, def Definition[T], opts Options) *Module[T] {
	return NewWithService(def, NewService(NewRepository(db, def)), opts)
}

// NewWithService wires the handlers for def on top of svc.
func NewWithService[T any](def Definition[T], svc Service[T], opts Options) *Module[T] {
	if err := def.Validate(); err != nil {
		panic(err)
	}
	if svc == nil {
		panic("resource.NewWithService: service must not be nil")
	}
	h := NewHandler(def, svc, opts.Limits)
	return &Module[T]{def: def, svc: svc, handler: h, pageHandler: NewPageHandler(h)}
}

// Handler returns the API handler.
func (m *Module[T]) Handler() *Handler[T] { return m.handler }

// Collection returns the collection name.
func (m *Module[T]) Collection() string { return m.def.Collection }

// Title returns the human-readable collection title.
func (m *Module[T]) Title() string { return m.def.Title }

// Count reports the number of records in the collection.
func (m *Module[T]) Count(ctx context.Context) (int64, error) { return m.svc.Count(ctx) }

// Extend registers additional routes alongside the standard ones.
func (m *Module[T]) Extend(fn func(api, pages *gin.RouterGroup)) *Module[T] {
	m.extra = append(m.extra, fn)
	return m
}

// RegisterRoutes registers the collection's API and page routes.
func (m *Module[T]) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	path := "/" + m.def.Collection

	// API routes
	api.POST(path, m.handler.Create)
	api.GET(path+"/:id", m.handler.Get)
	api.GET(path, m.handler.List)
	api.PUT(path+"/:id", m.handler.Update)
	api.DELETE(path+"/:id", m.handler.Delete)

	// Page routes
	pages.GET(path, m.pageHandler.ListPage)

	for _, fn := range m.extra {
		fn(api, pages)
	}
}
