// Package dashboard serves collection totals for the back-office landing page.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/backoffice/internal/pkg"
)

// Counter reports the size of one collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Source is a named collection counted on the dashboard.
type Source struct {
	Collection string
	Title      string
	Counter    Counter
}

// Tile is one collection total.
type Tile struct {
	Collection string `json:"collection"`
	Title      string `json:"title"`
	Count      int64  `json:"count"`
}

// Service computes dashboard tiles.
type Service struct {
	sources []Source
}

// NewService creates a Service over sources. Tiles keep the order of sources.
func NewService(sources ...Source) *Service {
	return &Service{sources: sources}
}

// Tiles counts every source concurrently. The first failure cancels the rest.
func (s *Service) Tiles(ctx context.Context) ([]Tile, error) {
	tiles := make([]Tile, len(s.sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		tiles[i] = Tile{Collection: src.Collection, Title: src.Title}
		g.Go(func() error {
			n, err := src.Counter.Count(ctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", src.Collection, err)
			}
			tiles[i].Count = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

// Module implements the app.Module interface for the dashboard.
type Module struct {
	svc *Service
}

// NewModule creates a dashboard Module.
func NewModule(svc *Service) *Module {
	if svc == nil {
		panic("dashboard.NewModule: service must not be nil")
	}
	return &Module{svc: svc}
}

// RegisterRoutes registers GET /api/v1/dashboard and the home page.
func (m *Module) RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup) {
	api.GET("/dashboard", m.summary)
	pages.GET("/", m.home)
}

func (m *Module) summary(c *gin.Context) {
	tiles, err := m.svc.Tiles(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, gin.H{"tiles": tiles})
}

func (m *Module) home(c *gin.Context) {
	tiles, err := m.svc.Tiles(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "dashboard failed", slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}
	c.HTML(http.StatusOK, "home.html", gin.H{"Tiles": tiles})
}
