package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	healthPingTimeout  = time.Second
	staticCacheControl = "public, max-age=86400"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	Mode    string // gin mode; debug serves assets from disk
	// APIMiddleware runs on /api/v1 only, after the engine-wide chain.
	APIMiddleware []gin.HandlerFunc
}

// RegisterRoutes mounts /static, /health, every module's API routes under
// /api/v1 and its pages under /, plus the 404 fallback.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	switch {
	case r == nil:
		return errors.New("router is nil")
	case deps == nil:
		return errors.New("route dependencies are nil")
	case len(deps.Modules) == 0:
		return errors.New("at least one module is required")
	}
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
	}
	for i, mw := range deps.APIMiddleware {
		if mw == nil {
			return fmt.Errorf("api middleware at index %d is nil", i)
		}
	}

	if err := registerStatic(r, deps.Mode); err != nil {
		return fmt.Errorf("register static routes: %w", err)
	}
	r.GET("/health", healthHandler(deps.DB))

	api := r.Group("/api/v1", deps.APIMiddleware...)
	pages := r.Group("/")
	for _, m := range deps.Modules {
		m.RegisterRoutes(api, pages)
	}

	r.NoRoute(noRouteHandler())
	return nil
}

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "not found")
	}
}

// healthHandler reports 200 while the database answers a ping and 503
// otherwise.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		code, status, dbStatus := http.StatusOK, "ok", "ok"
		if err := pingDB(c.Request.Context(), db); err != nil {
			slog.WarnContext(c.Request.Context(), "health check failed", slog.Any("error", err))
			code, status, dbStatus = http.StatusServiceUnavailable, "degraded", "error"
		}
		c.JSON(code, gin.H{
			"status":     status,
			"components": gin.H{"database": dbStatus},
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// registerStatic serves web/static under /static. Release builds read the
// embedded copy and let clients cache it for a day.
func registerStatic(r *gin.Engine, mode string) error {
	debug := mode == gin.DebugMode
	root, err := webFS(debug)
	if err != nil {
		return err
	}
	static, err := fs.Sub(root, "static")
	if err != nil {
		return fmt.Errorf("static sub filesystem: %w", err)
	}

	files := http.StripPrefix("/static", http.FileServer(http.FS(static)))
	r.GET("/static/*filepath", func(c *gin.Context) {
		if !debug {
			c.Header("Cache-Control", staticCacheControl)
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
	return nil
}
