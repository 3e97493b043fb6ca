package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cache "github.com/simp-lee/cache"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/config"
	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/middleware"
	"github.com/simp-lee/backoffice/internal/module/auth"
	"github.com/simp-lee/backoffice/internal/module/resource"
	"github.com/simp-lee/backoffice/internal/pkg"
	"github.com/simp-lee/backoffice/web"
)

const (
	shutdownGrace       = 5 * time.Second
	defaultCacheCleanup = 11 * time.Minute
)

// App is the wired back office: engine, database handle and logger.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cache  cache.CacheInterface
	cfg    *config.Config
	tokens *pkg.TokenService
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New builds the App from cfg. On error every resource opened so far is
// released again.
func New(cfg *config.Config) (_ *App, err error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a := &App{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			a.release(slog.Default())
		}
	}()
	warnInsecure(cfg, log.Logger)

	if a.db, err = config.SetupDatabase(&cfg.Database, log.Logger); err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode {
		models := domain.Models()
		if err := config.Migrate(a.db, models...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed", slog.Int("models", len(models)))
	}

	apiMW, err := a.setupAuth()
	if err != nil {
		return nil, err
	}
	var issuer auth.TokenIssuer
	if a.tokens != nil {
		issuer = a.tokens
	}
	modules := buildModules(a.db, resource.Options{
		Limits: pkg.PageLimits{
			DefaultPerPage: cfg.Listing.DefaultPerPage,
			MaxPerPage:     cfg.Listing.MaxPerPage,
		},
	}, issuer)

	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	a.engine = gin.New()

	chain, err := a.middlewareChain(&cfg.Server, log.Logger)
	if err != nil {
		return nil, err
	}
	a.engine.Use(chain...)

	debug := cfg.Server.Mode == gin.DebugMode
	fsys, err := webFS(debug)
	if err != nil {
		return nil, fmt.Errorf("resolve web fs: %w", err)
	}
	if a.engine.HTMLRender, err = NewTemplateRenderer(fsys, debug); err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}

	if err := RegisterRoutes(a.engine, &RouteDeps{
		Modules:       modules,
		DB:            a.db,
		Mode:          cfg.Server.Mode,
		APIMiddleware: apiMW,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}
	return a, nil
}

func warnInsecure(cfg *config.Config, log *slog.Logger) {
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes the back office on every interface")
	}
	if !cfg.Auth.Enabled {
		log.Warn("auth is disabled: the admin API is open to anyone who can reach it")
	}
}

// setupAuth creates the token service and returns the /api/v1 guard. Both
// stay nil with auth disabled.
func (a *App) setupAuth() ([]gin.HandlerFunc, error) {
	ac := a.cfg.Auth
	if !ac.Enabled {
		return nil, nil
	}
	ttl, err := time.ParseDuration(ac.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("parse auth.token_expiry: %w", err)
	}
	a.tokens = pkg.NewTokenService(ac.JWTSecret, ttl)
	return []gin.HandlerFunc{middleware.Auth(a.tokens, ac.PublicPaths)}, nil
}

// middlewareChain is the engine-wide chain. Recovery goes first so it also
// covers panics in the request logger.
func (a *App) middlewareChain(sc *config.ServerConfig, log *slog.Logger) ([]gin.HandlerFunc, error) {
	chain := []gin.HandlerFunc{
		middleware.Recovery(log),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(log),
	}
	if rl := sc.RateLimit; rl.Enabled {
		idle, _ := time.ParseDuration(rl.IdleTTL)
		chain = append(chain, middleware.RateLimit(middleware.RateLimitConfig{
			RPS:     rl.RPS,
			Burst:   rl.Burst,
			IdleTTL: idle,
			Store:   a.sharedCache(sc.Cache).Group("ratelimit"),
		}))
	}
	if raw := strings.TrimSpace(sc.Timeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse server.timeout: %w", err)
		}
		chain = append(chain, middleware.Timeout(d))
	}
	return chain, nil
}

// sharedCache lazily opens the process cache. Durations were validated on load.
func (a *App) sharedCache(cc config.CacheConfig) cache.CacheInterface {
	if a.cache == nil {
		opts := cache.Options{MaxSize: cc.MaxSize, CleanupInterval: defaultCacheCleanup}
		if d, err := time.ParseDuration(cc.CleanupInterval); err == nil {
			opts.CleanupInterval = d
		}
		a.cache = cache.NewCache(opts)
	}
	return a.cache
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	}
	return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
}

// webFS serves templates and assets from the embedded copy, or from disk in
// debug mode so edits show up without a rebuild.
func webFS(debug bool) (fs.FS, error) {
	if !debug {
		return web.EmbeddedFS, nil
	}
	var candidates []string
	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "..", "..", "web"))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "web"))
	}
	for _, dir := range candidates {
		dir = filepath.Clean(dir)
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return os.DirFS(dir), nil
		}
	}
	return nil, errors.New("debug web directory not found")
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to five seconds and releases the database and logger.
func (a *App) Run() error {
	switch {
	case a == nil:
		return errors.New("app is nil")
	case a.cfg == nil:
		return errors.New("app config is nil")
	case a.engine == nil:
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr), slog.Bool("auth", a.tokens != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
		cancel()
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped")
	a.release(log)
	return runErr
}

// release closes the database and then the logger. Errors are only logged.
func (a *App) release(log *slog.Logger) {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", slog.Any("error", err))
			} else {
				log.Info("database connection closed")
			}
		}
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
}
