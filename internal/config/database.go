package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultMaxIdleConns    = 10
	defaultMaxOpenConns    = 100
	defaultConnMaxLifetime = time.Hour
	slowQueryThreshold     = 200 * time.Millisecond
)

// SetupDatabase opens the back-office database ("sqlite" or "postgres"),
// routes GORM's SQL log through logger and applies the pool settings.
// SQL statements are logged with their values only at debug level.
func SetupDatabase(cfg *DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	pool, err := resolvePool(cfg.Pool)
	if err != nil {
		return nil, err
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	debug := logger.Enabled(context.Background(), slog.LevelDebug)
	logMode := gormlogger.Warn
	if debug {
		logMode = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.NewSlogLogger(logger, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logMode,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      !debug,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetConnMaxLifetime(pool.lifetime)

	logger.Info("database connected",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", pool.maxIdle),
		slog.Int("max_open_conns", pool.maxOpen),
		slog.Duration("conn_max_lifetime", pool.lifetime),
	)
	return db, nil
}

// Migrate creates or updates the tables of the given models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

type poolSettings struct {
	maxIdle  int
	maxOpen  int
	lifetime time.Duration
}

// resolvePool replaces zero values with defaults.
func resolvePool(p PoolConfig) (poolSettings, error) {
	s := poolSettings{
		maxIdle:  p.MaxIdleConns,
		maxOpen:  p.MaxOpenConns,
		lifetime: defaultConnMaxLifetime,
	}
	if s.maxIdle <= 0 {
		s.maxIdle = defaultMaxIdleConns
	}
	if s.maxOpen <= 0 {
		s.maxOpen = defaultMaxOpenConns
	}
	if raw := strings.TrimSpace(p.ConnMaxLifetime); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return s, fmt.Errorf("invalid pool.conn_max_lifetime %q: %w", p.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return s, fmt.Errorf("invalid pool.conn_max_lifetime %q: must be positive", p.ConnMaxLifetime)
		}
		s.lifetime = d
	}
	return s, nil
}

func openDialector(cfg *DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(sqliteDSN(cfg.SQLite.Path)), nil
	case "postgres":
		return postgres.Open(buildPostgresDSN(&cfg.Postgres)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// sqliteDSN enables foreign keys and a busy timeout so concurrent list and
// count queries wait for the writer instead of failing with SQLITE_BUSY.
func sqliteDSN(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func buildPostgresDSN(cfg *PostgresConfig) string {
	if cfg == nil {
		return ""
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}
