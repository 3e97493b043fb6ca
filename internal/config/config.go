package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Listing  ListingConfig  `koanf:"listing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Cache     CacheConfig     `koanf:"cache"`
}

// CacheConfig sizes the in-process cache shared by server components. The
// rate limiter keeps its per-client buckets there.
type CacheConfig struct {
	MaxSize         int    `koanf:"max_size"` // entries per shard, 0 means unbounded
	CleanupInterval string `koanf:"cleanup_interval"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
	IdleTTL string  `koanf:"idle_ttl"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Enabled     bool     `koanf:"enabled"`
	JWTSecret   string   `koanf:"jwt_secret"`
	TokenExpiry string   `koanf:"token_expiry"`
	PublicPaths []string `koanf:"public_paths"`
}

// ListingConfig holds the page size defaults shared by every collection list.
// Zero values fall back to 20 and 100.
type ListingConfig struct {
	DefaultPerPage int `koanf:"default_per_page"`
	MaxPerPage     int `koanf:"max_per_page"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__DATABASE__POOL__MAX_IDLE_CONNS=20 overrides database.pool.max_idle_conns.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Load YAML config file.
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Overlay environment variables with prefix APP__.
	// APP__SERVER__PORT -> server.port
	// APP__DATABASE__POOL__MAX_IDLE_CONNS -> database.pool.max_idle_conns
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values. It also
// normalizes the fields it checks: trimmed strings, lowercase levels and the
// listing defaults.
func (c *Config) Validate() error {
	for _, validate := range []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateListing,
		c.validateAuth,
		c.validateLog,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	s := &c.Server

	mode := strings.TrimSpace(s.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		s.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", s.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if err := checkPort("server.port", s.Port); err != nil {
		return err
	}
	if s.Host = strings.TrimSpace(s.Host); s.Host == "" {
		return fmt.Errorf("server.host is required")
	}

	s.Timeout = strings.TrimSpace(s.Timeout)
	if err := checkOptionalDuration("server.timeout", s.Timeout); err != nil {
		return err
	}

	if s.Cache.MaxSize < 0 {
		return fmt.Errorf("invalid server.cache.max_size %d: must not be negative", s.Cache.MaxSize)
	}
	s.Cache.CleanupInterval = strings.TrimSpace(s.Cache.CleanupInterval)
	if err := checkOptionalDuration("server.cache.cleanup_interval", s.Cache.CleanupInterval); err != nil {
		return err
	}

	rl := &s.RateLimit
	rl.IdleTTL = strings.TrimSpace(rl.IdleTTL)
	if !rl.Enabled {
		return nil
	}
	if rl.RPS <= 0 {
		return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", rl.RPS)
	}
	if rl.Burst <= 0 {
		return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", rl.Burst)
	}
	return checkOptionalDuration("server.rate_limit.idle_ttl", rl.IdleTTL)
}

var (
	sslModes       = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	secureSSLModes = []string{"require", "verify-ca", "verify-full"}
)

func (c *Config) validateDatabase() error {
	db := &c.Database

	switch db.Driver {
	case "sqlite":
		if db.SQLite.Path = strings.TrimSpace(db.SQLite.Path); db.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", db.Driver, "sqlite", "postgres")
	}

	db.Pool.ConnMaxLifetime = strings.TrimSpace(db.Pool.ConnMaxLifetime)
	return checkOptionalDuration("database.pool.conn_max_lifetime", db.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres

	if pg.Host = strings.TrimSpace(pg.Host); pg.Host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if err := checkPort("database.postgres.port", pg.Port); err != nil {
		return err
	}
	if pg.User = strings.TrimSpace(pg.User); pg.User == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	if pg.DBName = strings.TrimSpace(pg.DBName); pg.DBName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	mode := strings.TrimSpace(pg.SSLMode)
	if !slices.Contains(sslModes, mode) {
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %s", pg.SSLMode, quoteAll(sslModes))
	}
	if c.Server.Mode == gin.ReleaseMode && !slices.Contains(secureSSLModes, mode) {
		return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %s", pg.SSLMode, gin.ReleaseMode, quoteAll(secureSSLModes))
	}
	pg.SSLMode = mode
	return nil
}

func (c *Config) validateListing() error {
	l := &c.Listing
	if l.DefaultPerPage == 0 {
		l.DefaultPerPage = 20
	}
	if l.MaxPerPage == 0 {
		l.MaxPerPage = 100
	}
	if l.DefaultPerPage < 0 || l.MaxPerPage < 0 {
		return fmt.Errorf("invalid listing page sizes: default_per_page and max_per_page must be positive")
	}
	if l.DefaultPerPage > l.MaxPerPage {
		return fmt.Errorf("invalid listing.default_per_page %d: must not exceed listing.max_per_page %d", l.DefaultPerPage, l.MaxPerPage)
	}
	return nil
}

// requiredPublicPaths must be listed in auth.public_paths whenever auth is on.
var requiredPublicPaths = []string{"/api/v1/auth/login", "/api/v1/auth/register"}

func (c *Config) validateAuth() error {
	a := &c.Auth
	if !a.Enabled {
		return nil
	}

	secret := strings.TrimSpace(a.JWTSecret)
	switch {
	case secret == "":
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	case len(secret) < 32:
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	case c.Server.Mode == gin.ReleaseMode && CountSecretClasses(secret) < 3:
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	a.JWTSecret = secret

	expiry := strings.TrimSpace(a.TokenExpiry)
	if expiry == "" {
		return fmt.Errorf("auth.token_expiry is required when auth is enabled")
	}
	if err := checkOptionalDuration("auth.token_expiry", expiry); err != nil {
		return err
	}
	a.TokenExpiry = expiry

	paths := make([]string, 0, len(a.PublicPaths))
	for idx, p := range a.PublicPaths {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			return fmt.Errorf("auth.public_paths[%d] cannot be empty when auth is enabled", idx)
		}
		if !strings.HasPrefix(trimmed, "/") {
			return fmt.Errorf("invalid auth.public_paths[%d] %q: must start with '/'", idx, p)
		}
		if !slices.Contains(paths, trimmed) {
			paths = append(paths, trimmed)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("auth.public_paths is required when auth is enabled")
	}
	for _, required := range requiredPublicPaths {
		if !slices.Contains(paths, required) {
			return fmt.Errorf("auth.public_paths must include %q when auth is enabled", required)
		}
	}
	a.PublicPaths = paths
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

func checkPort(field string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s %d: must be between 1 and 65535", field, port)
	}
	return nil
}

// checkOptionalDuration accepts an empty value or a positive Go duration.
func checkOptionalDuration(field, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", field, value)
	}
	return nil
}

func quoteAll(vs []string) string {
	quoted := make([]string, len(vs))
	for i, v := range vs {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ", ")
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in secret.
func CountSecretClasses(secret string) int {
	var lower, upper, digit, symbol int
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			lower = 1
		case unicode.IsUpper(r):
			upper = 1
		case unicode.IsDigit(r):
			digit = 1
		default:
			symbol = 1
		}
	}
	return lower + upper + digit + symbol
}
