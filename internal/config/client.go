package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultClientConfigFile is read when no --config flag is given. A missing
// default file is not an error.
const DefaultClientConfigFile = "adminctl.yaml"

// ClientConfig configures the adminctl command line client.
type ClientConfig struct {
	Server         string `koanf:"server"`
	Token          string `koanf:"token"`
	Timeout        string `koanf:"timeout"`
	PerPage        int    `koanf:"per_page"`
	SearchDebounce string `koanf:"search_debounce"`
	LogFile        string `koanf:"log_file"`
	LogLevel       string `koanf:"log_level"`

	timeout  time.Duration
	debounce time.Duration
}

// LoadClient merges, from lowest to highest precedence: built-in defaults, the
// YAML file at configPath, ADMINCTL_* environment variables and the flags that
// were explicitly set. Flag names use kebab-case (--per-page -> per_page).
func LoadClient(configPath string, flags *pflag.FlagSet) (*ClientConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"server":          "http://localhost:8080",
		"timeout":         "10s",
		"per_page":        20,
		"search_debounce": "300ms",
		"log_level":       "info",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load client defaults: %w", err)
	}

	if configPath == "" && fileExists(DefaultClientConfigFile) {
		configPath = DefaultClientConfigFile
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// ADMINCTL_PER_PAGE -> per_page
	if err := k.Load(env.Provider("ADMINCTL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ADMINCTL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg ClientConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the client settings and parses its durations.
func (c *ClientConfig) Validate() error {
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server %q: must be an http or https URL", c.Server)
	}

	c.Token = strings.TrimSpace(c.Token)

	c.timeout, err = time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if c.timeout <= 0 {
		return fmt.Errorf("invalid timeout %q: must be greater than 0", c.Timeout)
	}

	if c.PerPage < 1 {
		return fmt.Errorf("invalid per_page %d: must be positive", c.PerPage)
	}

	c.debounce, err = time.ParseDuration(strings.TrimSpace(c.SearchDebounce))
	if err != nil {
		return fmt.Errorf("invalid search_debounce %q: %w", c.SearchDebounce, err)
	}
	if c.debounce < 0 {
		return fmt.Errorf("invalid search_debounce %q: must not be negative", c.SearchDebounce)
	}

	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch level {
	case "debug", "info", "warn", "error":
		c.LogLevel = level
	default:
		return fmt.Errorf("invalid log_level %q: must be one of %q, %q, %q, %q", c.LogLevel, "debug", "info", "warn", "error")
	}

	c.LogFile = strings.TrimSpace(c.LogFile)
	return nil
}

// TimeoutDuration returns the parsed request timeout.
func (c *ClientConfig) TimeoutDuration() time.Duration { return c.timeout }

// DebounceDuration returns the parsed search debounce delay.
func (c *ClientConfig) DebounceDuration() time.Duration { return c.debounce }

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
