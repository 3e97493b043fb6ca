package config

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SetupLogger builds the server logger from cfg and installs it as the slog
// default. The caller owns Close. An unknown level reads as info and an
// unknown format as logger.FormatCustom.
func SetupLogger(cfg *LogConfig) (*logger.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log config is nil")
	}
	return installLogger(BuildLoggerOpts(cfg))
}

// SetupConsoleLogger builds the logger for adminctl. The terminal UI owns
// stdout, so records go to filePath when set and are dropped otherwise.
func SetupConsoleLogger(level, filePath string) (*logger.Logger, error) {
	opts := []logger.Option{
		logger.WithLevel(parseLevel(level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleWriter(io.Discard),
		logger.WithConsoleColor(false),
	}
	if path := strings.TrimSpace(filePath); path != "" {
		opts = append(opts, logger.WithFilePath(path), logger.WithFileFormat(logger.FormatText))
	}
	return installLogger(opts)
}

func installLogger(opts []logger.Option) (*logger.Logger, error) {
	log, err := logger.New(opts...)
	if err != nil {
		return nil, err
	}
	log.SetDefault()
	return log, nil
}

// BuildLoggerOpts translates cfg into logger options. Rotation settings only
// apply when FilePath is set. Returns nil for a nil cfg.
func BuildLoggerOpts(cfg *LogConfig) []logger.Option {
	if cfg == nil {
		return nil
	}
	format := parseFormat(cfg.Format)
	color := cfg.Color == nil || *cfg.Color

	opts := []logger.Option{
		logger.WithLevel(parseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(color),
	}
	if cfg.FilePath == "" {
		return opts
	}
	opts = append(opts, logger.WithFilePath(cfg.FilePath), logger.WithFileFormat(format))
	return append(opts, rotationOpts(cfg)...)
}

func rotationOpts(cfg *LogConfig) []logger.Option {
	var opts []logger.Option
	if cfg.MaxSizeMB > 0 {
		opts = append(opts, logger.WithMaxSizeMB(cfg.MaxSizeMB))
	}
	if cfg.RetentionDays > 0 {
		opts = append(opts, logger.WithRetentionDays(cfg.RetentionDays))
	}
	if cfg.MaxBackups > 0 {
		opts = append(opts, logger.WithMaxBackups(cfg.MaxBackups))
	}
	if cfg.CompressRotated != nil {
		opts = append(opts, logger.WithCompressRotated(*cfg.CompressRotated))
	}
	return opts
}

func parseFormat(s string) logger.OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return logger.FormatText
	case "json":
		return logger.FormatJSON
	}
	return logger.FormatCustom
}

func parseLevel(s string) slog.Level {
	if lvl, ok := logLevels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return slog.LevelInfo
}
