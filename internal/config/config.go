package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Transports accepted by the serve command.
const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// ScreenshotConfig sets capture defaults.
type ScreenshotConfig struct {
	DefaultFormat string `yaml:"default_format"`
	JPEGQuality   int    `yaml:"jpeg_quality"`
}

// MetricsConfig controls the prometheus endpoint on HTTP transports.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures the tool-call audit log.
type LoggingConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Level          string `yaml:"level,omitempty"`
	File           string `yaml:"file,omitempty"`
	MaxSizeMB      int    `yaml:"max_size_mb,omitempty"`
	MaxFiles       int    `yaml:"max_files,omitempty"`
	IncludeContent bool   `yaml:"include_content"`
	PreviewLength  int    `yaml:"preview_length,omitempty"`
}

// Config is the effective server configuration.
type Config struct {
	Transport string `yaml:"transport"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	// Stateless only affects the streamable-http transport.
	Stateless bool `yaml:"stateless"`

	// Display and XAuthority pin the X11 session; empty means autodetect.
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`

	LogLevel   string           `yaml:"log_level"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportStdio,
		Host:      "127.0.0.1",
		Port:      3000,
		LogLevel:  "info",
		Screenshot: ScreenshotConfig{
			DefaultFormat: "png",
			JPEGQuality:   90,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Addr returns the host:port the HTTP transports listen on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/system-mcp/actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 50
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportSSE, TransportStreamableHTTP:
	default:
		return &ValidationError{Path: "transport", Err: fmt.Errorf("transport must be one of: stdio, sse, streamable-http")}
	}
	if c.Transport != TransportStdio && strings.TrimSpace(c.Host) == "" {
		return &ValidationError{Path: "host", Err: fmt.Errorf("host is required for %s", c.Transport)}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ValidationError{Path: "port", Err: fmt.Errorf("port must be between 1 and 65535")}
	}
	if !validLogLevel(c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch c.Screenshot.DefaultFormat {
	case "png", "jpeg":
	default:
		return &ValidationError{Path: "screenshot.default_format", Err: fmt.Errorf("default_format must be one of: png, jpeg")}
	}
	if c.Screenshot.JPEGQuality < 1 || c.Screenshot.JPEGQuality > 100 {
		return &ValidationError{Path: "screenshot.jpeg_quality", Err: fmt.Errorf("jpeg_quality must be between 1 and 100")}
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return &ValidationError{Path: "metrics.path", Err: fmt.Errorf("metrics.path must start with /")}
	}
	if c.Metrics.Path == "/" || c.Metrics.Path == "/mcp" {
		return &ValidationError{Path: "metrics.path", Err: fmt.Errorf("metrics.path %q collides with the MCP endpoint", c.Metrics.Path)}
	}
	if c.Logging.Level != "" && !validLogLevel(c.Logging.Level) {
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warning, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	if c.Logging.PreviewLength < 0 {
		return &ValidationError{Path: "logging.preview_length", Err: fmt.Errorf("preview_length must be >= 0")}
	}
	return nil
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []string {
	var out []string
	if c.Stateless && c.Transport != TransportStreamableHTTP {
		out = append(out, fmt.Sprintf("stateless has no effect with transport %q", c.Transport))
	}
	if c.Metrics.Enabled && c.Transport == TransportStdio {
		out = append(out, "metrics are only served by the HTTP transports")
	}
	return out
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	}
	return false
}
