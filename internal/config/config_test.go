package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Transport != TransportStdio {
		t.Fatalf("expected stdio transport, got %q", cfg.Transport)
	}
	if cfg.Addr() != "127.0.0.1:3000" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
	if cfg.Screenshot.DefaultFormat != "png" || cfg.Screenshot.JPEGQuality != 90 {
		t.Fatalf("unexpected screenshot defaults %+v", cfg.Screenshot)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
	if res.Config.Port != 3000 {
		t.Fatalf("expected default port, got %d", res.Config.Port)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("expected log_level info, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected one loaded file, got %v", res.Files)
	}
}

func TestLoadFromPath_OverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"transport: Streamable-HTTP",
		"host: 0.0.0.0",
		"port: 8811",
		"stateless: true",
		"display: \":1\"",
		"xauthority: \"/tmp/test-xauth\"",
		"log_level: DEBUG",
		"screenshot:",
		"  default_format: jpg",
		"  jpeg_quality: 75",
		"metrics:",
		"  path: /prom",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Transport != TransportStreamableHTTP {
		t.Errorf("transport = %q", cfg.Transport)
	}
	if cfg.Addr() != "0.0.0.0:8811" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if !cfg.Stateless {
		t.Errorf("expected stateless")
	}
	if cfg.Display != ":1" || cfg.XAuthority != "/tmp/test-xauth" {
		t.Errorf("display/xauthority = %q/%q", cfg.Display, cfg.XAuthority)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("slog level = %v", cfg.SlogLevel())
	}
	if cfg.Screenshot.DefaultFormat != "jpeg" || cfg.Screenshot.JPEGQuality != 75 {
		t.Errorf("screenshot = %+v", cfg.Screenshot)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/prom" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadFromPath_XAuthorityExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "xauthority: ~/.Xauthority\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(home, ".Xauthority"); res.Config.XAuthority != want {
		t.Fatalf("xauthority = %q, want %q", res.Config.XAuthority, want)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "transport: stdio\nhotkey: Mod4-Mod1-t\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "hotkey") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "screenshot:\n  jpeg_quality: 150\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if verr.Path != "screenshot.jpeg_quality" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.Kind != SourceFile || verr.Source.Line != 2 {
		t.Fatalf("unexpected source %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected line number in %q", err.Error())
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, filepath.Join(dir, "conf.d", "10-base.yaml"), "port: 4000\nhost: 10.0.0.1\n")
	writeFile(t, filepath.Join(dir, "conf.d", "20-port.yaml"), "port: 5000\n")
	writeFile(t, filepath.Join(dir, "conf.d", "notes.txt"), "port: 1\n")
	writeFile(t, path, "include: conf.d\nhost: 10.0.0.2\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Port != 5000 {
		t.Fatalf("expected later include to win, got port %d", res.Config.Port)
	}
	if res.Config.Host != "10.0.0.2" {
		t.Fatalf("expected main file to win, got host %q", res.Config.Host)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
	if !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("expected main file last, got %v", res.Files)
	}

	_, src, err := Explain(res, "port")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.HasSuffix(src.File, "20-port.yaml") {
		t.Fatalf("expected port from 20-port.yaml, got %+v", src)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected include error")
	}
	if !strings.Contains(err.Error(), ":2:") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include location in %q", err.Error())
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "include: b.yaml\n")
	writeFile(t, filepath.Join(dir, "b.yaml"), "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "metrics:\n  enabled: false\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "metrics.enabled")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != false || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result %v %+v", value, src)
	}

	value, src, err = Explain(res, "port")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != 3000 || src.Kind != SourceDefault {
		t.Fatalf("unexpected explain result %v %+v", value, src)
	}

	res.SetFlag("port", "port")
	if _, src, _ = Explain(res, "port"); src.Kind != SourceFlag || src.String() != "flag --port" {
		t.Fatalf("expected flag source, got %+v", src)
	}

	value, _, err = Explain(res, "logging.max_size_mb")
	if err != nil || value != 10 {
		t.Fatalf("expected logging default 10, got %v (%v)", value, err)
	}

	for _, bad := range []string{"", "nope", "port.x", "screenshot", "screenshot.nope", "metrics.path.x"} {
		if _, _, err := Explain(res, bad); err == nil {
			t.Errorf("Explain(%q) expected error", bad)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"transport", func(c *Config) { c.Transport = "websocket" }, "transport"},
		{"empty host for http", func(c *Config) { c.Transport = TransportSSE; c.Host = " " }, "host"},
		{"port low", func(c *Config) { c.Port = 0 }, "port"},
		{"port high", func(c *Config) { c.Port = 70000 }, "port"},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"format", func(c *Config) { c.Screenshot.DefaultFormat = "gif" }, "screenshot.default_format"},
		{"quality", func(c *Config) { c.Screenshot.JPEGQuality = 0 }, "screenshot.jpeg_quality"},
		{"metrics relative", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"metrics collides", func(c *Config) { c.Metrics.Path = "/mcp" }, "metrics.path"},
		{"logging level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"max files", func(c *Config) { c.Logging.MaxFiles = -1 }, "logging.max_files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Host = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("stdio does not need a host, got %v", err)
	}
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stateless = true
	warnings := cfg.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}

	cfg.Transport = TransportStreamableHTTP
	if warnings := cfg.Warnings(); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
}

func TestGetLoggingConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	logging := DefaultConfig().GetLoggingConfig()
	if logging.Enabled {
		t.Fatalf("expected logging disabled by default")
	}
	if want := filepath.Join(home, ".local/share/system-mcp/actions.log"); logging.File != want {
		t.Fatalf("file = %q, want %q", logging.File, want)
	}
	if logging.MaxSizeMB != 10 || logging.MaxFiles != 3 || logging.PreviewLength != 50 || logging.Level != "info" {
		t.Fatalf("unexpected defaults %+v", logging)
	}

	var nilCfg *Config
	if got := nilCfg.GetLoggingConfig(); got != (LoggingConfig{}) {
		t.Fatalf("expected zero config for nil, got %+v", got)
	}
}
