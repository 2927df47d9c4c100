package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/system-mcp/internal/config"
	"github.com/1broseidon/system-mcp/internal/mcp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunToolsJSON(t *testing.T) {
	var out bytes.Buffer
	if rc := runTools(nil, &out); rc != 0 {
		t.Fatalf("runTools rc=%d, want 0", rc)
	}

	var tools []struct {
		Name        string          `json:"name"`
		Title       string          `json:"title"`
		ReadOnly    bool            `json:"read_only"`
		InputSchema json.RawMessage `json:"input_schema"`
	}
	if err := json.Unmarshal(out.Bytes(), &tools); err != nil {
		t.Fatalf("decode tools output: %v\n%s", err, out.String())
	}
	if len(tools) != 10 {
		t.Fatalf("got %d tools, want 10", len(tools))
	}
	if tools[0].Name != "mouse_get_position" || !tools[0].ReadOnly {
		t.Fatalf("first tool = %+v, want read-only mouse_get_position", tools[0])
	}
	for _, tool := range tools {
		if len(tool.InputSchema) == 0 {
			t.Errorf("tool %s has no input schema", tool.Name)
		}
	}
}

func TestRunToolsRejectsArgs(t *testing.T) {
	if rc := runTools([]string{"extra"}, io.Discard); rc != 2 {
		t.Fatalf("runTools rc=%d, want 2", rc)
	}
}

func TestRenderToolTable(t *testing.T) {
	specs, err := mcp.Tools()
	if err != nil {
		t.Fatalf("Tools: %v", err)
	}
	out := renderToolTable(specs)
	for _, want := range []string{"NAME", "mouse_click", "Screen: Take Screenshot", "ro", "rw"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRunConfigValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "transport: sse\nport: 8080\n")

	var out bytes.Buffer
	if rc := runConfig([]string{"validate", "--path", path}, &out); rc != 0 {
		t.Fatalf("validate rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "config: ok") {
		t.Fatalf("output = %q, want config: ok", out.String())
	}

	bad := writeConfig(t, "transport: carrier-pigeon\n")
	if rc := runConfig([]string{"validate", "--path", bad}, io.Discard); rc != 1 {
		t.Fatalf("validate invalid rc=%d, want 1", rc)
	}
}

func TestRunConfigValidateWarnings(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "stateless: true\n")

	var out bytes.Buffer
	if rc := runConfig([]string{"validate", "--path", path}, &out); rc != 0 {
		t.Fatalf("validate rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "warning: stateless has no effect") {
		t.Fatalf("output = %q, want stateless warning", out.String())
	}
}

func TestRunConfigPrint(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "port: 9000\n")

	var out bytes.Buffer
	if rc := runConfig([]string{"print", "--path", path}, &out); rc != 0 {
		t.Fatalf("print rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "port: 9000") {
		t.Fatalf("print output missing port override:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "# loaded: ") {
		t.Fatalf("print output missing loaded file comment:\n%s", out.String())
	}

	out.Reset()
	if rc := runConfig([]string{"print", "--defaults"}, &out); rc != 0 {
		t.Fatalf("print --defaults rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "port: 3000") || strings.Contains(out.String(), "# loaded") {
		t.Fatalf("defaults output unexpected:\n%s", out.String())
	}
}

func TestRunConfigExplain(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "host: 0.0.0.0\n")

	var out bytes.Buffer
	if rc := runConfig([]string{"explain", "--path", path, "host"}, &out); rc != 0 {
		t.Fatalf("explain rc=%d, want 0", rc)
	}
	got := out.String()
	if !strings.Contains(got, "path: host") || !strings.Contains(got, "0.0.0.0") {
		t.Fatalf("explain output = %q", got)
	}
	if !strings.Contains(got, "source: file:") || !strings.Contains(got, "config.yaml:1:7") {
		t.Fatalf("explain output missing file source: %q", got)
	}

	out.Reset()
	if rc := runConfig([]string{"explain", "--path", path, "port"}, &out); rc != 0 {
		t.Fatalf("explain port rc=%d, want 0", rc)
	}
	if !strings.Contains(out.String(), "source: default:defaults") {
		t.Fatalf("explain port output = %q", out.String())
	}

	if rc := runConfig([]string{"explain", "--path", path}, io.Discard); rc != 2 {
		t.Fatalf("explain without path rc=%d, want 2", rc)
	}
	if rc := runConfig([]string{"explain", "--path", path, "nope"}, io.Discard); rc != 1 {
		t.Fatalf("explain unknown path rc=%d, want 1", rc)
	}
}

func TestRunConfigUnknownSubcommand(t *testing.T) {
	if rc := runConfig([]string{"frobnicate"}, io.Discard); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if rc := runConfig(nil, io.Discard); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
}

func TestServeFlagsApply(t *testing.T) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var sf serveFlags
	sf.register(fs)
	if err := fs.Parse([]string{"--transport", "Streamable-HTTP", "--port", "8123", "--stateless"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	res := &config.LoadResult{Config: config.DefaultConfig()}
	if err := sf.apply(fs, res); err != nil {
		t.Fatalf("apply: %v", err)
	}
	cfg := res.Config
	if cfg.Transport != config.TransportStreamableHTTP || cfg.Port != 8123 || !cfg.Stateless {
		t.Fatalf("config after flags = %+v", cfg)
	}
	if cfg.Host != "127.0.0.1" {
		t.Fatalf("host = %q, want default kept", cfg.Host)
	}
	if src := res.Sources["port"]; src.Kind != config.SourceFlag || src.Name != "port" {
		t.Fatalf("port source = %+v, want flag", src)
	}
	if _, ok := res.Sources["host"]; ok {
		t.Fatalf("host recorded as flag source without being set")
	}
}

func TestServeFlagsApplyInvalid(t *testing.T) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var sf serveFlags
	sf.register(fs)
	if err := fs.Parse([]string{"--port", "70000"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	res := &config.LoadResult{Config: config.DefaultConfig()}
	if err := sf.apply(fs, res); err == nil {
		t.Fatal("apply accepted port 70000")
	}
}

func TestServeOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	opts := serveOptions(cfg)
	if opts.Transport != config.TransportStdio || opts.MetricsPath != "" {
		t.Fatalf("stdio options = %+v, want no metrics", opts)
	}

	cfg.Transport = config.TransportSSE
	cfg.Port = 8080
	opts = serveOptions(cfg)
	if opts.Addr != "127.0.0.1:8080" || opts.MetricsPath != "/metrics" {
		t.Fatalf("sse options = %+v", opts)
	}

	cfg.Metrics.Enabled = false
	if opts = serveOptions(cfg); opts.MetricsPath != "" {
		t.Fatalf("metrics disabled but path = %q", opts.MetricsPath)
	}
}

func TestOpenAuditDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	if l := openAudit(cfg, newLogger(cfg)); l != nil {
		t.Fatalf("openAudit with logging disabled = %v, want nil", l)
	}
}

func TestOpenAuditEnabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Enabled = true
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "actions.log")
	l := openAudit(cfg, newLogger(cfg))
	if l == nil {
		t.Fatal("openAudit returned nil with logging enabled")
	}
	defer l.Close()
	if _, err := os.Stat(filepath.Dir(cfg.Logging.File)); err != nil {
		t.Fatalf("log directory not created: %v", err)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 1}, "file:/c.yaml:3:1"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFlag, Name: "port"}, "flag:--port"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}
