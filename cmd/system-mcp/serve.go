package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/system-mcp/internal/audit"
	"github.com/1broseidon/system-mcp/internal/config"
	"github.com/1broseidon/system-mcp/internal/desktop"
	"github.com/1broseidon/system-mcp/internal/mcp"
	"github.com/1broseidon/system-mcp/internal/platform"
)

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

type serveFlags struct {
	path      string
	transport string
	host      string
	port      int
	stateless bool
}

func (f *serveFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.path, "path", "", "Config file path (default: ~/.config/system-mcp/config.yaml)")
	fs.StringVar(&f.transport, "transport", "", "Transport: stdio, sse or streamable-http")
	fs.StringVar(&f.host, "host", "", "Listen host for HTTP transports")
	fs.IntVar(&f.port, "port", 0, "Listen port for HTTP transports")
	fs.BoolVar(&f.stateless, "stateless", false, "Run streamable HTTP without session state")
}

// apply copies explicitly set flags over the loaded config and revalidates.
func (f *serveFlags) apply(fs *flag.FlagSet, res *config.LoadResult) error {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "transport":
			res.Config.Transport = strings.ToLower(strings.TrimSpace(f.transport))
			res.SetFlag("transport", fl.Name)
		case "host":
			res.Config.Host = f.host
			res.SetFlag("host", fl.Name)
		case "port":
			res.Config.Port = f.port
			res.SetFlag("port", fl.Name)
		case "stateless":
			res.Config.Stateless = f.stateless
			res.SetFlag("stateless", fl.Name)
		}
	})
	return res.Config.Validate()
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func openAudit(cfg *config.Config, logger *slog.Logger) *audit.Logger {
	lc := cfg.GetLoggingConfig()
	if !lc.Enabled {
		return nil
	}
	l, err := audit.New(audit.Config{
		Enabled:        true,
		Level:          audit.ParseLevel(lc.Level),
		FilePath:       lc.File,
		MaxSizeMB:      lc.MaxSizeMB,
		MaxFiles:       lc.MaxFiles,
		IncludeContent: lc.IncludeContent,
		PreviewLength:  lc.PreviewLength,
	})
	if err != nil {
		logger.Warn("audit log disabled", "file", lc.File, "error", err)
		return nil
	}
	return l
}

func serveOptions(cfg *config.Config) mcp.ServeOptions {
	opts := mcp.ServeOptions{
		Transport: cfg.Transport,
		Addr:      cfg.Addr(),
		Stateless: cfg.Stateless,
	}
	if cfg.Metrics.Enabled && cfg.Transport != config.TransportStdio {
		opts.MetricsPath = cfg.Metrics.Path
	}
	return opts
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: system-mcp serve [--path PATH] [--transport T] [--host H] [--port N] [--stateless]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server. The default stdio transport is meant to be launched")
		fmt.Fprintln(os.Stderr, "by an MCP client; sse and streamable-http listen on host:port.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	var sf serveFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "serve takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(sf.path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := sf.apply(fs, res); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	cfg := res.Config

	logger := newLogger(cfg)
	for _, w := range cfg.Warnings() {
		logger.Warn("config", "warning", w)
	}

	backend, err := platform.Open(platform.Options{
		Display:    cfg.Display,
		XAuthority: cfg.XAuthority,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("open desktop backend", "error", err)
		return 1
	}
	defer backend.Close()

	svc := desktop.New(backend, desktop.Config{
		DefaultFormat: cfg.Screenshot.DefaultFormat,
		JPEGQuality:   cfg.Screenshot.JPEGQuality,
		Logger:        logger,
	})

	server, err := mcp.NewServer(mcp.Options{
		Desktop: svc,
		Audit:   openAudit(cfg, logger),
		Logger:  logger,
	})
	if err != nil {
		logger.Error("create MCP server", "error", err)
		return 1
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "server", mcp.ServerName, "version", mcp.ServerVersion, "transport", cfg.Transport)
	if err := server.Serve(ctx, serveOptions(cfg)); err != nil && ctx.Err() == nil {
		logger.Error("serve", "error", err)
		return 1
	}
	return 0
}
