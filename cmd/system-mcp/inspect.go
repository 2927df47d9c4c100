package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/system-mcp/internal/desktop"
	"github.com/1broseidon/system-mcp/internal/platform"
	"github.com/1broseidon/system-mcp/internal/tui"
)

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: system-mcp inspect [--path PATH] [--interval D]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Live view of the cursor position, the window and UI element under it,")
		fmt.Fprintln(os.Stderr, "and the text the text_under_cursor tool would return.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  p         Pause or resume polling")
		fmt.Fprintln(os.Stderr, "  r         Refresh now")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/system-mcp/config.yaml)")
	interval := fs.Duration("interval", tui.DefaultInterval, "Polling interval")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "inspect takes no arguments")
		fs.Usage()
		return 2
	}
	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "--interval must be positive")
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	// Log output would corrupt the alternate screen.
	quiet := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))

	backend, err := platform.Open(platform.Options{
		Display:    cfg.Display,
		XAuthority: cfg.XAuthority,
		Logger:     quiet,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer backend.Close()

	svc := desktop.New(backend, desktop.Config{Logger: quiet})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, svc, *interval); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
