package main

import (
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/system-mcp/internal/mcp"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "tools":
		os.Exit(runTools(os.Args[2:], os.Stdout))
	case "inspect":
		os.Exit(runInspect(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:], os.Stdout))
	case "version", "--version":
		fmt.Printf("%s %s\n", mcp.ServerName, mcp.ServerVersion)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "system-mcp - desktop automation tools over the Model Context Protocol")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  system-mcp serve [--transport T] [--host H] [--port N] [--stateless]")
	fmt.Fprintln(w, "  system-mcp tools [--json]")
	fmt.Fprintln(w, "  system-mcp inspect [--interval D]")
	fmt.Fprintln(w, "  system-mcp config validate [--path PATH]")
	fmt.Fprintln(w, "  system-mcp config print [--path PATH] [--defaults]")
	fmt.Fprintln(w, "  system-mcp config explain [--path PATH] <yaml.path>")
	fmt.Fprintln(w, "  system-mcp version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Transports: stdio (default), sse, streamable-http")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'system-mcp <command> --help' for command-specific options.")
}
