package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/system-mcp/internal/mcp"
)

var (
	toolHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	toolNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Width(24)
	toolTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(30)
	toolRWStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(6)
)

func runTools(args []string, w io.Writer) int {
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: system-mcp tools [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the tools the server exposes. Output is JSON when stdout is not a terminal.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output tool definitions, including input schemas, as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "tools takes no arguments")
		fs.Usage()
		return 2
	}

	specs, err := mcp.Tools()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut || !isTerminal(w) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(specs); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	fmt.Fprintln(w, renderToolTable(specs))
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderToolTable(specs []mcp.ToolSpec) string {
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		toolHeaderStyle.Width(24).Render("NAME"),
		toolHeaderStyle.Width(30).Render("TITLE"),
		toolHeaderStyle.Width(6).Render("MODE"),
		toolHeaderStyle.Render("DESCRIPTION"),
	))
	for _, spec := range specs {
		mode := "rw"
		if spec.ReadOnly {
			mode = "ro"
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			toolNameStyle.Render(spec.Name),
			toolTitleStyle.Render(spec.Title),
			toolRWStyle.Render(mode),
			spec.Description,
		))
	}
	return b.String()
}
