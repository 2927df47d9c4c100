package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/system-mcp/internal/config"
)

const pathFlagUsage = "Config file path (default: ~/.config/system-mcp/config.yaml)"

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  system-mcp config validate [--path PATH]")
	fmt.Fprintln(w, "  system-mcp config print [--path PATH] [--defaults]")
	fmt.Fprintln(w, "  system-mcp config explain [--path PATH] <yaml.path>")
}

func runConfig(args []string, w io.Writer) int {
	if len(args) == 0 {
		printConfigUsage(os.Stderr)
		return 2
	}

	var run func(fs *flag.FlagSet, path *string, w io.Writer) int
	switch args[0] {
	case "help", "-h", "--help":
		printConfigUsage(w)
		return 0
	case "validate":
		run = configValidate
	case "print":
		run = configPrint
	case "explain":
		run = configExplain
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", pathFlagUsage)
	var defaults *bool
	if args[0] == "print" {
		defaults = fs.Bool("defaults", false, "Print built-in defaults (no files)")
	}
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if defaults != nil && *defaults {
		return writeYAML(w, config.DefaultConfig())
	}
	return run(fs, path, w)
}

func configValidate(_ *flag.FlagSet, path *string, w io.Writer) int {
	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, warning := range res.Config.Warnings() {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	fmt.Fprintln(w, "config: ok")
	return 0
}

func configPrint(_ *flag.FlagSet, path *string, w io.Writer) int {
	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, file := range res.Files {
		fmt.Fprintf(w, "# loaded: %s\n", file)
	}
	return writeYAML(w, res.Config)
}

func configExplain(fs *flag.FlagSet, path *string, w io.Writer) int {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
		return 2
	}
	key := fs.Arg(0)

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	value, src, err := config.Explain(res, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(w, "path: %s\n", key)
	fmt.Fprintf(w, "source: %s\n", formatSource(src))
	fmt.Fprintln(w, "value:")
	return writeYAML(w, value)
}

func writeYAML(w io.Writer, v any) int {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	w.Write(data)
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceFlag:
		return "flag:--" + src.Name
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
	}
	return string(src.Kind)
}
