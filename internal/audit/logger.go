// Package audit writes a human-readable, size-rotated log of every tool
// call the server handles.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Level defines the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Category groups tool calls by their effect on the desktop.
type Category string

const (
	CategoryQuery   Category = "QUERY"
	CategoryInput   Category = "INPUT"
	CategoryWindow  Category = "WINDOW"
	CategoryCapture Category = "CAPTURE"
	CategoryError   Category = "ERROR"
)

// level returns the verbosity a category is recorded at.
func (c Category) level() Level {
	switch c {
	case CategoryQuery:
		return LevelDebug
	case CategoryError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds configuration for the audit logger.
type Config struct {
	Enabled        bool
	Level          Level
	FilePath       string
	MaxSizeMB      int
	MaxFiles       int
	IncludeContent bool
	PreviewLength  int
}

// Logger appends audit entries to a file, rotating it by size. A nil
// *Logger is valid and records nothing.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64

	now func() time.Time
}

// New opens the audit log described by cfg. A disabled config yields a
// logger that drops every entry.
func New(cfg Config) (*Logger, error) {
	l := &Logger{config: cfg, now: time.Now}
	if !cfg.Enabled {
		return l, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Logger) open() error {
	f, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", l.config.FilePath, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	l.file = f
	l.currentSize = stat.Size()
	return nil
}

// IncludeContent reports whether returned content may be recorded.
func (l *Logger) IncludeContent() bool {
	return l != nil && l.config.IncludeContent
}

// Preview shortens s to the configured preview length.
func (l *Logger) Preview(s string) string {
	if l == nil {
		return s
	}
	return Truncate(s, l.config.PreviewLength)
}

// Record writes one entry for a call to tool. Fields are written in key
// order.
func (l *Logger) Record(category Category, tool string, fields map[string]any) {
	if l == nil || !l.config.Enabled {
		return
	}
	if category.level() < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}
	if limit := int64(l.config.MaxSizeMB) * 1024 * 1024; limit > 0 && l.currentSize >= limit {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "audit log rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	n, err := l.file.WriteString(formatEntry(l.now(), category, tool, fields))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write audit entry: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

func formatEntry(ts time.Time, category Category, tool string, fields map[string]any) string {
	var sb strings.Builder
	sb.WriteString(ts.Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(category))
	sb.WriteString("] tool=")
	sb.WriteString(tool)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, v)
		default:
			fmt.Fprintf(&sb, " %s=%v", k, v)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts actions.log.N to .N+1, dropping the oldest, then moves the
// live file to .1 and reopens it. MaxFiles=3 keeps .1 through .3.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	base := l.config.FilePath
	keep := max(l.config.MaxFiles, 1)
	os.Remove(fmt.Sprintf("%s.%d", base, keep))
	for i := keep - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", base, i), fmt.Sprintf("%s.%d", base, i+1))
	}
	if err := os.Rename(base, base+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return l.open()
}

// ParseLevel converts a string to a Level. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Truncate returns at most maxLen runes of s followed by "..." when it was
// cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
