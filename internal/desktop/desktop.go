// Package desktop implements the desktop automation operations exposed as
// tools: cursor control, the window registry, the element inspector and
// screen capture. It talks to the OS only through platform.Backend.
package desktop

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/system-mcp/internal/platform"
)

// Defaults used when Config leaves a field unset.
const (
	DefaultFormat      = FormatPNG
	DefaultJPEGQuality = 90
)

// Config tunes the Service.
type Config struct {
	// DefaultFormat is used by Capture when the request names no format.
	DefaultFormat string
	// JPEGQuality is used by Capture for jpeg requests without a quality.
	JPEGQuality int
	Logger      *slog.Logger
}

// Service runs desktop operations against a backend. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	backend       platform.Backend
	defaultFormat string
	jpegQuality   int
	logger        *slog.Logger
}

// New creates a Service over backend.
func New(backend platform.Backend, cfg Config) *Service {
	s := &Service{
		backend:       backend,
		defaultFormat: cfg.DefaultFormat,
		jpegQuality:   cfg.JPEGQuality,
		logger:        cfg.Logger,
	}
	if s.defaultFormat == "" {
		s.defaultFormat = DefaultFormat
	}
	if s.jpegQuality <= 0 || s.jpegQuality > 100 {
		s.jpegQuality = DefaultJPEGQuality
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Point is a screen-space pixel coordinate.
type Point struct {
	X int
	Y int
}

// Rectangle is a window or region in left/top/width/height form.
type Rectangle struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// rectangleFrom converts platform bounds, rejecting negative sizes.
func rectangleFrom(r platform.Rect) (Rectangle, error) {
	if r.Width < 0 || r.Height < 0 {
		return Rectangle{}, platform.CallFailed("window_rect", 0,
			fmt.Errorf("malformed rectangle: width %d, height %d", r.Width, r.Height))
	}
	return Rectangle{Left: r.X, Top: r.Y, Width: r.Width, Height: r.Height}, nil
}

// WindowInfo is a snapshot of one top-level window. Handle is a weak
// reference and may be stale by the time it is used again.
type WindowInfo struct {
	Handle platform.WindowID
	Title  string
	Bounds Rectangle
}

// ElementInfo is a point-in-time snapshot of an accessibility element.
// A nil field means the value could not be read.
type ElementInfo struct {
	Name        *string
	ControlType *string
	ClassName   *string
	// Bounding is left, top, right, bottom.
	Bounding  *[4]int
	RuntimeID []int
	Handle    *platform.WindowID
}
