package platform

import (
	"context"
	"image"
	"log/slog"
)

// WindowID is a platform-neutral window identifier (X11 window, Win32 HWND).
type WindowID uint64

// Point is a screen-space pixel coordinate.
type Point struct {
	X int
	Y int
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID      WindowID
	Title   string
	Visible bool
	Bounds  Rect
}

// WindowFilter selects windows during enumeration.
type WindowFilter struct {
	VisibleOnly bool
	TitleOnly   bool
}

// Keep reports whether a window with the given visibility and title passes
// the filter.
func (f WindowFilter) Keep(visible bool, title string) bool {
	if f.VisibleOnly && !visible {
		return false
	}
	return !f.TitleOnly || title != ""
}

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonRight
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// ParseButton converts a button name to a Button.
func ParseButton(name string) (Button, error) {
	switch name {
	case "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle":
		return ButtonMiddle, nil
	default:
		return 0, InvalidArgumentf("unknown button %q (want left, right or middle)", name)
	}
}

// Element is a live handle on an accessibility-tree node. Every accessor
// may fail independently; callers treat a failure as an absent field.
type Element interface {
	Name() (string, error)
	ControlType() (string, error)
	ClassName() (string, error)
	// Bounds returns the element rectangle as left, top, right, bottom.
	Bounds() ([4]int, error)
	RuntimeID() ([]int, error)
	WindowHandle() (WindowID, error)
	// Value returns the text exposed by the value accessor, if any.
	Value() (string, error)
	// LegacyName returns the legacy accessible name, if any.
	LegacyName() (string, error)
	Release()
}

// Cursor reads and drives the global pointer.
type Cursor interface {
	CursorPosition(ctx context.Context) (Point, error)
	SetCursorPosition(ctx context.Context, x, y int) error
	// Click injects one press and one release of button at the current
	// cursor position.
	Click(ctx context.Context, button Button) error
}

// Windows enumerates and manipulates top-level windows.
type Windows interface {
	// ListWindows returns the top-level windows that pass filter, in
	// platform order. The filter is applied before geometry is read; windows
	// whose geometry cannot be read are skipped.
	ListWindows(ctx context.Context, filter WindowFilter) ([]Window, error)
	WindowBounds(ctx context.Context, id WindowID) (Rect, error)
	MoveResize(ctx context.Context, id WindowID, bounds Rect) error
	Activate(ctx context.Context, id WindowID) error
}

// Elements resolves accessibility-tree nodes.
type Elements interface {
	// ElementAt returns the topmost element at the point, or nil when
	// nothing accessible is there.
	ElementAt(ctx context.Context, x, y int) (Element, error)
}

// Screen captures pixels.
type Screen interface {
	// Displays returns the individual monitors in a stable order.
	Displays(ctx context.Context) ([]Display, error)
	// VirtualScreen returns the bounding box of all monitors.
	VirtualScreen(ctx context.Context) (Rect, error)
	// Capture grabs the given screen-absolute rectangle.
	Capture(ctx context.Context, region Rect) (image.Image, error)
}

// Backend abstracts desktop automation across platforms.
type Backend interface {
	Cursor
	Windows
	Elements
	Screen
	Close() error
}

// Options configures how a Backend attaches to the desktop session.
type Options struct {
	// Display and XAuthority override X11 session discovery on Linux.
	Display    string
	XAuthority string
	Logger     *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// UnionBounds returns the smallest rectangle covering every display.
func UnionBounds(displays []Display) Rect {
	if len(displays) == 0 {
		return Rect{}
	}
	r := displays[0].Bounds
	minX, minY := r.X, r.Y
	maxX, maxY := r.X+r.Width, r.Y+r.Height
	for _, d := range displays[1:] {
		b := d.Bounds
		minX = min(minX, b.X)
		minY = min(minY, b.Y)
		maxX = max(maxX, b.X+b.Width)
		maxY = max(maxY, b.Y+b.Height)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
