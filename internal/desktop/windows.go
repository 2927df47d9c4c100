package desktop

import (
	"context"
	"fmt"
	"strings"

	"github.com/1broseidon/system-mcp/internal/platform"
)

// ListOptions filters ListWindows.
type ListOptions struct {
	VisibleOnly bool
	TitleOnly   bool
}

// ListWindows snapshots the top-level windows in platform order. Windows
// whose bounds cannot be turned into a rectangle are skipped; only a
// failure of the enumeration itself is returned.
func (s *Service) ListWindows(ctx context.Context, opts ListOptions) ([]WindowInfo, error) {
	all, err := s.backend.ListWindows(ctx, platform.WindowFilter{
		VisibleOnly: opts.VisibleOnly,
		TitleOnly:   opts.TitleOnly,
	})
	if err != nil {
		return nil, err
	}

	out := make([]WindowInfo, 0, len(all))
	for _, w := range all {
		bounds, err := rectangleFrom(w.Bounds)
		if err != nil {
			s.logger.Debug("skipping window", "hwnd", uint64(w.ID), "error", err)
			continue
		}
		out = append(out, WindowInfo{Handle: w.ID, Title: w.Title, Bounds: bounds})
	}
	return out, nil
}

// FindWindowsByTitle returns visible windows whose title contains
// substring, ignoring case. An empty substring matches every visible
// window, untitled ones included.
func (s *Service) FindWindowsByTitle(ctx context.Context, substring string) ([]WindowInfo, error) {
	windows, err := s.ListWindows(ctx, ListOptions{VisibleOnly: true})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(substring)
	out := windows[:0]
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), needle) {
			out = append(out, w)
		}
	}
	return out, nil
}

// MoveWindow places a window at (x, y). A nil width or height keeps the
// window's current value.
func (s *Service) MoveWindow(ctx context.Context, handle platform.WindowID, x, y int, width, height *int) error {
	if width != nil && *width < 0 {
		return platform.InvalidArgumentf("width must not be negative, got %d", *width)
	}
	if height != nil && *height < 0 {
		return platform.InvalidArgumentf("height must not be negative, got %d", *height)
	}

	target := platform.Rect{X: x, Y: y}
	if width == nil || height == nil {
		current, err := s.backend.WindowBounds(ctx, handle)
		if err != nil {
			return err
		}
		rect, err := rectangleFrom(current)
		if err != nil {
			return fmt.Errorf("window %d: %w", handle, err)
		}
		target.Width, target.Height = rect.Width, rect.Height
	}
	if width != nil {
		target.Width = *width
	}
	if height != nil {
		target.Height = *height
	}
	return s.backend.MoveResize(ctx, handle, target)
}

// Activate asks the platform to foreground and focus the window. Focus
// stealing prevention can still leave another window focused; that is not
// reported as an error.
func (s *Service) Activate(ctx context.Context, handle platform.WindowID) error {
	return s.backend.Activate(ctx, handle)
}
