//go:build darwin

package platform

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/go-vgo/robotgo"
)

// DarwinBackend covers pointer input and screen capture through robotgo.
// Window management and accessibility lookups are not implemented on macOS.
type DarwinBackend struct {
	logger *slog.Logger
}

var _ Backend = (*DarwinBackend)(nil)

// Open returns the macOS backend.
func Open(opts Options) (Backend, error) {
	return &DarwinBackend{logger: opts.logger()}, nil
}

func (b *DarwinBackend) Close() error { return nil }

func (b *DarwinBackend) CursorPosition(ctx context.Context) (Point, error) {
	if err := ctx.Err(); err != nil {
		return Point{}, err
	}
	x, y := robotgo.Location()
	return Point{X: x, Y: y}, nil
}

func (b *DarwinBackend) SetCursorPosition(ctx context.Context, x, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	robotgo.Move(x, y)
	return nil
}

func (b *DarwinBackend) Click(ctx context.Context, button Button) error {
	var name string
	switch button {
	case ButtonLeft:
		name = "left"
	case ButtonRight:
		name = "right"
	case ButtonMiddle:
		name = "center"
	default:
		return InvalidArgumentf("unknown button %d", int(button))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := robotgo.Toggle(name); err != nil {
		return CallFailed("CGEventPost", 0, err)
	}
	if err := robotgo.Toggle(name, "up"); err != nil {
		return CallFailed("CGEventPost", 0, err)
	}
	return nil
}

func (b *DarwinBackend) ListWindows(context.Context, WindowFilter) ([]Window, error) {
	return nil, CallFailed("CGWindowListCopyWindowInfo", 0, ErrUnsupported)
}

func (b *DarwinBackend) WindowBounds(context.Context, WindowID) (Rect, error) {
	return Rect{}, CallFailed("AXUIElementCopyAttributeValue", 0, ErrUnsupported)
}

func (b *DarwinBackend) MoveResize(context.Context, WindowID, Rect) error {
	return CallFailed("AXUIElementSetAttributeValue", 0, ErrUnsupported)
}

func (b *DarwinBackend) Activate(context.Context, WindowID) error {
	return CallFailed("AXUIElementPerformAction", 0, ErrUnsupported)
}

func (b *DarwinBackend) ElementAt(context.Context, int, int) (Element, error) {
	return nil, nil
}

func (b *DarwinBackend) Displays(ctx context.Context) ([]Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := robotgo.DisplaysNum()
	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		displays = append(displays, Display{
			ID:     i,
			Name:   fmt.Sprintf("display-%d", i),
			Bounds: Rect{X: x, Y: y, Width: w, Height: h},
		})
	}
	return displays, nil
}

func (b *DarwinBackend) VirtualScreen(ctx context.Context) (Rect, error) {
	displays, err := b.Displays(ctx)
	if err != nil {
		return Rect{}, err
	}
	if len(displays) == 0 {
		w, h := robotgo.GetScreenSize()
		return Rect{Width: w, Height: h}, nil
	}
	return UnionBounds(displays), nil
}

func (b *DarwinBackend) Capture(ctx context.Context, region Rect) (image.Image, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, InvalidArgumentf("capture size %dx%d must be positive", region.Width, region.Height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := robotgo.CaptureImg(region.X, region.Y, region.Width, region.Height)
	if err != nil {
		return nil, CallFailed("CGDisplayCreateImageForRect", 0, err)
	}
	return img, nil
}
