package mcp

import (
	"context"
	"image"
	"sync"

	"github.com/1broseidon/system-mcp/internal/platform"
)

// stubBackend is a minimal in-memory desktop for driving the tools end to
// end.
type stubBackend struct {
	mu      sync.Mutex
	cursor  platform.Point
	clicks  []platform.Button
	windows []platform.Window
	element platform.Element
	moveErr error
}

var _ platform.Backend = (*stubBackend)(nil)

func (b *stubBackend) CursorPosition(context.Context) (platform.Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor, nil
}

func (b *stubBackend) SetCursorPosition(_ context.Context, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = platform.Point{X: x, Y: y}
	return nil
}

func (b *stubBackend) Click(_ context.Context, button platform.Button) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks = append(b.clicks, button)
	return nil
}

func (b *stubBackend) ListWindows(_ context.Context, filter platform.WindowFilter) ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []platform.Window
	for _, w := range b.windows {
		if filter.Keep(w.Visible, w.Title) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (b *stubBackend) index(id platform.WindowID) (int, error) {
	for i, w := range b.windows {
		if w.ID == id {
			return i, nil
		}
	}
	return -1, platform.NotFoundf("window %d does not exist", id)
}

func (b *stubBackend) WindowBounds(_ context.Context, id platform.WindowID) (platform.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.index(id)
	if err != nil {
		return platform.Rect{}, err
	}
	return b.windows[i].Bounds, nil
}

func (b *stubBackend) MoveResize(_ context.Context, id platform.WindowID, bounds platform.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.moveErr != nil {
		return b.moveErr
	}
	i, err := b.index(id)
	if err != nil {
		return err
	}
	b.windows[i].Bounds = bounds
	return nil
}

func (b *stubBackend) Activate(_ context.Context, id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.index(id)
	return err
}

func (b *stubBackend) ElementAt(context.Context, int, int) (platform.Element, error) {
	return b.element, nil
}

func (b *stubBackend) Displays(context.Context) ([]platform.Display, error) {
	return []platform.Display{{ID: 0, Name: "primary", Bounds: platform.Rect{Width: 640, Height: 480}}}, nil
}

func (b *stubBackend) VirtualScreen(context.Context) (platform.Rect, error) {
	return platform.Rect{Width: 640, Height: 480}, nil
}

func (b *stubBackend) Capture(_ context.Context, region platform.Rect) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, region.Width, region.Height)), nil
}

func (b *stubBackend) Close() error { return nil }

// stubElement returns fixed values; empty strings read as absent text.
type stubElement struct {
	name  string
	value string
	hwnd  platform.WindowID
}

func (e *stubElement) Name() (string, error)        { return e.name, nil }
func (e *stubElement) ControlType() (string, error) { return "EditControl", nil }
func (e *stubElement) ClassName() (string, error)   { return "Edit", nil }
func (e *stubElement) Bounds() ([4]int, error)      { return [4]int{1, 2, 3, 4}, nil }
func (e *stubElement) RuntimeID() ([]int, error)    { return []int{42, 7}, nil }
func (e *stubElement) WindowHandle() (platform.WindowID, error) {
	return e.hwnd, nil
}
func (e *stubElement) Value() (string, error)      { return e.value, nil }
func (e *stubElement) LegacyName() (string, error) { return "", nil }
func (e *stubElement) Release()                    {}
