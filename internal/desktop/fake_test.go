package desktop

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/1broseidon/system-mcp/internal/platform"
)

// fakeBackend is an in-memory desktop: a cursor, a window table and a
// solid-colour screen.
type fakeBackend struct {
	mu sync.Mutex

	cursor  platform.Point
	events  []string
	windows     []platform.Window
	listErr     error
	listFilters []platform.WindowFilter

	displays []platform.Display
	// scale multiplies captured image sizes to mimic HiDPI screens.
	scale    int
	captures []platform.Rect

	element    platform.Element
	elementErr error

	activated []platform.WindowID
}

var _ platform.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		scale: 1,
		displays: []platform.Display{
			{ID: 0, Name: "left", Bounds: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
			{ID: 1, Name: "right", Bounds: platform.Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}},
		},
	}
}

func (f *fakeBackend) CursorPosition(context.Context) (platform.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, nil
}

func (f *fakeBackend) SetCursorPosition(_ context.Context, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = platform.Point{X: x, Y: y}
	f.events = append(f.events, "move")
	return nil
}

func (f *fakeBackend) Click(_ context.Context, button platform.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "press "+button.String(), "release "+button.String())
	return nil
}

func (f *fakeBackend) ListWindows(_ context.Context, filter platform.WindowFilter) ([]platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.listFilters = append(f.listFilters, filter)
	var out []platform.Window
	for _, w := range f.windows {
		if filter.Keep(w.Visible, w.Title) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeBackend) find(id platform.WindowID) (int, error) {
	for i, w := range f.windows {
		if w.ID == id {
			return i, nil
		}
	}
	return -1, platform.NotFoundf("window %d does not exist", id)
}

func (f *fakeBackend) WindowBounds(_ context.Context, id platform.WindowID) (platform.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, err := f.find(id)
	if err != nil {
		return platform.Rect{}, err
	}
	return f.windows[i].Bounds, nil
}

func (f *fakeBackend) MoveResize(_ context.Context, id platform.WindowID, bounds platform.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, err := f.find(id)
	if err != nil {
		return err
	}
	f.windows[i].Bounds = bounds
	return nil
}

func (f *fakeBackend) Activate(_ context.Context, id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.find(id); err != nil {
		return err
	}
	f.activated = append(f.activated, id)
	return nil
}

func (f *fakeBackend) ElementAt(context.Context, int, int) (platform.Element, error) {
	return f.element, f.elementErr
}

func (f *fakeBackend) Displays(context.Context) ([]platform.Display, error) {
	return f.displays, nil
}

func (f *fakeBackend) VirtualScreen(context.Context) (platform.Rect, error) {
	return platform.UnionBounds(f.displays), nil
}

func (f *fakeBackend) Capture(_ context.Context, region platform.Rect) (image.Image, error) {
	f.mu.Lock()
	f.captures = append(f.captures, region)
	scale := f.scale
	f.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, region.Width*scale, region.Height*scale))
	fill := color.RGBA{R: 0x20, G: 0x80, B: 0xc0, A: 0xff}
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	return img, nil
}

func (f *fakeBackend) Close() error { return nil }

// fakeElement serves canned field values; a non-nil entry in errs makes
// that field fail.
type fakeElement struct {
	name, controlType, className string
	value, legacyName            string
	bounds                       [4]int
	runtimeID                    []int
	hwnd                         platform.WindowID
	errs                         map[string]error
	released                     int
}

var errFieldUnavailable = errors.New("field unavailable")

func (e *fakeElement) field(name, v string) (string, error) {
	if err := e.errs[name]; err != nil {
		return "", err
	}
	return v, nil
}

func (e *fakeElement) Name() (string, error)        { return e.field("name", e.name) }
func (e *fakeElement) ControlType() (string, error) { return e.field("control_type", e.controlType) }
func (e *fakeElement) ClassName() (string, error)   { return e.field("class_name", e.className) }
func (e *fakeElement) Value() (string, error)       { return e.field("value", e.value) }
func (e *fakeElement) LegacyName() (string, error)  { return e.field("legacy_name", e.legacyName) }

func (e *fakeElement) Bounds() ([4]int, error) {
	if err := e.errs["bounding"]; err != nil {
		return [4]int{}, err
	}
	return e.bounds, nil
}

func (e *fakeElement) RuntimeID() ([]int, error) {
	if err := e.errs["runtime_id"]; err != nil {
		return nil, err
	}
	return e.runtimeID, nil
}

func (e *fakeElement) WindowHandle() (platform.WindowID, error) {
	if err := e.errs["hwnd"]; err != nil {
		return 0, err
	}
	return e.hwnd, nil
}

func (e *fakeElement) Release() { e.released++ }
