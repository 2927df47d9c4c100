//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"syscall"
	"unsafe"

	"github.com/go-vgo/robotgo"
	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procSetCursorPos        = user32.NewProc("SetCursorPos")
	procSendInput           = user32.NewProc("SendInput")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
	procGetWindowTextLength = user32.NewProc("GetWindowTextLengthW")
	procMoveWindow          = user32.NewProc("MoveWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop    = user32.NewProc("BringWindowToTop")
	procShowWindow          = user32.NewProc("ShowWindow")
	procIsIconic            = user32.NewProc("IsIconic")
	procAttachThreadInput   = user32.NewProc("AttachThreadInput")
	procGetSystemMetrics    = user32.NewProc("GetSystemMetrics")
)

const (
	inputMouse = 0

	mouseeventfLeftDown   = 0x0002
	mouseeventfLeftUp     = 0x0004
	mouseeventfRightDown  = 0x0008
	mouseeventfRightUp    = 0x0010
	mouseeventfMiddleDown = 0x0020
	mouseeventfMiddleUp   = 0x0040

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	swRestore = 9
)

type winPoint struct {
	X, Y int32
}

type winRect struct {
	Left, Top, Right, Bottom int32
}

type mouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// input mirrors INPUT with the mouse arm of the union.
type input struct {
	Type uint32
	Mi   mouseInput
}

// WindowsBackend drives the interactive desktop through user32. Element
// lookups go through UI Automation on a dedicated COM thread.
type WindowsBackend struct {
	logger *slog.Logger
	uia    *uiaWorker
}

var _ Backend = (*WindowsBackend)(nil)

// Open starts the UI Automation worker. The desktop itself needs no
// connection on Windows.
func Open(opts Options) (Backend, error) {
	b := &WindowsBackend{logger: opts.logger()}
	uia, err := startUIAWorker()
	if err != nil {
		b.logger.Warn("UI Automation unavailable, element lookups will return nothing", "error", err)
	} else {
		b.uia = uia
	}
	return b, nil
}

// Close stops the UI Automation worker.
func (b *WindowsBackend) Close() error {
	if b.uia != nil {
		b.uia.stop()
	}
	return nil
}

// winCallFailed builds a PlatformCallError from a LazyProc return triple.
func winCallFailed(op string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return CallFailed(op, uint32(errno), errno)
	}
	return CallFailed(op, 0, nil)
}

func (b *WindowsBackend) CursorPosition(ctx context.Context) (Point, error) {
	if err := ctx.Err(); err != nil {
		return Point{}, err
	}
	var pt winPoint
	r, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return Point{}, winCallFailed("GetCursorPos", err)
	}
	return Point{X: int(pt.X), Y: int(pt.Y)}, nil
}

func (b *WindowsBackend) SetCursorPosition(ctx context.Context, x, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if r == 0 {
		return winCallFailed("SetCursorPos", err)
	}
	return nil
}

// Click submits the down and up events in a single SendInput batch.
func (b *WindowsBackend) Click(ctx context.Context, button Button) error {
	var down, up uint32
	switch button {
	case ButtonLeft:
		down, up = mouseeventfLeftDown, mouseeventfLeftUp
	case ButtonRight:
		down, up = mouseeventfRightDown, mouseeventfRightUp
	case ButtonMiddle:
		down, up = mouseeventfMiddleDown, mouseeventfMiddleUp
	default:
		return InvalidArgumentf("unknown button %d", int(button))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	inputs := [2]input{
		{Type: inputMouse, Mi: mouseInput{Flags: down}},
		{Type: inputMouse, Mi: mouseInput{Flags: up}},
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if n != uintptr(len(inputs)) {
		return winCallFailed("SendInput", err)
	}
	return nil
}

var (
	enumMu      sync.Mutex
	enumHandles *[]windows.HWND

	// enumWindowsProc is created once: the runtime never frees callbacks and
	// caps how many can exist.
	enumWindowsProc = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		*enumHandles = append(*enumHandles, hwnd)
		return 1
	})
)

// topLevelWindows runs EnumWindows. Calls are serialized because the
// callback appends to a shared target.
func topLevelWindows() ([]windows.HWND, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	var handles []windows.HWND
	enumHandles = &handles
	defer func() { enumHandles = nil }()
	if err := windows.EnumWindows(enumWindowsProc, nil); err != nil {
		return nil, winCallFailed("EnumWindows", err)
	}
	return handles, nil
}

// ListWindows returns top-level windows in EnumWindows (z-order) order.
func (b *WindowsBackend) ListWindows(ctx context.Context, filter WindowFilter) ([]Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handles, err := topLevelWindows()
	if err != nil {
		return nil, err
	}

	out := make([]Window, 0, len(handles))
	for _, hwnd := range handles {
		visible := windows.IsWindowVisible(hwnd)
		title := windowText(hwnd)
		if !filter.Keep(visible, title) {
			continue
		}
		rect, err := windowRect(hwnd)
		if err != nil {
			continue
		}
		out = append(out, Window{
			ID:      WindowID(hwnd),
			Title:   title,
			Visible: visible,
			Bounds:  rect,
		})
	}
	return out, nil
}

func windowText(hwnd windows.HWND) string {
	n, _, _ := procGetWindowTextLength.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	r, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:r])
}

func windowRect(hwnd windows.HWND) (Rect, error) {
	var r winRect
	ok, _, err := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return Rect{}, winCallFailed("GetWindowRect", err)
	}
	return Rect{
		X:      int(r.Left),
		Y:      int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}, nil
}

func liveHWND(id WindowID) (windows.HWND, error) {
	hwnd := windows.HWND(id)
	if hwnd == 0 || !windows.IsWindow(hwnd) {
		return 0, NotFoundf("window %d does not exist", id)
	}
	return hwnd, nil
}

func (b *WindowsBackend) WindowBounds(ctx context.Context, id WindowID) (Rect, error) {
	if err := ctx.Err(); err != nil {
		return Rect{}, err
	}
	hwnd, err := liveHWND(id)
	if err != nil {
		return Rect{}, err
	}
	return windowRect(hwnd)
}

func (b *WindowsBackend) MoveResize(ctx context.Context, id WindowID, bounds Rect) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hwnd, err := liveHWND(id)
	if err != nil {
		return err
	}
	ok, _, callErr := procMoveWindow.Call(
		uintptr(hwnd),
		uintptr(int32(bounds.X)), uintptr(int32(bounds.Y)),
		uintptr(int32(bounds.Width)), uintptr(int32(bounds.Height)),
		1,
	)
	if ok == 0 {
		return winCallFailed("MoveWindow", callErr)
	}
	return nil
}

// Activate restores a minimized window and brings it to the foreground.
// When the foreground lock refuses the request, the input queues of the
// current foreground thread and ours are attached for one more attempt.
// A final refusal is not an error.
func (b *WindowsBackend) Activate(ctx context.Context, id WindowID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hwnd, err := liveHWND(id)
	if err != nil {
		return err
	}

	if iconic, _, _ := procIsIconic.Call(uintptr(hwnd)); iconic != 0 {
		procShowWindow.Call(uintptr(hwnd), swRestore)
	}
	if ok, _, _ := procSetForegroundWindow.Call(uintptr(hwnd)); ok != 0 {
		return nil
	}

	fg := windows.GetForegroundWindow()
	fgThread, _ := windows.GetWindowThreadProcessId(fg, nil)
	self := windows.GetCurrentThreadId()
	if fgThread != 0 && fgThread != self {
		procAttachThreadInput.Call(uintptr(self), uintptr(fgThread), 1)
		defer procAttachThreadInput.Call(uintptr(self), uintptr(fgThread), 0)
	}
	procBringWindowToTop.Call(uintptr(hwnd))
	if ok, _, _ := procSetForegroundWindow.Call(uintptr(hwnd)); ok == 0 {
		b.logger.Debug("foreground request refused", "hwnd", uint64(id))
	}
	return nil
}

func (b *WindowsBackend) ElementAt(ctx context.Context, x, y int) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.uia == nil {
		return nil, nil
	}
	el, err := b.uia.elementFromPoint(ctx, x, y)
	if err != nil {
		b.logger.Debug("ElementFromPoint failed", "x", x, "y", y, "error", err)
		return nil, nil
	}
	return el, nil
}

func (b *WindowsBackend) Displays(ctx context.Context) ([]Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := robotgo.DisplaysNum()
	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		displays = append(displays, Display{
			ID:     i,
			Name:   fmt.Sprintf("DISPLAY%d", i+1),
			Bounds: Rect{X: x, Y: y, Width: w, Height: h},
		})
	}
	return displays, nil
}

// VirtualScreen reports the bounding box of all monitors. Its origin may be
// negative when a monitor sits left of or above the primary one.
func (b *WindowsBackend) VirtualScreen(ctx context.Context) (Rect, error) {
	if err := ctx.Err(); err != nil {
		return Rect{}, err
	}
	metric := func(idx uintptr) int {
		v, _, _ := procGetSystemMetrics.Call(idx)
		return int(int32(v))
	}
	r := Rect{
		X:      metric(smXVirtualScreen),
		Y:      metric(smYVirtualScreen),
		Width:  metric(smCXVirtualScreen),
		Height: metric(smCYVirtualScreen),
	}
	if r.Width <= 0 || r.Height <= 0 {
		return Rect{}, CallFailed("GetSystemMetrics", 0, errors.New("virtual screen has no area"))
	}
	return r, nil
}

func (b *WindowsBackend) Capture(ctx context.Context, region Rect) (image.Image, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, InvalidArgumentf("capture size %dx%d must be positive", region.Width, region.Height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := robotgo.CaptureImg(region.X, region.Y, region.Width, region.Height)
	if err != nil {
		return nil, CallFailed("BitBlt", 0, err)
	}
	return img, nil
}
