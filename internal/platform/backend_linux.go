//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/1broseidon/system-mcp/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend drives an X11 session. Accessibility lookups go through the
// AT-SPI bus, which is dialled on first use.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger

	a11yMu sync.Mutex
	a11y   *atspiClient
}

var _ Backend = (*LinuxBackend)(nil)

// Open resolves the X11 session and connects to it.
func Open(opts Options) (Backend, error) {
	env, err := x11.ResolveDisplayEnv(opts.Display, opts.XAuthority)
	if err != nil {
		return nil, err
	}
	conn, err := x11.NewConnection(env)
	if err != nil {
		return nil, err
	}
	opts.logger().Debug("connected to X11", "display", env.Display, "xauthority", env.XAuthority)
	return NewLinuxBackend(conn, opts.logger()), nil
}

// NewLinuxBackend wraps an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{conn: conn, logger: logger}
}

// Close releases the X11 connection and the accessibility bus, if open.
func (b *LinuxBackend) Close() error {
	if b == nil {
		return nil
	}
	b.a11yMu.Lock()
	if b.a11y != nil {
		_ = b.a11y.Close()
		b.a11y = nil
	}
	b.a11yMu.Unlock()
	if b.conn != nil {
		b.conn.Close()
	}
	return nil
}

func (b *LinuxBackend) connection(ctx context.Context) (*x11.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil || b.conn == nil {
		return nil, errors.New("linux backend is not connected to X11")
	}
	return b.conn, nil
}

// CursorPosition returns the pointer location on the root window.
func (b *LinuxBackend) CursorPosition(ctx context.Context) (Point, error) {
	conn, err := b.connection(ctx)
	if err != nil {
		return Point{}, err
	}
	x, y, err := conn.PointerPosition()
	if err != nil {
		return Point{}, xCallFailed("QueryPointer", err)
	}
	return Point{X: x, Y: y}, nil
}

// SetCursorPosition warps the pointer to an absolute position.
func (b *LinuxBackend) SetCursorPosition(ctx context.Context, x, y int) error {
	if !fitsInt16(x) || !fitsInt16(y) {
		return InvalidArgumentf("position (%d, %d) is outside the X11 coordinate range", x, y)
	}
	conn, err := b.connection(ctx)
	if err != nil {
		return err
	}
	if err := conn.WarpPointer(x, y); err != nil {
		return xCallFailed("WarpPointer", err)
	}
	return nil
}

// Click injects a press and release through XTEST.
func (b *LinuxBackend) Click(ctx context.Context, button Button) error {
	var detail byte
	switch button {
	case ButtonLeft:
		detail = x11.ButtonLeft
	case ButtonRight:
		detail = x11.ButtonRight
	case ButtonMiddle:
		detail = x11.ButtonMiddle
	default:
		return InvalidArgumentf("unknown button %d", int(button))
	}
	conn, err := b.connection(ctx)
	if err != nil {
		return err
	}
	if err := conn.Click(detail); err != nil {
		return xCallFailed("XTestFakeInput", err)
	}
	return nil
}

// ListWindows returns managed top-level windows in _NET_CLIENT_LIST order.
func (b *LinuxBackend) ListWindows(ctx context.Context, filter WindowFilter) ([]Window, error) {
	conn, err := b.connection(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, xCallFailed("_NET_CLIENT_LIST", err)
	}

	windows := make([]Window, 0, len(clients))
	for _, win := range clients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		title := conn.WindowTitle(win)
		visible := conn.IsWindowVisible(win)
		if !filter.Keep(visible, title) {
			continue
		}
		geom, err := conn.WindowGeometry(win)
		if err != nil {
			// Windows can disappear between listing and inspection.
			continue
		}
		windows = append(windows, Window{
			ID:      WindowID(win),
			Title:   title,
			Visible: visible,
			Bounds: Rect{
				X:      geom.X,
				Y:      geom.Y,
				Width:  geom.Width,
				Height: geom.Height,
			},
		})
	}
	return windows, nil
}

// WindowBounds returns the current root-relative window rectangle.
func (b *LinuxBackend) WindowBounds(ctx context.Context, id WindowID) (Rect, error) {
	conn, win, err := b.liveWindow(ctx, id)
	if err != nil {
		return Rect{}, err
	}
	geom, err := conn.WindowGeometry(win)
	if err != nil {
		return Rect{}, b.windowError("GetGeometry", id, err)
	}
	return Rect{X: geom.X, Y: geom.Y, Width: geom.Width, Height: geom.Height}, nil
}

// MoveResize asks the window manager to place the window at bounds.
func (b *LinuxBackend) MoveResize(ctx context.Context, id WindowID, bounds Rect) error {
	conn, win, err := b.liveWindow(ctx, id)
	if err != nil {
		return err
	}
	if err := conn.MoveResizeWindow(win, bounds.X, bounds.Y, bounds.Width, bounds.Height); err != nil {
		return b.windowError("_NET_MOVERESIZE_WINDOW", id, err)
	}
	return nil
}

// Activate requests focus through _NET_ACTIVE_WINDOW and raises the window.
func (b *LinuxBackend) Activate(ctx context.Context, id WindowID) error {
	conn, win, err := b.liveWindow(ctx, id)
	if err != nil {
		return err
	}
	if err := conn.ActivateWindow(win); err != nil {
		return b.windowError("_NET_ACTIVE_WINDOW", id, err)
	}
	return nil
}

func (b *LinuxBackend) liveWindow(ctx context.Context, id WindowID) (*x11.Connection, xproto.Window, error) {
	conn, err := b.connection(ctx)
	if err != nil {
		return nil, 0, err
	}
	if id == 0 || id > math.MaxUint32 {
		return nil, 0, NotFoundf("window %d does not exist", id)
	}
	win := xproto.Window(id)
	ok, err := conn.WindowExists(win)
	if err != nil {
		return nil, 0, xCallFailed("GetWindowAttributes", err)
	}
	if !ok {
		return nil, 0, NotFoundf("window %d does not exist", id)
	}
	return conn, win, nil
}

func (b *LinuxBackend) windowError(op string, id WindowID, err error) error {
	if x11.IsBadWindow(err) {
		return NotFoundf("window %d does not exist", id)
	}
	return xCallFailed(op, err)
}

// ElementAt resolves the accessible under the point through AT-SPI. An
// unreachable accessibility bus is reported as "nothing there".
func (b *LinuxBackend) ElementAt(ctx context.Context, x, y int) (Element, error) {
	conn, err := b.connection(ctx)
	if err != nil {
		return nil, err
	}

	var owner WindowID
	var ownerTitle string
	if win, err := conn.TopLevelAt(x, y); err == nil && win != 0 {
		owner = WindowID(win)
		ownerTitle = conn.WindowTitle(win)
	}

	client, err := b.atspi(ctx)
	if err != nil {
		b.logger.Debug("accessibility bus unavailable", "error", err)
		return nil, nil
	}
	ref, err := client.accessibleAt(ctx, x, y, ownerTitle)
	if err != nil {
		b.logger.Debug("accessible lookup failed", "x", x, "y", y, "error", err)
		b.dropAtspi(client)
		return nil, nil
	}
	if ref == nil {
		return nil, nil
	}
	return &atspiElement{client: client, ref: *ref, owner: owner}, nil
}

func (b *LinuxBackend) atspi(ctx context.Context) (*atspiClient, error) {
	b.a11yMu.Lock()
	defer b.a11yMu.Unlock()
	if b.a11y != nil {
		return b.a11y, nil
	}
	client, err := dialAtspi(ctx)
	if err != nil {
		return nil, err
	}
	b.a11y = client
	return client, nil
}

// dropAtspi forgets a client whose bus connection has gone away so the next
// lookup redials.
func (b *LinuxBackend) dropAtspi(client *atspiClient) {
	if client.Connected() {
		return
	}
	b.a11yMu.Lock()
	defer b.a11yMu.Unlock()
	if b.a11y == client {
		_ = client.Close()
		b.a11y = nil
	}
}

// Displays returns RandR monitors ordered left to right, or the whole root
// window when RandR reports nothing.
func (b *LinuxBackend) Displays(ctx context.Context) ([]Display, error) {
	conn, err := b.connection(ctx)
	if err != nil {
		return nil, err
	}
	monitors, err := conn.Monitors()
	if err != nil {
		b.logger.Debug("randr unavailable, using root window", "error", err)
	}
	if len(monitors) == 0 {
		w, h := conn.ScreenSize()
		return []Display{{ID: 0, Name: "root", Bounds: Rect{Width: w, Height: h}}}, nil
	}
	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:   m.ID,
			Name: m.Name,
			Bounds: Rect{
				X:      m.X,
				Y:      m.Y,
				Width:  m.Width,
				Height: m.Height,
			},
		})
	}
	return displays, nil
}

// VirtualScreen is the root window: X11 places every monitor inside it.
func (b *LinuxBackend) VirtualScreen(ctx context.Context) (Rect, error) {
	conn, err := b.connection(ctx)
	if err != nil {
		return Rect{}, err
	}
	w, h := conn.ScreenSize()
	return Rect{Width: w, Height: h}, nil
}

// Capture reads the region from the root window.
func (b *LinuxBackend) Capture(ctx context.Context, region Rect) (image.Image, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, InvalidArgumentf("capture size %dx%d must be positive", region.Width, region.Height)
	}
	if !fitsInt16(region.X) || !fitsInt16(region.Y) || region.Width > math.MaxUint16 || region.Height > math.MaxUint16 {
		return nil, InvalidArgumentf("capture region %+v is outside the X11 coordinate range", region)
	}
	conn, err := b.connection(ctx)
	if err != nil {
		return nil, err
	}
	img, err := conn.CaptureRoot(region.X, region.Y, region.Width, region.Height)
	if err != nil {
		return nil, xCallFailed("GetImage", err)
	}
	return img, nil
}

func xCallFailed(op string, err error) error {
	return CallFailed(op, x11.ErrorCode(err), fmt.Errorf("x11: %w", err))
}

func fitsInt16(v int) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}
