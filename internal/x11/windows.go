package x11

import (
	"errors"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Geometry is a window rectangle in root coordinates.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ClientWindows returns the managed top-level windows in mapping order.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	return ewmh.ClientListGet(c.XUtil)
}

// StackedClientWindows returns the managed top-level windows bottom to top.
// It falls back to mapping order when the window manager does not publish
// a stacking list.
func (c *Connection) StackedClientWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err == nil && len(clients) > 0 {
		return clients, nil
	}
	return c.ClientWindows()
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowGeometry returns the window rectangle translated to root
// coordinates. A BadWindow/BadDrawable reply means the window is gone.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, err
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// IsWindowVisible reports whether the window is mapped and viewable and not
// hidden (minimized) according to _NET_WM_STATE.
func (c *Connection) IsWindowVisible(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil || attrs.MapState != xproto.MapStateViewable {
		return false
	}
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return false
		}
	}
	return true
}

// WindowExists reports whether windowID still refers to a live window.
func (c *Connection) WindowExists(windowID xproto.Window) (bool, error) {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err == nil {
		return true, nil
	}
	if IsBadWindow(err) {
		return false, nil
	}
	return false, err
}

// TopLevelAt returns the topmost visible managed window containing the
// root-relative point, or 0 when there is none.
func (c *Connection) TopLevelAt(x, y int) (xproto.Window, error) {
	clients, err := c.StackedClientWindows()
	if err != nil {
		return 0, err
	}
	for i := len(clients) - 1; i >= 0; i-- {
		win := clients[i]
		if !c.IsWindowVisible(win) {
			continue
		}
		geom, err := c.WindowGeometry(win)
		if err != nil {
			continue
		}
		if x >= geom.X && x < geom.X+geom.Width && y >= geom.Y && y < geom.Y+geom.Height {
			return win, nil
		}
	}
	return 0, nil
}

// MoveResizeWindow asks the window manager to move and resize a window,
// falling back to a direct ConfigureWindow when the EWMH request fails.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	return moveResize(
		func() error { return c.unmaximizeWindow(windowID) },
		func() error { return ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height) },
		func() error { return c.configureWindow(windowID, x, y, width, height) },
	)
}

func moveResize(unmaximize, request, configure func() error) error {
	// Maximized windows ignore move requests under most window managers.
	if err := unmaximize(); err != nil && IsBadWindow(err) {
		return err
	}
	reqErr := request()
	if reqErr == nil {
		return nil
	}
	if err := configure(); err != nil {
		return errors.Join(reqErr, err)
	}
	return nil
}

func (c *Connection) configureWindow(windowID xproto.Window, x, y, width, height int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{uint32(int32(x)), uint32(int32(y)), uint32(width), uint32(height)}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsBadWindow reports whether err is an X BadWindow or BadDrawable reply.
func IsBadWindow(err error) bool {
	var we xproto.WindowError
	var de xproto.DrawableError
	return errors.As(err, &we) || errors.As(err, &de)
}

// ErrorCode extracts the X protocol error code from err, or 0.
func ErrorCode(err error) uint32 {
	var (
		we xproto.WindowError
		de xproto.DrawableError
		me xproto.MatchError
		ve xproto.ValueError
	)
	switch {
	case errors.As(err, &we):
		return xproto.BadWindow
	case errors.As(err, &de):
		return xproto.BadDrawable
	case errors.As(err, &me):
		return xproto.BadMatch
	case errors.As(err, &ve):
		return xproto.BadValue
	default:
		return 0
	}
}
