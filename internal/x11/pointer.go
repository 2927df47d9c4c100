package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
)

// Core protocol button numbers.
const (
	ButtonLeft   byte = 1
	ButtonMiddle byte = 2
	ButtonRight  byte = 3
)

// PointerPosition returns the pointer location relative to the root window.
func (c *Connection) PointerPosition() (x, y int, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// WarpPointer moves the pointer to an absolute root-window position.
func (c *Connection) WarpPointer(x, y int) error {
	return xproto.WarpPointerChecked(
		c.XUtil.Conn(),
		xproto.WindowNone,
		c.Root,
		0, 0, 0, 0,
		int16(x), int16(y),
	).Check()
}

// Click sends a synthetic press followed by a release of button through
// XTEST. The pointer is not moved.
func (c *Connection) Click(button byte) error {
	if !c.hasXTest {
		return fmt.Errorf("XTEST extension is not available on this display")
	}
	conn := c.XUtil.Conn()
	if err := xtest.FakeInputChecked(conn, xproto.ButtonPress, button, 0, xproto.WindowNone, 0, 0, 0).Check(); err != nil {
		return err
	}
	return xtest.FakeInputChecked(conn, xproto.ButtonRelease, button, 0, xproto.WindowNone, 0, 0, 0).Check()
}
