package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// hasXTest is false when the server lacks the XTEST extension; clicks
	// then fail with a clear error instead of a protocol error.
	hasXTest bool
}

// NewConnection establishes a connection to the X11 server named by env and
// initializes the extensions used for input injection.
func NewConnection(env DisplayEnv) (*Connection, error) {
	// xgb reads the cookie file location from the environment.
	if env.XAuthority != "" {
		if err := os.Setenv("XAUTHORITY", env.XAuthority); err != nil {
			return nil, fmt.Errorf("failed to set XAUTHORITY: %w", err)
		}
	}

	xu, err := xgbutil.NewConnDisplay(env.Display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11 display %q: %w", env.Display, err)
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	if err := xtest.Init(xu.Conn()); err == nil {
		c.hasXTest = true
	}
	return c, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// ScreenSize returns the root window size in pixels.
func (c *Connection) ScreenSize() (width, height int) {
	screen := c.XUtil.Screen()
	return int(screen.WidthInPixels), int(screen.HeightInPixels)
}
