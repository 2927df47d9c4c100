package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// ActivateWindow asks the window manager to focus windowID with a
// _NET_ACTIVE_WINDOW client message to the root window, then raises it.
// The message is built by hand; the xgbutil ewmh helper panics on this
// library version. A window manager that refuses focus is not detected.
func (c *Connection) ActivateWindow(windowID xproto.Window) error {
	atom, err := c.internAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	const sourceIndication = 2 // direct user action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	if err := xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check(); err != nil {
		return err
	}

	// Raise directly as well for window managers that ignore the request.
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		windowID,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

func (c *Connection) internAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}
