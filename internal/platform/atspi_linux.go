//go:build linux

package platform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/system-mcp/internal/runtimepath"
	"github.com/godbus/dbus/v5"
)

const (
	a11yBusName = "org.a11y.Bus"
	a11yBusPath = dbus.ObjectPath("/org/a11y/bus")

	atspiRegistry = "org.a11y.atspi.Registry"
	atspiRootPath = dbus.ObjectPath("/org/a11y/atspi/accessible/root")
	atspiNullPath = dbus.ObjectPath("/org/a11y/atspi/null")

	ifaceAccessible  = "org.a11y.atspi.Accessible"
	ifaceComponent   = "org.a11y.atspi.Component"
	ifaceText        = "org.a11y.atspi.Text"
	ifaceValue       = "org.a11y.atspi.Value"
	ifaceApplication = "org.a11y.atspi.Application"

	// ATSPI_COORD_TYPE_SCREEN
	coordScreen uint32 = 0

	// ATSPI_STATE_SHOWING lives in the low word of the state set.
	stateShowing = 25

	maxAccessibleDepth = 64
)

// accessibleRef is the (so) pair AT-SPI uses to name an object.
type accessibleRef struct {
	Name string
	Path dbus.ObjectPath
}

func (r accessibleRef) isNull() bool {
	return r.Name == "" || r.Path == "" || r.Path == atspiNullPath
}

type atspiClient struct {
	conn *dbus.Conn
}

// dialAtspi asks the session bus for the accessibility bus address and
// connects to it.
func dialAtspi(ctx context.Context) (*atspiClient, error) {
	sessionAddr, err := runtimepath.SessionBusAddress()
	if err != nil {
		return nil, err
	}
	session, err := dbus.Connect(sessionAddr, dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	defer session.Close()

	var a11yAddr string
	if err := session.Object(a11yBusName, a11yBusPath).
		CallWithContext(ctx, a11yBusName+".GetAddress", 0).
		Store(&a11yAddr); err != nil {
		return nil, fmt.Errorf("query accessibility bus address: %w", err)
	}

	conn, err := dbus.Connect(a11yAddr)
	if err != nil {
		return nil, fmt.Errorf("connect accessibility bus: %w", err)
	}
	return &atspiClient{conn: conn}, nil
}

func (c *atspiClient) Close() error {
	return c.conn.Close()
}

func (c *atspiClient) Connected() bool {
	return c.conn.Connected()
}

func (c *atspiClient) object(ref accessibleRef) dbus.BusObject {
	return c.conn.Object(ref.Name, ref.Path)
}

func (c *atspiClient) children(ctx context.Context, ref accessibleRef) ([]accessibleRef, error) {
	var out []accessibleRef
	err := c.object(ref).CallWithContext(ctx, ifaceAccessible+".GetChildren", 0).Store(&out)
	return out, err
}

func (c *atspiClient) showing(ctx context.Context, ref accessibleRef) bool {
	var states []uint32
	if err := c.object(ref).CallWithContext(ctx, ifaceAccessible+".GetState", 0).Store(&states); err != nil {
		return false
	}
	return hasState(states, stateShowing)
}

func (c *atspiClient) contains(ctx context.Context, ref accessibleRef, x, y int) bool {
	var inside bool
	err := c.object(ref).
		CallWithContext(ctx, ifaceComponent+".Contains", 0, int32(x), int32(y), coordScreen).
		Store(&inside)
	return err == nil && inside
}

func (c *atspiClient) name(ref accessibleRef) (string, error) {
	var name string
	err := c.object(ref).StoreProperty(ifaceAccessible+".Name", &name)
	return name, err
}

// accessibleAt finds the deepest accessible under the screen point. Among
// the showing top-level frames that contain the point, the one titled like
// the X11 window under the pointer wins; otherwise the first match is used.
func (c *atspiClient) accessibleAt(ctx context.Context, x, y int, preferTitle string) (*accessibleRef, error) {
	root := accessibleRef{Name: atspiRegistry, Path: atspiRootPath}
	apps, err := c.children(ctx, root)
	if err != nil {
		return nil, err
	}

	var candidates []frameCandidate
	for _, app := range apps {
		if app.isNull() {
			continue
		}
		frames, err := c.children(ctx, app)
		if err != nil {
			// A single hung or exiting application must not hide the rest.
			continue
		}
		for _, frame := range frames {
			if frame.isNull() || !c.showing(ctx, frame) || !c.contains(ctx, frame, x, y) {
				continue
			}
			title, _ := c.name(frame)
			candidates = append(candidates, frameCandidate{ref: frame, title: title})
		}
	}

	frame, ok := pickFrame(candidates, preferTitle)
	if !ok {
		return nil, nil
	}

	current := frame
	for depth := 0; depth < maxAccessibleDepth; depth++ {
		var child accessibleRef
		err := c.object(current).
			CallWithContext(ctx, ifaceComponent+".GetAccessibleAtPoint", 0, int32(x), int32(y), coordScreen).
			Store(&child)
		if err != nil || child.isNull() || child == current {
			break
		}
		current = child
	}
	return &current, nil
}

type frameCandidate struct {
	ref   accessibleRef
	title string
}

func pickFrame(candidates []frameCandidate, preferTitle string) (accessibleRef, bool) {
	if len(candidates) == 0 {
		return accessibleRef{}, false
	}
	if preferTitle != "" {
		for _, cand := range candidates {
			if strings.EqualFold(strings.TrimSpace(cand.title), strings.TrimSpace(preferTitle)) {
				return cand.ref, true
			}
		}
	}
	return candidates[0].ref, true
}

func hasState(states []uint32, state uint) bool {
	word := int(state / 32)
	if word >= len(states) {
		return false
	}
	return states[word]&(1<<(state%32)) != 0
}

// objectNumber extracts the numeric suffix most toolkits use for
// accessible object paths.
func objectNumber(path dbus.ObjectPath) (int, error) {
	s := string(path)
	idx := strings.LastIndexByte(s, '/')
	if idx < 0 || idx == len(s)-1 {
		return 0, fmt.Errorf("object path %q has no id segment", s)
	}
	n, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("object path %q has no numeric id: %w", s, err)
	}
	return n, nil
}

// atspiElement implements Element on top of one AT-SPI accessible.
type atspiElement struct {
	client *atspiClient
	ref    accessibleRef
	owner  WindowID
}

var _ Element = (*atspiElement)(nil)

func (e *atspiElement) Name() (string, error) {
	return e.client.name(e.ref)
}

func (e *atspiElement) ControlType() (string, error) {
	var role string
	err := e.client.object(e.ref).Call(ifaceAccessible+".GetRoleName", 0).Store(&role)
	return role, err
}

func (e *atspiElement) ClassName() (string, error) {
	var attrs map[string]string
	if err := e.client.object(e.ref).Call(ifaceAccessible+".GetAttributes", 0).Store(&attrs); err != nil {
		return "", err
	}
	for _, key := range []string{"class", "tag"} {
		if v := strings.TrimSpace(attrs[key]); v != "" {
			return v, nil
		}
	}

	app := accessibleRef{Name: e.ref.Name, Path: atspiRootPath}
	var toolkit string
	if err := e.client.object(app).StoreProperty(ifaceApplication+".ToolkitName", &toolkit); err != nil {
		return "", err
	}
	if toolkit == "" {
		return "", errors.New("accessible exposes no class attribute")
	}
	return toolkit, nil
}

func (e *atspiElement) Bounds() ([4]int, error) {
	var extents struct {
		X, Y, Width, Height int32
	}
	if err := e.client.object(e.ref).Call(ifaceComponent+".GetExtents", 0, coordScreen).Store(&extents); err != nil {
		return [4]int{}, err
	}
	left, top := int(extents.X), int(extents.Y)
	return [4]int{left, top, left + int(extents.Width), top + int(extents.Height)}, nil
}

// RuntimeID is the owning process id followed by the object number.
func (e *atspiElement) RuntimeID() ([]int, error) {
	var pid uint32
	if err := e.client.conn.BusObject().
		Call("org.freedesktop.DBus.GetConnectionUnixProcessID", 0, e.ref.Name).
		Store(&pid); err != nil {
		return nil, err
	}
	n, err := objectNumber(e.ref.Path)
	if err != nil {
		return nil, err
	}
	return []int{int(pid), n}, nil
}

func (e *atspiElement) WindowHandle() (WindowID, error) {
	if e.owner == 0 {
		return 0, errors.New("no top-level window under the element")
	}
	return e.owner, nil
}

// Value reads the Text interface and then the Value interface.
func (e *atspiElement) Value() (string, error) {
	obj := e.client.object(e.ref)
	var text string
	textErr := obj.Call(ifaceText+".GetText", 0, int32(0), int32(-1)).Store(&text)
	if textErr == nil && text != "" {
		return text, nil
	}

	var current float64
	if err := obj.StoreProperty(ifaceValue+".CurrentValue", &current); err == nil {
		return strconv.FormatFloat(current, 'f', -1, 64), nil
	}
	if textErr != nil {
		return "", textErr
	}
	return text, nil
}

// LegacyName maps to the accessible description, the closest AT-SPI
// counterpart of the MSAA name.
func (e *atspiElement) LegacyName() (string, error) {
	var desc string
	err := e.client.object(e.ref).StoreProperty(ifaceAccessible+".Description", &desc)
	return desc, err
}

func (e *atspiElement) Release() {}
