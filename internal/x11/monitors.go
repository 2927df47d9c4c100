package x11

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor is one active RandR CRTC in root window coordinates.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) sameArea(o Monitor) bool {
	return m.X == o.X && m.Y == o.Y && m.Width == o.Width && m.Height == o.Height
}

// Monitors lists the active CRTCs ordered left to right, then top to
// bottom. Mirrored outputs sharing one area are reported once.
func (c *Connection) Monitors() ([]Monitor, error) {
	xc := c.XUtil.Conn()
	if err := randr.Init(xc); err != nil {
		return nil, fmt.Errorf("randr init: %w", err)
	}
	res, err := randr.GetScreenResources(xc, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(xc, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		m := Monitor{
			ID:     i,
			Name:   fmt.Sprintf("crtc-%d", i),
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		if out, err := randr.GetOutputInfo(xc, info.Outputs[0], res.ConfigTimestamp).Reply(); err == nil {
			m.Name = string(out.Name)
		}
		monitors = append(monitors, m)
	}
	return orderMonitors(monitors), nil
}

func orderMonitors(monitors []Monitor) []Monitor {
	slices.SortStableFunc(monitors, func(a, b Monitor) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
	return slices.CompactFunc(monitors, Monitor.sameArea)
}
