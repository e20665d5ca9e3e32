package x11

import (
	"fmt"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Bounds  geom.Rect
	Primary bool
}

// Strut is the space a dock reserves along each root window edge, with the
// span of the edge it covers. Spans are inclusive, as in
// _NET_WM_STRUT_PARTIAL.
type Strut struct {
	Left, Right, Top, Bottom int

	LeftStartY, LeftEndY     int
	RightStartY, RightEndY   int
	TopStartX, TopEndX       int
	BottomStartX, BottomEndX int
}

// FullStrut converts a plain _NET_WM_STRUT into a strut spanning whole edges.
func FullStrut(left, right, top, bottom, rootWidth, rootHeight int) Strut {
	return Strut{
		Left: left, Right: right, Top: top, Bottom: bottom,
		LeftEndY:   rootHeight - 1,
		RightEndY:  rootHeight - 1,
		TopEndX:    rootWidth - 1,
		BottomEndX: rootWidth - 1,
	}
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		isPrimary := false
		for _, o := range info.Outputs {
			if primary != 0 && o == primary {
				isPrimary = true
			}
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    name,
			Bounds:  geom.Rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)},
			Primary: isPrimary,
		})
	}
	return monitors, nil
}

// Screen returns the rectangle windows are tiled into: the primary monitor
// (or the first active one) minus the space reserved by docks. Without
// RandR the whole root window is used.
func (c *Connection) Screen() (geom.Rect, error) {
	root, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geom.Rect{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	rootWidth, rootHeight := int(root.Width), int(root.Height)

	monitors, err := c.Monitors()
	if err != nil || len(monitors) == 0 {
		monitors = []Monitor{{Bounds: geom.Rect{Width: rootWidth, Height: rootHeight}}}
	}
	return UsableArea(PickMonitor(monitors).Bounds, rootWidth, rootHeight, c.struts(rootWidth, rootHeight)), nil
}

// PickMonitor returns the primary monitor, or the first one when none is
// marked primary. monitors must not be empty.
func PickMonitor(monitors []Monitor) Monitor {
	for _, m := range monitors {
		if m.Primary {
			return m
		}
	}
	return monitors[0]
}

// struts reads the reservations of every mapped dock.
func (c *Connection) struts(rootWidth, rootHeight int) []Strut {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}

	var out []Strut
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		if !c.IsDock(win) {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			out = append(out, Strut{
				Left: int(sp.Left), Right: int(sp.Right), Top: int(sp.Top), Bottom: int(sp.Bottom),
				LeftStartY: int(sp.LeftStartY), LeftEndY: int(sp.LeftEndY),
				RightStartY: int(sp.RightStartY), RightEndY: int(sp.RightEndY),
				TopStartX: int(sp.TopStartX), TopEndX: int(sp.TopEndX),
				BottomStartX: int(sp.BottomStartX), BottomEndX: int(sp.BottomEndX),
			})
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			out = append(out, FullStrut(int(s.Left), int(s.Right), int(s.Top), int(s.Bottom), rootWidth, rootHeight))
		}
	}
	return out
}

// UsableArea shrinks monitor by every strut that overlaps it. Each edge is
// reduced by the deepest overlapping reservation on that edge. The result
// keeps at least one pixel in each dimension.
func UsableArea(monitor geom.Rect, rootWidth, rootHeight int, struts []Strut) geom.Rect {
	var inset geom.Thickness
	for _, sp := range struts {
		if sp.Top > 0 {
			band := spanRect(sp.TopStartX, sp.TopEndX, 0, sp.Top-1)
			inset.Top = max(inset.Top, overlap(monitor, band).Height)
		}
		if sp.Bottom > 0 {
			band := spanRect(sp.BottomStartX, sp.BottomEndX, rootHeight-sp.Bottom, rootHeight-1)
			inset.Bottom = max(inset.Bottom, overlap(monitor, band).Height)
		}
		if sp.Left > 0 {
			band := spanRect(0, sp.Left-1, sp.LeftStartY, sp.LeftEndY)
			inset.Left = max(inset.Left, overlap(monitor, band).Width)
		}
		if sp.Right > 0 {
			band := spanRect(rootWidth-sp.Right, rootWidth-1, sp.RightStartY, sp.RightEndY)
			inset.Right = max(inset.Right, overlap(monitor, band).Width)
		}
	}

	out := geom.Rect{
		X:      monitor.X + inset.Left,
		Y:      monitor.Y + inset.Top,
		Width:  monitor.Width - inset.Left - inset.Right,
		Height: monitor.Height - inset.Top - inset.Bottom,
	}
	out.Width = max(out.Width, 1)
	out.Height = max(out.Height, 1)
	return out
}

// spanRect builds a rectangle from inclusive bounds.
func spanRect(x1, x2, y1, y2 int) geom.Rect {
	return geom.Rect{X: x1, Y: y1, Width: x2 - x1 + 1, Height: y2 - y1 + 1}
}

func overlap(a, b geom.Rect) geom.Rect {
	if !a.Intersects(b) {
		return geom.Rect{}
	}
	x1, y1 := max(a.X, b.X), max(a.Y, b.Y)
	x2, y2 := min(a.Right(), b.Right()), min(a.Bottom(), b.Bottom())
	return geom.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
