package x11

import (
	"fmt"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResize moves and resizes a window. Maximized state is dropped first so
// the client does not fight the placement.
func (c *Connection) MoveResize(win xproto.Window, r geom.Rect) error {
	c.unmaximize(win)
	c.setPlaced(win, r)
	// X rejects zero sizes.
	xwindow.New(c.XUtil, win).MoveResize(r.X, r.Y, max(r.Width, 1), max(r.Height, 1))
	return nil
}

func (c *Connection) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	kept := states[:0]
	changed := false
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_FULLSCREEN":
			changed = true
		default:
			kept = append(kept, state)
		}
	}
	if changed {
		ewmh.WmStateSet(c.XUtil, win, kept)
	}
}

// Show maps a window.
func (c *Connection) Show(win xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

// Hide unmaps a window without letting the event loop treat it as closed.
// Windows that are not mapped generate no UnmapNotify and are skipped.
func (c *Connection) Hide(win xproto.Window) error {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return err
	}
	if attrs.MapState == xproto.MapStateUnmapped {
		return nil
	}
	c.expectUnmap(win)
	if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check(); err != nil {
		c.consumeUnmap(win)
		return err
	}
	return nil
}

// Focus gives win the input focus and publishes it as _NET_ACTIVE_WINDOW.
func (c *Connection) Focus(win xproto.Window) error {
	if err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime).Check(); err != nil {
		return fmt.Errorf("failed to focus window %d: %w", win, err)
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), win, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// ClearFocus returns input focus to the root window.
func (c *Connection) ClearFocus() error {
	if err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot, c.Root, xproto.TimeCurrentTime).Check(); err != nil {
		return err
	}
	return ewmh.ActiveWindowSet(c.XUtil, 0)
}

// CloseWindow requests graceful window close via WM_DELETE_WINDOW. Clients
// that do not take part in the protocol are killed.
func (c *Connection) CloseWindow(win xproto.Window) error {
	reply, err := xprop.GetProperty(c.XUtil, win, "WM_PROTOCOLS")
	protocols, err := xprop.PropValAtoms(c.XUtil, reply, err)
	supportsDelete := false
	if err == nil {
		for _, p := range protocols {
			if p == "WM_DELETE_WINDOW" {
				supportsDelete = true
			}
		}
	}
	if !supportsDelete {
		return xproto.KillClientChecked(c.XUtil.Conn(), uint32(win)).Check()
	}

	deleteAtom, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), uint32(xproto.TimeCurrentTime), 0, 0, 0}),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// IsDock reports whether win is a panel that reserves screen space.
func (c *Connection) IsDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// IsManageable reports whether win should be tiled. Override-redirect
// windows, transients and special window types are left alone.
func (c *Connection) IsManageable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil || attrs.OverrideRedirect || attrs.Class == xproto.WindowClassInputOnly {
		return false
	}
	if _, err := xprop.PropValWindow(xprop.GetProperty(c.XUtil, win, "WM_TRANSIENT_FOR")); err == nil {
		return false
	}

	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK", "_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_UTILITY", "_NET_WM_WINDOW_TYPE_MENU":
			return false
		}
	}
	return len(types) == 0
}

// ExistingWindows lists mapped top-level windows found at startup, in
// stacking order: the ones to tile and the docks.
func (c *Connection) ExistingWindows() (clients, docks []xproto.Window, err error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query window tree: %w", err)
	}
	for _, win := range tree.Children {
		if win == c.check.Id {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		switch {
		case c.IsDock(win):
			docks = append(docks, win)
		case c.IsManageable(win):
			clients = append(clients, win)
		}
	}
	return clients, docks, nil
}

// Windows lists every top-level window that still exists, mapped or not.
func (c *Connection) Windows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}
	return tree.Children, nil
}
