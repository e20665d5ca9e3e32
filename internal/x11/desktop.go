package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Name is published as the window manager name.
const Name = "sabini"

var supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_WM_DESKTOP",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
}

// announce publishes the EWMH properties that identify a running window
// manager.
func (c *Connection) announce() error {
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, c.check.Id); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.check.Id, c.check.Id); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, c.check.Id, Name); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := ewmh.SupportedSet(c.XUtil, supported); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTED: %w", err)
	}
	return nil
}

// SetDesktops publishes the workspace names and the visible one.
func (c *Connection) SetDesktops(names []string, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return fmt.Errorf("failed to set _NET_NUMBER_OF_DESKTOPS: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return fmt.Errorf("failed to set _NET_DESKTOP_NAMES: %w", err)
	}
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(current)); err != nil {
		return fmt.Errorf("failed to set _NET_CURRENT_DESKTOP: %w", err)
	}
	return nil
}

// SetWindowDesktop records which workspace a window belongs to.
func (c *Connection) SetWindowDesktop(win xproto.Window, desktop int) error {
	return ewmh.WmDesktopSet(c.XUtil, win, uint(desktop))
}

// SetClientList publishes the managed windows.
func (c *Connection) SetClientList(wins []xproto.Window) error {
	return ewmh.ClientListSet(c.XUtil, wins)
}
