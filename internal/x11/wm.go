package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrOtherWM is returned by Manage when another window manager owns the
// root window.
var ErrOtherWM = errors.New("another window manager is already running")

// Events receives what the window manager learns from the X server. Calls
// arrive on the event loop goroutine.
type Events interface {
	WindowAppeared(win xproto.Window)
	WindowGone(win xproto.Window)
	ActivateRequested(win xproto.Window)
	DesktopRequested(index int)
	ScreenChanged()
}

// Manage makes the connection the window manager of its screen. Events are
// delivered once EventLoop runs.
func (c *Connection) Manage(events Events) error {
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify |
		xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange)
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrOtherWM
		}
		return fmt.Errorf("failed to select root events: %w", err)
	}
	if err := c.announce(); err != nil {
		return err
	}

	xevent.MapRequestFun(func(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		c.handleMapRequest(events, ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.ConfigureRequestFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		c.handleConfigureRequest(*ev.ConfigureRequestEvent)
	}).Connect(c.XUtil, c.Root)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		if ev.Window == c.Root || c.consumeUnmap(ev.Window) {
			return
		}
		xevent.Detach(c.XUtil, ev.Window)
		if c.forget(ev.Window) {
			events.ScreenChanged()
			return
		}
		events.WindowGone(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		xevent.Detach(c.XUtil, ev.Window)
		if c.forget(ev.Window) {
			events.ScreenChanged()
			return
		}
		events.WindowGone(ev.Window)
	}).Connect(c.XUtil, c.Root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.Window == c.Root {
			events.ScreenChanged()
		}
	}).Connect(c.XUtil, c.Root)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		c.handleClientMessage(events, *ev.ClientMessageEvent)
	}).Connect(c.XUtil, c.Root)

	return nil
}

func (c *Connection) handleMapRequest(events Events, win xproto.Window) {
	if c.IsDock(win) {
		c.WatchDock(win, events)
		c.Show(win)
		events.ScreenChanged()
		return
	}
	if !c.IsManageable(win) {
		c.Show(win)
		return
	}
	c.watchClient(win, events)
	events.WindowAppeared(win)
}

// WatchDock tracks a dock so strut changes and its removal resize the
// screen.
func (c *Connection) WatchDock(win xproto.Window, events Events) {
	c.addDock(win)
	xwindow.New(c.XUtil, win).Listen(xproto.EventMaskPropertyChange)
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(c.XUtil, ev.Atom)
		if err != nil {
			return
		}
		if name == "_NET_WM_STRUT" || name == "_NET_WM_STRUT_PARTIAL" {
			events.ScreenChanged()
		}
	}).Connect(c.XUtil, win)
}

// watchClient routes EWMH client messages aimed at win. These are sent to
// the root window but dispatched by their target.
func (c *Connection) watchClient(win xproto.Window, events Events) {
	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		c.handleClientMessage(events, *ev.ClientMessageEvent)
	}).Connect(c.XUtil, win)
}

// Adopt registers an already-mapped window found at startup.
func (c *Connection) Adopt(win xproto.Window, events Events) {
	c.watchClient(win, events)
}

func (c *Connection) handleClientMessage(events Events, ev xproto.ClientMessageEvent) {
	name, err := xprop.AtomName(c.XUtil, ev.Type)
	if err != nil {
		return
	}
	data := ev.Data.Data32
	switch name {
	case "_NET_ACTIVE_WINDOW":
		events.ActivateRequested(ev.Window)
	case "_NET_CURRENT_DESKTOP":
		events.DesktopRequested(int(data[0]))
	case "_NET_CLOSE_WINDOW":
		c.CloseWindow(ev.Window)
	case "_NET_WM_STATE":
		// Tiled windows stay tiled; undo any fullscreen or maximize request.
		if r, ok := c.placement(ev.Window); ok {
			c.MoveResize(ev.Window, r)
		}
	}
}

// handleConfigureRequest answers managed windows with their current
// placement and forwards requests from everything else.
func (c *Connection) handleConfigureRequest(e xproto.ConfigureRequestEvent) {
	if r, ok := c.placement(e.Window); ok {
		cne := xproto.ConfigureNotifyEvent{
			Event:  e.Window,
			Window: e.Window,
			X:      int16(r.X),
			Y:      int16(r.Y),
			Width:  uint16(max(r.Width, 1)),
			Height: uint16(max(r.Height, 1)),
		}
		xproto.SendEvent(c.XUtil.Conn(), false, e.Window, xproto.EventMaskStructureNotify, string(cne.Bytes()))
		return
	}

	var mask uint16
	var values []uint32
	add := func(bit uint16, v uint32) {
		if e.ValueMask&bit != 0 {
			mask |= bit
			values = append(values, v)
		}
	}
	add(xproto.ConfigWindowX, uint32(e.X))
	add(xproto.ConfigWindowY, uint32(e.Y))
	add(xproto.ConfigWindowWidth, uint32(e.Width))
	add(xproto.ConfigWindowHeight, uint32(e.Height))
	add(xproto.ConfigWindowBorderWidth, uint32(e.BorderWidth))
	add(xproto.ConfigWindowSibling, uint32(e.Sibling))
	add(xproto.ConfigWindowStackMode, uint32(e.StackMode))
	xproto.ConfigureWindow(c.XUtil.Conn(), e.Window, mask, values)
}

// ActiveWindow returns the window EWMH reports as focused.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
