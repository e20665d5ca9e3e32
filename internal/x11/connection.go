package x11

import (
	"context"
	"fmt"
	"sync"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and the state the window manager
// shares between the event loop and the presenter.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// check is the _NET_SUPPORTING_WM_CHECK window. It also receives the
	// wake-up message that ends EventLoop.
	check *xwindow.Window

	mu     sync.Mutex
	placed map[xproto.Window]geom.Rect
	unmaps map[xproto.Window]int // Unmaps we requested and have not seen yet
	docks  map[xproto.Window]struct{}
}

// NewConnection connects to display, or $DISPLAY when it is empty.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	// Required for global hotkeys.
	keybind.Initialize(xu)

	check, err := xwindow.Create(xu, xu.RootWin())
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to create check window: %w", err)
	}

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		check:  check,
		placed: make(map[xproto.Window]geom.Rect),
		unmaps: make(map[xproto.Window]int),
		docks:  make(map[xproto.Window]struct{}),
	}, nil
}

// EventLoop runs the X event loop until ctx is done.
func (c *Connection) EventLoop(ctx context.Context) error {
	stop := context.AfterFunc(ctx, c.quit)
	defer stop()
	xevent.Main(c.XUtil)
	return ctx.Err()
}

// quit stops xevent.Main. The loop only notices the flag after reading an
// event, so one is sent to the check window.
func (c *Connection) quit() {
	xevent.Quit(c.XUtil)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.check.Id,
		Type:   xproto.AtomNone,
		Data:   xproto.ClientMessageDataUnionData32New(make([]uint32, 5)),
	}
	xproto.SendEvent(c.XUtil.Conn(), false, c.check.Id, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.check.Destroy()
	c.XUtil.Conn().Close()
}

func (c *Connection) expectUnmap(win xproto.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unmaps[win]++
}

// consumeUnmap reports whether an UnmapNotify for win was caused by us.
func (c *Connection) consumeUnmap(win xproto.Window) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmaps[win] == 0 {
		return false
	}
	c.unmaps[win]--
	if c.unmaps[win] == 0 {
		delete(c.unmaps, win)
	}
	return true
}

func (c *Connection) setPlaced(win xproto.Window, r geom.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.placed[win] = r
}

func (c *Connection) placement(win xproto.Window) (geom.Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.placed[win]
	return r, ok
}

// forget drops everything known about a destroyed window.
func (c *Connection) forget(win xproto.Window) (wasDock bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.placed, win)
	delete(c.unmaps, win)
	_, wasDock = c.docks[win]
	delete(c.docks, win)
	return wasDock
}

func (c *Connection) addDock(win xproto.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docks[win] = struct{}{}
}
