package platform

import (
	"fmt"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// X11Backend wraps an X11 connection behind the Backend interface.
type X11Backend struct {
	conn *x11.Connection
}

var _ Backend = (*X11Backend)(nil)

// NewX11Backend creates a backend from an existing X11 connection.
func NewX11Backend(conn *x11.Connection) *X11Backend {
	return &X11Backend{conn: conn}
}

func (b *X11Backend) MoveResize(id stack.WindowID, bounds geom.Rect) error {
	return b.conn.MoveResize(xproto.Window(id), bounds)
}

func (b *X11Backend) Show(id stack.WindowID) error {
	return b.conn.Show(xproto.Window(id))
}

func (b *X11Backend) Hide(id stack.WindowID) error {
	return b.conn.Hide(xproto.Window(id))
}

func (b *X11Backend) Focus(id stack.WindowID) error {
	return b.conn.Focus(xproto.Window(id))
}

func (b *X11Backend) ClearFocus() error {
	return b.conn.ClearFocus()
}

func (b *X11Backend) SetDesktops(names []string, current int) error {
	return b.conn.SetDesktops(names, current)
}

func (b *X11Backend) SetWindowDesktop(id stack.WindowID, desktop int) error {
	if err := b.conn.SetWindowDesktop(xproto.Window(id), desktop); err != nil {
		return fmt.Errorf("failed to set _NET_WM_DESKTOP: %w", err)
	}
	return nil
}

func (b *X11Backend) SetClientList(ids []stack.WindowID) error {
	wins := make([]xproto.Window, len(ids))
	for i, id := range ids {
		wins[i] = xproto.Window(id)
	}
	return b.conn.SetClientList(wins)
}

func (b *X11Backend) Close(id stack.WindowID) error {
	return b.conn.CloseWindow(xproto.Window(id))
}
