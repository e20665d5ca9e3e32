package daemon

import (
	"context"
	"log/slog"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/session"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// events turns window-system notifications into session commands.
type events struct {
	ctx     context.Context
	session *session.Session
	screen  func() (geom.Rect, error)
	logger  *slog.Logger
}

var _ x11.Events = (*events)(nil)

// WindowAppeared manages a new window. A window that is already tracked is
// mapping itself again, which is treated as a request for attention.
func (e *events) WindowAppeared(win xproto.Window) {
	id := stack.WindowID(win)
	if tracked, err := e.session.Tracks(e.ctx, id); err == nil && tracked {
		e.session.Post(e.ctx, command.FocusWindow(id))
		return
	}
	e.session.Post(e.ctx, command.WindowAppeared(id))
}

func (e *events) WindowGone(win xproto.Window) {
	e.session.Post(e.ctx, command.WindowRemoved(stack.WindowID(win)))
}

func (e *events) ActivateRequested(win xproto.Window) {
	id := stack.WindowID(win)
	if tracked, err := e.session.Tracks(e.ctx, id); err != nil || !tracked {
		return
	}
	e.session.Post(e.ctx, command.FocusWindow(id))
}

func (e *events) DesktopRequested(index int) {
	e.session.Post(e.ctx, command.SwitchToWorkspace(index))
}

func (e *events) ScreenChanged() {
	r, err := e.screen()
	if err != nil {
		e.logger.Warn("failed to read screen geometry", "error", err)
		return
	}
	if err := e.session.SetScreen(e.ctx, r); err != nil {
		e.logger.Debug("screen change dropped", "error", err)
	}
}
