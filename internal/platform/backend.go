// Package platform applies session frames to a window system. The Presenter
// only talks to the Backend interface, so it is tested without a display.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/session"
	"github.com/1broseidon/sabini/internal/stack"
)

// Backend abstracts window-system operations.
type Backend interface {
	MoveResize(id stack.WindowID, bounds geom.Rect) error
	Show(id stack.WindowID) error
	Hide(id stack.WindowID) error
	Focus(id stack.WindowID) error
	ClearFocus() error
	SetDesktops(names []string, current int) error
	SetWindowDesktop(id stack.WindowID, desktop int) error
	SetClientList(ids []stack.WindowID) error
	Close(id stack.WindowID) error
}

// Presenter turns frames into the smallest set of backend calls that brings
// the display in line. It is driven by a single session and is not safe for
// concurrent use.
type Presenter struct {
	backend Backend
	logger  *slog.Logger

	rects    map[stack.WindowID]geom.Rect
	visible  map[stack.WindowID]bool
	desktops map[stack.WindowID]int
	clients  []stack.WindowID

	focused    stack.WindowID
	focusKnown bool

	names   []string
	current int
}

var (
	_ session.Presenter    = (*Presenter)(nil)
	_ session.WindowCloser = (*Presenter)(nil)
)

// NewPresenter creates a presenter that drives backend.
func NewPresenter(backend Backend, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		backend:  backend,
		logger:   logger,
		rects:    make(map[stack.WindowID]geom.Rect),
		visible:  make(map[stack.WindowID]bool),
		desktops: make(map[stack.WindowID]int),
		current:  -1,
	}
}

// Present implements session.Presenter. A failure on one window does not
// stop the others; all failures are returned together.
func (p *Presenter) Present(_ context.Context, f session.Frame) error {
	var errs []error
	fail := func(op string, id stack.WindowID, err error) {
		errs = append(errs, fmt.Errorf("%s window 0x%x: %w", op, uint32(id), err))
	}

	tracked := make(map[stack.WindowID]struct{}, len(f.Placements)+len(f.Hidden))
	clients := make([]stack.WindowID, 0, len(f.Placements)+len(f.Hidden))

	for _, id := range f.Hidden {
		tracked[id] = struct{}{}
		clients = append(clients, id)
		if shown, known := p.visible[id]; known && !shown {
			continue
		}
		if err := p.backend.Hide(id); err != nil {
			fail("hide", id, err)
			continue
		}
		p.visible[id] = false
	}

	for _, pl := range f.Placements {
		tracked[pl.Window] = struct{}{}
		clients = append(clients, pl.Window)
		if r, ok := p.rects[pl.Window]; !ok || r != pl.Rect {
			if err := p.backend.MoveResize(pl.Window, pl.Rect); err != nil {
				fail("move", pl.Window, err)
			} else {
				p.rects[pl.Window] = pl.Rect
			}
		}
		if !p.visible[pl.Window] {
			if err := p.backend.Show(pl.Window); err != nil {
				fail("show", pl.Window, err)
				continue
			}
			p.visible[pl.Window] = true
		}
	}

	// Drop state for windows that are gone.
	gone := func(id stack.WindowID) bool {
		_, ok := tracked[id]
		return !ok
	}
	maps.DeleteFunc(p.visible, func(id stack.WindowID, _ bool) bool { return gone(id) })
	maps.DeleteFunc(p.rects, func(id stack.WindowID, _ geom.Rect) bool { return gone(id) })
	maps.DeleteFunc(p.desktops, func(id stack.WindowID, _ int) bool { return gone(id) })

	for _, id := range clients {
		d, ok := f.Desktops[id]
		if !ok {
			continue
		}
		if cur, known := p.desktops[id]; known && cur == d {
			continue
		}
		if err := p.backend.SetWindowDesktop(id, d); err != nil {
			fail("set desktop of", id, err)
			continue
		}
		p.desktops[id] = d
	}

	slices.Sort(clients)
	if !slices.Equal(clients, p.clients) {
		if err := p.backend.SetClientList(clients); err != nil {
			errs = append(errs, fmt.Errorf("set client list: %w", err))
		} else {
			p.clients = clients
		}
	}

	if !slices.Equal(f.Names, p.names) || f.Workspace.Index != p.current {
		if err := p.backend.SetDesktops(f.Names, f.Workspace.Index); err != nil {
			errs = append(errs, fmt.Errorf("set desktops: %w", err))
		} else {
			p.names = slices.Clone(f.Names)
			p.current = f.Workspace.Index
		}
	}

	id, ok := f.Focused()
	if !ok {
		id = 0
	}
	if !p.focusKnown || id != p.focused {
		var err error
		if ok {
			err = p.backend.Focus(id)
		} else {
			err = p.backend.ClearFocus()
		}
		if err != nil {
			fail("focus", id, err)
		} else {
			p.focused, p.focusKnown = id, true
		}
	}

	if len(errs) > 0 {
		p.logger.Debug("frame partially applied", "errors", len(errs))
	}
	return errors.Join(errs...)
}

// CloseWindow implements session.WindowCloser. The window keeps its state
// here until a frame no longer carries it.
func (p *Presenter) CloseWindow(_ context.Context, id stack.WindowID) error {
	return p.backend.Close(id)
}
