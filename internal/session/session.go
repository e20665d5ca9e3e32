// Package session runs the arrangement core on a single goroutine. X11
// events, key bindings and IPC requests are all funnelled through Run so the
// processor never sees concurrent access.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
)

// ErrStopped is returned by calls made after Run has returned.
var ErrStopped = errors.New("session stopped")

// Frame is everything a presenter needs to bring the screen in line with the
// current state.
type Frame struct {
	Screen     geom.Rect
	Names      []string
	Workspace  command.WorkspaceState
	Placements []tiling.Placement
	Hidden     []stack.WindowID // Tracked windows without a placement
	Desktops   map[stack.WindowID]int
}

// Focused returns the window that should hold input focus.
func (f Frame) Focused() (stack.WindowID, bool) {
	return f.Workspace.Focused()
}

// Presenter applies frames to a display. Present runs on the session
// goroutine and must not call back into the Session.
type Presenter interface {
	Present(ctx context.Context, f Frame) error
}

// WindowCloser is implemented by presenters that can ask a window to close.
type WindowCloser interface {
	CloseWindow(ctx context.Context, id stack.WindowID) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, f Frame) error

func (fn PresenterFunc) Present(ctx context.Context, f Frame) error { return fn(ctx, f) }

type request struct {
	fn   func()
	err  error
	done chan struct{}
}

// Session owns a Processor and the settings that shape its placements.
type Session struct {
	proc      *command.Processor
	presenter Presenter
	logger    *slog.Logger
	started   time.Time

	screen geom.Rect
	area   func(geom.Rect) tiling.Area
	cfg    *config.Config

	requests chan *request
	stopped  chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScreen sets the initial screen rectangle.
func WithScreen(r geom.Rect) Option {
	return func(s *Session) { s.screen = r }
}

// New builds the workspace set described by cfg.
func New(cfg *config.Config, presenter Presenter, opts ...Option) (*Session, error) {
	set, err := cfg.NewWorkspaceSet()
	if err != nil {
		return nil, err
	}

	if presenter == nil {
		presenter = PresenterFunc(func(context.Context, Frame) error { return nil })
	}
	s := &Session{
		presenter: presenter,
		logger:    slog.Default(),
		started:   time.Now(),
		cfg:       cfg,
		area:      cfg.Area,
		requests:  make(chan *request),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.proc = command.New(set, command.WithLogger(s.logger.With("component", "command")))
	return s, nil
}

// Run serves requests until ctx is done. It must be called exactly once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	s.present(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-s.requests:
			s.serve(req)
		}
	}
}

// serve runs one request. A panic fails the request instead of the session.
func (s *Session) serve(req *request) {
	defer close(req.done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session request panicked", "panic", r)
			req.err = fmt.Errorf("session request panicked: %v", r)
		}
	}()
	req.fn()
}

// do runs fn on the session goroutine and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	req := &request{fn: fn, done: make(chan struct{})}
	select {
	case s.requests <- req:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the request always completes.
	<-req.done
	return req.err
}

// Apply executes cmd and presents the result. User errors such as an invalid
// workspace index leave the state untouched and are returned.
func (s *Session) Apply(ctx context.Context, cmd command.Command) (Frame, error) {
	var frame Frame
	var applyErr error
	err := s.do(ctx, func() {
		applyErr = s.proc.Apply(cmd)
		if applyErr == nil && cmd.Kind == command.KindCloseWindow {
			applyErr = s.closeFocused(ctx)
		}
		if applyErr == nil {
			frame = s.present(ctx)
		} else {
			frame = s.frame()
		}
	})
	if err != nil {
		return Frame{}, err
	}
	return frame, applyErr
}

// Post applies cmd and logs instead of returning a rejection. It is meant for
// event sources that cannot act on an error.
func (s *Session) Post(ctx context.Context, cmd command.Command) {
	if _, err := s.Apply(ctx, cmd); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrStopped) {
			level = slog.LevelDebug
		}
		s.logger.Log(ctx, level, "command dropped", "command", cmd.String(), "error", err)
	}
}

// SetScreen changes the screen rectangle and re-presents.
func (s *Session) SetScreen(ctx context.Context, r geom.Rect) error {
	return s.do(ctx, func() {
		if s.screen == r {
			return
		}
		s.logger.Info("screen changed", "screen", r)
		s.screen = r
		s.present(ctx)
	})
}

// Reconfigure switches to cfg. Margin and border take effect at once;
// workspace names and per-workspace layouts only apply to a new session.
func (s *Session) Reconfigure(ctx context.Context, cfg *config.Config) error {
	return s.do(ctx, func() {
		if !slices.Equal(cfg.Workspaces, s.cfg.Workspaces) {
			s.logger.Warn("workspace list changed; restart the daemon to apply it")
		}
		s.cfg = cfg
		s.area = cfg.Area
		s.present(ctx)
	})
}

// Frame returns the current frame without presenting it.
func (s *Session) Frame(ctx context.Context) (Frame, error) {
	var f Frame
	err := s.do(ctx, func() { f = s.frame() })
	return f, err
}

// Snapshot returns a copy of every workspace.
func (s *Session) Snapshot(ctx context.Context) (command.Snapshot, error) {
	var snap command.Snapshot
	err := s.do(ctx, func() { snap = s.proc.Snapshot() })
	return snap, err
}

// Tracks reports whether id is managed by any workspace.
func (s *Session) Tracks(ctx context.Context, id stack.WindowID) (bool, error) {
	var ok bool
	err := s.do(ctx, func() { ok = s.proc.Tracks(id) })
	return ok, err
}

// Config returns the configuration in effect.
func (s *Session) Config(ctx context.Context) (*config.Config, error) {
	var cfg *config.Config
	err := s.do(ctx, func() { cfg = s.cfg })
	return cfg, err
}

// Uptime returns how long the session has existed.
func (s *Session) Uptime() time.Duration { return time.Since(s.started) }

func (s *Session) frame() Frame {
	snap := s.proc.Snapshot()
	cur := snap.CurrentWorkspace()
	placements := s.proc.Placements(s.area(s.screen))

	placed := make(map[stack.WindowID]struct{}, len(placements))
	for _, p := range placements {
		placed[p.Window] = struct{}{}
	}
	var hidden []stack.WindowID
	desktops := make(map[stack.WindowID]int)
	for _, ws := range snap.Workspaces {
		for _, id := range ws.Windows {
			desktops[id] = ws.Index
			if _, ok := placed[id]; !ok {
				hidden = append(hidden, id)
			}
		}
	}

	names := make([]string, len(snap.Workspaces))
	for i, ws := range snap.Workspaces {
		names[i] = ws.Name
	}
	return Frame{
		Screen:     s.screen,
		Names:      names,
		Workspace:  cur,
		Placements: placements,
		Hidden:     hidden,
		Desktops:   desktops,
	}
}

// closeFocused asks the presenter to close the focused window. An empty
// workspace is a no-op.
func (s *Session) closeFocused(ctx context.Context) error {
	id, ok := s.proc.Focused()
	if !ok {
		return nil
	}
	closer, ok := s.presenter.(WindowCloser)
	if !ok {
		return fmt.Errorf("close-window: presenter cannot close windows")
	}
	if err := closer.CloseWindow(ctx, id); err != nil {
		return fmt.Errorf("close-window 0x%x: %w", uint32(id), err)
	}
	return nil
}

func (s *Session) present(ctx context.Context) Frame {
	f := s.frame()
	if err := s.presenter.Present(ctx, f); err != nil {
		s.logger.Error("failed to present frame", "workspace", f.Workspace.Name, "error", err)
	}
	return f
}
