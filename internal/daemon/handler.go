package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/ipc"
	"github.com/1broseidon/sabini/internal/logging"
	"github.com/1broseidon/sabini/internal/session"
)

// Handler answers IPC requests from a session.
type Handler struct {
	session  *session.Session
	reloader *Reloader
}

var _ ipc.Handler = (*Handler)(nil)

// NewHandler creates an IPC handler. reloader may be nil, in which case
// RELOAD is rejected.
func NewHandler(s *session.Session, reloader *Reloader) *Handler {
	return &Handler{session: s, reloader: reloader}
}

func (h *Handler) Apply(ctx context.Context, cmd command.Command) (ipc.PlacementsData, error) {
	f, err := h.session.Apply(ctx, cmd)
	if err != nil {
		return ipc.PlacementsData{}, err
	}
	return placementsData(f), nil
}

func (h *Handler) Status(ctx context.Context) (ipc.StatusData, error) {
	f, err := h.session.Frame(ctx)
	if err != nil {
		return ipc.StatusData{}, err
	}
	focused, _ := f.Focused()
	return ipc.StatusData{
		Workspace:     f.Workspace.Name,
		WorkspaceIdx:  f.Workspace.Index,
		Layout:        f.Workspace.Layout.Kind,
		Focused:       uint32(focused),
		WindowCount:   len(f.Desktops),
		Screen:        f.Screen,
		UptimeSeconds: int64(h.session.Uptime().Seconds()),
		DaemonRunning: true,
	}, nil
}

func (h *Handler) Placements(ctx context.Context) (ipc.PlacementsData, error) {
	f, err := h.session.Frame(ctx)
	if err != nil {
		return ipc.PlacementsData{}, err
	}
	return placementsData(f), nil
}

func (h *Handler) Workspaces(ctx context.Context) (ipc.WorkspacesData, error) {
	return h.session.Snapshot(ctx)
}

func (h *Handler) Reload(ctx context.Context) error {
	if h.reloader == nil {
		return fmt.Errorf("reload is not available")
	}
	return h.reloader.Reload(ctx)
}

func placementsData(f session.Frame) ipc.PlacementsData {
	hidden := make([]uint32, len(f.Hidden))
	for i, id := range f.Hidden {
		hidden[i] = uint32(id)
	}
	return ipc.PlacementsData{
		Workspace:  f.Workspace.Name,
		Screen:     f.Screen,
		Placements: f.Placements,
		Hidden:     hidden,
	}
}

// Reloader re-reads the config file and applies it to a running session.
type Reloader struct {
	path    string
	session *session.Session
	bind    func([]config.Binding) error
	level   *slog.LevelVar
	logger  *slog.Logger
}

// NewReloader creates a reloader for the config at path. bind, when set,
// receives the new key bindings; level, when set, follows log.level.
func NewReloader(path string, s *session.Session, bind func([]config.Binding) error, level *slog.LevelVar, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{path: path, session: s, bind: bind, level: level, logger: logger}
}

// Reload applies the config file. An invalid file leaves the running
// configuration untouched.
func (r *Reloader) Reload(ctx context.Context) error {
	res, err := config.LoadFromPath(r.path)
	if err != nil {
		r.logger.Warn("config reload failed", "path", r.path, "error", err)
		return fmt.Errorf("config reload failed: %w", err)
	}
	bindings, err := res.Config.Bindings()
	if err != nil {
		return fmt.Errorf("config reload failed: %w", err)
	}

	if err := r.session.Reconfigure(ctx, res.Config); err != nil {
		return err
	}
	if r.level != nil {
		if lvl, err := logging.ParseLevel(res.Config.Log.Level); err == nil {
			r.level.Set(lvl)
		} else {
			r.logger.Warn("keeping current log level", "error", err)
		}
	}
	if r.bind != nil {
		if err := r.bind(bindings); err != nil {
			r.logger.Warn("some key bindings could not be registered", "error", err)
		}
	}
	r.logger.Info("config reloaded", "path", r.path, "files", len(res.Files))
	return nil
}
