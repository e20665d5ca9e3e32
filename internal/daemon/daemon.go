// Package daemon wires the window manager together: the X11 connection, the
// session, key bindings, the IPC server and the config watcher, each run as
// a supervised service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/hotkeys"
	"github.com/1broseidon/sabini/internal/instance"
	"github.com/1broseidon/sabini/internal/ipc"
	"github.com/1broseidon/sabini/internal/platform"
	"github.com/1broseidon/sabini/internal/session"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/supervisor"
	"github.com/1broseidon/sabini/internal/x11"
)

// Options configures Run.
type Options struct {
	Config     *config.Config
	ConfigPath string // Watched for changes when set
	Display    string // Empty means $DISPLAY
	SocketPath string
	LockPath   string
	Logger     *slog.Logger

	// LogLevel, when set, follows log.level on every reload.
	LogLevel *slog.LevelVar

	// Reload triggers a config reload per receive, typically from SIGHUP.
	Reload <-chan struct{}

	ReconcileInterval time.Duration
}

// Run manages the display until ctx is done.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config

	lock, err := instance.Lock(opts.LockPath)
	if err != nil {
		return err
	}
	defer instance.Release(lock)

	conn, err := x11.NewConnection(opts.Display)
	if err != nil {
		return err
	}
	defer conn.Close()

	screen, err := conn.Screen()
	if err != nil {
		return err
	}

	presenter := platform.NewPresenter(platform.NewX11Backend(conn), logger.With("component", "presenter"))
	sess, err := session.New(cfg, presenter,
		session.WithLogger(logger.With("component", "session")),
		session.WithScreen(screen),
	)
	if err != nil {
		return err
	}

	ev := &events{ctx: ctx, session: sess, screen: conn.Screen, logger: logger.With("component", "x11")}
	if err := conn.Manage(ev); err != nil {
		return err
	}

	keys := hotkeys.NewHandler(ctx, conn.XUtil, sess, logger.With("component", "hotkeys"))
	bindings, err := cfg.Bindings()
	if err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}
	if err := keys.Bind(bindings); err != nil {
		logger.Warn("some key bindings could not be registered", "error", err)
	}

	reloader := NewReloader(opts.ConfigPath, sess, keys.Bind, opts.LogLevel, logger.With("component", "config"))
	server := ipc.NewServer(opts.SocketPath, NewHandler(sess, reloader), logger.With("component", "ipc"))
	reconciler := NewReconciler(ReconcilerConfig{
		Interval: opts.ReconcileInterval,
		Logger:   logger.With("component", "reconciler"),
	}, sess, windowLister(conn))

	super := supervisor.New("sabini", logger)
	supervisor.Add(super, supervisor.NewFunc("session", sess.Run))
	supervisor.Add(super, supervisor.NewFunc("x11", conn.EventLoop))
	supervisor.Add(super, supervisor.NewFunc("ipc", server.Serve))
	supervisor.Add(super, reconciler)
	if opts.ConfigPath != "" {
		supervisor.Add(super, supervisor.NewFunc("config-watch", func(ctx context.Context) error {
			return config.Watch(ctx, opts.ConfigPath, func() {
				_ = reloader.Reload(ctx)
			})
		}))
	}

	if opts.Reload != nil {
		supervisor.Add(super, supervisor.NewFunc("reload", func(ctx context.Context) error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-opts.Reload:
					_ = reloader.Reload(ctx)
				}
			}
		}))
	}

	go adopt(ctx, conn, ev, logger)

	logger.Info("sabini daemon started",
		"display", opts.Display,
		"socket", server.SocketPath(),
		"screen", screen,
		"workspaces", len(cfg.Workspaces),
		"bindings", len(bindings))

	err = super.Serve(ctx)
	logger.Info("shutting down sabini daemon")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// adopt tiles the windows that were open before the daemon started.
func adopt(ctx context.Context, conn *x11.Connection, ev *events, logger *slog.Logger) {
	clients, docks, err := conn.ExistingWindows()
	if err != nil {
		logger.Warn("failed to list existing windows", "error", err)
		return
	}
	for _, win := range docks {
		conn.WatchDock(win, ev)
	}
	for _, win := range clients {
		conn.Adopt(win, ev)
		ev.session.Post(ctx, command.WindowAppeared(stack.WindowID(win)))
	}
	if len(clients) > 0 {
		logger.Info("adopted existing windows", "count", len(clients))
	}
}

func windowLister(conn *x11.Connection) WindowLister {
	return func() ([]stack.WindowID, error) {
		wins, err := conn.Windows()
		if err != nil {
			return nil, err
		}
		out := make([]stack.WindowID, len(wins))
		for i, w := range wins {
			out[i] = stack.WindowID(w)
		}
		return out, nil
	}
}
