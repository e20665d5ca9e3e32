package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/session"
	"github.com/1broseidon/sabini/internal/stack"
)

// WindowLister returns the IDs of every window that still exists.
type WindowLister func() ([]stack.WindowID, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops tracked windows that no longer exist. It
// covers DestroyNotify events lost while the event loop was restarting.
type Reconciler struct {
	interval    time.Duration
	session     *session.Session
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, s *session.Session, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		session:     s,
		listWindows: listWindows,
		logger:      logger,
	}
}

func (r *Reconciler) String() string { return "reconciler" }

// Serve runs the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.ReconcileNow(ctx)
		}
	}
}

// ReconcileNow performs a single reconciliation pass and returns the
// windows it removed.
func (r *Reconciler) ReconcileNow(ctx context.Context) []stack.WindowID {
	snap, err := r.session.Snapshot(ctx)
	if err != nil {
		return nil
	}

	actual, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return nil
	}
	alive := make(map[stack.WindowID]struct{}, len(actual))
	for _, id := range actual {
		alive[id] = struct{}{}
	}

	var orphaned []stack.WindowID
	for _, ws := range snap.Workspaces {
		for _, id := range ws.Windows {
			if _, ok := alive[id]; !ok {
				orphaned = append(orphaned, id)
			}
		}
	}

	for _, id := range orphaned {
		r.logger.Info("reconciler: dropping vanished window", "window", id)
		r.session.Post(ctx, command.WindowRemoved(id))
	}
	return orphaned
}
