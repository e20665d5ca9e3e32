package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/session"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
	"github.com/BurntSushi/xgb/xproto"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workspaces = []string{"web", "code"}
	cfg.Margin = 0
	cfg.Layout.Tall.Gap = 0
	return cfg
}

func startSession(t *testing.T, cfg *config.Config) *session.Session {
	t.Helper()
	s, err := session.New(cfg, nil, session.WithLogger(quietLogger()), session.WithScreen(geom.Rect{Width: 1000, Height: 800}))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("session did not stop")
		}
	})
	return s
}

func TestHandler_ApplyAndQueries(t *testing.T) {
	s := startSession(t, testConfig())
	h := NewHandler(s, nil)
	ctx := context.Background()

	for _, id := range []stack.WindowID{1, 2} {
		if _, err := h.Apply(ctx, command.WindowAppeared(id)); err != nil {
			t.Fatalf("appear %d: %v", id, err)
		}
	}
	data, err := h.Apply(ctx, command.SwapWithMaster())
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	want := []tiling.Placement{
		{Window: 2, Rect: geom.Rect{Width: 500, Height: 800}},
		{Window: 1, Rect: geom.Rect{X: 500, Width: 500, Height: 800}},
	}
	if !slices.Equal(data.Placements, want) || data.Workspace != "web" {
		t.Fatalf("unexpected placements %+v", data)
	}

	if _, err := h.Apply(ctx, command.MoveFocusedToWorkspace(5)); !errors.Is(err, command.ErrInvalidWorkspaceIndex) {
		t.Fatalf("expected ErrInvalidWorkspaceIndex, got %v", err)
	}

	status, err := h.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Workspace != "web" || status.WindowCount != 2 || status.Focused != 2 || status.Layout != tiling.KindTall || !status.DaemonRunning {
		t.Fatalf("unexpected status %+v", status)
	}

	if _, err := h.Apply(ctx, command.MoveFocusedToWorkspace(1)); err != nil {
		t.Fatalf("move: %v", err)
	}
	p, err := h.Placements(ctx)
	if err != nil {
		t.Fatalf("Placements: %v", err)
	}
	if len(p.Placements) != 1 || !slices.Equal(p.Hidden, []uint32{2}) {
		t.Fatalf("unexpected placements after move %+v", p)
	}

	ws, err := h.Workspaces(ctx)
	if err != nil {
		t.Fatalf("Workspaces: %v", err)
	}
	if len(ws.Workspaces) != 2 || !slices.Equal(ws.Workspaces[1].Windows, []stack.WindowID{2}) {
		t.Fatalf("unexpected workspaces %+v", ws)
	}

	if err := h.Reload(ctx); err == nil {
		t.Fatal("expected reload without a reloader to fail")
	}
}

func TestReloader(t *testing.T) {
	s := startSession(t, testConfig())
	path := filepath.Join(t.TempDir(), "config.yaml")
	var bound []config.Binding
	level := new(slog.LevelVar)
	traced := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))
	r := NewReloader(path, s, func(b []config.Binding) error {
		bound = b
		return nil
	}, level, quietLogger())
	ctx := context.Background()

	if traced.Enabled(ctx, slog.LevelDebug) {
		t.Fatal("expected debug to start disabled at info")
	}
	if err := os.WriteFile(path, []byte("workspaces: [web, code]\nmargin: 12\nlog:\n  level: debug\nkeybindings:\n  Mod4-x: focus-next\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	cfg, _ := s.Config(ctx)
	if cfg.Margin != 12 {
		t.Fatalf("expected margin 12, got %d", cfg.Margin)
	}
	if !traced.Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("expected reload to raise the log level to debug, got %v", level.Level())
	}
	found := false
	for _, b := range bound {
		if b.Keys == "Mod4-x" && b.Command == command.FocusNext() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Mod4-x to be rebound, got %d bindings", len(bound))
	}

	if err := os.WriteFile(path, []byte("margin: -1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.Reload(ctx); err == nil || !strings.Contains(err.Error(), "margin") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if cfg, _ := s.Config(ctx); cfg.Margin != 12 {
		t.Fatalf("invalid reload must keep the running config, got margin %d", cfg.Margin)
	}
	if level.Level() != slog.LevelDebug {
		t.Fatalf("invalid reload must keep the log level, got %v", level.Level())
	}
}

func TestReconciler_DropsVanishedWindows(t *testing.T) {
	s := startSession(t, testConfig())
	ctx := context.Background()
	for _, c := range []command.Command{
		command.WindowAppeared(1),
		command.WindowAppeared(2),
		command.MoveFocusedToWorkspace(1),
		command.WindowAppeared(3),
	} {
		if _, err := s.Apply(ctx, c); err != nil {
			t.Fatalf("%s: %v", c, err)
		}
	}

	alive := []stack.WindowID{1, 3, 99}
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, s, func() ([]stack.WindowID, error) {
		return alive, nil
	})

	removed := r.ReconcileNow(ctx)
	if !slices.Equal(removed, []stack.WindowID{2}) {
		t.Fatalf("expected window 2 to be dropped, got %v", removed)
	}
	if ok, _ := s.Tracks(ctx, 2); ok {
		t.Fatal("window 2 is still tracked")
	}
	if removed := r.ReconcileNow(ctx); len(removed) != 0 {
		t.Fatalf("expected nothing left to drop, got %v", removed)
	}

	failing := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, s, func() ([]stack.WindowID, error) {
		return nil, errors.New("no display")
	})
	if removed := failing.ReconcileNow(ctx); removed != nil {
		t.Fatalf("expected lister failure to drop nothing, got %v", removed)
	}
}

func TestEvents_AppearRemapAndDesktop(t *testing.T) {
	s := startSession(t, testConfig())
	ctx := context.Background()
	screen := geom.Rect{Width: 640, Height: 480}
	ev := &events{ctx: ctx, session: s, logger: quietLogger(), screen: func() (geom.Rect, error) { return screen, nil }}

	ev.WindowAppeared(xproto.Window(1))
	ev.WindowAppeared(xproto.Window(2))
	ev.DesktopRequested(1)

	// A hidden window mapping itself again pulls the user back to it.
	ev.WindowAppeared(xproto.Window(1))
	f, _ := s.Frame(ctx)
	if f.Workspace.Name != "web" {
		t.Fatalf("expected switch back to web, got %s", f.Workspace.Name)
	}
	if id, _ := f.Focused(); id != 1 {
		t.Fatalf("expected window 1 focused, got %d", id)
	}

	ev.ActivateRequested(xproto.Window(42))
	ev.ActivateRequested(xproto.Window(2))
	f, _ = s.Frame(ctx)
	if id, _ := f.Focused(); id != 2 {
		t.Fatalf("expected activation to focus window 2, got %d", id)
	}

	ev.ScreenChanged()
	if f, _ := s.Frame(ctx); f.Screen != screen {
		t.Fatalf("expected screen %+v, got %+v", screen, f.Screen)
	}

	ev.WindowGone(xproto.Window(1))
	if ok, _ := s.Tracks(ctx, 1); ok {
		t.Fatal("expected window 1 to be removed")
	}
}
