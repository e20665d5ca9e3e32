package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
)

type recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *recorder) Present(_ context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) last(t *testing.T) Frame {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		t.Fatal("expected at least one frame")
	}
	return r.frames[len(r.frames)-1]
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workspaces = []string{"web", "code"}
	cfg.Margin = 0
	cfg.Layout.Tall.Gap = 0
	return cfg
}

func startSession(t *testing.T, cfg *config.Config, p Presenter) *Session {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(cfg, p, WithLogger(quiet), WithScreen(geom.Rect{Width: 1000, Height: 800}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
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

func TestSession_ApplyPresentsPlacements(t *testing.T) {
	rec := &recorder{}
	s := startSession(t, testConfig(), rec)
	ctx := context.Background()

	for _, id := range []stack.WindowID{1, 2, 3} {
		if _, err := s.Apply(ctx, command.WindowAppeared(id)); err != nil {
			t.Fatalf("appear %d: %v", id, err)
		}
	}
	f, err := s.Apply(ctx, command.ResizeMasterRatio(0.1))
	if err != nil {
		t.Fatalf("resize: %v", err)
	}

	want := []tiling.Placement{
		{Window: 1, Rect: geom.Rect{X: 0, Y: 0, Width: 600, Height: 800}},
		{Window: 2, Rect: geom.Rect{X: 600, Y: 0, Width: 400, Height: 400}},
		{Window: 3, Rect: geom.Rect{X: 600, Y: 400, Width: 400, Height: 400}},
	}
	if !slices.Equal(f.Placements, want) {
		t.Fatalf("placements = %+v, want %+v", f.Placements, want)
	}
	if got := rec.last(t); !slices.Equal(got.Placements, want) {
		t.Fatalf("presented placements = %+v", got.Placements)
	}
	if id, ok := f.Focused(); !ok || id != 3 {
		t.Fatalf("focus = %d (%v), want 3", id, ok)
	}
}

func TestSession_RejectedCommandIsNotPresented(t *testing.T) {
	rec := &recorder{}
	s := startSession(t, testConfig(), rec)
	ctx := context.Background()

	if _, err := s.Apply(ctx, command.WindowAppeared(1)); err != nil {
		t.Fatalf("appear: %v", err)
	}
	rec.mu.Lock()
	before := len(rec.frames)
	rec.mu.Unlock()

	_, err := s.Apply(ctx, command.MoveFocusedToWorkspace(9))
	if !errors.Is(err, command.ErrInvalidWorkspaceIndex) {
		t.Fatalf("expected ErrInvalidWorkspaceIndex, got %v", err)
	}
	rec.mu.Lock()
	after := len(rec.frames)
	rec.mu.Unlock()
	if after != before {
		t.Fatalf("rejected command presented %d frames", after-before)
	}
}

func TestSession_HiddenWindowsAcrossWorkspaces(t *testing.T) {
	rec := &recorder{}
	s := startSession(t, testConfig(), rec)
	ctx := context.Background()

	cmds := []command.Command{
		command.WindowAppeared(1),
		command.WindowAppeared(2),
		command.MoveFocusedToWorkspace(1),
	}
	for _, c := range cmds {
		if _, err := s.Apply(ctx, c); err != nil {
			t.Fatalf("%s: %v", c, err)
		}
	}

	f := rec.last(t)
	if f.Workspace.Name != "web" || len(f.Placements) != 1 || f.Placements[0].Window != 1 {
		t.Fatalf("unexpected visible frame %+v", f)
	}
	if !slices.Equal(f.Hidden, []stack.WindowID{2}) {
		t.Fatalf("hidden = %v, want [2]", f.Hidden)
	}
	if f.Desktops[1] != 0 || f.Desktops[2] != 1 {
		t.Fatalf("desktops = %v, want 1->0 2->1", f.Desktops)
	}

	f, err := s.Apply(ctx, command.SwitchToWorkspace(1))
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if !slices.Equal(f.Hidden, []stack.WindowID{1}) || !slices.Equal(f.Names, []string{"web", "code"}) {
		t.Fatalf("unexpected frame after switch %+v", f)
	}
}

func TestSession_FullLayoutHidesUnfocused(t *testing.T) {
	cfg := testConfig()
	cfg.WorkspaceLayouts = map[string]tiling.Layout{"web": {Kind: tiling.KindFull, Tall: cfg.Layout.Tall}}
	s := startSession(t, cfg, &recorder{})
	ctx := context.Background()

	_, _ = s.Apply(ctx, command.WindowAppeared(1))
	f, err := s.Apply(ctx, command.WindowAppeared(2))
	if err != nil {
		t.Fatalf("appear: %v", err)
	}
	if len(f.Placements) != 1 || f.Placements[0].Rect != (geom.Rect{Width: 1000, Height: 800}) {
		t.Fatalf("expected a single full-screen placement, got %+v", f.Placements)
	}
	if !slices.Equal(f.Hidden, []stack.WindowID{1}) {
		t.Fatalf("hidden = %v, want [1]", f.Hidden)
	}
}

func TestSession_SetScreenAndReconfigure(t *testing.T) {
	rec := &recorder{}
	s := startSession(t, testConfig(), rec)
	ctx := context.Background()

	if _, err := s.Apply(ctx, command.WindowAppeared(1)); err != nil {
		t.Fatalf("appear: %v", err)
	}
	if err := s.SetScreen(ctx, geom.Rect{X: 100, Width: 200, Height: 100}); err != nil {
		t.Fatalf("SetScreen: %v", err)
	}
	if got := rec.last(t).Placements[0].Rect; got != (geom.Rect{X: 100, Width: 200, Height: 100}) {
		t.Fatalf("expected placement on new screen, got %+v", got)
	}

	cfg := testConfig()
	cfg.Margin = 10
	if err := s.Reconfigure(ctx, cfg); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if got := rec.last(t).Placements[0].Rect; got != (geom.Rect{X: 110, Y: 10, Width: 180, Height: 80}) {
		t.Fatalf("expected margin to apply, got %+v", got)
	}
	if got, _ := s.Config(ctx); got != cfg {
		t.Fatal("expected reconfigured config to be current")
	}
}

func TestSession_QueriesAndPost(t *testing.T) {
	s := startSession(t, testConfig(), nil)
	ctx := context.Background()

	s.Post(ctx, command.WindowAppeared(5))
	s.Post(ctx, command.WindowAppeared(5)) // duplicate is logged, not fatal

	ok, err := s.Tracks(ctx, 5)
	if err != nil || !ok {
		t.Fatalf("Tracks(5) = %v, %v", ok, err)
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Workspaces) != 2 || !slices.Equal(snap.Workspaces[0].Windows, []stack.WindowID{5}) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if _, err := s.Frame(ctx); err != nil {
		t.Fatalf("Frame: %v", err)
	}
}

func TestSession_CallsAfterStopFail(t *testing.T) {
	s, err := New(testConfig(), nil, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from Run, got %v", err)
	}
	if _, err := s.Apply(context.Background(), command.FocusNext()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestSession_PanicFailsOnlyTheRequest(t *testing.T) {
	var calls int
	boom := PresenterFunc(func(context.Context, Frame) error {
		calls++
		if calls == 2 {
			panic("presenter exploded")
		}
		return nil
	})
	s := startSession(t, testConfig(), boom)
	ctx := context.Background()

	if _, err := s.Apply(ctx, command.WindowAppeared(1)); err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("expected panic to surface as an error, got %v", err)
	}
	if _, err := s.Apply(ctx, command.WindowAppeared(2)); err != nil {
		t.Fatalf("expected session to keep serving, got %v", err)
	}
	if ok, _ := s.Tracks(ctx, 1); !ok {
		t.Fatal("expected the command applied before the panic to stick")
	}
}

type closingRecorder struct {
	recorder
	closed []stack.WindowID
}

func (r *closingRecorder) CloseWindow(_ context.Context, id stack.WindowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, id)
	return nil
}

func TestSession_CloseWindow(t *testing.T) {
	rec := &closingRecorder{}
	s := startSession(t, testConfig(), rec)
	ctx := context.Background()

	if _, err := s.Apply(ctx, command.CloseFocused()); err != nil {
		t.Fatalf("close on empty workspace: %v", err)
	}
	for _, id := range []stack.WindowID{1, 2} {
		if _, err := s.Apply(ctx, command.WindowAppeared(id)); err != nil {
			t.Fatalf("appear %d: %v", id, err)
		}
	}
	if _, err := s.Apply(ctx, command.CloseFocused()); err != nil {
		t.Fatalf("close: %v", err)
	}
	rec.mu.Lock()
	closed := slices.Clone(rec.closed)
	rec.mu.Unlock()
	if !slices.Equal(closed, []stack.WindowID{2}) {
		t.Fatalf("closed = %v, want [2]", closed)
	}
	if ok, _ := s.Tracks(ctx, 2); !ok {
		t.Fatal("expected window 2 to stay tracked until it is removed")
	}
}

func TestSession_CloseWindowWithoutCloser(t *testing.T) {
	s := startSession(t, testConfig(), &recorder{})
	ctx := context.Background()

	if _, err := s.Apply(ctx, command.WindowAppeared(1)); err != nil {
		t.Fatalf("appear: %v", err)
	}
	if _, err := s.Apply(ctx, command.CloseFocused()); err == nil || !strings.Contains(err.Error(), "cannot close") {
		t.Fatalf("expected an error from a presenter that cannot close, got %v", err)
	}
}
