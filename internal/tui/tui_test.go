package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
)

func TestRenderPreview_FocusedTileIsHeavy(t *testing.T) {
	screen := geom.Rect{Width: 100, Height: 100}
	placements := []tiling.Placement{
		{Window: 1, Rect: geom.Rect{Width: 50, Height: 100}},
		{Window: 2, Rect: geom.Rect{X: 50, Width: 50, Height: 100}},
	}
	lines := renderPreview(placements, screen, 2, 20, 10)
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}

	row := []rune(lines[1])
	if len(row) != 20 {
		t.Fatalf("expected 20 columns, got %d", len(row))
	}
	if row[1] != lightBox.tl {
		t.Fatalf("expected light corner for unfocused tile, got %q", row[1])
	}
	if row[10] != heavyBox.tl {
		t.Fatalf("expected heavy corner for focused tile, got %q", row[10])
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "*2") || !strings.Contains(joined, "1") {
		t.Fatalf("expected labels in preview:\n%s", joined)
	}
}

func TestRenderPreview_TooSmall(t *testing.T) {
	lines := renderPreview(nil, geom.Rect{Width: 10, Height: 10}, 0, 3, 2)
	if len(lines) != 2 || strings.TrimSpace(lines[0]) != "" {
		t.Fatalf("expected blank canvas, got %q", lines)
	}
	if got := renderPreview(nil, geom.Rect{}, 0, 20, 10); strings.TrimSpace(strings.Join(got, "")) != "" {
		t.Fatalf("expected blank canvas for empty screen, got %q", got)
	}
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func testModel(t *testing.T) model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workspaces = []string{"web", "code"}
	m, err := newModel(cfg, "")
	if err != nil {
		t.Fatalf("newModel: %v", err)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(model)
}

func TestModel_NewWindowsAndFocus(t *testing.T) {
	m := press(t, testModel(t), "n", "n", "n")

	snap := m.proc.Snapshot()
	if got := snap.CurrentWorkspace().Windows; len(got) != 3 {
		t.Fatalf("expected 3 windows, got %v", got)
	}
	if id, _ := m.proc.Focused(); id != 3 {
		t.Fatalf("focus = %d, want 3", id)
	}

	m = press(t, m, "j")
	if id, _ := m.proc.Focused(); id == 3 {
		t.Fatal("expected focus to move")
	}

	m = press(t, m, "x")
	if got := m.proc.Snapshot().CurrentWorkspace().Windows; len(got) != 2 {
		t.Fatalf("expected close to remove a window, got %v", got)
	}
}

func TestModel_MoveAndSwitchWorkspace(t *testing.T) {
	m := press(t, testModel(t), "n", "n", "@")

	snap := m.proc.Snapshot()
	if got := snap.Workspaces[1].Windows; len(got) != 1 || got[0] != stack.WindowID(2) {
		t.Fatalf("expected window 2 on workspace 2, got %v", got)
	}

	m = press(t, m, "2")
	if m.proc.Snapshot().Current != 1 {
		t.Fatal("expected switch to second workspace")
	}

	m = press(t, m, "9")
	if !m.failed || m.proc.Snapshot().Current != 1 {
		t.Fatalf("expected invalid workspace to be reported, message %q", m.message)
	}
}

func TestModel_PromptRunsCommand(t *testing.T) {
	m := press(t, testModel(t), "n", ":")
	if !m.prompting {
		t.Fatal("expected prompt to open")
	}
	m = press(t, m, "next-layout", "enter")
	if m.prompting {
		t.Fatal("expected prompt to close on enter")
	}
	if kind := m.proc.Snapshot().CurrentWorkspace().Layout.Kind; kind != tiling.KindFull {
		t.Fatalf("layout = %s, want full", kind)
	}

	m = press(t, m, ":", "close-window", "enter")
	if got := m.proc.Snapshot().CurrentWorkspace().Windows; len(got) != 0 {
		t.Fatalf("expected close-window to drop the sandbox window, got %v", got)
	}

	m = press(t, m, ":", "fly", "enter")
	if !m.failed || !strings.Contains(m.message, "unknown command") {
		t.Fatalf("expected parse error, got %q", m.message)
	}
}

func TestModel_ViewShowsWorkspaces(t *testing.T) {
	m := press(t, testModel(t), "n")
	view := m.View()
	for _, want := range []string{"web", "code", "*1", "tall"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestApplyForm(t *testing.T) {
	m := testModel(t)
	m.fields = &formFields{margin: "12", border: "2", width: "800", height: " 600"}
	m.applyForm()

	if m.cfg.Margin != 12 || m.cfg.Border != geom.Uniform(2) {
		t.Fatalf("unexpected config margin=%d border=%+v", m.cfg.Margin, m.cfg.Border)
	}
	if m.screen != (geom.Rect{Width: 800, Height: 600}) {
		t.Fatalf("unexpected screen %+v", m.screen)
	}
	if nonNegative("-1") == nil || positive("0") == nil || nonNegative("3") != nil {
		t.Fatal("validators disagree with their bounds")
	}
}
