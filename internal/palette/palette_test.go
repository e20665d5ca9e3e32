package palette

import (
	"strings"
	"testing"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
)

func testSnapshot() command.Snapshot {
	return command.Snapshot{
		Current: 0,
		Workspaces: []command.WorkspaceState{
			{Index: 0, Name: "web", Windows: []stack.WindowID{1, 2}, Focus: 1, Layout: tiling.DefaultLayout(), Current: true},
			{Index: 1, Name: "code", Focus: -1, Layout: tiling.DefaultLayout()},
		},
	}
}

func TestRofiFormatItem_HeaderIsNonSelectable(t *testing.T) {
	b := &dmenuLikeBackend{command: "rofi", rofi: true}

	out := b.formatItem(Item{Label: "A & B", IsHeader: true, Icon: "folder"})
	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.HasPrefix(out, "<b>A &amp; B</b>\x00") {
		t.Fatalf("expected bold escaped label, got %q", out)
	}
	if !strings.Contains(out, "nonselectable\x1ftrue\x1ficon\x1ffolder") {
		t.Fatalf("expected nonselectable and icon properties, got %q", out)
	}
}

func TestDmenuFormatItem_PlainText(t *testing.T) {
	b := &dmenuLikeBackend{command: "dmenu"}
	if got := b.formatItem(Item{Label: " a\nb ", Icon: "x", IsHeader: true}); got != "a b" {
		t.Fatalf("formatItem = %q", got)
	}
}

func TestFormatInput_PreselectsActive(t *testing.T) {
	b := &dmenuLikeBackend{command: "rofi", rofi: true}
	items := BuildItems(testSnapshot())

	input, selected := b.formatInput(items)
	if n := len(strings.Split(input, "\n")); n != len(items) {
		t.Fatalf("expected %d lines, got %d", len(items), n)
	}
	if selected != 1 || !items[selected].IsActive {
		t.Fatalf("expected current workspace row preselected, got %d", selected)
	}

	args := strings.Join(b.buildArgs("sabini", "web", selected), " ")
	for _, want := range []string{"-format i", "-selected-row 1", "-p sabini", "-mesg web"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
}

func TestParseSelection(t *testing.T) {
	items := BuildItems(testSnapshot())

	rofi := &dmenuLikeBackend{command: "rofi", rofi: true}
	got, err := rofi.parseSelection("2", items)
	if err != nil || got.Command != "switch-workspace 1" {
		t.Fatalf("rofi selection = %+v, %v", got, err)
	}
	if _, err := rofi.parseSelection("99", items); err == nil {
		t.Fatal("expected out of range error")
	}

	dmenu := &dmenuLikeBackend{command: "dmenu"}
	got, err = dmenu.parseSelection("Swap focused with master", items)
	if err != nil || got.Command != "swap-with-master" {
		t.Fatalf("dmenu selection = %+v, %v", got, err)
	}
	if _, err := dmenu.parseSelection("Layout", items); err == nil {
		t.Fatal("headers must not be selectable")
	}
}

func TestBuildItems(t *testing.T) {
	items := BuildItems(testSnapshot())

	var commands []string
	for _, it := range items {
		if !it.IsHeader {
			if _, err := command.Parse(it.Command); err != nil {
				t.Fatalf("item %q has unparsable command %q: %v", it.Label, it.Command, err)
			}
			commands = append(commands, it.Command)
		}
	}
	joined := strings.Join(commands, ",")
	if !strings.Contains(joined, "move-to-workspace 1") || strings.Contains(joined, "move-to-workspace 0") {
		t.Fatalf("expected a move to the other workspace only, got %v", commands)
	}

	empty := testSnapshot()
	empty.Workspaces[0].Windows = nil
	empty.Workspaces[0].Focus = -1
	for _, it := range BuildItems(empty) {
		if strings.HasPrefix(it.Command, "move-to-workspace") {
			t.Fatal("no move items without a focused window")
		}
	}
}
