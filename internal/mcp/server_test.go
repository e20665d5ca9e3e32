package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/ipc"
	"github.com/1broseidon/sabini/internal/tiling"
)

type fakeDaemon struct {
	applied  [][]string
	reloaded bool
	err      error
}

func (d *fakeDaemon) ApplyCommand(name string, args []string) (*ipc.PlacementsData, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.applied = append(d.applied, append([]string{name}, args...))
	return &ipc.PlacementsData{
		Workspace:  "web",
		Screen:     geom.Rect{Width: 100, Height: 100},
		Placements: []tiling.Placement{{Window: 3, Rect: geom.Rect{Width: 100, Height: 100}}},
	}, nil
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{Workspace: "web", Layout: tiling.KindTall, Focused: 3, WindowCount: 1, DaemonRunning: true}, nil
}

func (d *fakeDaemon) GetPlacements() (*ipc.PlacementsData, error) {
	return &ipc.PlacementsData{Workspace: "web", Hidden: []uint32{9}}, nil
}

func (d *fakeDaemon) GetWorkspaces() (*ipc.WorkspacesData, error) {
	return &ipc.WorkspacesData{
		Current:    1,
		Workspaces: []command.WorkspaceState{{Name: "web", Focus: -1}, {Index: 1, Name: "code", Focus: -1, Current: true}},
	}, nil
}

func (d *fakeDaemon) Reload() error {
	d.reloaded = true
	return d.err
}

func newTestServer(d Daemon) *Server {
	return NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleApplyCommand(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)

	_, out, err := s.handleApplyCommand(context.Background(), nil, ApplyCommandInput{Command: "  resize-master   +0.1 "})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Workspace != "web" || len(out.Placements) != 1 || out.Placements[0].Window != 3 {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(d.applied) != 1 || !slices.Equal(d.applied[0], []string{"resize-master", "+0.1"}) {
		t.Fatalf("unexpected forwarded command %v", d.applied)
	}
}

func TestHandleApplyCommand_Rejections(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	tests := []struct {
		input string
		want  string
	}{
		{"teleport", "unknown command"},
		{"focus-next 3", "takes no arguments"},
		{"window-appeared 42", "reserved"},
	}
	for _, tt := range tests {
		_, _, err := s.handleApplyCommand(ctx, nil, ApplyCommandInput{Command: tt.input})
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("apply %q: expected error containing %q, got %v", tt.input, tt.want, err)
		}
	}
	if len(d.applied) != 0 {
		t.Fatalf("rejected commands reached the daemon: %v", d.applied)
	}

	d.err = errors.New("daemon error: invalid workspace index")
	if _, _, err := s.handleApplyCommand(ctx, nil, ApplyCommandInput{Command: "switch-workspace 12"}); err == nil || !strings.Contains(err.Error(), "invalid workspace index") {
		t.Fatalf("expected daemon error, got %v", err)
	}
}

func TestHandleQueries(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, ws, err := s.handleListWorkspaces(ctx, nil, EmptyInput{})
	if err != nil || ws.Current != 1 || len(ws.Workspaces) != 2 {
		t.Fatalf("list_workspaces = %+v, %v", ws, err)
	}

	_, st, err := s.handleGetStatus(ctx, nil, EmptyInput{})
	if err != nil || st.Focused != 3 || st.Layout != tiling.KindTall {
		t.Fatalf("get_status = %+v, %v", st, err)
	}

	_, pl, err := s.handleGetPlacements(ctx, nil, EmptyInput{})
	if err != nil || !slices.Equal(pl.Hidden, []uint32{9}) {
		t.Fatalf("get_placements = %+v, %v", pl, err)
	}

	_, cmds, err := s.handleListCommands(ctx, nil, EmptyInput{})
	if err != nil {
		t.Fatalf("list_commands: %v", err)
	}
	if slices.Contains(cmds.Commands, "window-appeared") || !slices.Contains(cmds.Commands, "swap-with-master") {
		t.Fatalf("unexpected command list %v", cmds.Commands)
	}

	if _, out, err := s.handleReloadConfig(ctx, nil, EmptyInput{}); err != nil || !out.Reloaded || !d.reloaded {
		t.Fatalf("reload_config = %+v, %v", out, err)
	}
}

func TestServer_ListsToolsOverTransport(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(&fakeDaemon{})

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	for _, want := range []string{"apply_command", "get_placements", "list_workspaces", "get_status", "list_commands", "reload_config"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing tool %q in %v", want, names)
		}
	}
}
