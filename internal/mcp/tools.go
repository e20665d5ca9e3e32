package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/ipc"
)

func (s *Server) handleApplyCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args ApplyCommandInput) (*mcpsdk.CallToolResult, PlacementsOutput, error) {
	// Parse locally so malformed input never reaches the daemon.
	cmd, err := command.Parse(args.Command)
	if err != nil {
		return nil, PlacementsOutput{}, err
	}
	if isLifecycle(cmd.Kind) {
		return nil, PlacementsOutput{}, fmt.Errorf("%s is reserved for the X server", cmd.Kind)
	}
	fields := strings.Fields(args.Command)

	data, err := s.daemon.ApplyCommand(string(cmd.Kind), fields[1:])
	if err != nil {
		return nil, PlacementsOutput{}, fmt.Errorf("apply %s: %w", cmd.Kind, err)
	}
	s.logger.Debug("command applied", "command", cmd.String(), "workspace", data.Workspace)
	return nil, placementsOutput(data), nil
}

func (s *Server) handleGetPlacements(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, PlacementsOutput, error) {
	data, err := s.daemon.GetPlacements()
	if err != nil {
		return nil, PlacementsOutput{}, err
	}
	return nil, placementsOutput(data), nil
}

func (s *Server) handleListWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, WorkspacesOutput, error) {
	data, err := s.daemon.GetWorkspaces()
	if err != nil {
		return nil, WorkspacesOutput{}, err
	}
	return nil, WorkspacesOutput{Current: data.Current, Workspaces: data.Workspaces}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Workspace:     st.Workspace,
		Layout:        st.Layout,
		Focused:       st.Focused,
		WindowCount:   st.WindowCount,
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleListCommands(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListCommandsOutput, error) {
	var names []string
	for _, k := range command.Kinds() {
		if isLifecycle(k) {
			continue
		}
		names = append(names, string(k))
	}
	return nil, ListCommandsOutput{Commands: names}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	s.logger.Info("config reloaded via mcp")
	return nil, ReloadOutput{Reloaded: true}, nil
}

// isLifecycle reports kinds driven by map and unmap events.
func isLifecycle(k command.Kind) bool {
	return k == command.KindWindowAppeared || k == command.KindWindowRemoved
}

func placementsOutput(data *ipc.PlacementsData) PlacementsOutput {
	return PlacementsOutput{
		Workspace:  data.Workspace,
		Screen:     data.Screen,
		Placements: data.Placements,
		Hidden:     data.Hidden,
	}
}
