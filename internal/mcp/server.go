// Package mcp exposes the running daemon as a Model Context Protocol server
// on stdio, so agents can inspect and rearrange windows.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/sabini/internal/ipc"
)

const (
	ServerName    = "sabini"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	ApplyCommand(name string, args []string) (*ipc.PlacementsData, error)
	GetStatus() (*ipc.StatusData, error)
	GetPlacements() (*ipc.PlacementsData, error)
	GetWorkspaces() (*ipc.WorkspacesData, error)
	Reload() error
}

// Server is the MCP server in front of a daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger.With("component", "mcp"),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_command",
		Description: "Run one window manager command and return the resulting placements of the visible workspace. Use list_commands for the accepted names. Invalid workspace indices are rejected and leave the state unchanged.",
	}, s.handleApplyCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_placements",
		Description: "Return the rectangle of every window shown on the visible workspace, plus the ids of hidden windows.",
	}, s.handleGetPlacements)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List every workspace with its windows in stack order, the focused index and the active layout.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the visible workspace, its layout, the focused window and daemon uptime.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_commands",
		Description: "List the command names apply_command accepts.",
	}, s.handleListCommands)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Re-read the daemon configuration file. Margin, border and key bindings apply immediately.",
	}, s.handleReloadConfig)
}
