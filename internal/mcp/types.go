package mcp

import (
	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/tiling"
)

// ApplyCommandInput is the input for the apply_command tool.
type ApplyCommandInput struct {
	Command string `json:"command" jsonschema:"Command line such as 'resize-master +0.05' or 'switch-workspace 2'. Workspace indices are zero-based."`
}

// PlacementsOutput is returned by apply_command and get_placements.
type PlacementsOutput struct {
	Workspace  string             `json:"workspace"`
	Screen     geom.Rect          `json:"screen"`
	Placements []tiling.Placement `json:"placements"`
	Hidden     []uint32           `json:"hidden,omitempty"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Workspace     string      `json:"workspace"`
	Layout        tiling.Kind `json:"layout"`
	Focused       uint32      `json:"focused,omitempty"`
	WindowCount   int         `json:"window_count"`
	UptimeSeconds int64       `json:"uptime_seconds"`
}

// WorkspacesOutput is the output for the list_workspaces tool.
type WorkspacesOutput struct {
	Current    int                      `json:"current"`
	Workspaces []command.WorkspaceState `json:"workspaces"`
}

// ListCommandsOutput is the output for the list_commands tool.
type ListCommandsOutput struct {
	Commands []string `json:"commands"`
}

// ReloadOutput is the output for the reload_config tool.
type ReloadOutput struct {
	Reloaded bool `json:"reloaded"`
}
