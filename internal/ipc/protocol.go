package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/tiling"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandApply         CommandType = "APPLY_COMMAND"
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandGetPlacements CommandType = "GET_PLACEMENTS"
	CommandGetWorkspaces CommandType = "GET_WORKSPACES"
	CommandReload        CommandType = "RELOAD"
	CommandPing          CommandType = "PING"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ApplyCommandPayload is the payload of APPLY_COMMAND, in the same textual
// form key bindings use: {"name": "resize-master", "args": ["+0.05"]}.
type ApplyCommandPayload struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Workspace     string      `json:"workspace"`
	WorkspaceIdx  int         `json:"workspace_index"`
	Layout        tiling.Kind `json:"layout"`
	Focused       uint32      `json:"focused,omitempty"`
	WindowCount   int         `json:"window_count"`
	Screen        geom.Rect   `json:"screen"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	DaemonRunning bool        `json:"daemon_running"`
}

// PlacementsData represents the data returned by GET_PLACEMENTS and
// APPLY_COMMAND.
type PlacementsData struct {
	Workspace  string             `json:"workspace"`
	Screen     geom.Rect          `json:"screen"`
	Placements []tiling.Placement `json:"placements"`
	Hidden     []uint32           `json:"hidden,omitempty"`
}

// WorkspacesData represents the data returned by GET_WORKSPACES
type WorkspacesData = command.Snapshot

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
