package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/sabini/internal/command"
)

// Handler answers IPC requests. Implementations serialise access to the
// window state themselves; the server calls them from one goroutine per
// connection.
type Handler interface {
	Apply(ctx context.Context, cmd command.Command) (PlacementsData, error)
	Status(ctx context.Context) (StatusData, error)
	Placements(ctx context.Context) (PlacementsData, error)
	Workspaces(ctx context.Context) (WorkspacesData, error)
	Reload(ctx context.Context) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger
	timeout    time.Duration
	conns      sync.WaitGroup
}

// NewServer creates a new IPC server bound to socketPath once served.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		timeout:    5 * time.Second,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Serve listens on the socket and handles connections until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	// Callers hold the instance lock, so an existing socket is stale.
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()
	defer os.Remove(s.socketPath)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.conns.Wait()
				return ctx.Err()
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection handles a single request/response exchange.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(s.timeout))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp = s.handleCommand(reqCtx, req)
		cancel()
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandApply:
		return s.handleApply(ctx, req.Payload)
	case CommandPing:
		resp, _ := NewOKResponse(nil)
		return resp
	case CommandGetStatus:
		return respond(s.handler.Status(ctx))
	case CommandGetPlacements:
		return respond(s.handler.Placements(ctx))
	case CommandGetWorkspaces:
		return respond(s.handler.Workspaces(ctx))
	case CommandReload:
		if err := s.handler.Reload(ctx); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		s.logger.Info("config reloaded via IPC")
		resp, _ := NewOKResponse(nil)
		return resp
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleApply(ctx context.Context, payload json.RawMessage) *Response {
	var req ApplyCommandPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid apply payload: %v", err))
	}
	if req.Name == "" {
		return NewErrorResponse("name is required")
	}

	cmd, err := command.ParseCommand(req.Name, req.Args)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return respond(s.handler.Apply(ctx, cmd))
}

func respond[T any](data T, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
