// Package command is the public entry point of the arrangement core. It turns
// discrete commands into workspace and stack mutations and recomputes window
// placements for the current workspace.
//
// A Processor is not safe for concurrent use. Callers feed it commands from a
// single goroutine; see the session package for the runtime that does so.
package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
	"github.com/1broseidon/sabini/internal/workspace"
)

// Re-exported so callers can match errors without importing every package.
var (
	ErrDuplicateWindow       = stack.ErrDuplicateWindow
	ErrInvalidWorkspaceIndex = workspace.ErrInvalidWorkspaceIndex
	ErrNoFocusedWindow       = workspace.ErrNoFocusedWindow
)

// Processor applies commands to a workspace set.
type Processor struct {
	set    *workspace.Set
	logger *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for command tracing.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a processor that owns set.
func New(set *workspace.Set, opts ...Option) *Processor {
	p := &Processor{
		set:    set,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply executes cmd. Commands are all-or-nothing: on error the state is
// unchanged.
func (p *Processor) Apply(cmd Command) error {
	if err := p.apply(cmd); err != nil {
		p.logger.Debug("command rejected", "command", cmd.String(), "error", err)
		return err
	}
	ws := p.set.Current()
	p.logger.Debug("command applied",
		"command", cmd.String(),
		"workspace", ws.Name,
		"stack", ws.Stack.String(),
	)
	return nil
}

func (p *Processor) apply(cmd Command) error {
	ws := p.set.Current()

	switch cmd.Kind {
	case KindWindowAppeared:
		return p.set.Insert(cmd.Window)

	case KindWindowRemoved:
		p.set.Remove(cmd.Window)
		return nil

	case KindFocusNext:
		ws.Stack.FocusNext()
	case KindFocusPrev:
		ws.Stack.FocusPrev()
	case KindFocusWindow:
		i, ok := p.set.Find(cmd.Window)
		if !ok {
			return nil
		}
		if err := p.set.SwitchTo(i); err != nil {
			return err
		}
		p.set.Current().Stack.FocusWindow(cmd.Window)

	case KindSwapWithMaster:
		ws.Stack.SwapFocusToMaster()
	case KindSwapNext:
		ws.Stack.SwapNext()
	case KindSwapPrev:
		ws.Stack.SwapPrev()

	case KindResizeMaster:
		if math.IsNaN(cmd.Delta) || math.IsInf(cmd.Delta, 0) {
			return fmt.Errorf("resize-master: invalid delta %v", cmd.Delta)
		}
		ws.Layout.Tall.MasterRatio = clampFloat(ws.Layout.Tall.MasterRatio+cmd.Delta, tiling.MinMasterRatio, tiling.MaxMasterRatio)

	case KindChangeMasterCount:
		ws.Layout.Tall.MasterCount = clampInt(ws.Layout.Tall.MasterCount+cmd.Count, 0, ws.Stack.Len())

	case KindNextLayout:
		ws.Layout = ws.Layout.Next(1)
	case KindPrevLayout:
		ws.Layout = ws.Layout.Next(-1)

	case KindSwitchWorkspace:
		return p.set.SwitchTo(cmd.Index)
	case KindSwitchByName:
		i, err := p.lookup(cmd.Name)
		if err != nil {
			return err
		}
		return p.set.SwitchTo(i)
	case KindWorkspaceNext:
		p.set.SwitchRelative(1)
	case KindWorkspacePrev:
		p.set.SwitchRelative(-1)
	case KindWorkspaceNextUsed:
		p.set.SwitchNonEmpty(1)
	case KindWorkspacePrevUsed:
		p.set.SwitchNonEmpty(-1)

	case KindMoveToWorkspace:
		return p.set.MoveFocusedTo(cmd.Index)
	case KindMoveByName:
		i, err := p.lookup(cmd.Name)
		if err != nil {
			return err
		}
		return p.set.MoveFocusedTo(i)
	case KindMoveToNext:
		return p.set.MoveFocusedRelative(1)
	case KindMoveToPrev:
		return p.set.MoveFocusedRelative(-1)

	case KindCloseWindow:
		// Closing is carried out by the display; the stack changes when the
		// window is reported removed.

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
	return nil
}

func (p *Processor) lookup(name string) (int, error) {
	if i, ok := p.set.IndexOf(name); ok {
		return i, nil
	}
	return -1, fmt.Errorf("%w: no workspace named %q", ErrInvalidWorkspaceIndex, name)
}

// ApplyAll applies commands in order and stops at the first error.
func (p *Processor) ApplyAll(cmds ...Command) error {
	for i, cmd := range cmds {
		if err := p.Apply(cmd); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, cmd, err)
		}
	}
	return nil
}

// Placements computes window rectangles for the current workspace.
func (p *Processor) Placements(area tiling.Area) []tiling.Placement {
	ws := p.set.Current()
	return tiling.Arrange(ws.Layout, ws.Stack.Ordered(), ws.Stack.FocusIndex(), area)
}

// Focused returns the focused window of the current workspace.
func (p *Processor) Focused() (stack.WindowID, bool) {
	return p.set.Current().Stack.Focused()
}

// Tracks reports whether any workspace holds id.
func (p *Processor) Tracks(id stack.WindowID) bool {
	_, ok := p.set.Find(id)
	return ok
}

// Validate checks the invariants of the underlying workspace set.
func (p *Processor) Validate() error {
	return p.set.Validate()
}

// IsUserError reports whether err was caused by an invalid command rather
// than a bug in the caller's window bookkeeping.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidWorkspaceIndex) ||
		errors.Is(err, ErrNoFocusedWindow) ||
		errors.Is(err, ErrUnknownCommand)
}

// ratioPrecision quantises adjusted ratios so repeated steps do not drift.
const ratioPrecision = 1e6

func clampFloat(v, lo, hi float64) float64 {
	v = math.Round(v*ratioPrecision) / ratioPrecision
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
