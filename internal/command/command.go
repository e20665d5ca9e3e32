package command

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/sabini/internal/stack"
)

// ErrUnknownCommand is returned for a command kind the processor does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Kind identifies a command.
type Kind string

const (
	KindWindowAppeared    Kind = "window-appeared"
	KindWindowRemoved     Kind = "window-removed"
	KindFocusNext         Kind = "focus-next"
	KindFocusPrev         Kind = "focus-prev"
	KindFocusWindow       Kind = "focus-window"
	KindSwapWithMaster    Kind = "swap-with-master"
	KindSwapNext          Kind = "swap-next"
	KindSwapPrev          Kind = "swap-prev"
	KindResizeMaster      Kind = "resize-master"
	KindChangeMasterCount Kind = "change-master-count"
	KindNextLayout        Kind = "next-layout"
	KindPrevLayout        Kind = "prev-layout"
	KindSwitchWorkspace   Kind = "switch-workspace"
	KindSwitchByName      Kind = "switch-workspace-name"
	KindWorkspaceNext     Kind = "workspace-next"
	KindWorkspacePrev     Kind = "workspace-prev"
	KindWorkspaceNextUsed Kind = "workspace-next-nonempty"
	KindWorkspacePrevUsed Kind = "workspace-prev-nonempty"
	KindMoveToWorkspace   Kind = "move-to-workspace"
	KindMoveByName        Kind = "move-to-workspace-name"
	KindMoveToNext        Kind = "move-to-workspace-next"
	KindMoveToPrev        Kind = "move-to-workspace-prev"
	KindCloseWindow       Kind = "close-window"
)

// argument describes what a command kind expects after its name.
type argument int

const (
	argNone argument = iota
	argWindow
	argIndex
	argRatio
	argCount
	argName
)

var kindArgs = map[Kind]argument{
	KindWindowAppeared:    argWindow,
	KindWindowRemoved:     argWindow,
	KindFocusNext:         argNone,
	KindFocusPrev:         argNone,
	KindFocusWindow:       argWindow,
	KindSwapWithMaster:    argNone,
	KindSwapNext:          argNone,
	KindSwapPrev:          argNone,
	KindResizeMaster:      argRatio,
	KindChangeMasterCount: argCount,
	KindNextLayout:        argNone,
	KindPrevLayout:        argNone,
	KindSwitchWorkspace:   argIndex,
	KindSwitchByName:      argName,
	KindWorkspaceNext:     argNone,
	KindWorkspacePrev:     argNone,
	KindWorkspaceNextUsed: argNone,
	KindWorkspacePrevUsed: argNone,
	KindMoveToWorkspace:   argIndex,
	KindMoveByName:        argName,
	KindMoveToNext:        argNone,
	KindMoveToPrev:        argNone,
	KindCloseWindow:       argNone,
}

// Kinds returns every known command kind, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindArgs))
	for k := range kindArgs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Command is a single request to the processor. Only the field matching the
// kind's argument is meaningful.
type Command struct {
	Kind   Kind           `json:"kind"`
	Window stack.WindowID `json:"window,omitempty"`
	Index  int            `json:"index,omitempty"`
	Delta  float64        `json:"delta,omitempty"`
	Count  int            `json:"count,omitempty"`
	Name   string         `json:"name,omitempty"`
}

// WindowAppeared tracks a new window as the focus of the current workspace.
func WindowAppeared(id stack.WindowID) Command {
	return Command{Kind: KindWindowAppeared, Window: id}
}

// WindowRemoved forgets a window wherever it is tracked.
func WindowRemoved(id stack.WindowID) Command {
	return Command{Kind: KindWindowRemoved, Window: id}
}

// FocusNext moves focus down the current stack, wrapping at the end.
func FocusNext() Command { return Command{Kind: KindFocusNext} }

// FocusPrev moves focus up the current stack, wrapping at the start.
func FocusPrev() Command { return Command{Kind: KindFocusPrev} }

// SwapWithMaster moves the focused window to the master position.
func SwapWithMaster() Command { return Command{Kind: KindSwapWithMaster} }

// FocusWindow focuses id, switching to the workspace that holds it.
func FocusWindow(id stack.WindowID) Command {
	return Command{Kind: KindFocusWindow, Window: id}
}

// ResizeMasterRatio adds delta to the master ratio of the current workspace.
func ResizeMasterRatio(delta float64) Command {
	return Command{Kind: KindResizeMaster, Delta: delta}
}

// ChangeMasterCount adds delta to the number of master windows.
func ChangeMasterCount(delta int) Command {
	return Command{Kind: KindChangeMasterCount, Count: delta}
}

// SwitchToWorkspace makes the zero-based workspace index current.
func SwitchToWorkspace(index int) Command {
	return Command{Kind: KindSwitchWorkspace, Index: index}
}

// SwitchToWorkspaceNamed makes the workspace called name current.
func SwitchToWorkspaceNamed(name string) Command {
	return Command{Kind: KindSwitchByName, Name: name}
}

// MoveFocusedToWorkspace sends the focused window to workspace index.
func MoveFocusedToWorkspace(index int) Command {
	return Command{Kind: KindMoveToWorkspace, Index: index}
}

// MoveFocusedToWorkspaceNamed sends the focused window to the workspace
// called name.
func MoveFocusedToWorkspaceNamed(name string) Command {
	return Command{Kind: KindMoveByName, Name: name}
}

// MoveFocusedToNext sends the focused window to the next workspace.
func MoveFocusedToNext() Command { return Command{Kind: KindMoveToNext} }

// MoveFocusedToPrev sends the focused window to the previous workspace.
func MoveFocusedToPrev() Command { return Command{Kind: KindMoveToPrev} }

// CloseFocused asks the focused window to close. The window stays tracked
// until the display reports it gone.
func CloseFocused() Command { return Command{Kind: KindCloseWindow} }

// String renders the command in the same textual form ParseCommand accepts.
func (c Command) String() string {
	switch kindArgs[c.Kind] {
	case argWindow:
		return fmt.Sprintf("%s %d", c.Kind, c.Window)
	case argIndex:
		return fmt.Sprintf("%s %d", c.Kind, c.Index)
	case argRatio:
		return fmt.Sprintf("%s %+g", c.Kind, c.Delta)
	case argCount:
		return fmt.Sprintf("%s %+d", c.Kind, c.Count)
	case argName:
		return fmt.Sprintf("%s %s", c.Kind, c.Name)
	default:
		return string(c.Kind)
	}
}

// Parse parses a command line such as "resize-master +0.05".
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}
	return ParseCommand(fields[0], fields[1:])
}

// ParseCommand builds a command from its name and arguments. Workspace
// indices in the textual form are zero-based.
func ParseCommand(name string, args []string) (Command, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	want, ok := kindArgs[kind]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	cmd := Command{Kind: kind}
	if want == argNone {
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%s takes no arguments", kind)
		}
		return cmd, nil
	}
	if len(args) != 1 {
		return Command{}, fmt.Errorf("%s takes exactly one argument", kind)
	}

	arg := args[0]
	switch want {
	case argWindow:
		v, err := strconv.ParseUint(arg, 0, 32)
		if err != nil {
			return Command{}, fmt.Errorf("%s: invalid window id %q: %w", kind, arg, err)
		}
		cmd.Window = stack.WindowID(v)
	case argIndex:
		v, err := strconv.Atoi(arg)
		if err != nil {
			return Command{}, fmt.Errorf("%s: invalid workspace index %q: %w", kind, arg, err)
		}
		cmd.Index = v
	case argRatio:
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Command{}, fmt.Errorf("%s: invalid ratio delta %q: %w", kind, arg, err)
		}
		cmd.Delta = v
	case argCount:
		v, err := strconv.Atoi(arg)
		if err != nil {
			return Command{}, fmt.Errorf("%s: invalid count delta %q: %w", kind, arg, err)
		}
		cmd.Count = v
	case argName:
		cmd.Name = arg
	}
	return cmd, nil
}
