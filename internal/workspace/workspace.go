// Package workspace holds the fixed ring of named workspaces. Each workspace
// owns one window stack and one layout, and exactly one workspace is current.
package workspace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
)

var (
	// ErrInvalidWorkspaceIndex is returned for an out-of-range workspace index.
	ErrInvalidWorkspaceIndex = errors.New("invalid workspace index")
	// ErrNoFocusedWindow is returned when an operation needs a focused window
	// but the current stack is empty.
	ErrNoFocusedWindow = errors.New("no focused window")
)

// Workspace is a named container of one stack and one layout.
type Workspace struct {
	Name   string
	Stack  stack.Stack
	Layout tiling.Layout
}

// Set is a fixed-length sequence of workspaces. Indices are stable for the
// lifetime of the set.
type Set struct {
	workspaces []Workspace
	current    int
}

// New creates one empty workspace per name, all starting with layout.
func New(names []string, layout tiling.Layout) (*Set, error) {
	if len(names) == 0 {
		return nil, errors.New("at least one workspace name is required")
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	seen := make(map[string]struct{}, len(names))
	workspaces := make([]Workspace, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New("workspace names must not be empty")
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate workspace name: %q", name)
		}
		seen[name] = struct{}{}
		workspaces = append(workspaces, Workspace{Name: name, Layout: layout})
	}

	return &Set{workspaces: workspaces}, nil
}

// Len returns the number of workspaces.
func (s *Set) Len() int { return len(s.workspaces) }

// CurrentIndex returns the index of the visible workspace.
func (s *Set) CurrentIndex() int { return s.current }

// Current returns the visible workspace. The pointer is valid until the set
// is discarded; callers must not retain it across commands.
func (s *Set) Current() *Workspace { return &s.workspaces[s.current] }

// At returns the workspace at index i.
func (s *Set) At(i int) (*Workspace, error) {
	if !s.valid(i) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrInvalidWorkspaceIndex, i, len(s.workspaces))
	}
	return &s.workspaces[i], nil
}

// Names returns workspace names in index order.
func (s *Set) Names() []string {
	names := make([]string, len(s.workspaces))
	for i, ws := range s.workspaces {
		names[i] = ws.Name
	}
	return names
}

// IndexOf returns the index of the workspace called name.
func (s *Set) IndexOf(name string) (int, bool) {
	for i, ws := range s.workspaces {
		if ws.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Find returns the index of the workspace whose stack holds id.
func (s *Set) Find(id stack.WindowID) (int, bool) {
	for i := range s.workspaces {
		if s.workspaces[i].Stack.Contains(id) {
			return i, true
		}
	}
	return -1, false
}

// Insert adds id as the focus of the current workspace. A window tracked by
// any workspace is rejected.
func (s *Set) Insert(id stack.WindowID) error {
	if i, ok := s.Find(id); ok {
		return fmt.Errorf("%w: %d already on workspace %q", stack.ErrDuplicateWindow, id, s.workspaces[i].Name)
	}
	return s.Current().Stack.InsertAsFocus(id)
}

// Remove deletes id from whichever workspace holds it.
func (s *Set) Remove(id stack.WindowID) bool {
	i, ok := s.Find(id)
	if !ok {
		return false
	}
	return s.workspaces[i].Stack.Remove(id)
}

// SwitchTo makes workspace i current. No window moves.
func (s *Set) SwitchTo(i int) error {
	if !s.valid(i) {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidWorkspaceIndex, i, len(s.workspaces))
	}
	s.current = i
	return nil
}

// SwitchRelative moves the current index by delta, wrapping around the ring.
func (s *Set) SwitchRelative(delta int) {
	s.current = s.wrap(s.current + delta)
}

// SwitchNonEmpty moves to the nearest workspace in the direction of delta
// whose stack is not empty. It reports whether the current index changed.
func (s *Set) SwitchNonEmpty(delta int) bool {
	if delta == 0 {
		return false
	}
	step := 1
	if delta < 0 {
		step = -1
	}
	for d := 1; d < len(s.workspaces); d++ {
		i := s.wrap(s.current + step*d)
		if !s.workspaces[i].Stack.Empty() {
			s.current = i
			return true
		}
	}
	return false
}

// MoveFocusedTo moves the focused window of the current workspace to the
// focus position of workspace i. On error nothing changes.
func (s *Set) MoveFocusedTo(i int) error {
	if !s.valid(i) {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidWorkspaceIndex, i, len(s.workspaces))
	}
	src := s.Current()
	id, ok := src.Stack.Focused()
	if !ok {
		return fmt.Errorf("%w on workspace %q", ErrNoFocusedWindow, src.Name)
	}
	if i == s.current {
		return nil
	}
	dst := &s.workspaces[i]
	if dst.Stack.Contains(id) {
		return fmt.Errorf("%w: %d already on workspace %q", stack.ErrDuplicateWindow, id, dst.Name)
	}

	src.Stack.Remove(id)
	return dst.Stack.InsertAsFocus(id)
}

// MoveFocusedRelative moves the focused window delta workspaces along the
// ring. The current workspace does not change.
func (s *Set) MoveFocusedRelative(delta int) error {
	return s.MoveFocusedTo(s.wrap(s.current + delta))
}

// WindowCount returns the total number of windows across all workspaces.
func (s *Set) WindowCount() int {
	n := 0
	for i := range s.workspaces {
		n += s.workspaces[i].Stack.Len()
	}
	return n
}

// Validate checks that every stack is well formed and that no window is
// tracked by two workspaces.
func (s *Set) Validate() error {
	if !s.valid(s.current) {
		return fmt.Errorf("%w: current=%d", ErrInvalidWorkspaceIndex, s.current)
	}
	owner := make(map[stack.WindowID]string)
	for i := range s.workspaces {
		ws := &s.workspaces[i]
		if err := ws.Stack.Validate(); err != nil {
			return fmt.Errorf("workspace %q: %w", ws.Name, err)
		}
		for _, id := range ws.Stack.Ordered() {
			if prev, ok := owner[id]; ok {
				return fmt.Errorf("%w: %d on both %q and %q", stack.ErrDuplicateWindow, id, prev, ws.Name)
			}
			owner[id] = ws.Name
		}
	}
	return nil
}

func (s *Set) valid(i int) bool {
	return i >= 0 && i < len(s.workspaces)
}

func (s *Set) wrap(i int) int {
	n := len(s.workspaces)
	return ((i % n) + n) % n
}
