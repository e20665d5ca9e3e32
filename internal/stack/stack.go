// Package stack implements the focus-tracking window sequence that every
// workspace owns.
//
// A Stack is stored as three parts: the windows above the focus, the focused
// window itself, and the windows below it. Both outer parts are kept nearest
// to the focus first. The flattened "stack order" is
// reverse(up) ++ focus ++ down, and index 0 of that order is the master.
package stack

import (
	"errors"
	"fmt"
	"slices"
)

// WindowID is an opaque, externally issued window identifier.
type WindowID uint32

// ErrDuplicateWindow is returned when inserting a window that is already tracked.
var ErrDuplicateWindow = errors.New("duplicate window")

// Stack is an ordered set of windows with at most one focused element.
// The zero value is an empty stack ready for use.
type Stack struct {
	up       []WindowID
	focus    WindowID
	hasFocus bool
	down     []WindowID
}

// New builds a stack from an ordered list with focus on order[focus].
// Duplicates are rejected. An empty order yields an empty stack.
func New(order []WindowID, focus int) (Stack, error) {
	var s Stack
	if len(order) == 0 {
		return s, nil
	}
	if focus < 0 || focus >= len(order) {
		return s, fmt.Errorf("focus index %d out of range for %d windows", focus, len(order))
	}
	seen := make(map[WindowID]struct{}, len(order))
	for _, id := range order {
		if _, ok := seen[id]; ok {
			return Stack{}, fmt.Errorf("%w: %d", ErrDuplicateWindow, id)
		}
		seen[id] = struct{}{}
	}
	s.setOrdered(slices.Clone(order), focus)
	return s, nil
}

// Clone returns a deep copy that shares no storage with s.
func (s *Stack) Clone() Stack {
	return Stack{
		up:       slices.Clone(s.up),
		focus:    s.focus,
		hasFocus: s.hasFocus,
		down:     slices.Clone(s.down),
	}
}

// Len returns the number of windows in the stack.
func (s *Stack) Len() int {
	if !s.hasFocus {
		return 0
	}
	return len(s.up) + 1 + len(s.down)
}

// Empty reports whether the stack holds no windows.
func (s *Stack) Empty() bool { return !s.hasFocus }

// Focused returns the focused window, if any.
func (s *Stack) Focused() (WindowID, bool) {
	return s.focus, s.hasFocus
}

// Contains reports whether id is a member of the stack.
func (s *Stack) Contains(id WindowID) bool {
	if !s.hasFocus {
		return false
	}
	return s.focus == id || slices.Contains(s.up, id) || slices.Contains(s.down, id)
}

// Ordered returns the windows in stack order. The returned slice is a copy.
func (s *Stack) Ordered() []WindowID {
	if !s.hasFocus {
		return nil
	}
	out := make([]WindowID, 0, s.Len())
	for i := len(s.up) - 1; i >= 0; i-- {
		out = append(out, s.up[i])
	}
	out = append(out, s.focus)
	out = append(out, s.down...)
	return out
}

// FocusIndex returns the position of the focused window in stack order, or
// -1 for an empty stack.
func (s *Stack) FocusIndex() int {
	if !s.hasFocus {
		return -1
	}
	return len(s.up)
}

// Index returns the stack-order position of id, or -1.
func (s *Stack) Index(id WindowID) int {
	return slices.Index(s.Ordered(), id)
}

// Master returns the first window in stack order.
func (s *Stack) Master() (WindowID, bool) {
	if !s.hasFocus {
		return 0, false
	}
	if len(s.up) > 0 {
		return s.up[len(s.up)-1], true
	}
	return s.focus, true
}

// InsertAsFocus adds id as the new focus. The previous focus becomes the
// nearest element above it.
func (s *Stack) InsertAsFocus(id WindowID) error {
	if s.Contains(id) {
		return fmt.Errorf("%w: %d", ErrDuplicateWindow, id)
	}
	if s.hasFocus {
		s.up = append([]WindowID{s.focus}, s.up...)
	}
	s.focus = id
	s.hasFocus = true
	return nil
}

// Remove deletes id from the stack and reports whether it was present. When
// the focus is removed it moves to the nearest window below, then above.
func (s *Stack) Remove(id WindowID) bool {
	if !s.hasFocus {
		return false
	}
	if s.focus == id {
		switch {
		case len(s.down) > 0:
			s.focus = s.down[0]
			s.down = slices.Delete(s.down, 0, 1)
		case len(s.up) > 0:
			s.focus = s.up[0]
			s.up = slices.Delete(s.up, 0, 1)
		default:
			*s = Stack{}
		}
		return true
	}
	if i := slices.Index(s.up, id); i >= 0 {
		s.up = slices.Delete(s.up, i, i+1)
		return true
	}
	if i := slices.Index(s.down, id); i >= 0 {
		s.down = slices.Delete(s.down, i, i+1)
		return true
	}
	return false
}

// FocusNext moves focus one step down in stack order, wrapping to the master.
func (s *Stack) FocusNext() {
	if s.Len() < 2 {
		return
	}
	order := s.Ordered()
	s.setOrdered(order, (len(s.up)+1)%len(order))
}

// FocusPrev moves focus one step up in stack order, wrapping to the last window.
func (s *Stack) FocusPrev() {
	if s.Len() < 2 {
		return
	}
	order := s.Ordered()
	s.setOrdered(order, (len(s.up)-1+len(order))%len(order))
}

// FocusWindow moves focus to id without reordering. It reports whether id is
// a member.
func (s *Stack) FocusWindow(id WindowID) bool {
	order := s.Ordered()
	i := slices.Index(order, id)
	if i < 0 {
		return false
	}
	s.setOrdered(order, i)
	return true
}

// SwapFocusToMaster moves the focused window to the front of stack order.
// Every other window keeps its relative order and focus stays on the window.
func (s *Stack) SwapFocusToMaster() {
	if !s.hasFocus || len(s.up) == 0 {
		return
	}
	order := s.Ordered()
	i := len(s.up)
	moved := append([]WindowID{order[i]}, order[:i]...)
	moved = append(moved, order[i+1:]...)
	s.setOrdered(moved, 0)
}

// SwapNext exchanges the focused window with the one after it, wrapping at
// the end. Focus follows the moved window.
func (s *Stack) SwapNext() { s.swapWith(1) }

// SwapPrev exchanges the focused window with the one before it.
func (s *Stack) SwapPrev() { s.swapWith(-1) }

func (s *Stack) swapWith(delta int) {
	n := s.Len()
	if n < 2 {
		return
	}
	order := s.Ordered()
	i := len(s.up)
	j := ((i+delta)%n + n) % n
	order[i], order[j] = order[j], order[i]
	s.setOrdered(order, j)
}

// Validate checks the structural invariants: no duplicates, and a focus
// present exactly when the stack is non-empty.
func (s *Stack) Validate() error {
	if !s.hasFocus {
		if len(s.up) != 0 || len(s.down) != 0 {
			return errors.New("stack has members but no focus")
		}
		return nil
	}
	seen := make(map[WindowID]struct{}, s.Len())
	for _, id := range s.Ordered() {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %d appears twice", ErrDuplicateWindow, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// String renders the stack as "[a *b c]" with the focus starred.
func (s Stack) String() string {
	out := "["
	for i, id := range s.Ordered() {
		if i > 0 {
			out += " "
		}
		if i == len(s.up) {
			out += "*"
		}
		out += fmt.Sprint(uint32(id))
	}
	return out + "]"
}

// setOrdered rebuilds the three parts from a flat stack order.
func (s *Stack) setOrdered(order []WindowID, focus int) {
	up := make([]WindowID, 0, focus)
	for i := focus - 1; i >= 0; i-- {
		up = append(up, order[i])
	}
	s.up = up
	s.focus = order[focus]
	s.hasFocus = true
	s.down = slices.Clone(order[focus+1:])
}
