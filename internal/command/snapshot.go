package command

import (
	"github.com/1broseidon/sabini/internal/stack"
	"github.com/1broseidon/sabini/internal/tiling"
)

// WorkspaceState is a read-only copy of one workspace.
type WorkspaceState struct {
	Index   int              `json:"index"`
	Name    string           `json:"name"`
	Windows []stack.WindowID `json:"windows"`
	Focus   int              `json:"focus"` // Index into Windows, -1 when empty
	Layout  tiling.Layout    `json:"layout"`
	Current bool             `json:"current"`
}

// Focused returns the focused window of the workspace.
func (w WorkspaceState) Focused() (stack.WindowID, bool) {
	if w.Focus < 0 || w.Focus >= len(w.Windows) {
		return 0, false
	}
	return w.Windows[w.Focus], true
}

// Snapshot is a read-only copy of every workspace.
type Snapshot struct {
	Current    int              `json:"current"`
	Workspaces []WorkspaceState `json:"workspaces"`
}

// CurrentWorkspace returns the state of the visible workspace.
func (s Snapshot) CurrentWorkspace() WorkspaceState {
	return s.Workspaces[s.Current]
}

// Hidden returns windows that live on workspaces other than the current one.
func (s Snapshot) Hidden() []stack.WindowID {
	var out []stack.WindowID
	for _, ws := range s.Workspaces {
		if !ws.Current {
			out = append(out, ws.Windows...)
		}
	}
	return out
}

// Snapshot copies the state of every workspace. The result shares no
// storage with the processor.
func (p *Processor) Snapshot() Snapshot {
	snap := Snapshot{
		Current:    p.set.CurrentIndex(),
		Workspaces: make([]WorkspaceState, 0, p.set.Len()),
	}
	for i := 0; i < p.set.Len(); i++ {
		ws, _ := p.set.At(i)
		snap.Workspaces = append(snap.Workspaces, WorkspaceState{
			Index:   i,
			Name:    ws.Name,
			Windows: ws.Stack.Ordered(),
			Focus:   ws.Stack.FocusIndex(),
			Layout:  ws.Layout,
			Current: i == p.set.CurrentIndex(),
		})
	}
	return snap
}
