package palette

import (
	"fmt"

	"github.com/1broseidon/sabini/internal/command"
)

// BuildItems lists the workspace and layout actions for snap.
func BuildItems(snap command.Snapshot) []Item {
	items := []Item{{Label: "Workspaces", IsHeader: true}}
	for _, ws := range snap.Workspaces {
		items = append(items, Item{
			Label:    fmt.Sprintf("%d  %s  (%s)", ws.Index+1, ws.Name, windowCount(len(ws.Windows))),
			Command:  command.SwitchToWorkspace(ws.Index).String(),
			Icon:     "view-grid",
			IsActive: ws.Current,
		})
	}

	cur := snap.CurrentWorkspace()
	if _, ok := cur.Focused(); ok {
		items = append(items, Item{Label: "Move focused window to", IsHeader: true})
		for _, ws := range snap.Workspaces {
			if ws.Current {
				continue
			}
			items = append(items, Item{
				Label:   fmt.Sprintf("-> %d  %s", ws.Index+1, ws.Name),
				Command: command.MoveFocusedToWorkspace(ws.Index).String(),
				Icon:    "go-next",
			})
		}
		items = append(items, Item{Label: "Close focused window", Command: command.CloseFocused().String(), Icon: "window-close"})
	}

	items = append(items,
		Item{Label: "Layout", IsHeader: true},
		Item{Label: fmt.Sprintf("Next layout (now %s)", cur.Layout.Kind), Command: string(command.KindNextLayout), Icon: "view-refresh"},
		Item{Label: "Swap focused with master", Command: command.SwapWithMaster().String(), Icon: "go-top"},
		Item{Label: "Add a master window", Command: command.ChangeMasterCount(1).String(), Icon: "list-add"},
		Item{Label: "Remove a master window", Command: command.ChangeMasterCount(-1).String(), Icon: "list-remove"},
	)
	return items
}

func windowCount(n int) string {
	if n == 1 {
		return "1 window"
	}
	return fmt.Sprintf("%d windows", n)
}
