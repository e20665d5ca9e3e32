package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NewWindow    key.Binding
	CloseWindow  key.Binding
	FocusNext    key.Binding
	FocusPrev    key.Binding
	SwapNext     key.Binding
	SwapPrev     key.Binding
	SwapMaster   key.Binding
	Shrink       key.Binding
	Grow         key.Binding
	FewerMasters key.Binding
	MoreMasters  key.Binding
	NextLayout   key.Binding
	NextUsed     key.Binding
	PrevUsed     key.Binding
	Switch       key.Binding
	MoveTo       key.Binding
	Prompt       key.Binding
	Edit         key.Binding
	Save         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// moveKeys are the shifted digits on a US layout, in workspace order.
const moveKeys = "!@#$%^&*("

func defaultKeyMap() keyMap {
	return keyMap{
		NewWindow:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new window")),
		CloseWindow:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close")),
		FocusNext:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "focus next")),
		FocusPrev:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "focus prev")),
		SwapNext:     key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "swap next")),
		SwapPrev:     key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "swap prev")),
		SwapMaster:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "swap master")),
		Shrink:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "shrink master")),
		Grow:         key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "grow master")),
		FewerMasters: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "fewer masters")),
		MoreMasters:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "more masters")),
		NextLayout:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "next layout")),
		NextUsed:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next used workspace")),
		PrevUsed:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev used workspace")),
		Switch:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "switch workspace")),
		MoveTo:       key.NewBinding(key.WithKeys("!", "@", "#", "$", "%", "^", "&", "*", "("), key.WithHelp("shift+1-9", "move to workspace")),
		Prompt:       key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Edit:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit settings")),
		Save:         key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save config")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewWindow, k.CloseWindow, k.FocusNext, k.SwapMaster, k.NextLayout, k.Prompt, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewWindow, k.CloseWindow, k.FocusNext, k.FocusPrev, k.SwapNext, k.SwapPrev, k.SwapMaster},
		{k.Shrink, k.Grow, k.FewerMasters, k.MoreMasters, k.NextLayout},
		{k.Switch, k.MoveTo, k.NextUsed, k.PrevUsed},
		{k.Prompt, k.Edit, k.Save, k.Help, k.Quit},
	}
}
