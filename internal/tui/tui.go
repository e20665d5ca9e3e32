// Package tui is an interactive sandbox for layouts and settings. It drives
// the same processor as the daemon with fake windows on a virtual screen.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/sabini/internal/config"
)

// Run starts the preview. Saving writes cfg back to path, or to the default
// config location when path is empty.
func Run(cfg *config.Config, path string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("preview requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	m, err := newModel(cfg, path)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}
