package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/sabini/internal/ipc"
	"github.com/1broseidon/sabini/internal/palette"
)

func runMenu(args []string) int {
	fs := newFlagSet("menu", "menu [--backend auto|rofi|dmenu]")
	backendName := fs.String("backend", "auto", "Palette program to use")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	snap, err := client.GetWorkspaces()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	item, err := backend.Show("sabini", palette.BuildItems(*snap), snap.CurrentWorkspace().Name)
	if errors.Is(err, palette.ErrCancelled) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fields := strings.Fields(item.Command)
	if len(fields) == 0 {
		return 0
	}
	if _, err := client.ApplyCommand(fields[0], fields[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
