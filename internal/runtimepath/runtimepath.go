package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the runtime directory holding the IPC socket and instance lock.
// Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/sabini-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/sabini-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path for the current display.
func SocketPath() (string, error) {
	return pathFor("sock")
}

// LockPath returns the single-instance lock path for the current display.
func LockPath() (string, error) {
	return pathFor("lock")
}

// pathFor names a runtime file after the X display so that window managers
// on different displays do not collide. ":0" keeps the plain name.
func pathFor(ext string) (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	name := "sabini"
	if suffix := displaySuffix(os.Getenv("DISPLAY")); suffix != "" {
		name += "-" + suffix
	}
	return filepath.Join(runtimeDir, name+"."+ext), nil
}

func displaySuffix(display string) string {
	display = strings.TrimSpace(display)
	if display == "" || display == ":0" || display == ":0.0" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.TrimPrefix(display, ":"))
}
