package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/sabini/internal/tiling"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.Workspaces != nil {
		cfg.Workspaces = append([]string(nil), raw.Workspaces...)
	}
	if raw.Layout != nil {
		cfg.Layout = applyRawLayout(cfg.Layout, *raw.Layout)
	}
	if len(raw.WorkspaceLayouts) > 0 {
		cfg.WorkspaceLayouts = make(map[string]tiling.Layout, len(raw.WorkspaceLayouts))
		for name, patch := range raw.WorkspaceLayouts {
			cfg.WorkspaceLayouts[name] = applyRawLayout(cfg.Layout, patch)
		}
	}
	if raw.Margin != nil {
		cfg.Margin = *raw.Margin
	}
	if raw.Border != nil {
		cfg.Border.Top = derefInt(raw.Border.Top, cfg.Border.Top)
		cfg.Border.Right = derefInt(raw.Border.Right, cfg.Border.Right)
		cfg.Border.Bottom = derefInt(raw.Border.Bottom, cfg.Border.Bottom)
		cfg.Border.Left = derefInt(raw.Border.Left, cfg.Border.Left)
	}
	if raw.ResizeStep != nil {
		cfg.ResizeStep = *raw.ResizeStep
	}
	if raw.Log != nil {
		if raw.Log.Level != nil {
			cfg.Log.Level = strings.ToLower(strings.TrimSpace(*raw.Log.Level))
		}
		if raw.Log.File != nil {
			path, err := expandHome(*raw.Log.File)
			if err != nil {
				return nil, &ValidationError{Path: "log.file", Err: err}
			}
			cfg.Log.File = path
		}
		cfg.Log.MaxSizeMB = derefInt(raw.Log.MaxSizeMB, cfg.Log.MaxSizeMB)
		cfg.Log.MaxFiles = derefInt(raw.Log.MaxFiles, cfg.Log.MaxFiles)
	}

	// Workspace keys follow the final workspace count, then user bindings
	// replace or remove individual defaults.
	defaults := DefaultKeybindings(len(cfg.Workspaces), cfg.ResizeStep)
	for keys, cmd := range raw.Keybindings {
		if strings.TrimSpace(cmd) == UnbindCommand {
			delete(defaults, keys)
			continue
		}
		defaults[keys] = cmd
	}
	cfg.Keybindings = defaults

	return cfg, nil
}

func applyRawLayout(base tiling.Layout, patch RawLayout) tiling.Layout {
	out := base
	if patch.Kind != nil {
		out.Kind = tiling.Kind(strings.ToLower(string(*patch.Kind)))
	}
	out.Tall.MasterCount = derefInt(patch.MasterCount, out.Tall.MasterCount)
	if patch.MasterRatio != nil {
		out.Tall.MasterRatio = *patch.MasterRatio
	}
	out.Tall.Gap = derefInt(patch.Gap, out.Tall.Gap)
	return out
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
