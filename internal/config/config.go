package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/tiling"
	"github.com/1broseidon/sabini/internal/workspace"
	"gopkg.in/yaml.v3"
)

const (
	DefaultResizeStep = 0.05
	DefaultGap        = 4
	DefaultMargin     = 8
)

// LogConfig controls the daemon's structured logging.
type LogConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`        // Empty disables the rotating file sink
	MaxSizeMB int    `yaml:"max_size_mb"` // Rotate after this many megabytes
	MaxFiles  int    `yaml:"max_files"`   // Rotated files to keep
}

// Config is the effective configuration after defaults, includes and the
// main file have been merged.
type Config struct {
	Display          string                   `yaml:"display,omitempty"`
	Workspaces       []string                 `yaml:"workspaces"`
	Layout           tiling.Layout            `yaml:"layout"`
	WorkspaceLayouts map[string]tiling.Layout `yaml:"workspace_layouts,omitempty"`
	Margin           int                      `yaml:"margin"`
	Border           geom.Thickness           `yaml:"border"`
	ResizeStep       float64                  `yaml:"resize_step"`
	Log              LogConfig                `yaml:"log"`
	Keybindings      map[string]string        `yaml:"keybindings"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	layout := tiling.DefaultLayout()
	layout.Tall.Gap = DefaultGap
	workspaces := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}

	return &Config{
		Workspaces:  workspaces,
		Layout:      layout,
		Margin:      DefaultMargin,
		Border:      geom.Uniform(0),
		ResizeStep:  DefaultResizeStep,
		Log:         LogConfig{Level: "info", MaxSizeMB: 10, MaxFiles: 3},
		Keybindings: DefaultKeybindings(len(workspaces), DefaultResizeStep),
	}
}

// DefaultKeybindings returns the stock key map for n workspaces.
func DefaultKeybindings(n int, step float64) map[string]string {
	step = absFloat(step)
	kb := map[string]string{
		"Mod4-j":       "focus-next",
		"Mod4-k":       "focus-prev",
		"Mod4-Shift-j": "swap-next",
		"Mod4-Shift-k": "swap-prev",
		"Mod4-Return":  "swap-with-master",

		"Mod4-h":      fmt.Sprintf("resize-master -%g", step),
		"Mod4-l":      fmt.Sprintf("resize-master +%g", step),
		"Mod4-comma":  "change-master-count +1",
		"Mod4-period": "change-master-count -1",

		"Mod4-space":       "next-layout",
		"Mod4-Shift-space": "prev-layout",

		"Mod4-Tab":          "workspace-next-nonempty",
		"Mod4-Shift-Tab":    "workspace-prev-nonempty",
		"Mod4-bracketright": "workspace-next",
		"Mod4-bracketleft":  "workspace-prev",

		"Mod4-Shift-bracketright": "move-to-workspace-next",
		"Mod4-Shift-bracketleft":  "move-to-workspace-prev",
		"Mod4-Shift-c":            "close-window",
	}
	if n > 9 {
		n = 9
	}
	for i := 0; i < n; i++ {
		key := strconv.Itoa(i + 1)
		kb["Mod4-"+key] = fmt.Sprintf("switch-workspace %d", i)
		kb["Mod4-Shift-"+key] = fmt.Sprintf("move-to-workspace %d", i)
	}
	return kb
}

// DefaultConfigPath returns ~/.config/sabini/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "sabini", "config.yaml"), nil
}

// LayoutFor returns the initial layout of the named workspace.
func (c *Config) LayoutFor(name string) tiling.Layout {
	if l, ok := c.WorkspaceLayouts[name]; ok {
		return l
	}
	return c.Layout
}

// NewWorkspaceSet builds the configured workspaces, each starting with its
// own layout.
func (c *Config) NewWorkspaceSet() (*workspace.Set, error) {
	set, err := workspace.New(c.Workspaces, c.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspaces: %w", err)
	}
	for i, name := range c.Workspaces {
		ws, err := set.At(i)
		if err != nil {
			return nil, err
		}
		ws.Layout = c.LayoutFor(name)
	}
	return set, nil
}

// Area returns the arrangement area for a screen rectangle.
func (c *Config) Area(screen geom.Rect) tiling.Area {
	return tiling.Area{Screen: screen, Margin: c.Margin, Border: c.Border}
}

// Binding is a parsed key binding.
type Binding struct {
	Keys    string
	Command command.Command
}

// Bindings parses the key map, sorted by key sequence.
func (c *Config) Bindings() ([]Binding, error) {
	keys := make([]string, 0, len(c.Keybindings))
	for k := range c.Keybindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Binding, 0, len(keys))
	for _, k := range keys {
		cmd, err := command.Parse(c.Keybindings[k])
		if err != nil {
			return nil, &ValidationError{Path: "keybindings." + k, Err: err}
		}
		out = append(out, Binding{Keys: k, Command: cmd})
	}
	return out, nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
//
// This marshals the effective config and does not preserve comments or
// include structure from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if len(c.Workspaces) == 0 {
		return &ValidationError{Path: "workspaces", Err: fmt.Errorf("at least one workspace is required")}
	}
	seen := make(map[string]struct{}, len(c.Workspaces))
	for i, name := range c.Workspaces {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "workspaces", Err: fmt.Errorf("workspace %d has an empty name", i)}
		}
		if _, dup := seen[name]; dup {
			return &ValidationError{Path: "workspaces", Err: fmt.Errorf("duplicate workspace name %q", name)}
		}
		seen[name] = struct{}{}
	}

	if err := validateLayout(c.Layout); err != nil {
		return &ValidationError{Path: "layout", Err: err}
	}
	for name, l := range c.WorkspaceLayouts {
		if _, ok := seen[name]; !ok {
			return &ValidationError{Path: "workspace_layouts." + name, Err: fmt.Errorf("unknown workspace %q", name)}
		}
		if err := validateLayout(l); err != nil {
			return &ValidationError{Path: "workspace_layouts." + name, Err: err}
		}
	}

	if c.Margin < 0 {
		return &ValidationError{Path: "margin", Err: fmt.Errorf("margin must be >= 0")}
	}
	if c.Border.Top < 0 || c.Border.Right < 0 || c.Border.Bottom < 0 || c.Border.Left < 0 {
		return &ValidationError{Path: "border", Err: fmt.Errorf("border values must be >= 0")}
	}
	if c.ResizeStep <= 0 || c.ResizeStep >= 1 {
		return &ValidationError{Path: "resize_step", Err: fmt.Errorf("resize_step must be between 0 and 1")}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Log.MaxSizeMB < 0 {
		return &ValidationError{Path: "log.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Log.MaxFiles < 0 {
		return &ValidationError{Path: "log.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}

	for keys := range c.Keybindings {
		if err := validateKeySequence(keys); err != nil {
			return &ValidationError{Path: "keybindings." + keys, Err: err}
		}
	}
	if _, err := c.Bindings(); err != nil {
		return err
	}
	return nil
}

// validateLayout checks a layout including the ranges the processor clamps to.
func validateLayout(l tiling.Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if l.Tall.MasterRatio < tiling.MinMasterRatio || l.Tall.MasterRatio > tiling.MaxMasterRatio {
		return fmt.Errorf("master_ratio must be between %g and %g", tiling.MinMasterRatio, tiling.MaxMasterRatio)
	}
	return nil
}

var modifierNames = map[string]struct{}{
	"shift": {}, "lock": {}, "control": {}, "any": {},
	"mod1": {}, "mod2": {}, "mod3": {}, "mod4": {}, "mod5": {},
}

// validateKeySequence checks the shape of an xgbutil key string such as
// "Mod4-Shift-Return". The key name itself is resolved against the keyboard
// mapping when bindings are grabbed.
func validateKeySequence(s string) error {
	parts := strings.Split(s, "-")
	if len(parts) == 0 || strings.TrimSpace(parts[len(parts)-1]) == "" {
		return fmt.Errorf("key sequence %q has no key", s)
	}
	for _, mod := range parts[:len(parts)-1] {
		if _, ok := modifierNames[strings.ToLower(mod)]; !ok {
			return fmt.Errorf("unknown modifier %q in %q", mod, s)
		}
	}
	return nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
