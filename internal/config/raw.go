package config

import (
	"fmt"

	"github.com/1broseidon/sabini/internal/tiling"
	"gopkg.in/yaml.v3"
)

// UnbindCommand removes a default key binding when used as its command.
const UnbindCommand = "none"

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawThickness struct {
	Top    *int `yaml:"top"`
	Right  *int `yaml:"right"`
	Bottom *int `yaml:"bottom"`
	Left   *int `yaml:"left"`
}

type RawLayout struct {
	Kind        *tiling.Kind `yaml:"kind"`
	MasterCount *int         `yaml:"master_count"`
	MasterRatio *float64     `yaml:"master_ratio"`
	Gap         *int         `yaml:"gap"`
}

type RawLogConfig struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

// RawConfig is one YAML file as written. Nil fields were not set and leave
// the value below them untouched when files are merged.
type RawConfig struct {
	Include          IncludeList          `yaml:"include"`
	Display          *string              `yaml:"display"`
	Workspaces       []string             `yaml:"workspaces"`
	Layout           *RawLayout           `yaml:"layout"`
	WorkspaceLayouts map[string]RawLayout `yaml:"workspace_layouts"`
	Margin           *int                 `yaml:"margin"`
	Border           *RawThickness        `yaml:"border"`
	ResizeStep       *float64             `yaml:"resize_step"`
	Log              *RawLogConfig        `yaml:"log"`
	Keybindings      map[string]string    `yaml:"keybindings"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Workspaces != nil {
		out.Workspaces = append([]string(nil), overlay.Workspaces...)
	}
	if overlay.Layout != nil {
		base := RawLayout{}
		if out.Layout != nil {
			base = *out.Layout
		}
		merged := mergeRawLayout(base, *overlay.Layout)
		out.Layout = &merged
	}
	if overlay.WorkspaceLayouts != nil {
		layouts := make(map[string]RawLayout, len(out.WorkspaceLayouts)+len(overlay.WorkspaceLayouts))
		for name, l := range out.WorkspaceLayouts {
			layouts[name] = l
		}
		for name, l := range overlay.WorkspaceLayouts {
			layouts[name] = mergeRawLayout(layouts[name], l)
		}
		out.WorkspaceLayouts = layouts
	}
	if overlay.Margin != nil {
		out.Margin = overlay.Margin
	}
	if overlay.Border != nil {
		base := RawThickness{}
		if out.Border != nil {
			base = *out.Border
		}
		merged := mergeRawThickness(base, *overlay.Border)
		out.Border = &merged
	}
	if overlay.ResizeStep != nil {
		out.ResizeStep = overlay.ResizeStep
	}
	if overlay.Log != nil {
		base := RawLogConfig{}
		if out.Log != nil {
			base = *out.Log
		}
		merged := mergeRawLog(base, *overlay.Log)
		out.Log = &merged
	}
	if overlay.Keybindings != nil {
		kb := make(map[string]string, len(out.Keybindings)+len(overlay.Keybindings))
		for k, v := range out.Keybindings {
			kb[k] = v
		}
		for k, v := range overlay.Keybindings {
			kb[k] = v
		}
		out.Keybindings = kb
	}
	return out
}

func mergeRawLayout(base RawLayout, overlay RawLayout) RawLayout {
	out := base
	if overlay.Kind != nil {
		out.Kind = overlay.Kind
	}
	if overlay.MasterCount != nil {
		out.MasterCount = overlay.MasterCount
	}
	if overlay.MasterRatio != nil {
		out.MasterRatio = overlay.MasterRatio
	}
	if overlay.Gap != nil {
		out.Gap = overlay.Gap
	}
	return out
}

func mergeRawThickness(base RawThickness, overlay RawThickness) RawThickness {
	out := base
	if overlay.Top != nil {
		out.Top = overlay.Top
	}
	if overlay.Right != nil {
		out.Right = overlay.Right
	}
	if overlay.Bottom != nil {
		out.Bottom = overlay.Bottom
	}
	if overlay.Left != nil {
		out.Left = overlay.Left
	}
	return out
}

func mergeRawLog(base RawLogConfig, overlay RawLogConfig) RawLogConfig {
	out := base
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.MaxSizeMB != nil {
		out.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxFiles != nil {
		out.MaxFiles = overlay.MaxFiles
	}
	return out
}
