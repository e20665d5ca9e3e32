package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at a dotted YAML path and where it came
// from. Paths follow the file layout:
//
//	workspaces
//	layout.master_ratio
//	border.left
//	log.level
//	keybindings.Mod4-j
//	workspace_layouts.<name>.kind
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}

	var cur any = tree
	for _, part := range splitPath(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		cur, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	}
	return cur, nil
}

// splitPath splits on dots. Key sequences under keybindings are taken whole.
func splitPath(path string) []string {
	if rest, ok := strings.CutPrefix(path, "keybindings."); ok {
		return []string{"keybindings", rest}
	}
	return strings.Split(path, ".")
}
