package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/sabini/internal/config"
)

func TestParseFlags(t *testing.T) {
	fs := newFlagSet("test", "test")
	fs.Bool("json", false, "")
	if code := parseFlags(fs, []string{"--json"}); code != -1 {
		t.Fatalf("parseFlags = %d, want -1", code)
	}

	fs = newFlagSet("test", "test")
	fs.SetOutput(nopWriter{})
	if code := parseFlags(fs, []string{"--help"}); code != 0 {
		t.Fatalf("help exit = %d, want 0", code)
	}

	fs = newFlagSet("test", "test")
	fs.SetOutput(nopWriter{})
	if code := parseFlags(fs, []string{"--nope"}); code != 2 {
		t.Fatalf("bad flag exit = %d, want 2", code)
	}
}

func TestCmdFlagsKeepNegativeArguments(t *testing.T) {
	fs := newFlagSet("cmd", "cmd")
	asJSON := fs.Bool("json", false, "")
	fs.SetInterspersed(false)
	if code := parseFlags(fs, []string{"--json", "resize-master", "-0.05"}); code != -1 {
		t.Fatalf("parseFlags = %d", code)
	}
	if !*asJSON || fs.Arg(0) != "resize-master" || fs.Arg(1) != "-0.05" {
		t.Fatalf("unexpected parse json=%v args=%v", *asJSON, fs.Args())
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("margin: 3\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, got, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got != path || res.Config.Margin != 3 {
		t.Fatalf("loadConfig = %q margin=%d", got, res.Config.Margin)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 4, Column: 2}, "file:/c.yaml:4:2"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
