package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quill-lang/quill/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "quill.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Indent != config.IndentWidth {
		t.Errorf("Indent = %d, want %d", cfg.Indent, config.IndentWidth)
	}
	if cfg.CachePath != ".quill-cache.db" {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.Color != "auto" {
		t.Errorf("Color = %q", cfg.Color)
	}
}

func TestLoadValidFile(t *testing.T) {
	dir := writeConfig(t, "indent: 4\ncache_path: /tmp/q.db\ncolor: never\n")
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Indent != 4 || cfg.CachePath != "/tmp/q.db" || cfg.Color != "never" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := writeConfig(t, "color: always\n")
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Indent != config.IndentWidth || cfg.CachePath != ".quill-cache.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Color != "always" {
		t.Errorf("Color = %q", cfg.Color)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"bad_color", "color: sometimes\n"},
		{"negative_indent", "indent: -2\n"},
		{"bad_yaml", "color: [\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := config.Load(writeConfig(t, tc.content)); err == nil {
				t.Errorf("Load(%q) should fail", tc.content)
			}
		})
	}
}
