/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package config_test

import (
	"reflect"
	"testing"

	"bennypowers.dev/nexus/config"
	"bennypowers.dev/nexus/internal/mapfs"
	"bennypowers.dev/nexus/testutil"
)

func TestLoadYAML(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/.config/nexus.yaml", `
strict: true
files:
  - matrix.nex
  - path: trees/*.nex
`, 0644)

	cfg, err := config.Load(fs, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if !cfg.Strict {
		t.Error("Strict not set")
	}
	want := []string{"matrix.nex", "trees/*.nex"}
	if !reflect.DeepEqual(cfg.FilePaths(), want) {
		t.Errorf("FilePaths = %v, want %v", cfg.FilePaths(), want)
	}
}

func TestLoadYML(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/.config/nexus.yml", "strict: true\n", 0644)

	cfg, err := config.Load(fs, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil || !cfg.Strict {
		t.Errorf("cfg = %+v, want strict from nexus.yml", cfg)
	}
}

func TestLoadJSONWithComments(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/.config/nexus.json", `{
	// inputs for combine
	"files": [
		"matrix.nex",
		{"path": "trees/*.nex"},
	],
	"strict": false,
}`, 0644)

	cfg, err := config.Load(fs, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	want := []string{"matrix.nex", "trees/*.nex"}
	if !reflect.DeepEqual(cfg.FilePaths(), want) {
		t.Errorf("FilePaths = %v, want %v", cfg.FilePaths(), want)
	}
}

func TestLoadPrefersYAMLOverJSON(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/.config/nexus.yaml", "strict: true\n", 0644)
	fs.AddFile("/project/.config/nexus.json", `{"strict": false}`, 0644)

	cfg, err := config.Load(fs, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil || !cfg.Strict {
		t.Error("expected the yaml config to win")
	}
}

func TestLoadMissing(t *testing.T) {
	fs := mapfs.New()

	cfg, err := config.Load(fs, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != nil {
		t.Errorf("cfg = %+v, want nil when no config file exists", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/.config/nexus.yaml", "strict: [unclosed\n", 0644)

	if _, err := config.Load(fs, "/project"); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestLoadOrDefault(t *testing.T) {
	fs := mapfs.New()

	cfg := config.LoadOrDefault(fs, "/project")
	if cfg == nil {
		t.Fatal("LoadOrDefault returned nil")
	}
	if cfg.Strict || len(cfg.Files) != 0 {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}

	fs.AddFile("/project/.config/nexus.yaml", "strict: true\n", 0644)
	cfg = config.LoadOrDefault(fs, "/project")
	if !cfg.Strict {
		t.Error("LoadOrDefault ignored the config file")
	}
}

func TestExpandPaths(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/data/a.nex", "#NEXUS\n", 0644)
	fs.AddFile("/project/data/b.nex", "#NEXUS\n", 0644)
	fs.AddFile("/project/data/notes.txt", "", 0644)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "stdin passes through",
			patterns: []string{"-"},
			want:     []string{"-"},
		},
		{
			name:     "relative path joins root",
			patterns: []string{"data/a.nex"},
			want:     []string{"/project/data/a.nex"},
		},
		{
			name:     "absolute path passes through",
			patterns: []string{"/elsewhere/c.nex"},
			want:     []string{"/elsewhere/c.nex"},
		},
		{
			name:     "glob expands",
			patterns: []string{"data/*.nex"},
			want:     []string{"/project/data/a.nex", "/project/data/b.nex"},
		},
		{
			name:     "glob with no matches",
			patterns: []string{"data/*.fasta"},
			want:     nil,
		},
		{
			name:     "pattern order preserved",
			patterns: []string{"data/b.nex", "data/a.nex"},
			want:     []string{"/project/data/b.nex", "/project/data/a.nex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := config.ExpandPaths(fs, "/project", tt.patterns)
			if err != nil {
				t.Fatalf("ExpandPaths: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandPaths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandPathsRecursiveGlob(t *testing.T) {
	fs := mapfs.New()
	fs.AddFile("/project/data/sub/a.nex", "#NEXUS\n", 0644)
	fs.AddFile("/project/data/sub/deep/b.nex", "#NEXUS\n", 0644)
	fs.AddFile("/project/data/sub/readme.txt", "", 0644)

	got, err := config.ExpandPaths(fs, "/project", []string{"data/**/*.nex"})
	if err != nil {
		t.Fatalf("ExpandPaths: %v", err)
	}
	want := []string{"/project/data/sub/a.nex", "/project/data/sub/deep/b.nex"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandPaths = %v, want %v", got, want)
	}
}

func TestExpandFiles(t *testing.T) {
	fs := testutil.NewFixtureFS(t, "project", "/project")

	cfg, err := config.Load(fs, "/project")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, err := cfg.ExpandFiles(fs, "/project")
	if err != nil {
		t.Fatalf("ExpandFiles: %v", err)
	}
	if want := []string{"/project/data/a.nex"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandFiles = %v, want %v", got, want)
	}
}
