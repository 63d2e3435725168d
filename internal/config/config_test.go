package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danieljhkim/importsync/internal/fsops"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		t.Setenv(EnvConfigFile, "")
		root := t.TempDir()

		cfg, err := Load(fsops.NewRealFS(), root)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Registry != "jsr" {
			t.Errorf("Registry = %q, want jsr", cfg.Registry)
		}
		if len(cfg.RuntimeMarkers) != 2 {
			t.Errorf("RuntimeMarkers = %v, want 2 sets", cfg.RuntimeMarkers)
		}
	})

	t.Run("file overrides present fields only", func(t *testing.T) {
		t.Setenv(EnvConfigFile, "")
		root := t.TempDir()
		content := `registry: npm
runtime_markers:
  - [server.ts]
`
		if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(fsops.NewRealFS(), root)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Registry != "npm" {
			t.Errorf("Registry = %q, want npm", cfg.Registry)
		}
		if len(cfg.RuntimeMarkers) != 1 || cfg.RuntimeMarkers[0][0] != "server.ts" {
			t.Errorf("RuntimeMarkers = %v, want [[server.ts]]", cfg.RuntimeMarkers)
		}
		if cfg.DependencyPattern != "**/*deps.ts" {
			t.Errorf("DependencyPattern = %q, want default", cfg.DependencyPattern)
		}
	})

	t.Run("respects IMPORTSYNC_CONFIG", func(t *testing.T) {
		dir := t.TempDir()
		custom := filepath.Join(dir, "custom.yaml")
		if err := os.WriteFile(custom, []byte("comment_aware_suffix: .json5\n"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Setenv(EnvConfigFile, custom)

		cfg, err := Load(fsops.NewRealFS(), t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.CommentAwareSuffix != ".json5" {
			t.Errorf("CommentAwareSuffix = %q, want .json5", cfg.CommentAwareSuffix)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		t.Setenv(EnvConfigFile, "")
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, FileName), []byte("registry: \"jsr:\"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(fsops.NewRealFS(), root)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Load error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("malformed YAML", func(t *testing.T) {
		t.Setenv(EnvConfigFile, "")
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, FileName), []byte("skip_dirs: [unterminated\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := Load(fsops.NewRealFS(), root); err == nil {
			t.Error("Load should fail on malformed YAML")
		}
	})
}

func TestConfig_Matchers(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"deno.json is a manifest", cfg.IsManifest("deno.json"), true},
		{"deno.jsonc is a manifest", cfg.IsManifest("deno.jsonc"), true},
		{"package.json is not a manifest", cfg.IsManifest("package.json"), false},
		{"jsonc is comment aware", cfg.IsCommentAware("/ws/a/deno.jsonc"), true},
		{"json is not comment aware", cfg.IsCommentAware("/ws/a/deno.json"), false},
		{"node_modules is skipped", cfg.IsSkipDir("node_modules"), true},
		{"src is not skipped", cfg.IsSkipDir("src"), false},
		{"root deps.ts", cfg.IsDependencyFile("deps.ts"), true},
		{"nested dev_deps.ts", cfg.IsDependencyFile("src/dev_deps.ts"), true},
		{"mod.ts is not a dependency file", cfg.IsDependencyFile("mod.ts"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}
