package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("loadConfig() returned nil config")
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestLoadConfigSpacing(t *testing.T) {
	path := writeConfig(t, `
default_mode = "full"

[spacing]
node_width = 160
spouse_spacing = 200

[spacing.profiles.compact]
node_width = 100
horizontal_spacing = 32
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.DefaultMode != "full" {
		t.Errorf("DefaultMode = %q, want full", cfg.DefaultMode)
	}
	if cfg.Spacing.NodeWidth != 160 {
		t.Errorf("NodeWidth = %v, want 160", cfg.Spacing.NodeWidth)
	}
	if got := cfg.Spacing.Profiles["compact"].NodeWidth; got != 100 {
		t.Errorf("compact NodeWidth = %v, want 100", got)
	}
}

func TestConfigApply(t *testing.T) {
	cfg := &Config{
		DefaultMode: "full",
		Spacing: SpacingConfig{
			SpacingValues: SpacingValues{NodeWidth: 160, SpouseSpacing: 200},
			Profiles: map[string]SpacingValues{
				"compact": {NodeWidth: 100, HorizontalSpacing: 32},
			},
		},
	}

	t.Run("top-level spacing", func(t *testing.T) {
		opts := pipeline.Options{}
		if err := cfg.apply(&opts, "", nil); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if opts.Mode != "full" {
			t.Errorf("Mode = %q, want full", opts.Mode)
		}
		if opts.NodeWidth != 160 || opts.SpouseSpacing != 200 {
			t.Errorf("spacing = (%v, %v), want (160, 200)", opts.NodeWidth, opts.SpouseSpacing)
		}
	})

	t.Run("profile replaces top-level", func(t *testing.T) {
		opts := pipeline.Options{}
		if err := cfg.apply(&opts, "compact", nil); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if opts.NodeWidth != 100 {
			t.Errorf("NodeWidth = %v, want 100", opts.NodeWidth)
		}
		if opts.SpouseSpacing != 0 {
			t.Errorf("SpouseSpacing = %v, want 0 (profile does not inherit)", opts.SpouseSpacing)
		}
		if opts.HorizontalSpacing != 32 {
			t.Errorf("HorizontalSpacing = %v, want 32", opts.HorizontalSpacing)
		}
	})

	t.Run("flag values win", func(t *testing.T) {
		opts := pipeline.Options{Mode: "focused"}
		if err := cfg.apply(&opts, "", nil); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if opts.Mode != "focused" {
			t.Errorf("Mode = %q, want focused (explicit mode kept)", opts.Mode)
		}
	})

	t.Run("explicit spacing flag wins over config", func(t *testing.T) {
		opts := pipeline.Options{NodeWidth: 999}
		set := map[string]bool{"node-width": true}
		if err := cfg.apply(&opts, "", func(name string) bool { return set[name] }); err != nil {
			t.Fatalf("apply() error: %v", err)
		}
		if opts.NodeWidth != 999 {
			t.Errorf("NodeWidth = %v, want 999 (flag kept)", opts.NodeWidth)
		}
		if opts.SpouseSpacing != 200 {
			t.Errorf("SpouseSpacing = %v, want 200 (untouched flag takes config)", opts.SpouseSpacing)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		opts := pipeline.Options{}
		err := cfg.apply(&opts, "spacious", nil)
		if err == nil {
			t.Fatal("expected error for unknown profile")
		}
		if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
			t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
		}
	})
}
