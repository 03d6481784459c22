package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/pipeline"
)

// configFileName is the per-user config file, looked up under the XDG
// config directory unless --config points elsewhere.
const configFileName = "kintree.toml"

// Config holds user-level settings loaded from a TOML file.
//
// Example:
//
//	default_mode = "focused"
//
//	[spacing]
//	node_width = 160
//	spouse_spacing = 200
//
//	[spacing.profiles.compact]
//	node_width = 100
//	spouse_spacing = 120
//	horizontal_spacing = 32
//	vertical_spacing = 140
type Config struct {
	DefaultMode string        `toml:"default_mode"`
	Spacing     SpacingConfig `toml:"spacing"`
}

// SpacingConfig carries spacing overrides plus named profiles. Zero values
// mean "use the built-in default".
type SpacingConfig struct {
	SpacingValues
	Profiles map[string]SpacingValues `toml:"profiles"`
}

// SpacingValues is one set of layout distances.
type SpacingValues struct {
	NodeWidth         float64 `toml:"node_width"`
	SpouseSpacing     float64 `toml:"spouse_spacing"`
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file is not an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return &cfg, nil
}

// apply copies config values into opts, profile values taking precedence
// over the top-level spacing table. Flags set by the user on the command
// line win over both; flagSet reports whether a flag was set explicitly
// (cobra's Flags().Changed). Cobra has already written flag values into
// opts by the time RunE calls this, so config values are skipped for any
// flag the user touched.
func (cfg *Config) apply(opts *pipeline.Options, profile string, flagSet func(name string) bool) error {
	if flagSet == nil {
		flagSet = func(string) bool { return false }
	}

	if cfg.DefaultMode != "" && opts.Mode == "" {
		opts.Mode = cfg.DefaultMode
	}

	values := cfg.Spacing.SpacingValues
	if profile != "" {
		p, ok := cfg.Spacing.Profiles[profile]
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown spacing profile: %s", profile)
		}
		values = p
	}

	if values.NodeWidth != 0 && !flagSet("node-width") {
		opts.NodeWidth = values.NodeWidth
	}
	if values.SpouseSpacing != 0 && !flagSet("spouse-spacing") {
		opts.SpouseSpacing = values.SpouseSpacing
	}
	if values.HorizontalSpacing != 0 && !flagSet("horizontal-spacing") {
		opts.HorizontalSpacing = values.HorizontalSpacing
	}
	if values.VerticalSpacing != 0 && !flagSet("vertical-spacing") {
		opts.VerticalSpacing = values.VerticalSpacing
	}
	return nil
}
