package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/pipeline"
)

// viewCommand creates the view command for interactive tree browsing.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		noCache    bool
		redisURL   string
		configPath string
		profile    string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "view [family.json]",
		Short: "Browse a family tree interactively",
		Long: `Browse a family tree interactively in the terminal.

Loads a family snapshot and opens a tree browser focused on the given
person. Arrow keys move the selection, enter refocuses the tree on the
selected person, "e" expands their hidden relatives, and "m" switches
between the focused and full views.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.apply(&opts, profile, cmd.Flags().Changed); err != nil {
				return err
			}

			snap, err := family.ReadSnapshotFile(args[0])
			if err != nil {
				return fmt.Errorf("load family %s: %w", args[0], err)
			}

			runner, err := c.newRunner(cmd.Context(), noCache, redisURL, nil)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			model := NewTreeModel(snap, runner, opts)
			p := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for shared caching (default: local file cache)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/kintree/kintree.toml)")
	cmd.Flags().StringVar(&profile, "profile", "", "spacing profile from the config file")

	cmd.Flags().StringVarP(&opts.FocalID, "focal", "f", "", "focal person id (required)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", opts.Mode, "view mode: focused (default), full")
	cmd.Flags().IntVar(&opts.GenerationDepth, "depth", 0, "generations to include around the focal person (0 = all)")

	_ = cmd.MarkFlagRequired("focal")

	return cmd
}
