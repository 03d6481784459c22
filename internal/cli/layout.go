package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/pipeline"
	"github.com/kintreehq/kintree/pkg/render"
)

// layoutCommand creates the layout command for computing tree diagrams.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		redisURL   string
		configPath string
		profile    string
		asDOT      bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [family.json]",
		Short: "Compute a tree diagram from a family snapshot",
		Long: `Compute a tree diagram from a family snapshot.

The layout command takes a family.json file (people plus parent and spouse
relationships) and computes node positions and edges around a focal person.
The output is a diagram.json file that front-ends can draw directly, or a
Graphviz DOT file with --dot.

Two view modes are supported: focused (default) shows the focal person with
their immediate family, full shows every person in the snapshot arranged in
generation rows.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.apply(&opts, profile, cmd.Flags().Changed); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, redisURL, asDOT)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for shared caching (default: local file cache)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ~/.config/kintree/kintree.toml)")
	cmd.Flags().StringVar(&profile, "profile", "", "spacing profile from the config file")

	// Layout flags
	cmd.Flags().StringVarP(&opts.FocalID, "focal", "f", "", "focal person id (required)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", opts.Mode, "view mode: focused (default), full")
	cmd.Flags().StringSliceVarP(&opts.ExpandedIDs, "expand", "e", nil, "person ids to expand one relation ring around")
	cmd.Flags().IntVar(&opts.GenerationDepth, "depth", 0, "generations to include around the focal person (0 = all)")
	cmd.Flags().Float64Var(&opts.NodeWidth, "node-width", opts.NodeWidth, "node width in layout units")
	cmd.Flags().Float64Var(&opts.SpouseSpacing, "spouse-spacing", opts.SpouseSpacing, "distance between spouses")
	cmd.Flags().Float64Var(&opts.HorizontalSpacing, "horizontal-spacing", opts.HorizontalSpacing, "gap between couples in a row")
	cmd.Flags().Float64Var(&opts.VerticalSpacing, "vertical-spacing", opts.VerticalSpacing, "distance between generation rows")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if a cached diagram exists")
	cmd.Flags().BoolVar(&asDOT, "dot", false, "write Graphviz DOT instead of JSON")

	_ = cmd.MarkFlagRequired("focal")

	return cmd
}

// runLayout loads the snapshot, computes the diagram, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool, redisURL string, asDOT bool) error {
	snap, err := family.ReadSnapshotFile(input)
	if err != nil {
		return fmt.Errorf("load family %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, redisURL, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		if asDOT {
			outputPath = base + ".dot"
		} else {
			outputPath = base + ".diagram.json"
		}
	}

	if asDOT {
		if err := os.WriteFile(outputPath, []byte(render.ToDOT(result.Diagram)), 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
	} else {
		if err := layout.WriteSerializedFile(result.Diagram, outputPath); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(result.Diagram.Nodes), len(result.Diagram.Edges), result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Explore", "kintree view "+input+" --focal "+opts.FocalID)

	return nil
}
