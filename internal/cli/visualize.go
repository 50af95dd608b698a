package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout",
		Long: `Render a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it to SVG, PNG, PDF or JSON. The layout already holds every position,
so this step is purely about drawing.

Use 'render' as a shortcut to go directly from a dataset to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateStyle(opts.Style); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
	addStyleFlags(cmd, &opts)

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	l, err := mosaic.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	opts.VizType = l.VizType
	opts.Width = l.Frame.Width
	opts.Height = l.Frame.Height

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	type result struct {
		artifacts map[string][]byte
		hit       bool
	}
	res, err := withSpinner(ctx, fmt.Sprintf("Rendering %s...", l.VizType), func(ctx context.Context) (result, error) {
		a, hit, err := runner.RenderWithCacheInfo(ctx, l, opts)
		return result{a, hit}, err
	})
	if err != nil {
		return fmt.Errorf("visualize: %w", err)
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: res.artifacts,
		formats:   opts.Formats,
		source:    input,
		output:    output,
	})
	if err != nil {
		return err
	}

	printSuccess("Visualized %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(l.CategoryTicks), len(l.Rects), res.hit)
	return nil
}
