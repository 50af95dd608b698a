package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// layoutCommand creates the layout command for computing chart layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		margin  float64
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "layout [file|url|name]",
		Short: "Compute the chart layout of a dataset",
		Long: `Compute the chart layout of a dataset.

The output is a layout.json file (same format as 'render -f json') holding
every rectangle, label and tick in chart units. Render it with 'visualize'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			applyMargin(cmd, &opts, margin)
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts, &margin)

	return cmd
}

// runLayout loads the dataset, computes the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	def, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.Source, err)
	}

	type result struct {
		layout mosaic.Layout
		hit    bool
	}
	res, err := withSpinner(ctx, fmt.Sprintf("Computing %s layout...", opts.VizType), func(ctx context.Context) (result, error) {
		l, hit, err := runner.LayoutWithCacheInfo(ctx, def, opts)
		return result{l, hit}, err
	})
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done(fmt.Sprintf("Computed %s layout with %d rects", opts.VizType, len(res.layout.Rects)))

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", opts.Source) + ".layout.json"
	}
	if err := mosaic.WriteLayoutFile(res.layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(def.Categories), len(res.layout.Rects), res.hit)
	printNewline()
	printNextStep("Render", "mosaic visualize "+outputPath)
	return nil
}
