package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/dataset"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// renderCommand creates the render command: dataset in, artifacts out.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "render [file|url|name]",
		Short: "Render a chart dataset to SVG, PNG, PDF or JSON",
		Long: `Render a chart dataset to SVG, PNG, PDF or JSON.

The dataset is a JSON, YAML or TOML file (or an http(s) URL serving one).
The name of a built-in dataset such as "caffeine" works too.

This is a shortcut for 'layout' followed by 'visualize'. Results are cached
locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			return c.runRender(cmd, opts, flags)
		},
	}

	addRenderFlags(cmd, &opts, &flags)
	return cmd
}

// demoCommand creates the demo command, which renders the built-in
// caffeine chart.
func (c *CLI) demoCommand() *cobra.Command {
	var flags renderFlags
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Render the built-in caffeine chart",
		Long: `Render the built-in "Controlled Group Testing" chart: how test subjects
felt after a drink with caffeine, a decaffeinated one or a placebo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = dataset.CaffeineName
			return c.runRender(cmd, opts, flags)
		},
	}

	addRenderFlags(cmd, &opts, &flags)
	return cmd
}

func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options, flags *renderFlags) {
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, opts, &flags.margin)
	addStyleFlags(cmd, opts)
}

func (c *CLI) runRender(cmd *cobra.Command, opts pipeline.Options, flags renderFlags) error {
	ctx := cmd.Context()
	opts.Formats = parseFormats(flags.formats)
	applyMargin(cmd, &opts, flags.margin)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	result, err := withSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.Source), func(ctx context.Context) (*pipeline.Result, error) {
		return runner.Execute(ctx, opts)
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		source:    opts.Source,
		output:    flags.output,
	})
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", titleOr(result.Definition.Title, opts.Source))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.CategoryCount, result.Stats.RectCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}
