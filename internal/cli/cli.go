// Package cli implements the mosaic command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/buildinfo"
	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mosaic"

	// Cache backends accepted by --cache.
	cacheFile   = "file"
	cacheRedis  = "redis"
	cacheMemory = "memory"
	cacheNone   = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mosaic",
		Short: "Mosaic lays out and renders marimekko charts",
		Long: `Mosaic computes mosaic (marimekko) chart layouts: every category is a
column whose width is its share of the total, split vertically into stacked
subcategory shares. Layouts render to SVG, PNG, PDF or JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use, backed by the local file
// cache unless noCache is set.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	kind := cacheFile
	if noCache {
		kind = cacheNone
	}
	cc, err := c.newCache(context.Background(), kind, "")
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, newKeyer(), c.Logger), nil
}

// newKeyer scopes cache keys by build version.
func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
}

// newCache opens the named cache backend. An unusable cache directory
// degrades to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, kind, redisAddr string) (cache.Cache, error) {
	switch kind {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheMemory:
		return cache.NewMemoryCache(cache.DefaultMemoryEntries), nil
	case cacheRedis:
		if redisAddr == "" {
			return nil, fmt.Errorf("--redis-addr or MOSAIC_REDIS_ADDR is required for the redis cache")
		}
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: redisAddr, Prefix: appName + ":"})
	case cacheFile, "":
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("invalid cache backend: %s (must be file, redis, memory or none)", kind)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mosaic/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderFlags are the flags shared by render and demo.
type renderFlags struct {
	output  string
	formats string
	margin  float64
	noCache bool
}

// addLayoutFlags registers the flags that shape a layout.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options, margin *float64) {
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", opts.VizType, "visualization type: mosaic (default), tree")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().Float64Var(margin, "margin", 0, "gap around each rectangle in pixels (default: from the dataset)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")
}

// addStyleFlags registers the flags that shape rendered output.
func addStyleFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "visual style: simple (default), handdrawn")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for the handdrawn style")
	cmd.Flags().BoolVar(&opts.Legend, "legend", opts.Legend, "draw a subcategory legend")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG pixel scale")
}

// applyMargin sets opts.Margin when --margin was given explicitly.
func applyMargin(cmd *cobra.Command, opts *pipeline.Options, margin float64) {
	if cmd.Flags().Changed("margin") {
		opts.Margin = &margin
	}
}

// setCLIDefaults applies pipeline defaults so they show up in --help.
func setCLIDefaults(opts *pipeline.Options) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
