package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/dataset"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/httputil"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher *httputil.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: httputil.NewFetcher(c, keyer),
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	def, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Definition = def
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.CategoryCount = len(def.Categories)
	if data, err := mosaic.MarshalDefinition(def); err == nil {
		result.DefinitionHash = cache.Hash(data)
	}

	opts.Logger.Info("loaded chart",
		"categories", len(def.Categories),
		"subcategories", len(def.SubCategories),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.LayoutWithCacheInfo(ctx, def, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.RectCount = len(l.Rects)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"viz", l.VizType,
		"rects", len(l.Rects),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load resolves the chart definition named by opts: an inline definition,
// a built-in dataset, a local file or a URL. The result is validated.
func (r *Runner) Load(ctx context.Context, opts Options) (mosaic.Definition, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return mosaic.Definition{}, err
	}

	def, err := r.resolve(ctx, opts)
	if err != nil {
		return mosaic.Definition{}, err
	}

	if err := dataset.Validate(def); err != nil {
		return mosaic.Definition{}, err
	}
	return def, nil
}

func (r *Runner) resolve(ctx context.Context, opts Options) (mosaic.Definition, error) {
	if opts.Definition != nil {
		return *opts.Definition, nil
	}
	if def, ok := dataset.Builtin(opts.Source); ok {
		return def, nil
	}
	return dataset.Load(ctx, opts.Source, r.Fetcher)
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, def mosaic.Definition, opts Options) (mosaic.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return mosaic.Layout{}, false, err
	}

	defData, err := mosaic.MarshalDefinition(def)
	if err != nil {
		return mosaic.Layout{}, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize definition for cache key")
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(defData), opts.LayoutKeyOpts(def))

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.VizType, len(def.Categories))
	start := time.Now()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := mosaic.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, cache.KeyType(cacheKey))
				hooks.OnLayoutComplete(ctx, opts.VizType, time.Since(start), nil)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, cache.KeyType(cacheKey))

	l, err := GenerateLayout(def, opts)
	hooks.OnLayoutComplete(ctx, opts.VizType, time.Since(start), err)
	if err != nil {
		return mosaic.Layout{}, false, err
	}

	if data, err := mosaic.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache layout", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyType(cacheKey), len(data))
		}
	}
	return l, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, def mosaic.Definition, opts Options) (mosaic.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, def, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// RenderHit is true only when every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l mosaic.Layout, opts Options) (map[string][]byte, bool, error) {
	opts.VizType = l.VizType
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := mosaic.MarshalLayout(l)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, cache.KeyType(key))
				artifacts[format] = data
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyType(key))
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := RenderFromLayout(ctx, l, renderOpts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache artifact", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, cache.KeyType(key), len(data))
	}
	for format, data := range rendered {
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l mosaic.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
