// Package pipeline provides the load → layout → render pipeline for mosaic
// charts.
//
// The CLI and the HTTP service both run charts through this package so that
// defaults, validation and caching behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a definition from a file, URL, built-in dataset or request
//  2. Layout: compute the chart geometry (mosaic) or category diagram (tree)
//  3. Render: generate output in various formats (SVG, PNG, PDF, JSON)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "caffeine",
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// Stages can also be run one at a time with [Runner.Load],
// [Runner.LayoutWithCacheInfo] and [Runner.RenderWithCacheInfo].
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = mosaic.DefaultWidth

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = mosaic.DefaultHeight

	// DefaultSeed is the default random seed for the handdrawn jitter.
	DefaultSeed = uint64(42)

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MaxDimension bounds width and height to keep rasterisation sane.
	MaxDimension = 10000.0
)

// Visual styles.
const (
	StyleSimple    = "simple"
	StyleHanddrawn = "handdrawn"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = mosaic.VizTypeMosaic

// DefaultStyle is the default visual style.
const DefaultStyle = StyleSimple

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidStyles is the set of supported visual styles.
var ValidStyles = map[string]bool{
	StyleSimple:    true,
	StyleHanddrawn: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	mosaic.VizTypeMosaic: true,
	mosaic.VizTypeTree:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source     string             `json:"source,omitempty"` // file path, URL or built-in name
	Definition *mosaic.Definition `json:"definition,omitempty"`
	Refresh    bool               `json:"refresh,omitempty"`

	// Layout options
	VizType string   `json:"viz_type,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Height  float64  `json:"height,omitempty"`
	Margin  *float64 `json:"margin,omitempty"` // overrides the definition's margin

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Seed    uint64   `json:"seed,omitempty"`
	Legend  bool     `json:"legend,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Definition is the loaded chart definition.
	Definition mosaic.Definition

	// DefinitionHash is the content hash of the definition.
	DefinitionHash string

	// Layout is the computed layout.
	Layout mosaic.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CategoryCount int
	RectCount     int
	LoadTime      time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: simple, handdrawn)", style)
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type: %q (must be one of: mosaic, tree)", vizType)
	}
	return nil
}

// ValidateDimension checks a frame width or height.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v > MaxDimension {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be in (0, %.0f], got %v", name, MaxDimension, v)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that there is something to load.
func (o *Options) ValidateForLoad() error {
	if o.Source == "" && o.Definition == nil {
		return errors.New(errors.ErrCodeInvalidInput, "source or definition is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateDimension("width", o.Width); err != nil {
		return err
	}
	if err := ValidateDimension("height", o.Height); err != nil {
		return err
	}
	if o.Margin != nil && (*o.Margin < 0 || math.IsNaN(*o.Margin) || math.IsInf(*o.Margin, 0)) {
		return errors.New(errors.ErrCodeInvalidValue, "margin must be a non-negative number, got %v", *o.Margin)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > 8 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, 8], got %v", o.Scale)
	}
	return ValidateStyle(o.Style)
}

// IsTree returns true if this is a tree visualization.
func (o *Options) IsTree() bool {
	return o.VizType == mosaic.VizTypeTree
}

// MarginFor returns the effective margin for def.
func (o *Options) MarginFor(def mosaic.Definition) float64 {
	if o.Margin != nil {
		return *o.Margin
	}
	return def.MarginOr(mosaic.DefaultMargin)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(def mosaic.Definition) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		VizType: o.VizType,
		Width:   o.Width,
		Height:  o.Height,
		Margin:  o.MarginFor(def),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Style,
		Legend: o.Legend,
	}
	if o.Style == StyleHanddrawn {
		opts.Seed = o.Seed
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
