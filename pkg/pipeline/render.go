package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/render"
	"github.com/matzehuels/mosaic/pkg/render/sink"
	"github.com/matzehuels/mosaic/pkg/render/styles"
	"github.com/matzehuels/mosaic/pkg/render/styles/handdrawn"
	"github.com/matzehuels/mosaic/pkg/render/tree"
)

// RenderFromLayout generates output artifacts in the requested formats.
// The layout's viz type decides how it is drawn.
func RenderFromLayout(ctx context.Context, l mosaic.Layout, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if l.IsTree() {
		return renderTree(ctx, l, opts)
	}
	return renderMosaic(ctx, l, opts)
}

// RenderFromLayoutData renders output from serialized layout data, such as
// a file written by the layout command.
func RenderFromLayoutData(ctx context.Context, data []byte, opts Options) (map[string][]byte, error) {
	l, err := mosaic.UnmarshalLayout(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse layout")
	}
	return RenderFromLayout(ctx, l, opts)
}

func renderMosaic(ctx context.Context, l mosaic.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, l, buildPNGOptions(opts, svgOpts)...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, l, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			jsonOpts := []sink.JSONOption{sink.WithJSONStyle(opts.Style)}
			if opts.Style == StyleHanddrawn {
				jsonOpts = append(jsonOpts, sink.WithJSONSeed(opts.Seed))
			}
			if opts.Legend {
				jsonOpts = append(jsonOpts, sink.WithJSONLegend())
			}
			data, err = sink.RenderJSON(l, jsonOpts...)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported mosaic format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderTree(ctx context.Context, l mosaic.Layout, opts Options) (map[string][]byte, error) {
	if l.DOT == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree layout missing DOT string")
	}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = tree.RenderSVG(ctx, l.DOT)
		case FormatPNG:
			data, err = tree.RenderPNG(ctx, l.DOT)
		case FormatPDF:
			data, err = tree.RenderPDF(ctx, l.DOT)
		case FormatJSON:
			data, err = mosaic.MarshalLayout(l)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	switch opts.Style {
	case StyleHanddrawn:
		seed := opts.Seed
		if seed == 0 {
			seed = DefaultSeed
		}
		svgOpts = append(svgOpts, sink.WithStyle(handdrawn.New(seed)))
	default:
		svgOpts = append(svgOpts, sink.WithStyle(styles.Simple{}))
	}
	if opts.Legend {
		svgOpts = append(svgOpts, sink.WithLegend())
	}
	return svgOpts
}

// buildPNGOptions draws natively unless the handdrawn look is requested and
// rsvg-convert is available to rasterise its SVG.
func buildPNGOptions(opts Options, svgOpts []sink.SVGOption) []sink.PNGOption {
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	pngOpts := []sink.PNGOption{sink.WithScale(scale)}
	if opts.Style == StyleHanddrawn && render.HasRSVG() {
		return append(pngOpts, sink.WithPNGSVGOptions(svgOpts...))
	}
	if opts.Legend {
		pngOpts = append(pngOpts, sink.WithPNGLegend())
	}
	return pngOpts
}
