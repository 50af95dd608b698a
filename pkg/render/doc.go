// Package render turns computed chart layouts into files.
//
// # Overview
//
//   - [sink]: mosaic layouts as SVG, PNG, PDF and JSON
//   - [styles]: the Style interface with the simple and hand-drawn looks
//   - [tree]: the category hierarchy as a Graphviz diagram
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// (from librsvg). PDF output of both visualization types goes through
// [ToPDF]; the mosaic PNG sink rasterises natively and does not need it.
//
//	svg := sink.RenderSVG(layout, sink.WithStyle(handdrawn.New(42)))
//	pdf, err := render.ToPDF(ctx, svg)
//
// [sink]: github.com/matzehuels/mosaic/pkg/render/sink
// [styles]: github.com/matzehuels/mosaic/pkg/render/styles
// [tree]: github.com/matzehuels/mosaic/pkg/render/tree
package render
