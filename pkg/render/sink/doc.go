// Package sink turns a computed [mosaic.Layout] into output files.
//
//   - SVG: [RenderSVG], drawn by a [styles.Style]
//   - PNG: [RenderPNG], rasterised natively with fogleman/gg and the Go fonts
//   - PDF: [RenderPDF], SVG converted by rsvg-convert
//   - JSON: [RenderJSON], the layout plus render options
//
// All graphical sinks start from a [Scene], the layout mapped from chart
// units (0..100, y up) to frame pixels (top-left origin). The scene holds the
// title, the four plot edges with bottom and right "%" axes, category ticks
// along the top, y-category ticks along the left, the segments, their labels
// and an optional legend row.
//
//	svg := sink.RenderSVG(layout,
//	    sink.WithStyle(handdrawn.New(seed)),
//	    sink.WithLegend(),
//	)
//	png, err := sink.RenderPNG(ctx, layout, sink.WithScale(2))
//
// [styles.Style]: github.com/matzehuels/mosaic/pkg/render/styles.Style
package sink
