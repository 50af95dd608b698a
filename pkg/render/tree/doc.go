// Package tree renders a chart's category hierarchy as a Graphviz diagram.
//
// The diagram is the alternative "tree" visualization: the chart at the
// root, one node per category labelled with its share of the total, and one
// node per segment labelled with its share of the category and filled with
// the subcategory colour.
//
//	l := tree.BuildLayout(chart, tree.Options{})
//	svg, err := tree.RenderSVG(ctx, l.DOT)
//
// SVG and PNG are rendered in process with [github.com/goccy/go-graphviz].
// PDF conversion requires librsvg (rsvg-convert).
package tree
