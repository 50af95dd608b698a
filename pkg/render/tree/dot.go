package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mosaic/pkg/colors"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/render"
)

// Options configures tree diagram generation.
type Options struct {
	// Detailed adds raw values next to the percentages.
	Detailed bool
	// HideEmpty omits categories and segments with a zero share.
	HideEmpty bool
}

// ToDOT converts a chart to a Graphviz digraph. The root is the chart, its
// children the categories and their children the subcategory segments,
// filled with the subcategory colour.
func ToDOT(c *mosaic.Chart, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	title := c.Title()
	if title == "" {
		title = "chart"
	}
	fmt.Fprintf(&buf, "  root [label=%q, fontsize=18, penwidth=2];\n", title)

	total := 0.0
	for _, cat := range c.Categories() {
		total += cat.Value()
	}

	for i, cat := range c.Categories() {
		share := percent(cat.Value(), total)
		if opts.HideEmpty && share == 0 {
			continue
		}
		catID := fmt.Sprintf("c%d", i)
		fmt.Fprintf(&buf, "  %s [label=%q];\n", catID, fmtLabel(cat.Name(), share, cat.Value(), opts.Detailed))
		fmt.Fprintf(&buf, "  root -> %s;\n", catID)

		subTotal := 0.0
		for _, v := range cat.Values() {
			subTotal += v.Value
		}
		for j, v := range cat.Values() {
			subShare := percent(v.Value, subTotal)
			if opts.HideEmpty && subShare == 0 {
				continue
			}
			name := v.SubCategory.Name()
			if name == "" {
				name = v.SubCategory.ID()
			}
			fill := v.SubCategory.Fill()
			fmt.Fprintf(&buf, "  %s_%d [label=%q, fillcolor=%q, fontcolor=%q];\n",
				catID, j, fmtLabel(name, subShare, v.Value, opts.Detailed), fill, colors.TextOn(fill))
			fmt.Fprintf(&buf, "  %s -> %s_%d;\n", catID, catID, j)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func percent(v, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * v / total
}

func fmtLabel(name string, share, value float64, detailed bool) string {
	label := fmt.Sprintf("%s\n%.0f%%", name, share)
	if detailed {
		label += "\n" + strconv.FormatFloat(value, 'g', -1, 64)
	}
	return label
}

// BuildLayout returns a tree layout for the chart. It carries the DOT source
// so it can be cached and rendered later.
func BuildLayout(c *mosaic.Chart, opts Options) mosaic.Layout {
	l := c.Layout()
	return mosaic.Layout{
		VizType: mosaic.VizTypeTree,
		Title:   l.Title,
		Frame:   l.Frame,
		Margin:  l.Margin,
		Scale:   l.Scale,
		Legend:  l.Legend,
		DOT:     ToDOT(c, opts),
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG in process.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element (sized in points) with
// one sized in pixels and anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
