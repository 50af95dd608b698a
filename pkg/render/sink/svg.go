package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/render/styles"
)

const hoverCSS = `
    .segment { transition: opacity 0.15s ease; }
    .segment:hover { opacity: 0.85; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style  styles.Style
	legend bool
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithLegend() SVGOption              { return func(r *svgRenderer) { r.legend = true } }

// RenderSVG draws a mosaic layout as a standalone SVG document.
func RenderSVG(l mosaic.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	s := BuildScene(l, r.legend)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	r.style.RenderDefs(&buf)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", hoverCSS)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")

	renderScene(&buf, r.style, s)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderScene(buf *bytes.Buffer, st styles.Style, s Scene) {
	buf.WriteString(`  <g class="segments">` + "\n")
	for _, r := range s.Rects {
		st.RenderRect(buf, r)
	}
	buf.WriteString("  </g>\n")

	for _, a := range s.Axes {
		st.RenderAxis(buf, a)
	}
	for _, t := range s.Ticks {
		st.RenderTick(buf, t)
	}
	for _, l := range s.Labels {
		st.RenderLabel(buf, l)
	}
	if s.Title != nil {
		st.RenderText(buf, *s.Title)
	}
	for _, t := range s.Legend {
		st.RenderText(buf, t)
	}
}
