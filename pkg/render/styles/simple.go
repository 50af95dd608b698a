package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/mosaic/pkg/colors"
	"github.com/matzehuels/mosaic/pkg/fonts"
)

// Simple is a flat style with thin outlines and sans-serif text.
type Simple struct{}

// Name returns "simple".
func (Simple) Name() string { return "simple" }

func (Simple) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <style>
    text { font-family: %s; }
    .segment { stroke: #ffffff; stroke-width: 1; }
    .tick-line, .axis-line { stroke: #555555; stroke-width: 1; }
    .tick-text { font-size: %.0fpx; fill: #333333; }
    .axis-title { font-size: 13px; fill: #333333; font-weight: bold; }
  </style>
`, fonts.FontFamily, TickFontSize)
}

func (Simple) RenderRect(buf *bytes.Buffer, r Rect) {
	fmt.Fprintf(buf, `  <rect id="%s" class="segment" x="%s" y="%s" width="%s" height="%s" fill="%s"><title>%s</title></rect>`+"\n",
		EscapeXML(r.ID), F(r.X), F(r.Y), F(r.W), F(r.H), r.Fill,
		EscapeXML(r.Category+" / "+r.SubCategory))
}

func (Simple) RenderLabel(buf *bytes.Buffer, l Label) {
	if !LabelFits(l) {
		return
	}
	fmt.Fprintf(buf, `  <text class="label" data-rect="%s" x="%s" y="%s" font-size="%.1f" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`+"\n",
		EscapeXML(l.RectID), F(l.CX), F(l.CY), FontSize(l), colors.TextOn(l.Fill), EscapeXML(l.Text))
}

func (Simple) RenderTick(buf *bytes.Buffer, t Tick) {
	x2, y2, tx, ty, anchor := TickGeometry(t)
	fmt.Fprintf(buf, `  <line class="tick-line" x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", F(t.X), F(t.Y), F(x2), F(y2))
	weight := ""
	if t.Major {
		weight = ` font-weight="bold"`
	}
	fmt.Fprintf(buf, `  <text class="tick-text" x="%s" y="%s" text-anchor="%s"%s>%s</text>`+"\n",
		F(tx), F(ty), anchor, weight, EscapeXML(t.Text))
}

func (Simple) RenderAxis(buf *bytes.Buffer, a Axis) {
	fmt.Fprintf(buf, `  <line class="axis-line" x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n", F(a.X1), F(a.Y1), F(a.X2), F(a.Y2))
	if a.Title != "" {
		x, y, anchor := AxisTitlePosition(a)
		fmt.Fprintf(buf, `  <text class="axis-title" x="%s" y="%s" text-anchor="%s">%s</text>`+"\n", F(x), F(y), anchor, EscapeXML(a.Title))
	}
}

func (Simple) RenderText(buf *bytes.Buffer, t Text) {
	RenderPlainText(buf, t, "")
}

// RenderPlainText writes a text element, with its swatch if any. class is
// added when non-empty.
func RenderPlainText(buf *bytes.Buffer, t Text, class string) {
	x := t.X
	if t.Swatch != "" {
		s := t.Size
		fmt.Fprintf(buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			F(x), F(t.Y-s*0.85), F(s), F(s), t.Swatch)
		x += s * 1.4
	}
	fill := t.Fill
	if fill == "" {
		fill = "#222222"
	}
	anchor := t.Anchor
	if anchor == "" {
		anchor = AnchorStart
	}
	attrs := ""
	if class != "" {
		attrs += fmt.Sprintf(` class="%s"`, class)
	}
	if t.Bold {
		attrs += ` font-weight="bold"`
	}
	fmt.Fprintf(buf, `  <text x="%s" y="%s" font-size="%.1f" text-anchor="%s" fill="%s"%s>%s</text>`+"\n",
		F(x), F(t.Y), t.Size, anchor, fill, attrs, EscapeXML(t.Text))
}

// TickGeometry returns the tick line end point and the text anchor point for
// a tick on the given side.
func TickGeometry(t Tick) (x2, y2, tx, ty float64, anchor Anchor) {
	const gap = 4.0
	switch t.Side {
	case Top:
		return t.X, t.Y - t.Length, t.X, t.Y - t.Length - gap, AnchorMiddle
	case Bottom:
		return t.X, t.Y + t.Length, t.X, t.Y + t.Length + gap + TickFontSize*0.8, AnchorMiddle
	case Left:
		return t.X - t.Length, t.Y, t.X - t.Length - gap, t.Y + TickFontSize*0.35, AnchorEnd
	default:
		return t.X + t.Length, t.Y, t.X + t.Length + gap, t.Y + TickFontSize*0.35, AnchorStart
	}
}

// AxisTitlePosition places the axis title beyond the middle of the axis.
func AxisTitlePosition(a Axis) (x, y float64, anchor Anchor) {
	mx, my := (a.X1+a.X2)/2, (a.Y1+a.Y2)/2
	switch a.Side {
	case Bottom:
		return mx, my + 40, AnchorMiddle
	case Right:
		return mx + 40, my, AnchorMiddle
	case Top:
		return mx, my - 36, AnchorMiddle
	default:
		return mx - 40, my, AnchorMiddle
	}
}

var _ Style = Simple{}
