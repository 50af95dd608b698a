// Package styles defines how the parts of a mosaic chart are drawn in SVG.
//
// The sink computes pixel geometry and hands each element to a [Style]; the
// style decides the markup. [Simple] draws clean, flat shapes. The handdrawn
// subpackage draws wobbly outlines in an xkcd look.
package styles

import "bytes"

// Style defines the visual appearance of a chart.
type Style interface {
	// Name identifies the style in options and cache keys.
	Name() string
	// RenderDefs writes SVG <defs> and <style> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderRect writes one subcategory segment.
	RenderRect(buf *bytes.Buffer, r Rect)
	// RenderLabel writes the percentage label of a segment.
	RenderLabel(buf *bytes.Buffer, l Label)
	// RenderTick writes an axis tick with its text.
	RenderTick(buf *bytes.Buffer, t Tick)
	// RenderAxis writes an axis line and its title.
	RenderAxis(buf *bytes.Buffer, a Axis)
	// RenderText writes free text such as the chart title and legend entries.
	RenderText(buf *bytes.Buffer, t Text)
}

// Rect is a segment in pixel coordinates (top-left origin).
type Rect struct {
	ID          string
	Category    string
	SubCategory string
	X, Y, W, H  float64
	Fill        string
}

// Label is a segment label centred at (CX, CY). MaxW and MaxH bound the
// available space.
type Label struct {
	RectID     string
	CX, CY     float64
	MaxW, MaxH float64
	Text       string
	Fill       string // background the label sits on
}

// Side identifies which edge of the plot an axis or tick belongs to.
type Side int

// Plot edges.
const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Tick is an axis marker at (X, Y) on the plot edge.
type Tick struct {
	X, Y   float64
	Side   Side
	Text   string
	Length float64
	// Major ticks carry category or y-category names, minor ones numbers.
	Major bool
}

// Axis is a straight axis line with an optional title.
type Axis struct {
	X1, Y1, X2, Y2 float64
	Side           Side
	Title          string
}

// Anchor is the horizontal text alignment.
type Anchor string

// Text anchors, matching SVG text-anchor values.
const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a free text element; (X, Y) is the baseline anchor point.
type Text struct {
	X, Y   float64
	Text   string
	Size   float64
	Anchor Anchor
	Bold   bool
	Fill   string
	// Swatch, when set, draws a small filled square before the text.
	Swatch string
}
