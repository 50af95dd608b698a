package styles

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

const (
	fontHeightRatio = 0.45
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0

	// TickFontSize is the size of axis tick text.
	TickFontSize = 12.0
	// TitleFontSize is the size of the chart title.
	TitleFontSize = 20.0
)

// FontSize returns a label size that fits the available box, clamped to a
// readable range.
func FontSize(l Label) float64 { return fontSizeFor(l.MaxW, l.MaxH, len(l.Text)) }

func fontSizeFor(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// LabelFits reports whether the label text fits its box at the minimum
// font size. Labels that do not fit are omitted.
func LabelFits(l Label) bool {
	w := float64(len(l.Text)) * fontSizeMin * fontCharWidth
	return w <= l.MaxW*fontWidthRatio && fontSizeMin <= l.MaxH
}

// TextWidth estimates the rendered width of s at size.
func TextWidth(s string, size float64) float64 {
	return float64(len([]rune(s))) * size * fontCharWidth
}

// EscapeXML escapes text for use in SVG content and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// F formats a coordinate with at most two decimals.
func F(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
