// Package handdrawn draws mosaic charts in an xkcd-like sketch style.
//
// Outlines wobble, labels tilt slightly and fills vary a little in
// lightness. All randomness derives from the element id and the style seed,
// so the same chart and seed always produce identical output.
package handdrawn

import (
	"bytes"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/mosaic/pkg/colors"
	"github.com/matzehuels/mosaic/pkg/fonts"
	"github.com/matzehuels/mosaic/pkg/render/styles"
)

const (
	strokeWidth  = 2.0
	inkColor     = "#2a2a2a"
	maxTint      = 0.06
	maxRotation  = 3.0
	wobbleFactor = 0.012
	wobbleMin    = 0.6
	wobbleMax    = 3.0
)

// HandDrawn is the sketch style.
type HandDrawn struct {
	seed uint64
}

// New creates the style with a seed for its jitter.
func New(seed uint64) *HandDrawn { return &HandDrawn{seed: seed} }

// Name returns "handdrawn".
func (h *HandDrawn) Name() string { return "handdrawn" }

// Seed returns the jitter seed.
func (h *HandDrawn) Seed() uint64 { return h.seed }

func (h *HandDrawn) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <defs>
    <filter id="sketch" x="-5%%" y="-5%%" width="110%%" height="110%%">
      <feTurbulence type="fractalNoise" baseFrequency="0.03" numOctaves="2" seed="%d" result="noise"/>
      <feDisplacementMap in="SourceGraphic" in2="noise" scale="2"/>
    </filter>
  </defs>
  <style>
    text { font-family: %s; fill: %s; }
    .segment { stroke: %s; stroke-width: %.1f; stroke-linejoin: round; }
    .ink { stroke: %s; stroke-width: %.1f; fill: none; stroke-linecap: round; }
    .tick-text { font-size: %.0fpx; }
    .axis-title { font-size: 16px; }
  </style>
`, h.seed%1000, fonts.HandFontFamily, inkColor, inkColor, strokeWidth, inkColor, strokeWidth*0.75, styles.TickFontSize+2)
}

func (h *HandDrawn) RenderRect(buf *bytes.Buffer, r styles.Rect) {
	path := wobbledRect(r.X, r.Y, r.W, r.H, h.seed, r.ID)
	fmt.Fprintf(buf, `  <path id="%s" class="segment" d="%s" fill="%s" filter="url(#sketch)"><title>%s</title></path>`+"\n",
		styles.EscapeXML(r.ID), path, tint(r.Fill, r.ID, h.seed), styles.EscapeXML(r.Category+" / "+r.SubCategory))
}

func (h *HandDrawn) RenderLabel(buf *bytes.Buffer, l styles.Label) {
	if !styles.LabelFits(l) {
		return
	}
	rot := rotationFor(l.RectID, l.MaxW, l.MaxH)
	fmt.Fprintf(buf, `  <text class="label" data-rect="%s" x="%s" y="%s" font-size="%.1f" text-anchor="middle" dominant-baseline="central" transform="rotate(%.2f %s %s)" style="fill: %s">%s</text>`+"\n",
		styles.EscapeXML(l.RectID), styles.F(l.CX), styles.F(l.CY), styles.FontSize(l)*1.1,
		rot, styles.F(l.CX), styles.F(l.CY), colors.TextOn(l.Fill), styles.EscapeXML(l.Text))
}

func (h *HandDrawn) RenderTick(buf *bytes.Buffer, t styles.Tick) {
	x2, y2, tx, ty, anchor := styles.TickGeometry(t)
	fmt.Fprintf(buf, `  <path class="ink" d="%s"/>`+"\n", wobbledLine(t.X, t.Y, x2, y2, h.seed, "tick:"+t.Text))
	fmt.Fprintf(buf, `  <text class="tick-text" x="%s" y="%s" text-anchor="%s">%s</text>`+"\n",
		styles.F(tx), styles.F(ty), anchor, styles.EscapeXML(t.Text))
}

func (h *HandDrawn) RenderAxis(buf *bytes.Buffer, a styles.Axis) {
	id := fmt.Sprintf("axis:%d", a.Side)
	fmt.Fprintf(buf, `  <path class="ink" d="%s"/>`+"\n", wobbledLine(a.X1, a.Y1, a.X2, a.Y2, h.seed, id))
	if a.Title != "" {
		x, y, anchor := styles.AxisTitlePosition(a)
		fmt.Fprintf(buf, `  <text class="axis-title" x="%s" y="%s" text-anchor="%s">%s</text>`+"\n",
			styles.F(x), styles.F(y), anchor, styles.EscapeXML(a.Title))
	}
}

func (h *HandDrawn) RenderText(buf *bytes.Buffer, t styles.Text) {
	t.Size *= 1.15
	styles.RenderPlainText(buf, t, "")
}

// wobbledRect returns a closed path through the four corners of the
// rectangle, each side drawn as a quadratic curve with a jittered control
// point.
func wobbledRect(x, y, w, h float64, seed uint64, id string) string {
	rng := rngFor(id, seed)
	amp := math.Max(wobbleMin, math.Min(wobbleMax, math.Min(w, h)*wobbleFactor*4))
	j := func() float64 { return jitter(rng) * amp }

	corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "M%s,%s", styles.F(corners[0][0]+j()*0.3), styles.F(corners[0][1]+j()*0.3))
	for i := 1; i <= 4; i++ {
		from, to := corners[i-1], corners[i%4]
		mx, my := (from[0]+to[0])/2+j(), (from[1]+to[1])/2+j()
		ex, ey := to[0], to[1]
		if i < 4 {
			ex += j() * 0.3
			ey += j() * 0.3
		}
		fmt.Fprintf(&buf, " Q%s,%s %s,%s", styles.F(mx), styles.F(my), styles.F(ex), styles.F(ey))
	}
	buf.WriteString(" Z")
	return buf.String()
}

// wobbledLine draws a slightly bowed line between two points.
func wobbledLine(x1, y1, x2, y2 float64, seed uint64, id string) string {
	rng := rngFor(id, seed)
	length := math.Hypot(x2-x1, y2-y1)
	amp := math.Max(wobbleMin*0.5, math.Min(wobbleMax, length*wobbleFactor))
	mx := (x1+x2)/2 + jitter(rng)*amp
	my := (y1+y2)/2 + jitter(rng)*amp
	return fmt.Sprintf("M%s,%s Q%s,%s %s,%s",
		styles.F(x1), styles.F(y1), styles.F(mx), styles.F(my), styles.F(x2), styles.F(y2))
}

// rotationFor returns a small deterministic tilt in degrees. Wide, flat
// boxes tilt less so that the text stays inside.
func rotationFor(id string, w, h float64) float64 {
	r := jitter(rngFor(id, 0))
	limit := maxRotation
	if w > 0 && h > 0 && w > 3*h {
		limit /= 2
	}
	return r * limit
}

// tint shifts the lightness of fill by a small id-dependent amount.
func tint(fill, id string, seed uint64) string {
	c, err := colors.Parse(fill)
	if err != nil {
		return fill
	}
	hue, chroma, l := c.Hcl()
	delta := jitter(rngFor("tint:"+id, seed)) * maxTint
	return colorful.Hcl(hue, chroma, math.Max(0, math.Min(1, l+delta))).Clamped().Hex()
}

var _ styles.Style = (*HandDrawn)(nil)
