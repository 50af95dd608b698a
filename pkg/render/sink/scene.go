package sink

import (
	"strconv"

	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/render/styles"
)

const (
	tickLength    = 6.0
	axisStep      = 20.0
	legendSize    = 11.0
	legendSpacing = 18.0
)

// Scene is a layout mapped to pixel coordinates. The SVG and PNG sinks draw
// the same scene so that both formats agree on placement.
type Scene struct {
	Width, Height float64
	Title         *styles.Text
	Axes          []styles.Axis
	Ticks         []styles.Tick
	Rects         []styles.Rect
	Labels        []styles.Label
	Legend        []styles.Text
}

// BuildScene maps l from chart units to the pixels of its frame.
func BuildScene(l mosaic.Layout, legend bool) Scene {
	f := l.Frame
	x, y, w, h := f.Plot()
	s := Scene{Width: f.Width, Height: f.Height}

	if l.Title != "" {
		s.Title = &styles.Text{
			X: f.Width / 2, Y: f.Padding.Top * 0.4,
			Text: l.Title, Size: styles.TitleFontSize,
			Anchor: styles.AnchorMiddle, Bold: true,
		}
	}

	s.Axes = []styles.Axis{
		{X1: x, Y1: y, X2: x + w, Y2: y, Side: styles.Top},
		{X1: x, Y1: y, X2: x, Y2: y + h, Side: styles.Left},
		{X1: x, Y1: y + h, X2: x + w, Y2: y + h, Side: styles.Bottom, Title: "%"},
		{X1: x + w, Y1: y, X2: x + w, Y2: y + h, Side: styles.Right, Title: "%"},
	}

	for v := 0.0; v <= 100; v += axisStep {
		text := strconv.Itoa(int(v))
		bx, by := f.ToPixel(v, 0)
		rx, ry := f.ToPixel(100, v)
		s.Ticks = append(s.Ticks,
			styles.Tick{X: bx, Y: by, Side: styles.Bottom, Text: text, Length: tickLength},
			styles.Tick{X: rx, Y: ry, Side: styles.Right, Text: text, Length: tickLength},
		)
	}
	for _, t := range l.CategoryTicks {
		px, py := f.ToPixel(t.Value, 100)
		s.Ticks = append(s.Ticks, styles.Tick{X: px, Y: py, Side: styles.Top, Text: t.Text, Length: tickLength, Major: true})
	}
	for _, t := range l.YTicks {
		px, py := f.ToPixel(0, t.Value)
		s.Ticks = append(s.Ticks, styles.Tick{X: px, Y: py, Side: styles.Left, Text: t.Text, Length: tickLength, Major: true})
	}

	// Segments thinner than twice the margin collapse to nothing and are
	// dropped together with their labels.
	sizes := make(map[string][2]float64, len(l.Rects))
	for _, r := range l.Rects {
		px, py := f.ToPixel(r.X, r.Y+r.Height)
		pr := styles.Rect{
			ID: r.ID, Category: r.Category, SubCategory: r.SubCategory,
			X: px, Y: py, W: max(0, r.Width/100*w), H: max(0, r.Height/100*h),
			Fill: r.Fill,
		}
		if pr.W <= 0 || pr.H <= 0 {
			continue
		}
		sizes[r.ID] = [2]float64{pr.W, pr.H}
		s.Rects = append(s.Rects, pr)
	}
	for _, lb := range l.Labels {
		size, ok := sizes[lb.RectID]
		if !ok {
			continue
		}
		px, py := f.ToPixel(lb.X, lb.Y)
		s.Labels = append(s.Labels, styles.Label{
			RectID: lb.RectID, CX: px, CY: py,
			MaxW: size[0], MaxH: size[1],
			Text: lb.Text, Fill: lb.Fill,
		})
	}

	if legend {
		s.Legend = buildLegend(l.Legend, x, f.Height-8)
	}
	return s
}

// buildLegend lays legend entries out in a single row starting at (x, y).
func buildLegend(entries []mosaic.LegendEntry, x, y float64) []styles.Text {
	out := make([]styles.Text, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = e.ID
		}
		out = append(out, styles.Text{X: x, Y: y, Text: name, Size: legendSize, Swatch: e.Fill})
		x += legendSize*1.4 + styles.TextWidth(name, legendSize) + legendSpacing
	}
	return out
}
