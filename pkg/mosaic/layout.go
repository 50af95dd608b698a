package mosaic

import (
	"fmt"
	"math"
)

// Visualization types stored in [Layout.VizType].
const (
	VizTypeMosaic = "mosaic"
	VizTypeTree   = "tree"
)

// Layout is the computed geometry of a chart, in chart units (0..100 on
// both axes, y up). It is also the serialization format for cached and
// exported layouts.
type Layout struct {
	VizType string  `json:"viz_type" bson:"viz_type"`
	Title   string  `json:"title,omitempty" bson:"title,omitempty"`
	Frame   Frame   `json:"frame" bson:"frame"`
	Margin  float64 `json:"margin" bson:"margin"`
	Scale   Scale   `json:"scale" bson:"scale"`

	Rects         []Rect        `json:"rects,omitempty" bson:"rects,omitempty"`
	Labels        []Label       `json:"labels,omitempty" bson:"labels,omitempty"`
	CategoryTicks []Tick        `json:"category_ticks,omitempty" bson:"category_ticks,omitempty"`
	YTicks        []Tick        `json:"y_ticks,omitempty" bson:"y_ticks,omitempty"`
	Legend        []LegendEntry `json:"legend,omitempty" bson:"legend,omitempty"`

	// DOT holds the Graphviz source for tree layouts.
	DOT string `json:"dot,omitempty" bson:"dot,omitempty"`
}

// IsTree reports whether this is a category tree layout.
func (l *Layout) IsTree() bool { return l.VizType == VizTypeTree }

// Rect is one subcategory segment.
type Rect struct {
	ID          string  `json:"id" bson:"id"`
	Category    string  `json:"category" bson:"category"`
	SubCategory string  `json:"sub_category" bson:"sub_category"`
	Fill        string  `json:"fill" bson:"fill"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	Width       float64 `json:"width" bson:"width"`
	Height      float64 `json:"height" bson:"height"`
	// Share is the segment's percentage of its category.
	Share float64 `json:"share" bson:"share"`
}

// Label is a percentage label centred on a segment.
type Label struct {
	RectID string  `json:"rect_id" bson:"rect_id"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Text   string  `json:"text" bson:"text"`
	Fill   string  `json:"fill" bson:"fill"` // background under the text
}

// Tick is an axis marker.
type Tick struct {
	Value float64 `json:"value" bson:"value"`
	Text  string  `json:"text" bson:"text"`
}

// LegendEntry describes one subcategory style.
type LegendEntry struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
	Fill string `json:"fill" bson:"fill"`
}

// Input is the data consumed by [Compute].
type Input struct {
	Categories  []CategoryInput
	YCategories []YCategoryInput
	// Margin is the rectangle inset in pixels.
	Margin float64
	// Scale converts the margin to chart units.
	Scale Scale
}

// CategoryInput is one column of [Input].
type CategoryInput struct {
	Name   string
	Value  float64
	Values []ValueInput
}

// ValueInput is one subcategory value of a column.
type ValueInput struct {
	SubCategory string
	Fill        string
	Value       float64
}

// YCategoryInput is one left-axis marker.
type YCategoryInput struct {
	Name  string
	Value float64
}

// Compute partitions the 0..100 square into columns proportional to the
// category values and, within each column, into segments proportional to
// the subcategory values. It is a single sweep over the categories and a
// nested sweep over each column's values.
//
// Categories or values with a zero share produce no geometry but still
// advance the cursor by their (zero) share. A column whose subcategory
// total is zero produces neither a tick nor segments. If the category
// total is zero nothing is produced at all.
func Compute(in Input) Layout {
	l := Layout{
		VizType: VizTypeMosaic,
		Margin:  in.Margin,
		Scale:   in.Scale,
	}

	catValues := make([]float64, len(in.Categories))
	for i, c := range in.Categories {
		catValues[i] = c.Value
	}
	relCats := percentages(catValues)
	if relCats == nil {
		return l
	}

	for _, y := range in.YCategories {
		l.YTicks = append(l.YTicks, Tick{Value: y.Value, Text: y.Name})
	}

	mx := in.Margin * in.Scale.X
	my := in.Margin * in.Scale.Y

	xPos := 0.0
	for ci, c := range in.Categories {
		relCat := relCats[ci]

		subValues := make([]float64, len(c.Values))
		for i, v := range c.Values {
			subValues[i] = v.Value
		}
		relSubs := percentages(subValues)

		if relSubs != nil && relCat > 0 {
			l.CategoryTicks = append(l.CategoryTicks, Tick{
				Value: xPos + relCat/2,
				Text:  fmt.Sprintf("%s (%d%%)", c.Name, roundPercent(relCat)),
			})

			yPos := 0.0
			for vi, v := range c.Values {
				relSub := relSubs[vi]
				if relSub > 0 {
					id := fmt.Sprintf("c%d-%s", ci, v.SubCategory)
					l.Rects = append(l.Rects, Rect{
						ID:          id,
						Category:    c.Name,
						SubCategory: v.SubCategory,
						Fill:        v.Fill,
						X:           xPos + mx,
						Y:           yPos + my,
						Width:       relCat - 2*mx,
						Height:      relSub - 2*my,
						Share:       relSub,
					})
					l.Labels = append(l.Labels, Label{
						RectID: id,
						X:      xPos + relCat/2,
						Y:      yPos + relSub/2,
						Text:   fmt.Sprintf("%d%%", roundPercent(relSub)),
						Fill:   v.Fill,
					})
				}
				yPos += relSub
			}
		}
		xPos += relCat
	}
	return l
}

// percentages returns each value's share of the sum on a 0..100 scale, or
// nil when the sum is not positive. Values are divided by the largest one
// before summing so that totals near math.MaxFloat64 stay finite.
func percentages(values []float64) []float64 {
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak <= 0 {
		return nil
	}
	total := 0.0
	for _, v := range values {
		total += v / peak
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / peak / total * 100
	}
	return out
}

func roundPercent(v float64) int {
	return int(math.Round(v))
}
