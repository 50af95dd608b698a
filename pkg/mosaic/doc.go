// Package mosaic models mosaic (marimekko) charts and computes their layout.
//
// # Overview
//
// A mosaic chart shows a two-level breakdown. Each [Category] is a column
// whose width is its share of the sum of all category values. Inside a
// column, each [SubCategory] value is a rectangle whose height is its share
// of that category's subcategory total. A [YCategory] is an independent
// left-axis marker that does not take part in the geometry.
//
// # Coordinates
//
// Layouts are expressed in chart units: both axes run from 0 to 100 with the
// y axis pointing up, so the first subcategory of a column sits at the
// bottom. Rectangles are inset by a margin given in pixels; the [Frame]
// supplies the pixel-to-unit scale used to convert it.
//
// # Recomputation
//
// Every mutation (SetValue, SetSubCategoryValue, SetFill, ...) rebuilds the
// whole layout synchronously before returning, so [Chart.Layout] always
// reflects the current tree:
//
//	c := mosaic.New(mosaic.WithTitle("Controlled Group Testing"))
//	exhaust := c.AddSubCategory("#c80000")
//	c.AddCategory("With caffeine").
//	    SetValue(48).
//	    SetSubCategoryValue(exhaust, 25)
//	l := c.Layout()
//
// Invalid input (negative or non-finite values, unparsable fills) is not
// applied; the first such error is kept and reported by [Chart.Err].
//
// The pure calculator is exposed as [Compute] for callers that manage their
// own data.
package mosaic
