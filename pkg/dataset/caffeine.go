package dataset

import "github.com/matzehuels/mosaic/pkg/mosaic"

// CaffeineName is the name under which the built-in demo is registered.
const CaffeineName = "caffeine"

// Caffeine returns the "Controlled Group Testing" demo: how test subjects
// felt after a drink with caffeine, a decaffeinated one or a placebo.
func Caffeine() mosaic.Definition {
	margin := mosaic.DefaultMargin
	return mosaic.Definition{
		Title:  "Controlled Group Testing",
		Margin: &margin,
		SubCategories: []mosaic.SubCategoryDef{
			{ID: "exhaust", Name: "Caused Exhaustion", Fill: "rgb(200, 0, 0)"},
			{ID: "noeffect", Name: "No Effect", Fill: "rgb(240, 190, 0)"},
			{ID: "refresh", Name: "Refreshed", Fill: "rgb(0, 180, 0)"},
		},
		Categories: []mosaic.CategoryDef{
			{Name: "With caffeine", Value: 48, Values: []mosaic.ValueDef{
				{SubCategory: "exhaust", Value: 25},
				{SubCategory: "noeffect", Value: 35},
				{SubCategory: "refresh", Value: 40},
			}},
			{Name: "Decaffeinated", Value: 32, Values: []mosaic.ValueDef{
				{SubCategory: "exhaust", Value: 10},
				{SubCategory: "noeffect", Value: 45},
				{SubCategory: "refresh", Value: 45},
			}},
			{Name: "Placebo product", Value: 20, Values: []mosaic.ValueDef{
				{SubCategory: "exhaust", Value: 20},
				{SubCategory: "noeffect", Value: 50},
				{SubCategory: "refresh", Value: 30},
			}},
		},
		YCategories: []mosaic.YCategoryDef{
			{Name: "Refreshed", Value: 80},
			{Name: "No Effect", Value: 40},
			{Name: "Caused Exhaustion", Value: 12},
		},
	}
}

// Builtin returns a built-in dataset by name.
func Builtin(name string) (mosaic.Definition, bool) {
	switch name {
	case CaffeineName:
		return Caffeine(), true
	}
	return mosaic.Definition{}, false
}
