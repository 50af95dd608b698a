package mosaic

import "fmt"

// Definition is the serializable form of a chart. Replaying it through
// [Definition.Build] applies the same add/overwrite rules as the chart
// operations, so a Definition with repeated values for one pair keeps the
// last one.
type Definition struct {
	Title         string           `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Margin        *float64         `json:"margin,omitempty" yaml:"margin,omitempty" toml:"margin,omitempty" bson:"margin,omitempty"`
	SubCategories []SubCategoryDef `json:"subcategories" yaml:"subcategories" toml:"subcategories" bson:"subcategories"`
	Categories    []CategoryDef    `json:"categories" yaml:"categories" toml:"categories" bson:"categories"`
	YCategories   []YCategoryDef   `json:"ycategories,omitempty" yaml:"ycategories,omitempty" toml:"ycategories,omitempty" bson:"ycategories,omitempty"`
}

// SubCategoryDef defines a subcategory style.
type SubCategoryDef struct {
	ID   string `json:"id" yaml:"id" toml:"id" bson:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Fill string `json:"fill,omitempty" yaml:"fill,omitempty" toml:"fill,omitempty" bson:"fill,omitempty"`
}

// CategoryDef defines a column and its ordered subcategory values.
type CategoryDef struct {
	Name   string     `json:"name" yaml:"name" toml:"name" bson:"name"`
	Value  float64    `json:"value" yaml:"value" toml:"value" bson:"value"`
	Values []ValueDef `json:"values,omitempty" yaml:"values,omitempty" toml:"values,omitempty" bson:"values,omitempty"`
}

// ValueDef is one subcategory value, referencing a [SubCategoryDef] by id.
type ValueDef struct {
	SubCategory string  `json:"sub" yaml:"sub" toml:"sub" bson:"sub"`
	Value       float64 `json:"value" yaml:"value" toml:"value" bson:"value"`
}

// YCategoryDef defines a left-axis marker.
type YCategoryDef struct {
	Name  string  `json:"name" yaml:"name" toml:"name" bson:"name"`
	Value float64 `json:"value" yaml:"value" toml:"value" bson:"value"`
}

// MarginOr returns the definition's margin, or fallback when unset.
func (d Definition) MarginOr(fallback float64) float64 {
	if d.Margin == nil {
		return fallback
	}
	return *d.Margin
}

// Build creates a chart from the definition. Values that reference an
// unknown subcategory are skipped. The returned error is the chart's
// [Chart.Err] after replay.
func (d Definition) Build(opts ...Option) (*Chart, error) {
	base := []Option{WithTitle(d.Title), WithMargin(d.MarginOr(DefaultMargin))}
	c := New(append(base, opts...)...)

	subs := make(map[string]*SubCategory, len(d.SubCategories))
	for _, s := range d.SubCategories {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("sub%d", len(c.subCategories)+1)
		}
		subs[id] = c.addSubCategory(id, s.Name, s.Fill)
	}
	for _, y := range d.YCategories {
		c.AddYCategory(y.Name, y.Value)
	}
	for _, cd := range d.Categories {
		cat := c.AddCategory(cd.Name).SetValue(cd.Value)
		for _, v := range cd.Values {
			if sub, ok := subs[v.SubCategory]; ok {
				cat.SetSubCategoryValue(sub, v.Value)
			}
		}
	}
	return c, c.Err()
}

// Definition captures the chart's current tree.
func (c *Chart) Definition() Definition {
	margin := c.margin
	d := Definition{Title: c.title, Margin: &margin}
	for _, s := range c.subCategories {
		d.SubCategories = append(d.SubCategories, SubCategoryDef{ID: s.id, Name: s.name, Fill: s.fill})
	}
	for _, cat := range c.categories {
		cd := CategoryDef{Name: cat.name, Value: cat.value}
		for _, v := range cat.values {
			cd.Values = append(cd.Values, ValueDef{SubCategory: v.SubCategory.id, Value: v.Value})
		}
		d.Categories = append(d.Categories, cd)
	}
	for _, y := range c.yCategories {
		d.YCategories = append(d.YCategories, YCategoryDef{Name: y.name, Value: y.value})
	}
	return d
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	out := Definition{Title: d.Title}
	if d.Margin != nil {
		m := *d.Margin
		out.Margin = &m
	}
	if d.SubCategories != nil {
		out.SubCategories = append([]SubCategoryDef(nil), d.SubCategories...)
	}
	if d.Categories != nil {
		out.Categories = make([]CategoryDef, len(d.Categories))
		for i, c := range d.Categories {
			c.Values = append([]ValueDef(nil), c.Values...)
			out.Categories[i] = c
		}
	}
	if d.YCategories != nil {
		out.YCategories = append([]YCategoryDef(nil), d.YCategories...)
	}
	return out
}
