package mosaic

import (
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/mosaic/pkg/colors"
)

// Sentinel errors reported by [Chart.Err].
var (
	ErrNegativeValue = errors.New("value must not be negative")
	ErrNonFinite     = errors.New("value must be finite")
	ErrInvalidFill   = errors.New("invalid fill colour")
)

// Chart is a mosaic chart: an ordered tree of categories and their
// subcategory values, plus the independent left-axis markers.
//
// A Chart is not safe for concurrent use.
type Chart struct {
	title  string
	margin float64
	frame  Frame

	subCategories []*SubCategory
	categories    []*Category
	yCategories   []*YCategory

	layout   Layout
	err      error
	onUpdate func(Layout)
}

// Option configures a Chart.
type Option func(*Chart)

// WithTitle sets the chart title.
func WithTitle(title string) Option { return func(c *Chart) { c.title = title } }

// WithMargin sets the rectangle inset in pixels. Negative margins are
// clamped to zero; NaN and infinite margins are rejected with
// [ErrNonFinite] and leave the default in place.
func WithMargin(px float64) Option {
	return func(c *Chart) {
		if math.IsNaN(px) || math.IsInf(px, 0) {
			c.fail(fmt.Errorf("%w: margin: %v", ErrNonFinite, px))
			return
		}
		c.margin = max(0, px)
	}
}

// WithFrame sets the pixel frame used to scale the margin.
func WithFrame(f Frame) Option { return func(c *Chart) { c.frame = f } }

// WithSize is shorthand for WithFrame(NewFrame(width, height)).
func WithSize(width, height float64) Option {
	return func(c *Chart) { c.frame = NewFrame(width, height) }
}

// WithObserver registers fn to be called with the new layout after every
// recomputation.
func WithObserver(fn func(Layout)) Option { return func(c *Chart) { c.onUpdate = fn } }

// New creates an empty chart.
func New(opts ...Option) *Chart {
	c := &Chart{margin: DefaultMargin, frame: DefaultFrame()}
	for _, opt := range opts {
		opt(c)
	}
	c.update()
	return c
}

// Title returns the chart title.
func (c *Chart) Title() string { return c.title }

// Margin returns the rectangle inset in pixels.
func (c *Chart) Margin() float64 { return c.margin }

// Frame returns the pixel frame.
func (c *Chart) Frame() Frame { return c.frame }

// Err returns the first invalid mutation, if any. Invalid mutations are
// dropped and leave the chart unchanged.
func (c *Chart) Err() error { return c.err }

// Layout returns the layout computed after the most recent mutation.
func (c *Chart) Layout() Layout { return c.layout }

// SubCategories returns the subcategories in insertion order.
func (c *Chart) SubCategories() []*SubCategory {
	return append([]*SubCategory(nil), c.subCategories...)
}

// Categories returns the categories in insertion order.
func (c *Chart) Categories() []*Category {
	return append([]*Category(nil), c.categories...)
}

// YCategories returns the left-axis markers in insertion order.
func (c *Chart) YCategories() []*YCategory {
	return append([]*YCategory(nil), c.yCategories...)
}

// SubCategory looks up a subcategory by id.
func (c *Chart) SubCategory(id string) (*SubCategory, bool) {
	for _, s := range c.subCategories {
		if s.id == id {
			return s, true
		}
	}
	return nil, false
}

// Category looks up the first category with the given name.
func (c *Chart) Category(name string) (*Category, bool) {
	for _, cat := range c.categories {
		if cat.name == name {
			return cat, true
		}
	}
	return nil, false
}

// YCategory looks up the first y-category with the given name.
func (c *Chart) YCategory(name string) (*YCategory, bool) {
	for _, y := range c.yCategories {
		if y.name == name {
			return y, true
		}
	}
	return nil, false
}

// AddSubCategory appends a subcategory style. An empty fill picks the next
// palette colour; an invalid one is reported by Err and also falls back to
// the palette. The id is generated ("sub1", "sub2", ...).
func (c *Chart) AddSubCategory(fill string) *SubCategory {
	return c.addSubCategory(fmt.Sprintf("sub%d", len(c.subCategories)+1), "", fill)
}

// AddSubCategoryWithID is AddSubCategory with a caller-chosen id. An empty
// id is generated as in AddSubCategory. Ids are not checked for uniqueness;
// [Chart.SubCategory] returns the first match.
func (c *Chart) AddSubCategoryWithID(id, fill string) *SubCategory {
	if id == "" {
		return c.AddSubCategory(fill)
	}
	return c.addSubCategory(id, "", fill)
}

func (c *Chart) addSubCategory(id, name, fill string) *SubCategory {
	s := &SubCategory{chart: c, id: id, name: name}
	if fill == "" {
		s.fill = colors.Default(len(c.subCategories))
	} else if norm, err := colors.Normalize(fill); err != nil {
		c.fail(fmt.Errorf("%w: subcategory %q: %v", ErrInvalidFill, id, err))
		s.fill = colors.Default(len(c.subCategories))
	} else {
		s.fill = norm
	}
	c.subCategories = append(c.subCategories, s)
	c.update()
	return s
}

// AddCategory appends a category (column) with value 0.
func (c *Chart) AddCategory(name string) *Category {
	cat := &Category{chart: c, name: name}
	c.categories = append(c.categories, cat)
	c.update()
	return cat
}

// AddYCategory appends a left-axis marker.
func (c *Chart) AddYCategory(name string, value float64) *YCategory {
	y := &YCategory{chart: c, name: name}
	c.yCategories = append(c.yCategories, y)
	if c.check(value, "y-category "+name) {
		y.value = value
	}
	c.update()
	return y
}

func (c *Chart) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// check validates v and records the failure under what.
func (c *Chart) check(v float64, what string) bool {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		c.fail(fmt.Errorf("%w: %s: %v", ErrNonFinite, what, v))
		return false
	case v < 0:
		c.fail(fmt.Errorf("%w: %s: %v", ErrNegativeValue, what, v))
		return false
	}
	return true
}

// update rebuilds the layout from scratch.
func (c *Chart) update() {
	in := Input{
		Margin: c.margin,
		Scale:  c.frame.Scale(),
	}
	for _, cat := range c.categories {
		ci := CategoryInput{Name: cat.name, Value: cat.value}
		for _, v := range cat.values {
			ci.Values = append(ci.Values, ValueInput{
				SubCategory: v.SubCategory.id,
				Fill:        v.SubCategory.fill,
				Value:       v.Value,
			})
		}
		in.Categories = append(in.Categories, ci)
	}
	for _, y := range c.yCategories {
		in.YCategories = append(in.YCategories, YCategoryInput{Name: y.name, Value: y.value})
	}

	l := Compute(in)
	l.Title = c.title
	l.Frame = c.frame
	for _, s := range c.subCategories {
		l.Legend = append(l.Legend, LegendEntry{ID: s.id, Name: s.name, Fill: s.fill})
	}
	c.layout = l

	if c.onUpdate != nil {
		c.onUpdate(l)
	}
}

// SubCategory is a style shared by the segments of several categories.
type SubCategory struct {
	chart *Chart
	id    string
	name  string
	fill  string
}

// ID returns the subcategory identifier.
func (s *SubCategory) ID() string { return s.id }

// Name returns the display name (may be empty).
func (s *SubCategory) Name() string { return s.name }

// Fill returns the fill colour as "#rrggbb".
func (s *SubCategory) Fill() string { return s.fill }

// SetFill replaces the fill colour.
func (s *SubCategory) SetFill(fill string) *SubCategory {
	norm, err := colors.Normalize(fill)
	if err != nil {
		s.chart.fail(fmt.Errorf("%w: subcategory %q: %v", ErrInvalidFill, s.id, err))
		return s
	}
	s.fill = norm
	s.chart.update()
	return s
}

// SetName sets the legend name.
func (s *SubCategory) SetName(name string) *SubCategory {
	s.name = name
	s.chart.update()
	return s
}

// SubCategoryValue is the value of one subcategory within one category.
type SubCategoryValue struct {
	SubCategory *SubCategory
	Value       float64
}

// Category is a chart column.
type Category struct {
	chart  *Chart
	name   string
	value  float64
	values []SubCategoryValue
}

// Name returns the category name.
func (cat *Category) Name() string { return cat.name }

// Value returns the category value.
func (cat *Category) Value() float64 { return cat.value }

// Values returns the subcategory values in insertion order.
func (cat *Category) Values() []SubCategoryValue {
	return append([]SubCategoryValue(nil), cat.values...)
}

// SubCategoryValue returns the value set for sub, if any.
func (cat *Category) SubCategoryValue(sub *SubCategory) (float64, bool) {
	for _, v := range cat.values {
		if v.SubCategory == sub {
			return v.Value, true
		}
	}
	return 0, false
}

// SetValue sets the category value and recomputes the layout.
func (cat *Category) SetValue(v float64) *Category {
	if !cat.chart.check(v, "category "+cat.name) {
		return cat
	}
	cat.value = v
	cat.chart.update()
	return cat
}

// SetSubCategoryValue sets the value for sub within this category. The first
// call for a subcategory appends it to the column; later calls overwrite the
// value in place. A nil subcategory or one from another chart is ignored.
func (cat *Category) SetSubCategoryValue(sub *SubCategory, v float64) *Category {
	if sub == nil || sub.chart != cat.chart {
		return cat
	}
	if !cat.chart.check(v, fmt.Sprintf("category %s/%s", cat.name, sub.id)) {
		return cat
	}
	found := false
	for i := range cat.values {
		if cat.values[i].SubCategory == sub {
			cat.values[i].Value = v
			found = true
			break
		}
	}
	if !found {
		cat.values = append(cat.values, SubCategoryValue{SubCategory: sub, Value: v})
	}
	cat.chart.update()
	return cat
}

// YCategory is a named marker on the left axis.
type YCategory struct {
	chart *Chart
	name  string
	value float64
}

// Name returns the marker text.
func (y *YCategory) Name() string { return y.name }

// Value returns the marker position on the 0..100 axis.
func (y *YCategory) Value() float64 { return y.value }

// SetValue moves the marker and recomputes the layout.
func (y *YCategory) SetValue(v float64) *YCategory {
	if !y.chart.check(v, "y-category "+y.name) {
		return y
	}
	y.value = v
	y.chart.update()
	return y
}
