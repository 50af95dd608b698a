package mosaic

import (
	"errors"
	"math"
	"testing"
)

func caffeineChart(t *testing.T, opts ...Option) (*Chart, map[string]*Category) {
	t.Helper()
	c := New(append([]Option{WithTitle("Controlled Group Testing")}, opts...)...)

	exhaust := c.AddSubCategory("rgb(200,0,0)")
	noEffect := c.AddSubCategory("rgb(240,190,0)")
	refresh := c.AddSubCategory("rgb(0,180,0)")

	c.AddYCategory("Refreshed", 80)
	c.AddYCategory("No Effect", 40)
	c.AddYCategory("Caused Exhaustion", 12)

	cats := map[string]*Category{}
	add := func(name string, v, e, n, r float64) {
		cats[name] = c.AddCategory(name).
			SetValue(v).
			SetSubCategoryValue(exhaust, e).
			SetSubCategoryValue(noEffect, n).
			SetSubCategoryValue(refresh, r)
	}
	add("With caffeine", 48, 25, 35, 40)
	add("Decaffeinated", 32, 10, 45, 45)
	add("Placebo product", 20, 20, 50, 30)

	if err := c.Err(); err != nil {
		t.Fatalf("building chart: %v", err)
	}
	return c, cats
}

func rectsOf(l Layout, category string) []Rect {
	var out []Rect
	for _, r := range l.Rects {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

func TestChartCaffeine(t *testing.T) {
	c, _ := caffeineChart(t)
	l := c.Layout()

	if l.Title != "Controlled Group Testing" {
		t.Errorf("Title = %q", l.Title)
	}
	if len(l.Rects) != 9 {
		t.Fatalf("got %d rects, want 9", len(l.Rects))
	}
	if len(l.Legend) != 3 || l.Legend[0].Fill != "#c80000" {
		t.Errorf("Legend = %+v", l.Legend)
	}
	if l.Rects[0].SubCategory != "sub1" || l.Rects[0].Fill != "#c80000" {
		t.Errorf("first rect = %+v", l.Rects[0])
	}

	mx := DefaultMargin * c.Frame().Scale().X
	widths := map[string]float64{"With caffeine": 48, "Decaffeinated": 32, "Placebo product": 20}
	for cat, w := range widths {
		for _, r := range rectsOf(l, cat) {
			if math.Abs(r.Width+2*mx-w) > 1e-9 {
				t.Errorf("%s rect width = %v, want %v", cat, r.Width+2*mx, w)
			}
		}
	}
}

func TestChartUpdateSingleCategory(t *testing.T) {
	c, cats := caffeineChart(t)
	before := c.Layout()

	cats["Decaffeinated"].SetSubCategoryValue(c.subCategories[0], 30)
	after := c.Layout()

	// Column widths are unaffected by subcategory values.
	for _, cat := range []string{"With caffeine", "Placebo product"} {
		b, a := rectsOf(before, cat), rectsOf(after, cat)
		if len(a) != len(b) {
			t.Fatalf("%s: rect count changed from %d to %d", cat, len(b), len(a))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("%s rect %d changed: %+v -> %+v", cat, i, b[i], a[i])
			}
		}
	}

	changed := rectsOf(after, "Decaffeinated")
	if math.Abs(changed[0].Share-30) > 1e-9 {
		t.Errorf("updated share = %v, want 30", changed[0].Share)
	}
}

func TestChartCategoryValueShiftsFollowing(t *testing.T) {
	c, cats := caffeineChart(t)
	cats["With caffeine"].SetValue(148)
	l := c.Layout()

	first := rectsOf(l, "With caffeine")[0]
	second := rectsOf(l, "Decaffeinated")[0]
	mx := l.Margin * l.Scale.X

	if math.Abs(first.X-mx) > 1e-9 {
		t.Errorf("first column moved: X = %v", first.X)
	}
	wantX := 100*148.0/200 + mx
	if math.Abs(second.X-wantX) > 1e-9 {
		t.Errorf("second column X = %v, want %v", second.X, wantX)
	}
}

func TestChartSubCategoryOverwrite(t *testing.T) {
	c := New()
	a := c.AddSubCategory("")
	b := c.AddSubCategory("")
	cat := c.AddCategory("x").SetValue(1)

	cat.SetSubCategoryValue(a, 1).SetSubCategoryValue(b, 2).SetSubCategoryValue(a, 5)

	vals := cat.Values()
	if len(vals) != 2 {
		t.Fatalf("got %d values, want 2", len(vals))
	}
	if vals[0].SubCategory != a || vals[0].Value != 5 {
		t.Errorf("first value = %+v, want sub1=5 in original position", vals[0])
	}
	if v, ok := cat.SubCategoryValue(b); !ok || v != 2 {
		t.Errorf("SubCategoryValue(b) = %v, %v", v, ok)
	}
}

func TestChartForeignSubCategoryIgnored(t *testing.T) {
	c1 := New()
	c2 := New()
	foreign := c2.AddSubCategory("")
	cat := c1.AddCategory("x").SetValue(1)

	cat.SetSubCategoryValue(foreign, 3).SetSubCategoryValue(nil, 4)
	if len(cat.Values()) != 0 {
		t.Errorf("foreign values were added: %+v", cat.Values())
	}
	if c1.Err() != nil {
		t.Errorf("unexpected error: %v", c1.Err())
	}
}

func TestChartInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  error
	}{
		{"negative", -1, ErrNegativeValue},
		{"nan", math.NaN(), ErrNonFinite},
		{"inf", math.Inf(1), ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			cat := c.AddCategory("x").SetValue(10)
			cat.SetValue(tt.value)

			if !errors.Is(c.Err(), tt.want) {
				t.Errorf("Err() = %v, want %v", c.Err(), tt.want)
			}
			if cat.Value() != 10 {
				t.Errorf("invalid value was applied: %v", cat.Value())
			}
		})
	}
}

func TestChartErrIsSticky(t *testing.T) {
	c := New()
	c.AddCategory("x").SetValue(-1)
	c.AddYCategory("y", math.NaN())

	if !errors.Is(c.Err(), ErrNegativeValue) {
		t.Errorf("Err() = %v, want first failure", c.Err())
	}
}

func TestChartInvalidFill(t *testing.T) {
	c := New()
	s := c.AddSubCategory("not-a-colour")
	if !errors.Is(c.Err(), ErrInvalidFill) {
		t.Errorf("Err() = %v, want ErrInvalidFill", c.Err())
	}
	if s.Fill() == "" {
		t.Error("invalid fill should fall back to the palette")
	}

	s2 := New().AddSubCategory("#336699")
	s2.SetFill("bogus")
	if s2.Fill() != "#336699" {
		t.Errorf("SetFill with invalid colour changed fill to %q", s2.Fill())
	}
}

func TestChartObserver(t *testing.T) {
	var calls int
	var last Layout
	c := New(WithObserver(func(l Layout) {
		calls++
		last = l
	}))
	if calls != 1 {
		t.Errorf("New should notify once, got %d", calls)
	}

	sub := c.AddSubCategory("")
	c.AddCategory("x").SetValue(1).SetSubCategoryValue(sub, 1)
	if calls != 5 {
		t.Errorf("got %d notifications, want 5", calls)
	}
	if len(last.Rects) != 1 {
		t.Errorf("observer saw %d rects, want 1", len(last.Rects))
	}

	c.AddCategory("y").SetValue(-1)
	if calls != 6 {
		t.Errorf("rejected mutation notified observer: %d calls", calls)
	}
}

func TestChartLookups(t *testing.T) {
	c, _ := caffeineChart(t)

	if _, ok := c.Category("Decaffeinated"); !ok {
		t.Error("Category(Decaffeinated) not found")
	}
	if _, ok := c.Category("missing"); ok {
		t.Error("Category(missing) found")
	}
	if y, ok := c.YCategory("No Effect"); !ok || y.Value() != 40 {
		t.Errorf("YCategory(No Effect) = %v, %v", y, ok)
	}
	if s, ok := c.SubCategory("sub2"); !ok || s.Fill() != "#f0be00" {
		t.Errorf("SubCategory(sub2) = %v, %v", s, ok)
	}

	ys := c.YCategories()
	ys[0] = nil
	if c.YCategories()[0] == nil {
		t.Error("YCategories returned internal slice")
	}
}

func TestFrame(t *testing.T) {
	f := NewFrame(800, 600)
	x, y, w, h := f.Plot()
	if x != 130 || y != 80 || w != 610 || h != 450 {
		t.Errorf("Plot() = %v, %v, %v, %v", x, y, w, h)
	}

	px, py := f.ToPixel(0, 0)
	if px != 130 || py != 530 {
		t.Errorf("ToPixel(0,0) = %v, %v; want 130, 530", px, py)
	}
	px, py = f.ToPixel(100, 100)
	if px != 740 || py != 80 {
		t.Errorf("ToPixel(100,100) = %v, %v; want 740, 80", px, py)
	}

	s := f.Scale()
	if math.Abs(s.X-100.0/610) > 1e-12 || math.Abs(s.Y-100.0/450) > 1e-12 {
		t.Errorf("Scale() = %+v", s)
	}
}

func TestNewFrameShrinksPadding(t *testing.T) {
	f := NewFrame(100, 100)
	_, _, w, h := f.Plot()
	if math.Abs(w-50) > 1e-9 || math.Abs(h-50) > 1e-9 {
		t.Errorf("small frame plot = %v x %v, want 50 x 50", w, h)
	}
}

func TestChartAddSubCategoryWithID(t *testing.T) {
	c := New()
	s := c.AddSubCategoryWithID("warm", "#ff0000")
	if s.ID() != "warm" || s.Fill() != "#ff0000" {
		t.Errorf("sub = %q %q", s.ID(), s.Fill())
	}
	if got, ok := c.SubCategory("warm"); !ok || got != s {
		t.Error("SubCategory(warm) lookup failed")
	}
	if g := c.AddSubCategoryWithID("", ""); g.ID() != "sub2" {
		t.Errorf("generated id = %q, want sub2", g.ID())
	}
}

func TestChartNonFiniteMargin(t *testing.T) {
	tests := []struct {
		name   string
		margin float64
	}{
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"negative inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithMargin(tt.margin))
			if !errors.Is(c.Err(), ErrNonFinite) {
				t.Errorf("Err() = %v, want ErrNonFinite", c.Err())
			}
			if c.Margin() != DefaultMargin {
				t.Errorf("Margin() = %v, want %v", c.Margin(), DefaultMargin)
			}
		})
	}

	if c := New(WithMargin(-3)); c.Err() != nil || c.Margin() != 0 {
		t.Errorf("negative margin: Margin() = %v, Err() = %v, want 0 and nil", c.Margin(), c.Err())
	}
}

func TestChartSetFillRecomputesLayout(t *testing.T) {
	c := New()
	sub := c.AddSubCategory("#336699")
	c.AddCategory("a").SetValue(1).SetSubCategoryValue(sub, 1)
	c.AddCategory("b").SetValue(1).SetSubCategoryValue(sub, 2)

	sub.SetFill("#123456")
	if err := c.Err(); err != nil {
		t.Fatalf("SetFill: %v", err)
	}

	l := c.Layout()
	if len(l.Rects) != 2 {
		t.Fatalf("got %d rects, want 2", len(l.Rects))
	}
	for _, r := range l.Rects {
		if r.Fill != "#123456" {
			t.Errorf("rect %s fill = %q, want #123456", r.ID, r.Fill)
		}
	}
	for _, lb := range l.Labels {
		if lb.Fill != "#123456" {
			t.Errorf("label %s fill = %q, want #123456", lb.RectID, lb.Fill)
		}
	}
	if len(l.Legend) != 1 || l.Legend[0].Fill != "#123456" {
		t.Errorf("Legend = %+v", l.Legend)
	}
}
