package tree

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/mosaic/pkg/mosaic"
)

func testChart(t *testing.T) *mosaic.Chart {
	t.Helper()
	def := mosaic.Definition{
		Title: "Groups",
		SubCategories: []mosaic.SubCategoryDef{
			{ID: "lo", Name: "Low", Fill: "#c80000"},
			{ID: "hi", Fill: "#00b400"},
		},
		Categories: []mosaic.CategoryDef{
			{Name: "A", Value: 3, Values: []mosaic.ValueDef{{SubCategory: "lo", Value: 1}, {SubCategory: "hi", Value: 3}}},
			{Name: "B", Value: 1, Values: []mosaic.ValueDef{{SubCategory: "lo", Value: 0}, {SubCategory: "hi", Value: 2}}},
		},
	}
	c, err := def.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testChart(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`root [label="Groups"`,
		`c0 [label="A\n75%"]`,
		`c1 [label="B\n25%"]`,
		`c0_0 [label="Low\n25%", fillcolor="#c80000", fontcolor="#ffffff"]`,
		`c0_1 [label="hi\n75%"`,
		"root -> c0;",
		"c1 -> c1_0;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTOptions(t *testing.T) {
	dot := ToDOT(testChart(t), Options{Detailed: true, HideEmpty: true})
	if !strings.Contains(dot, `c0 [label="A\n75%\n3"]`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if strings.Contains(dot, "c1_0") {
		t.Errorf("empty segment not hidden:\n%s", dot)
	}
}

func TestBuildLayout(t *testing.T) {
	l := BuildLayout(testChart(t), Options{})
	if !l.IsTree() || l.DOT == "" || l.Title != "Groups" || len(l.Legend) != 2 {
		t.Errorf("layout = %+v", l)
	}
	if len(l.Rects) != 0 {
		t.Error("tree layout should not carry mosaic geometry")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testChart(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("root element not normalized: %.200s", svg)
	}
	if !bytes.Contains(svg, []byte("Groups")) {
		t.Error("title missing from svg")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(context.Background(), ToDOT(testChart(t), Options{}))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("decode: %v", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if string(normalizeViewBox([]byte("<svg/>"))) != "<svg/>" {
		t.Error("svg without viewBox should pass through")
	}
}
