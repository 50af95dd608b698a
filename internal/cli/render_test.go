package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/mosaic/pkg/dataset"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and empties", " svg, ,json ", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, source, want string
	}{
		{"", "data/chart.yaml", "data/chart"},
		{"", "chart.layout.json", "chart"},
		{"", "caffeine", "caffeine"},
		{"", "https://example.com/sets/survey.toml", "survey"},
		{"", "https://example.com/", "example.com"},
		{"out/result.svg", "chart.json", "out/result"},
		{"out/result", "chart.json", "out/result"},
		{"out/result.v2", "chart.json", "out/result.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.source); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.source, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	single := filepath.Join(dir, "custom.name")
	paths, err := writeArtifacts(artifactWriteParams{artifacts: artifacts, formats: []string{"svg"}, source: "x", output: single})
	if err != nil || len(paths) != 1 || paths[0] != single {
		t.Fatalf("single = %v, %v", paths, err)
	}

	base := filepath.Join(dir, "nested", "chart")
	paths, err = writeArtifacts(artifactWriteParams{artifacts: artifacts, formats: []string{"svg", "json"}, source: "x", output: base})
	if err != nil {
		t.Fatalf("multiple: %v", err)
	}
	want := []string{base + ".svg", base + ".json"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if data, _ := os.ReadFile(base + ".json"); string(data) != "{}" {
		t.Errorf("json content = %q", data)
	}

	if _, err := writeArtifacts(artifactWriteParams{artifacts: artifacts, formats: []string{"png"}, output: single}); err == nil {
		t.Error("missing artifact should fail")
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return Execute(context.Background(), args, io.Discard)
}

func TestExecuteDemo(t *testing.T) {
	base := filepath.Join(t.TempDir(), "demo")
	if err := execute(t, "demo", "-f", "svg,json", "-o", base, "--no-cache"); err != nil {
		t.Fatalf("demo: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil || !bytes.Contains(svg, []byte("<svg")) {
		t.Fatalf("svg output: %v", err)
	}
	if !bytes.Contains(svg, []byte("Controlled Group Testing")) {
		t.Error("svg is missing the title")
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	l, err := mosaic.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(l.Rects) != 9 {
		t.Errorf("json output has %d rects, want 9", len(l.Rects))
	}
}

func TestExecuteRenderFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "chart.yaml")
	if err := dataset.WriteFile(dataset.Caffeine(), src); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "chart.svg")
	if err := execute(t, "render", src, "-o", out, "--style", "handdrawn", "--legend", "--margin", "0"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("missing output: %v", err)
	}
}

func TestExecuteLayoutVisualize(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "caffeine.layout.json")
	if err := execute(t, "layout", dataset.CaffeineName, "-o", layoutPath, "--width", "400", "--height", "300"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := mosaic.ReadLayoutFile(layoutPath)
	if err != nil {
		t.Fatal(err)
	}
	if l.Frame.Width != 400 {
		t.Errorf("frame = %+v", l.Frame)
	}

	png := filepath.Join(dir, "out.png")
	if err := execute(t, "visualize", layoutPath, "-f", "png", "-o", png, "--scale", "1"); err != nil {
		t.Fatalf("visualize: %v", err)
	}
	data, err := os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("png output invalid: %v", err)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"demo", "-f", "gif", "--no-cache"}, "gif"},
		{"bad style", []string{"demo", "--style", "neon", "--no-cache"}, "neon"},
		{"bad type", []string{"demo", "-t", "pie", "--no-cache"}, "pie"},
		{"missing file", []string{"render", "does-not-exist.json", "--no-cache"}, "does-not-exist"},
		{"bad store", []string{"serve", "--store", "disk"}, "invalid store"},
		{"mongo without uri", []string{"serve", "--store", "mongo", "--mongo-uri", ""}, "mongo-uri"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestSetCLIDefaults(t *testing.T) {
	var opts pipeline.Options
	setCLIDefaults(&opts)
	if opts.Width != pipeline.DefaultWidth || opts.Style != pipeline.DefaultStyle || opts.Seed != pipeline.DefaultSeed {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.VizType != mosaic.VizTypeMosaic {
		t.Errorf("VizType = %q", opts.VizType)
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":8080"); got != "localhost:8080" {
		t.Errorf("displayAddr(:8080) = %q", got)
	}
	if got := displayAddr("0.0.0.0:9000"); got != "0.0.0.0:9000" {
		t.Errorf("displayAddr = %q", got)
	}
}
