package sink

import (
	"encoding/json"

	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style  string
	seed   uint64
	legend bool
}

// WithJSONStyle records the style name so the layout can be re-rendered the
// same way.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONSeed records the handdrawn jitter seed.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// WithJSONLegend records that the legend was requested.
func WithJSONLegend() JSONOption { return func(r *jsonRenderer) { r.legend = true } }

type jsonOutput struct {
	mosaic.Layout
	Style  string `json:"style,omitempty"`
	Seed   uint64 `json:"seed,omitempty"`
	Legend bool   `json:"show_legend,omitempty"`
}

// RenderJSON exports the layout with its render options as pretty-printed
// JSON. The output is accepted by [mosaic.UnmarshalLayout], which ignores the
// render options.
func RenderJSON(l mosaic.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	return json.MarshalIndent(jsonOutput{Layout: l, Style: r.style, Seed: r.seed, Legend: r.legend}, "", "  ")
}
