package pipeline

import (
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/render/tree"
)

// GenerateLayout builds the chart described by def and returns its layout
// for the requested visualization type.
func GenerateLayout(def mosaic.Definition, opts Options) (mosaic.Layout, error) {
	c, err := BuildChart(def, opts)
	if err != nil {
		return mosaic.Layout{}, err
	}
	if opts.IsTree() {
		return tree.BuildLayout(c, tree.Options{HideEmpty: true}), nil
	}
	return c.Layout(), nil
}

// BuildChart replays def into a chart sized by opts.
func BuildChart(def mosaic.Definition, opts Options) (*mosaic.Chart, error) {
	opts.SetLayoutDefaults()
	c, err := def.Build(
		mosaic.WithSize(opts.Width, opts.Height),
		mosaic.WithMargin(opts.MarginFor(def)),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "build chart")
	}
	return c, nil
}
