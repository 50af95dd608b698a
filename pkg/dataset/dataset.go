// Package dataset loads and saves chart definitions.
//
// A dataset is a [mosaic.Definition] stored as TOML, YAML or JSON. The format
// is chosen by file extension; URLs are fetched through [httputil.Fetcher].
// Every loaded definition is validated before it is returned, so callers can
// build a chart from it without further checks.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mosaic/pkg/colors"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/httputil"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/observability"
)

// Format is a dataset serialization format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTOML, FormatYAML, FormatJSON}

// FormatFromPath picks the format from a file name or URL path.
func FormatFromPath(p string) (Format, error) {
	if errors.IsURL(p) {
		p = strings.SplitN(strings.SplitN(p, "?", 2)[0], "#", 2)[0]
		p = path.Base(p)
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset extension %q (want .toml, .yaml, .yml or .json)", filepath.Ext(p))
	}
}

// Parse decodes and validates a definition.
func Parse(data []byte, format Format) (mosaic.Definition, error) {
	var def mosaic.Definition
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &def)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&def)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&def)
	default:
		return def, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	if err != nil {
		return def, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode %s dataset", format)
	}
	return def, Validate(def)
}

// Marshal encodes a definition.
func Marshal(def mosaic.Definition, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(def); err != nil {
			return nil, err
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatJSON:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	return buf.Bytes(), nil
}

// ReadFile loads a definition from a local file.
func ReadFile(name string) (mosaic.Definition, error) {
	format, err := FormatFromPath(name)
	if err != nil {
		return mosaic.Definition{}, err
	}
	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return mosaic.Definition{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s not found", name)
	}
	if err != nil {
		return mosaic.Definition{}, fmt.Errorf("read %s: %w", name, err)
	}
	return Parse(data, format)
}

// WriteFile saves a definition in the format implied by name.
func WriteFile(def mosaic.Definition, name string) error {
	format, err := FormatFromPath(name)
	if err != nil {
		return err
	}
	data, err := Marshal(def, format)
	if err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}

// Load reads a definition from a file path or an http(s) URL. A nil fetcher
// is only allowed for local files.
func Load(ctx context.Context, src string, f *httputil.Fetcher) (mosaic.Definition, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src)
	start := time.Now()

	def, err := load(ctx, src, f)
	hooks.OnLoadComplete(ctx, src, len(def.Categories), time.Since(start), err)
	return def, err
}

func load(ctx context.Context, src string, f *httputil.Fetcher) (mosaic.Definition, error) {
	if !errors.IsURL(src) {
		return ReadFile(src)
	}
	format, err := FormatFromPath(src)
	if err != nil {
		return mosaic.Definition{}, err
	}
	if f == nil {
		f = httputil.NewFetcher(nil, nil)
	}
	data, err := f.Get(ctx, src)
	if err != nil {
		return mosaic.Definition{}, err
	}
	return Parse(data, format)
}

// Validate checks a definition for problems the chart itself would silently
// tolerate: empty or duplicate identifiers, values referring to unknown
// subcategories, unparsable fills and invalid numbers.
func Validate(def mosaic.Definition) error {
	if def.Title != "" {
		if err := errors.ValidateName("title", def.Title); err != nil {
			return err
		}
	}
	if def.Margin != nil && (*def.Margin < 0 || !finite(*def.Margin)) {
		return errors.New(errors.ErrCodeInvalidValue, "margin must be a non-negative number, got %v", *def.Margin)
	}

	subs := make(map[string]bool, len(def.SubCategories))
	for i, s := range def.SubCategories {
		if s.ID == "" {
			return errors.New(errors.ErrCodeInvalidDataset, "subcategory %d has no id", i+1)
		}
		if err := errors.ValidateID(s.ID); err != nil {
			return err
		}
		if subs[s.ID] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate subcategory id %q", s.ID)
		}
		subs[s.ID] = true
		if s.Name != "" {
			if err := errors.ValidateName("subcategory name", s.Name); err != nil {
				return err
			}
		}
		if s.Fill != "" && !colors.Valid(s.Fill) {
			return errors.New(errors.ErrCodeInvalidDataset, "subcategory %q: invalid fill %q", s.ID, s.Fill)
		}
	}

	cats := make(map[string]bool, len(def.Categories))
	for _, c := range def.Categories {
		if err := errors.ValidateName("category name", c.Name); err != nil {
			return err
		}
		if cats[c.Name] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate category %q", c.Name)
		}
		cats[c.Name] = true
		if err := validateValue("category "+c.Name, c.Value); err != nil {
			return err
		}
		for _, v := range c.Values {
			if !subs[v.SubCategory] {
				return errors.New(errors.ErrCodeInvalidDataset, "category %q references unknown subcategory %q", c.Name, v.SubCategory)
			}
			if err := validateValue(fmt.Sprintf("category %s/%s", c.Name, v.SubCategory), v.Value); err != nil {
				return err
			}
		}
	}

	for _, y := range def.YCategories {
		if err := errors.ValidateName("y-category name", y.Name); err != nil {
			return err
		}
		if err := validateValue("y-category "+y.Name, y.Value); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(what string, v float64) error {
	if !finite(v) {
		return errors.New(errors.ErrCodeInvalidValue, "%s: value must be finite", what)
	}
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidValue, "%s: value must not be negative, got %v", what, v)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
