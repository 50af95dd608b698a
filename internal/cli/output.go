package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// nopCloser makes os.Stdout usable as an io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a writer for path, or stdout when path is "-".
func openOutput(p string) (io.WriteCloser, error) {
	if p == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(p)
}

// basePath derives the extension-less output path. An explicit output wins,
// minus a known format extension; otherwise the name comes from the source,
// which may be a file, a URL or a built-in dataset name.
func basePath(output, source string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if errors.IsURL(source) {
		if u, err := url.Parse(source); err == nil {
			source = path.Base(u.Path)
			if source == "/" || source == "." {
				source = u.Hostname()
			}
		}
	}
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return strings.TrimSuffix(base, ".layout")
}

// artifactWriteParams describes a set of rendered artifacts to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	source    string
	output    string
}

// writeArtifacts writes each artifact in format order. A single format with
// an explicit output path is written there as-is; everything else goes to
// "<base>.<format>". It returns the written paths.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if len(p.formats) == 1 && p.output != "" {
		data, ok := p.artifacts[p.formats[0]]
		if !ok {
			return nil, fmt.Errorf("no %s output was produced", p.formats[0])
		}
		if err := writeFile(p.output, data); err != nil {
			return nil, err
		}
		return []string{p.output}, nil
	}

	base := basePath(p.output, p.source)
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s output was produced", format)
		}
		out := base + "." + format
		if err := writeFile(out, data); err != nil {
			return paths, err
		}
		paths = append(paths, out)
	}
	return paths, nil
}

func writeFile(p string, data []byte) error {
	out, err := openOutput(p)
	if err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	return out.Close()
}
