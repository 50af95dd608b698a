// Package fonts provides the fonts used by the SVG and PNG sinks.
//
// SVG output only references fonts by CSS family name. PNG output is
// rasterised in-process and needs real glyphs: the Go fonts from
// golang.org/x/image are embedded in the binary and parsed with
// golang/freetype, so no system fonts are required.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family for the simple style.
const FontFamily = `Go, 'Helvetica Neue', Helvetica, Arial, sans-serif`

// HandFontFamily is the CSS font-family for the hand-drawn style. Viewers
// without the xkcd font fall back to other handwriting faces.
const HandFontFamily = `'xkcd Script', 'Comic Sans MS', 'Bradley Hand', 'Segoe Script', sans-serif`

// Weight selects a Go font face.
type Weight int

// Font weights.
const (
	Regular Weight = iota
	Bold
)

var (
	parseOnce sync.Once
	regular   *truetype.Font
	bold      *truetype.Font
	parseErr  error
)

func load() {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse Go Regular: %w", parseErr)
			return
		}
		if bold, parseErr = truetype.Parse(gobold.TTF); parseErr != nil {
			parseErr = fmt.Errorf("parse Go Bold: %w", parseErr)
		}
	})
}

// Font returns the parsed font for a weight.
func Font(w Weight) (*truetype.Font, error) {
	load()
	if parseErr != nil {
		return nil, parseErr
	}
	if w == Bold {
		return bold, nil
	}
	return regular, nil
}

// Face returns a font face of the given size in points at 72 DPI, so that
// one point equals one pixel.
func Face(w Weight, size float64) (font.Face, error) {
	f, err := Font(w)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
