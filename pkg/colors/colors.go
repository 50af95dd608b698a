// Package colors parses and converts the fill colours used by mosaic charts.
//
// Fills are accepted as CSS-style hex ("#c80000", "#f00") or functional RGB
// ("rgb(200, 0, 0)") strings and normalised to lowercase "#rrggbb". Colour math
// (luminance, blending) is delegated to go-colorful.
package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the default series palette, assigned round-robin to
// subcategories that are added without an explicit fill.
var Palette = []string{
	"#4c72b0",
	"#dd8452",
	"#55a868",
	"#c44e52",
	"#8172b3",
	"#937860",
	"#da8bc3",
	"#8c8c8c",
}

// Default returns the palette colour for the n-th series.
func Default(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// Parse parses a fill string into a colour.
func Parse(s string) (colorful.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
		}
		return c, nil
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGB(s[len("rgb(") : len(s)-1])
	default:
		return colorful.Color{}, fmt.Errorf("invalid colour %q (want #rrggbb or rgb(r, g, b))", s)
	}
}

func parseRGB(body string) (colorful.Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return colorful.Color{}, fmt.Errorf("invalid rgb colour %q: want 3 components", body)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return colorful.Color{}, fmt.Errorf("invalid rgb component %q", strings.TrimSpace(p))
		}
		ch[i] = uint8(v)
	}
	return colorful.Color{R: float64(ch[0]) / 255, G: float64(ch[1]) / 255, B: float64(ch[2]) / 255}, nil
}

// Normalize returns the canonical "#rrggbb" form of s.
func Normalize(s string) (string, error) {
	c, err := Parse(s)
	if err != nil {
		return "", err
	}
	return c.Clamped().Hex(), nil
}

// Valid reports whether s parses as a colour.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// RGBA converts s to an opaque color.RGBA, falling back to mid grey for
// unparsable input.
func RGBA(s string) color.RGBA {
	c, err := Parse(s)
	if err != nil {
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// TextOn picks black or white text for legibility on the given background,
// based on the CIE L* lightness of the fill.
func TextOn(background string) string {
	c, err := Parse(background)
	if err != nil {
		return "#ffffff"
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return "#1a1a1a"
	}
	return "#ffffff"
}

// Darken blends s towards black by amount (0..1). Used for outlines.
func Darken(s string, amount float64) string {
	c, err := Parse(s)
	if err != nil {
		return s
	}
	black := colorful.Color{}
	return c.BlendLab(black, amount).Clamped().Hex()
}
