package sink

import (
	"bytes"
	"context"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/mosaic/pkg/colors"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/fonts"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/render"
	"github.com/matzehuels/mosaic/pkg/render/styles"
)

var (
	inkColor   = color.RGBA{0x55, 0x55, 0x55, 0xff}
	textColor  = color.RGBA{0x33, 0x33, 0x33, 0xff}
	whiteColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
	legend  bool
	viaSVG  bool
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGLegend draws the legend row.
func WithPNGLegend() PNGOption { return func(r *pngRenderer) { r.legend = true } }

// WithPNGSVGOptions rasterises the SVG output through rsvg-convert instead of
// drawing natively. Use it for styles that only exist as SVG markup.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts; r.viaSVG = true }
}

// RenderPNG rasterises the layout. By default the scene is drawn directly
// with the Go fonts, which needs no external tools.
func RenderPNG(ctx context.Context, l mosaic.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", r.scale)
	}
	if r.viaSVG {
		return render.ToPNG(ctx, RenderSVG(l, r.svgOpts...), r.scale)
	}
	return drawPNG(BuildScene(l, r.legend), r.scale)
}

func drawPNG(s Scene, scale float64) ([]byte, error) {
	dc := gg.NewContext(int(s.Width*scale+0.5), int(s.Height*scale+0.5))
	dc.Scale(scale, scale)
	dc.SetColor(whiteColor)
	dc.Clear()

	for _, r := range s.Rects {
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.SetColor(colors.RGBA(r.Fill))
		dc.FillPreserve()
		dc.SetColor(whiteColor)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	dc.SetColor(inkColor)
	dc.SetLineWidth(1)
	for _, a := range s.Axes {
		dc.DrawLine(a.X1, a.Y1, a.X2, a.Y2)
		dc.Stroke()
	}

	tickFace, err := fonts.Face(fonts.Regular, styles.TickFontSize)
	if err != nil {
		return nil, err
	}
	boldFace, err := fonts.Face(fonts.Bold, styles.TickFontSize)
	if err != nil {
		return nil, err
	}
	for _, t := range s.Ticks {
		x2, y2, tx, ty, anchor := styles.TickGeometry(t)
		dc.SetColor(inkColor)
		dc.DrawLine(t.X, t.Y, x2, y2)
		dc.Stroke()
		if t.Major {
			dc.SetFontFace(boldFace)
		} else {
			dc.SetFontFace(tickFace)
		}
		dc.SetColor(textColor)
		dc.DrawStringAnchored(t.Text, tx, ty, anchorX(anchor), 0)
	}

	for _, a := range s.Axes {
		if a.Title == "" {
			continue
		}
		x, y, anchor := styles.AxisTitlePosition(a)
		dc.SetFontFace(boldFace)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(a.Title, x, y, anchorX(anchor), 0)
	}

	for _, l := range s.Labels {
		if !styles.LabelFits(l) {
			continue
		}
		face, err := fonts.Face(fonts.Regular, styles.FontSize(l))
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetColor(colors.RGBA(colors.TextOn(l.Fill)))
		dc.DrawStringAnchored(l.Text, l.CX, l.CY, 0.5, 0.35)
	}

	texts := s.Legend
	if s.Title != nil {
		texts = append([]styles.Text{*s.Title}, texts...)
	}
	for _, t := range texts {
		if err := drawText(dc, t); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func drawText(dc *gg.Context, t styles.Text) error {
	w := fonts.Regular
	if t.Bold {
		w = fonts.Bold
	}
	face, err := fonts.Face(w, t.Size)
	if err != nil {
		return err
	}
	x := t.X
	if t.Swatch != "" {
		dc.DrawRectangle(x, t.Y-t.Size*0.85, t.Size, t.Size)
		dc.SetColor(colors.RGBA(t.Swatch))
		dc.Fill()
		x += t.Size * 1.4
	}
	dc.SetFontFace(face)
	if t.Fill != "" {
		dc.SetColor(colors.RGBA(t.Fill))
	} else {
		dc.SetColor(textColor)
	}
	dc.DrawStringAnchored(t.Text, x, t.Y, anchorX(t.Anchor), 0)
	return nil
}

func anchorX(a styles.Anchor) float64 {
	switch a {
	case styles.AnchorMiddle:
		return 0.5
	case styles.AnchorEnd:
		return 1
	default:
		return 0
	}
}
