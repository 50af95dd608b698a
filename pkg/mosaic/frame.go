package mosaic

// Default frame dimensions in pixels.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0

	// DefaultMargin is the rectangle inset in pixels.
	DefaultMargin = 4.0
)

// Padding is the space in pixels between the frame edge and the plot area.
// It holds the title, axis ticks and the legend.
type Padding struct {
	Top    float64 `json:"top" bson:"top"`
	Right  float64 `json:"right" bson:"right"`
	Bottom float64 `json:"bottom" bson:"bottom"`
	Left   float64 `json:"left" bson:"left"`
}

// DefaultPadding leaves room for the title and category ticks on top, the
// y-category names on the left and the percentage axes on the right and
// bottom.
func DefaultPadding() Padding {
	return Padding{Top: 80, Right: 60, Bottom: 70, Left: 130}
}

// Frame is the pixel canvas a chart is drawn on.
type Frame struct {
	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`
	Padding Padding `json:"padding" bson:"padding"`
}

// DefaultFrame returns an 800x600 frame with default padding.
func DefaultFrame() Frame {
	return NewFrame(DefaultWidth, DefaultHeight)
}

// NewFrame returns a frame of the given size with default padding. The
// padding shrinks proportionally when the frame is too small to hold it.
func NewFrame(width, height float64) Frame {
	p := DefaultPadding()
	if horiz := p.Left + p.Right; horiz > width/2 && width > 0 {
		k := width / 2 / horiz
		p.Left *= k
		p.Right *= k
	}
	if vert := p.Top + p.Bottom; vert > height/2 && height > 0 {
		k := height / 2 / vert
		p.Top *= k
		p.Bottom *= k
	}
	return Frame{Width: width, Height: height, Padding: p}
}

// Plot returns the plot rectangle in pixels (top-left origin).
func (f Frame) Plot() (x, y, w, h float64) {
	x = f.Padding.Left
	y = f.Padding.Top
	w = max(1, f.Width-f.Padding.Left-f.Padding.Right)
	h = max(1, f.Height-f.Padding.Top-f.Padding.Bottom)
	return x, y, w, h
}

// Scale returns the size of one pixel in chart units for each axis.
func (f Frame) Scale() Scale {
	_, _, w, h := f.Plot()
	return Scale{X: 100 / w, Y: 100 / h}
}

// ToPixel maps a point in chart units to pixel coordinates. The y axis is
// flipped so that unit 0 is the bottom of the plot.
func (f Frame) ToPixel(ux, uy float64) (px, py float64) {
	x, y, w, h := f.Plot()
	return x + ux/100*w, y + h - uy/100*h
}

// Scale is the pixel size in chart units, i.e. how many units one pixel
// covers on each axis.
type Scale struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}
