// Package svg renders the reports dashboard charts as inline SVG.
package svg

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	ShowDots    bool
	Style
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	Color       string
	ShowValues  bool
	Style
}

// Style holds the frame settings shared by every chart.
type Style struct {
	AxisColor string
	GridColor string
	Padding   float64
	TickCount int
}

// Chart defaults.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 36.0
	DefaultTicks   = 5
)
