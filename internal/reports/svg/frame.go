package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame is the plotting area of a chart with its value scale.
type frame struct {
	width, height int
	padding       float64
	plotW, plotH  float64
	minVal        float64
	maxVal        float64
	ticks         int
	axisColor     string
	gridColor     string
}

func newFrame(width, height int, values []float64, style Style) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	f := frame{
		width:     width,
		height:    height,
		padding:   style.Padding,
		ticks:     style.TickCount,
		axisColor: fallback(style.AxisColor, "#475569"),
		gridColor: fallback(style.GridColor, "#cbd5e1"),
	}
	if f.padding <= 0 {
		f.padding = DefaultPadding
	}
	if f.ticks <= 0 {
		f.ticks = DefaultTicks
	}
	f.plotW = float64(width) - 2*f.padding
	f.plotH = float64(height) - 2*f.padding
	if f.plotW <= 0 || f.plotH <= 0 {
		return frame{}, fmt.Errorf("svg: viewport too small")
	}

	// Revenue never goes negative, so the scale always includes zero.
	for _, v := range values {
		f.minVal = math.Min(f.minVal, v)
		f.maxVal = math.Max(f.maxVal, v)
	}
	if math.Abs(f.maxVal-f.minVal) < 1e-9 {
		f.maxVal = f.minVal + 1
	}
	return f, nil
}

// y maps a value to its vertical pixel position.
func (f frame) y(v float64) float64 {
	return f.padding + f.plotH - (v-f.minVal)*f.plotH/(f.maxVal-f.minVal)
}

func (f frame) bottom() float64 { return f.padding + f.plotH }

// open writes the svg element with its accessible title and description
// followed by the grid and both axes.
func (f frame) open(b *strings.Builder, kind, title, desc string) {
	titleID := makeID(title, kind+"-title")
	descID := makeID(title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, f.width, f.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(title))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(desc))

	for i := 0; i <= f.ticks; i++ {
		value := f.minVal + (f.maxVal-f.minVal)*float64(i)/float64(f.ticks)
		y := f.y(value)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, f.padding, y, f.padding+f.plotW, y, f.gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, f.padding-6, y+4, f.axisColor, formatTick(value))
	}

	fmt.Fprintf(b, `<g stroke="%s" aria-label="Axes">`, f.axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, f.padding, f.padding, f.bottom())
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, f.padding, f.y(0), f.padding+f.plotW, f.y(0))
	b.WriteString("</g>")
}

func (f frame) label(b *strings.Builder, x float64, text string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, f.bottom()+14, f.axisColor, template.HTMLEscapeString(text))
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

// formatTick abbreviates axis values (1.5k, 2.0M).
func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case math.Abs(v-math.Round(v)) < 1e-9:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
