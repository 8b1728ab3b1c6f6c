package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders one bar per label, used for the best-selling products.
func Bars(width, height int, values []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: values length must match labels")
	}
	f, err := newFrame(width, height, values, opts.Style)
	if err != nil {
		return "", err
	}
	color := fallback(opts.Color, "#10b981")
	slot := f.plotW / float64(len(labels))
	barWidth := slot * 0.6

	var b strings.Builder
	f.open(&b, "bar", fallback(opts.Title, "Bar chart"), fallback(opts.Description, "Comparison"))
	for i, label := range labels {
		x := f.padding + float64(i)*slot + (slot-barWidth)/2
		top, bottom := f.y(values[i]), f.y(0)
		if top > bottom {
			top, bottom = bottom, top
		}
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s"></rect>`, x, top, barWidth, bottom-top, color, template.HTMLEscapeString(label))
		if opts.ShowValues {
			fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x+barWidth/2, top-4, f.axisColor, formatTick(values[i]))
		}
		f.label(&b, x+barWidth/2, label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
