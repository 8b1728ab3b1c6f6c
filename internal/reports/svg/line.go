package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a revenue series as an SVG line chart with a shaded area.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	f, err := newFrame(width, height, series, opts.Style)
	if err != nil {
		return "", err
	}
	stroke := fallback(opts.StrokeColor, "#7c3aed")
	fill := fallback(opts.FillColor, "rgba(124,58,237,0.12)")

	xs := make([]float64, len(series))
	for i := range series {
		if len(series) == 1 {
			xs[i] = f.padding + f.plotW/2
			continue
		}
		xs[i] = f.padding + float64(i)*f.plotW/float64(len(series)-1)
	}

	var path strings.Builder
	for i, v := range series {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f", cmd, xs[i], f.y(v))
	}

	var b strings.Builder
	f.open(&b, "line", fallback(opts.Title, "Line chart"), fallback(opts.Description, "Revenue trend"))
	fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`, path.String(), xs[len(xs)-1], f.y(0), xs[0], f.y(0), fill)
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, path.String(), stroke)
	if opts.ShowDots {
		for i, v := range series {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"><title>%s</title></circle>`, xs[i], f.y(v), stroke, template.HTMLEscapeString(labels[i]+": "+formatTick(v)))
		}
	}
	for i, label := range labels {
		f.label(&b, xs[i], label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
