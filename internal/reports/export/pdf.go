package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/chillzone/chillzone-pos/internal/reports"
	"github.com/chillzone/chillzone-pos/internal/reports/svg"
)

// Renderer turns an HTML document into PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// PDFExporter renders the dashboard as a printable PDF.
type PDFExporter struct {
	Renderer  Renderer
	StoreName string
}

// RenderDashboard builds the dashboard HTML and hands it to the renderer.
func (p *PDFExporter) RenderDashboard(ctx context.Context, d reports.Dashboard) ([]byte, error) {
	if p == nil || p.Renderer == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	html, err := BuildHTML(d, p.StoreName)
	if err != nil {
		return nil, err
	}
	return p.Renderer.RenderHTML(ctx, html)
}

type pdfView struct {
	Store       string
	D           reports.Dashboard
	Weekly      template.HTML
	Monthly     template.HTML
	Yearly      template.HTML
	Top         template.HTML
	GeneratedAt string
}

var pdfTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"amount": FormatAmount,
	"inc":    func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Store}} Sales Report</title>
<style>
body{font-family:sans-serif;margin:24px;color:#0f172a}
h1{font-size:20px;margin-bottom:4px}
.meta{color:#475569;font-size:12px}
.cards{display:flex;gap:12px;margin:16px 0}
.card{flex:1;border:1px solid #e2e8f0;border-radius:6px;padding:12px}
.card b{display:block;font-size:18px}
section{margin-bottom:20px;page-break-inside:avoid}
table{width:100%;border-collapse:collapse}
th,td{border:1px solid #e2e8f0;padding:6px;text-align:left}
td.num{text-align:right}
</style></head><body>
<h1>{{.Store}} Sales Report</h1>
<p class="meta">Week {{.D.WeekRange}} · generated {{.GeneratedAt}}</p>
<div class="cards">
<div class="card">This week<b>KES {{amount .D.Summary.Weekly}}</b></div>
<div class="card">Monthly<b>KES {{amount .D.Summary.Monthly}}</b></div>
<div class="card">Yearly<b>KES {{amount .D.Summary.Yearly}}</b></div>
</div>
<section><h2>Weekly Sales</h2>{{.Weekly}}</section>
<section><h2>Monthly Sales</h2>{{.Monthly}}</section>
<section><h2>Yearly Sales</h2>{{.Yearly}}</section>
<section><h2>Top Products</h2>{{.Top}}
<table><thead><tr><th>#</th><th>Product</th><th>Quantity</th></tr></thead><tbody>
{{range $i, $p := .D.TopProducts}}<tr><td>{{inc $i}}</td><td>{{$p.Name}}</td><td class="num">{{$p.Quantity}}</td></tr>
{{else}}<tr><td colspan="3">No sales yet</td></tr>
{{end}}</tbody></table></section>
</body></html>`))

// BuildHTML renders the dashboard page that is sent to Gotenberg.
func BuildHTML(d reports.Dashboard, storeName string) ([]byte, error) {
	if storeName == "" {
		storeName = "Chillzone"
	}
	view := pdfView{Store: storeName, D: d, GeneratedAt: d.GeneratedAt.Format(time.RFC1123)}

	var err error
	if view.Weekly, err = svg.Line(0, 0, d.Weekly.Amounts(), d.Weekly.Labels(), svg.LineOpts{Title: "Weekly Sales", ShowDots: true}); err != nil {
		return nil, err
	}
	if view.Monthly, err = svg.Line(0, 0, d.Monthly.Amounts(), d.Monthly.Labels(), svg.LineOpts{Title: "Monthly Sales"}); err != nil {
		return nil, err
	}
	if view.Yearly, err = svg.Line(0, 0, d.Yearly.Amounts(), d.Yearly.Labels(), svg.LineOpts{Title: "Yearly Sales"}); err != nil {
		return nil, err
	}
	if len(d.TopProducts) > 0 {
		names, qty := TopProductColumns(d.TopProducts)
		if view.Top, err = svg.Bars(0, 0, qty, names, svg.BarOpts{Title: "Top Products", ShowValues: true}); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdfTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TopProductColumns splits the ranking into chart labels and values.
func TopProductColumns(top []reports.ProductCount) ([]string, []float64) {
	names := make([]string, len(top))
	qty := make([]float64, len(top))
	for i, p := range top {
		names[i] = p.Name
		qty[i] = float64(p.Quantity)
	}
	return names, qty
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders v with thousands separators and two decimals.
func FormatAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}
