// Package reportshttp serves the reports dashboard, its charts and exports.
package reportshttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/reports"
	"github.com/chillzone/chillzone-pos/internal/reports/export"
	"github.com/chillzone/chillzone-pos/internal/reports/svg"
)

const (
	requestTimeout = 5 * time.Second
	pdfTimeout     = 30 * time.Second
	// DefaultExportLimit is the number of exports allowed per minute per user.
	DefaultExportLimit = 10
)

// DashboardService computes dashboards for a reference date.
type DashboardService interface {
	Dashboard(ctx context.Context, ref time.Time) (reports.Dashboard, error)
	Location() *time.Location
}

// PDFService renders a dashboard to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, d reports.Dashboard) ([]byte, error)
}

// Handler coordinates HTTP requests for the reports dashboard.
type Handler struct {
	logger      *slog.Logger
	service     DashboardService
	pdf         PDFService
	exportLimit int
	csvPool     sync.Pool
}

// NewHandler constructs the reports HTTP handler. pdf may be nil when no
// renderer is configured; exportLimit <= 0 means DefaultExportLimit.
func NewHandler(logger *slog.Logger, service DashboardService, pdf PDFService, exportLimit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if exportLimit <= 0 {
		exportLimit = DefaultExportLimit
	}
	h := &Handler{logger: logger, service: service, pdf: pdf, exportLimit: exportLimit}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r, requestTimeout)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	chart := chi.URLParam(r, "chart")
	if chart != "weekly" && chart != "monthly" && chart != "yearly" && chart != "top" {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown chart "+chart)
		return
	}
	d, ok := h.load(w, r, requestTimeout)
	if !ok {
		return
	}

	var (
		out template.HTML
		err error
	)
	switch chart {
	case "weekly":
		out, err = svg.Line(0, 0, d.Weekly.Amounts(), d.Weekly.Labels(), svg.LineOpts{Title: "Weekly Sales", Description: "Week " + d.WeekRange, ShowDots: true})
	case "monthly":
		out, err = svg.Line(0, 0, d.Monthly.Amounts(), d.Monthly.Labels(), svg.LineOpts{Title: "Monthly Sales", ShowDots: true})
	case "yearly":
		out, err = svg.Line(0, 0, d.Yearly.Amounts(), d.Yearly.Labels(), svg.LineOpts{Title: "Yearly Sales", ShowDots: true})
	case "top":
		names, qty := export.TopProductColumns(d.TopProducts)
		if len(names) == 0 {
			names, qty = []string{"No sales"}, []float64{0}
		}
		out, err = svg.Bars(0, 0, qty, names, svg.BarOpts{Title: "Top Products", ShowValues: true})
	}
	if err != nil {
		h.handleServerError(w, "render chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(out))
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	section := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("section")))
	if section == "" {
		section = export.SectionAll
	}
	if !export.ValidSection(section) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "unknown section "+section)
		return
	}
	d, ok := h.load(w, r, requestTimeout)
	if !ok {
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	if err := export.WriteCSV(buf, d, section); err != nil {
		h.handleServerError(w, "write csv", err)
		return
	}

	filename := fmt.Sprintf("sales-report-%s-%s.csv", section, d.RefDate)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("stream csv", slog.Any("error", err))
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "pdf export is not configured")
		return
	}
	d, ok := h.load(w, r, pdfTimeout)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()
	pdf, err := h.pdf.RenderDashboard(ctx, d)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Error", "could not render pdf")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"sales-report-%s.pdf\"", d.RefDate))
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("stream pdf", slog.Any("error", err))
	}
}

// load parses ?ref= and fetches the dashboard, writing the error response
// itself when it fails.
func (h *Handler) load(w http.ResponseWriter, r *http.Request, timeout time.Duration) (reports.Dashboard, bool) {
	var ref time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("ref")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.service.Location())
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "ref must be YYYY-MM-DD")
			return reports.Dashboard{}, false
		}
		ref = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	d, err := h.service.Dashboard(ctx, ref)
	if err != nil {
		if errors.Is(err, httpx.ErrUpstream) || errors.Is(err, httpx.ErrUnauthorized) {
			h.logger.Warn("load dashboard", slog.Any("error", err))
			httpx.RespondError(w, err)
			return reports.Dashboard{}, false
		}
		h.handleServerError(w, "load dashboard", err)
		return reports.Dashboard{}, false
	}
	return d, true
}

func (h *Handler) handleServerError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
