// Package export writes the reports dashboard as CSV or PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/chillzone/chillzone-pos/internal/reports"
)

// Sections accepted by WriteCSV.
const (
	SectionAll     = "all"
	SectionWeekly  = "weekly"
	SectionMonthly = "monthly"
	SectionYearly  = "yearly"
	SectionTop     = "top"
)

// ValidSection reports whether name is a known CSV section.
func ValidSection(name string) bool {
	switch name {
	case SectionAll, SectionWeekly, SectionMonthly, SectionYearly, SectionTop:
		return true
	}
	return false
}

// WriteCSV writes one section of the dashboard, or all of them as
// Section,Label,Value rows.
func WriteCSV(w io.Writer, d reports.Dashboard, section string) error {
	switch section {
	case SectionWeekly:
		return WriteSeriesCSV(w, "Date", d.Weekly)
	case SectionMonthly:
		return WriteSeriesCSV(w, "Month", d.Monthly)
	case SectionYearly:
		return WriteSeriesCSV(w, "Year", d.Yearly)
	case SectionTop:
		return WriteTopProductsCSV(w, d.TopProducts)
	case SectionAll, "":
		return WriteDashboardCSV(w, d)
	default:
		return fmt.Errorf("export: unknown section %q", section)
	}
}

// WriteSeriesCSV emits one series with its bucket labels.
func WriteSeriesCSV(w io.Writer, labelHeader string, series reports.Series) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{labelHeader, "Amount"}); err != nil {
		return err
	}
	for _, b := range series.Buckets {
		if err := writer.Write([]string{b.Label, formatFloat(b.Amount)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopProductsCSV emits the best-seller ranking.
func WriteTopProductsCSV(w io.Writer, top []reports.ProductCount) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Rank", "Product", "Quantity"}); err != nil {
		return err
	}
	for i, p := range top {
		if err := writer.Write([]string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(p.Quantity)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardCSV flattens the whole dashboard into one sheet.
func WriteDashboardCSV(w io.Writer, d reports.Dashboard) error {
	writer := csv.NewWriter(w)
	rows := [][]string{
		{"Section", "Label", "Value"},
		{"Summary", "Week " + d.WeekRange, formatFloat(d.Summary.Weekly)},
		{"Summary", "Monthly", formatFloat(d.Summary.Monthly)},
		{"Summary", "Yearly", formatFloat(d.Summary.Yearly)},
	}
	for _, part := range []struct {
		name   string
		series reports.Series
	}{{"Weekly", d.Weekly}, {"Monthly", d.Monthly}, {"Yearly", d.Yearly}} {
		for _, b := range part.series.Buckets {
			rows = append(rows, []string{part.name, b.Label, formatFloat(b.Amount)})
		}
	}
	for _, p := range d.TopProducts {
		rows = append(rows, []string{"Top Products", p.Name, strconv.Itoa(p.Quantity)})
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
