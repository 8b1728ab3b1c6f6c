// Package reports turns the sales history into revenue series, summary
// totals and a best-seller ranking for the reports dashboard.
package reports

import (
	"sort"
	"strconv"
	"time"

	"github.com/chillzone/chillzone-pos/internal/sales"
)

const (
	// DefaultStartYear is the first year of the yearly series.
	DefaultStartYear = 2025
	// DefaultYearSpan is the number of years in the yearly series.
	DefaultYearSpan = 5
	// DefaultTopN is the size of the best-seller ranking.
	DefaultTopN = 4
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Bucket is one labelled amount of a series.
type Bucket struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Series is an ordered, fixed-size run of buckets.
type Series struct {
	Buckets []Bucket `json:"buckets"`
}

// Total sums all bucket amounts.
func (s Series) Total() float64 {
	var total float64
	for _, b := range s.Buckets {
		total += b.Amount
	}
	return total
}

// Labels returns the bucket labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Label
	}
	return out
}

// Amounts returns the bucket amounts in order.
func (s Series) Amounts() []float64 {
	out := make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Amount
	}
	return out
}

// WeekStart returns midnight of the Sunday starting ref's week, in ref's
// location.
func WeekStart(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekRange labels the week containing ref as "start - end".
func WeekRange(ref time.Time) string {
	start := WeekStart(ref)
	return start.Format("2006-01-02") + " - " + start.AddDate(0, 0, 6).Format("2006-01-02")
}

// WeeklySeries sums sales of the Sunday-starting week containing ref into
// seven daily buckets labelled by date. Sales outside the week are ignored.
func WeeklySeries(records []sales.Record, ref time.Time) Series {
	loc := ref.Location()
	start := WeekStart(ref)
	end := start.AddDate(0, 0, 7)

	buckets := make([]Bucket, 7)
	for i := range buckets {
		buckets[i].Label = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	for _, r := range records {
		at := r.SaleDate.In(loc)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		buckets[at.Weekday()].Amount += r.TotalAmount
	}
	return Series{Buckets: buckets}
}

// MonthlySeries sums sales by calendar month with every year folded into
// the same twelve buckets.
func MonthlySeries(records []sales.Record, loc *time.Location) Series {
	if loc == nil {
		loc = time.Local
	}
	buckets := make([]Bucket, 12)
	for i := range buckets {
		buckets[i].Label = monthLabels[i]
	}
	for _, r := range records {
		buckets[r.SaleDate.In(loc).Month()-1].Amount += r.TotalAmount
	}
	return Series{Buckets: buckets}
}

// YearlySeries sums sales into span yearly buckets from startYear. Sales
// outside the range are dropped. Non-positive arguments take the defaults.
func YearlySeries(records []sales.Record, loc *time.Location, startYear, span int) Series {
	if loc == nil {
		loc = time.Local
	}
	if startYear <= 0 {
		startYear = DefaultStartYear
	}
	if span <= 0 {
		span = DefaultYearSpan
	}
	buckets := make([]Bucket, span)
	for i := range buckets {
		buckets[i].Label = strconv.Itoa(startYear + i)
	}
	for _, r := range records {
		idx := r.SaleDate.In(loc).Year() - startYear
		if idx < 0 || idx >= span {
			continue
		}
		buckets[idx].Amount += r.TotalAmount
	}
	return Series{Buckets: buckets}
}

// Summary holds the three headline totals. They cover different windows
// and do not add up to one another.
type Summary struct {
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// SummaryTotals sums each series.
func SummaryTotals(weekly, monthly, yearly Series) Summary {
	return Summary{
		Weekly:  weekly.Total(),
		Monthly: monthly.Total(),
		Yearly:  yearly.Total(),
	}
}

// ProductCount is a product name with units sold.
type ProductCount struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// TopProducts ranks products by units sold across all sales, keyed by
// product name. Ties keep first-encounter order. n <= 0 means DefaultTopN.
func TopProducts(records []sales.Record, n int) []ProductCount {
	if n <= 0 {
		n = DefaultTopN
	}
	index := make(map[string]int)
	counts := make([]ProductCount, 0)
	for _, r := range records {
		for _, item := range r.Items {
			i, ok := index[item.ProductName]
			if !ok {
				i = len(counts)
				index[item.ProductName] = i
				counts = append(counts, ProductCount{Name: item.ProductName})
			}
			counts[i].Quantity += item.Quantity
		}
	}
	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Quantity > counts[b].Quantity
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
