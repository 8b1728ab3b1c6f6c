package sales

import (
	"strings"

	"github.com/chillzone/chillzone-pos/internal/shared"
)

// Result is one page of filtered sales history.
type Result struct {
	Sales       []Record          `json:"sales"`
	Count       int               `json:"count"`
	TotalAmount float64           `json:"totalAmount"`
	Pagination  shared.Pagination `json:"pagination"`
}

// Apply filters records, totals the matches and slices out the requested
// page. Record order is preserved.
func Apply(records []Record, filter Filter) Result {
	matched := Match(records, filter)
	var total float64
	for _, r := range matched {
		total += r.TotalAmount
	}
	page, pagination := shared.Paginate(matched, filter.Page, filter.PerPage)
	return Result{Sales: page, Count: len(matched), TotalAmount: total, Pagination: pagination}
}

// Match returns every record passing filter.
func Match(records []Record, filter Filter) []Record {
	needle := strings.ToLower(strings.TrimSpace(filter.Receipt))
	var until = filter.To
	if !until.IsZero() {
		until = until.AddDate(0, 0, 1)
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if needle != "" && !strings.Contains(strings.ToLower(r.ReceiptPath), needle) {
			continue
		}
		if filter.PaymentType != "" && r.PaymentType != filter.PaymentType {
			continue
		}
		if filter.CustomerType != "" && r.CustomerType != filter.CustomerType {
			continue
		}
		if filter.SoldBy != "" && r.SoldBy != filter.SoldBy {
			continue
		}
		if !filter.From.IsZero() && r.SaleDate.Before(filter.From) {
			continue
		}
		if !until.IsZero() && !r.SaleDate.Before(until) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CollectOptions gathers distinct payment types, customer types and sellers
// in first-seen order.
func CollectOptions(records []Record) Options {
	opts := Options{PaymentTypes: []string{}, CustomerTypes: []string{}, Sellers: []string{}}
	seen := map[string]map[string]bool{"p": {}, "c": {}, "s": {}}
	add := func(kind, value string, dst *[]string) {
		if value == "" || seen[kind][value] {
			return
		}
		seen[kind][value] = true
		*dst = append(*dst, value)
	}
	for _, r := range records {
		add("p", r.PaymentType, &opts.PaymentTypes)
		add("c", r.CustomerType, &opts.CustomerTypes)
		add("s", r.SoldBy, &opts.Sellers)
	}
	return opts
}
