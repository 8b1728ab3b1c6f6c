package shared

import "math"

// DefaultPerPage matches the listing screens of the till.
const DefaultPerPage = 10

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	// From and To are 1-based positions shown as "Showing X to Y of Z".
	From int `json:"from"`
	To   int `json:"to"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	p := Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
	start, end := p.Bounds()
	if start < end {
		p.From = start + 1
		p.To = end
	}
	return p
}

// Bounds returns the half-open slice window for the current page, clamped
// to the total.
func (p Pagination) Bounds() (int, int) {
	if p.Total <= 0 || p.PerPage <= 0 || p.Page <= 0 {
		return 0, 0
	}
	// Compare in page units so a huge page number cannot overflow.
	if p.Page-1 > (p.Total-1)/p.PerPage {
		return p.Total, p.Total
	}
	start := (p.Page - 1) * p.PerPage
	end := p.Total
	if p.PerPage < p.Total-start {
		end = start + p.PerPage
	}
	return start, end
}

// Paginate slices items for the requested page.
func Paginate[T any](items []T, page, perPage int) ([]T, Pagination) {
	p := NewPagination(page, perPage, len(items))
	start, end := p.Bounds()
	return items[start:end], p
}
