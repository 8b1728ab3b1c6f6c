package catalog

import "strings"

// FilterProducts applies the listing filters: case-insensitive name
// search, then exact category and brand matches. Zero-valued filters match
// everything. Input order is preserved.
func FilterProducts(products []Product, filter ProductFilter) []Product {
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if filter.CategoryID != 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.BrandID != 0 && p.BrandID != filter.BrandID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// LowStock returns products at or below their minimum stock level.
func LowStock(products []Product) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}

// OutOfStock returns products with nothing left on hand.
func OutOfStock(products []Product) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.IsOutOfStock() {
			out = append(out, p)
		}
	}
	return out
}

// FilterCategories keeps categories whose name contains search.
func FilterCategories(categories []Category, search string) []Category {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return categories
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// FilterBrands keeps brands whose name contains search.
func FilterBrands(brands []Brand, search string) []Brand {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return brands
	}
	out := make([]Brand, 0, len(brands))
	for _, b := range brands {
		if strings.Contains(strings.ToLower(b.Name), needle) {
			out = append(out, b)
		}
	}
	return out
}
