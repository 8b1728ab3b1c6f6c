package catalog

import (
	"fmt"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
)

// Product is a purchasable item as served by the backend catalog.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	SellingPrice  float64 `json:"sellingPrice"`
	PurchasePrice float64 `json:"purchasePrice"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"minStock"`
	CategoryID    int64   `json:"categoryId"`
	BrandID       int64   `json:"brandId"`
	Volume        string  `json:"volume"`
}

// IsLowStock reports whether stock has fallen to the reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// IsOutOfStock reports whether nothing is left on hand.
func (p Product) IsOutOfStock() bool {
	return p.Stock == 0
}

// Category groups products on the till.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Brand identifies the maker of a product.
type Brand struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProductForm is the create/update payload for a product.
type ProductForm struct {
	Name          string  `json:"name" validate:"required,max=200"`
	CategoryID    int64   `json:"categoryId" validate:"required,gt=0"`
	BrandID       int64   `json:"brandId" validate:"required,gt=0"`
	SellingPrice  float64 `json:"sellingPrice" validate:"gte=0"`
	PurchasePrice float64 `json:"purchasePrice" validate:"gte=0"`
	Stock         int     `json:"stock" validate:"gte=0"`
	MinStock      int     `json:"minStock" validate:"gte=0"`
	Volume        string  `json:"volume" validate:"max=50"`
}

// NamedForm is the create/update payload for categories and brands.
type NamedForm struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// StockInput records goods received for a product. Prices are only sent
// when the delivery changes them.
type StockInput struct {
	Quantity      int      `json:"quantity" validate:"required,gt=0"`
	Vendor        string   `json:"vendor" validate:"max=200"`
	ReceiveDate   string   `json:"receiveDate" validate:"omitempty,datetime=2006-01-02"`
	PurchasePrice *float64 `json:"purchasePrice,omitempty" validate:"omitempty,gte=0"`
	SellingPrice  *float64 `json:"sellingPrice,omitempty" validate:"omitempty,gte=0"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search     string
	CategoryID int64
	BrandID    int64
	Page       int
	PerPage    int
}

// ErrInvalidID indicates a missing identifier.
var ErrInvalidID = fmt.Errorf("catalog: id must be positive: %w", httpx.ErrValidation)
