package sales

import (
	"encoding/json"
	"time"
)

// Record is a completed sale as returned by the backend.
type Record struct {
	ID           int64     `json:"id"`
	SaleDate     time.Time `json:"saleDate"`
	Items        []Item    `json:"items"`
	Subtotal     float64   `json:"subtotal"`
	Discount     float64   `json:"discount"`
	TotalAmount  float64   `json:"totalAmount"`
	PaymentType  string    `json:"paymentType"`
	CustomerType string    `json:"customerType"`
	SoldBy       string    `json:"soldBy"`
	ReceiptPath  string    `json:"receiptPath"`
}

// Item is one product line of a sale.
type Item struct {
	ID           int64   `json:"id,omitempty"`
	ProductID    int64   `json:"productId"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	SellingPrice float64 `json:"sellingPrice"`
	Subtotal     float64 `json:"subtotal"`
}

// UnmarshalJSON accepts the product name either flat or nested under the
// included Product association.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		Product *struct {
			Name string `json:"name"`
		} `json:"Product"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Item(raw.plain)
	if i.ProductName == "" && raw.Product != nil {
		i.ProductName = raw.Product.Name
	}
	return nil
}

// ItemsSubtotal sums the line subtotals of a sale.
func (r Record) ItemsSubtotal() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.Subtotal
	}
	return total
}

// Filter narrows the sales history. Empty strings and zero times match
// everything; To covers the whole calendar day it falls on.
type Filter struct {
	Receipt      string
	PaymentType  string
	CustomerType string
	SoldBy       string
	From         time.Time
	To           time.Time
	Page         int
	PerPage      int
}

// Options lists the distinct filter values present in a sales list.
type Options struct {
	PaymentTypes  []string `json:"paymentTypes"`
	CustomerTypes []string `json:"customerTypes"`
	Sellers       []string `json:"sellers"`
}

// Detail is a single sale prepared for the detail screen.
type Detail struct {
	Record
	ItemsSubtotal float64 `json:"itemsSubtotal"`
	ReceiptURL    string  `json:"receiptUrl,omitempty"`
}
