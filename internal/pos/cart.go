// Package pos implements the till: the per-session cart and the checkout
// that turns it into a sale on the backend.
package pos

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chillzone/chillzone-pos/internal/catalog"
)

// PaymentType is how the customer paid.
type PaymentType string

// CustomerType distinguishes counter sales from deliveries.
type CustomerType string

const (
	PaymentCash  PaymentType = "Cash"
	PaymentMPESA PaymentType = "MPESA"

	CustomerWalkIn   CustomerType = "Walk-In"
	CustomerDelivery CustomerType = "Delivery"
)

// Valid reports whether p is a known payment type.
func (p PaymentType) Valid() bool {
	return p == PaymentCash || p == PaymentMPESA
}

// Valid reports whether c is a known customer type.
func (c CustomerType) Valid() bool {
	return c == CustomerWalkIn || c == CustomerDelivery
}

// Line is one product in the cart. Price is the selling price at the time
// the product was added.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Amount is price times quantity.
func (l Line) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the lines and checkout options of the sale being rung up.
// The zero value is an empty cart.
type Cart struct {
	lines        []Line
	discount     decimal.Decimal
	paymentType  PaymentType
	customerType CustomerType
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

// Len is the number of distinct products in the cart.
func (c *Cart) Len() int { return len(c.lines) }

// TotalQuantity is the number of units across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Discount returns the flat discount.
func (c *Cart) Discount() decimal.Decimal { return c.discount }

// PaymentType returns the selected payment type, or "" when unset.
func (c *Cart) PaymentType() PaymentType { return c.paymentType }

// CustomerType returns the selected customer type, or "" when unset.
func (c *Cart) CustomerType() CustomerType { return c.customerType }

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Toggle removes the product's line when present, dropping its quantity,
// and otherwise appends a new line with quantity 1.
func (c *Cart) Toggle(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     decimal.NewFromFloat(p.SellingPrice),
		Quantity:  1,
	})
}

// ChangeQuantity steps a line by delta (+1 or -1). Quantity never drops
// below 1; there is no upper bound.
func (c *Cart) ChangeQuantity(productID int64, delta int) error {
	if delta != 1 && delta != -1 {
		return ErrInvalidDelta
	}
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if q := c.lines[i].Quantity + delta; q >= 1 {
		c.lines[i].Quantity = q
	}
	return nil
}

// Remove drops the product's line if present.
func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Reset empties the cart and clears discount and options.
func (c *Cart) Reset() {
	*c = Cart{}
}

// Subtotal is the exact sum of line amounts.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Amount())
	}
	return sum
}

// Total is the subtotal less discount, floored at zero.
func (c *Cart) Total() decimal.Decimal {
	total := c.Subtotal().Sub(c.discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// SetDiscount sets the flat discount. Exceeding the subtotal is allowed
// here and rejected at checkout.
func (c *Cart) SetDiscount(d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid("discount", "discount cannot be negative")
	}
	c.discount = d
	return nil
}

// SetPaymentType selects a payment type; "" clears it.
func (c *Cart) SetPaymentType(p PaymentType) error {
	if p != "" && !p.Valid() {
		return invalid("paymentType", "unknown payment type "+string(p))
	}
	c.paymentType = p
	return nil
}

// SetCustomerType selects a customer type; "" clears it.
func (c *Cart) SetCustomerType(t CustomerType) error {
	if t != "" && !t.Valid() {
		return invalid("customerType", "unknown customer type "+string(t))
	}
	c.customerType = t
	return nil
}

// CheckoutItem is one line as submitted to the backend.
type CheckoutItem struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// CheckoutRequest is a validated sale ready for submission.
type CheckoutRequest struct {
	Items        []CheckoutItem
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	PaymentType  PaymentType
	CustomerType CustomerType
	Date         time.Time
}

// Sold returns quantities per product for the local stock patch.
func (r CheckoutRequest) Sold() map[int64]int {
	sold := make(map[int64]int, len(r.Items))
	for _, item := range r.Items {
		sold[item.ProductID] += item.Quantity
	}
	return sold
}

// BuildCheckoutRequest validates the cart and snapshots it as a request.
// Checks run in order: empty cart, discount over subtotal, payment type,
// customer type.
func (c *Cart) BuildCheckoutRequest(now time.Time) (CheckoutRequest, error) {
	if len(c.lines) == 0 {
		return CheckoutRequest{}, invalid("items", "no items in cart")
	}
	subtotal := c.Subtotal()
	if c.discount.GreaterThan(subtotal) {
		return CheckoutRequest{}, invalid("discount", "discount exceeds subtotal")
	}
	if c.paymentType == "" {
		return CheckoutRequest{}, invalid("paymentType", "payment type is required")
	}
	if c.customerType == "" {
		return CheckoutRequest{}, invalid("customerType", "customer type is required")
	}
	items := make([]CheckoutItem, len(c.lines))
	for i, l := range c.lines {
		items[i] = CheckoutItem{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price}
	}
	return CheckoutRequest{
		Items:        items,
		Subtotal:     subtotal,
		Discount:     c.discount,
		Total:        c.Total(),
		PaymentType:  c.paymentType,
		CustomerType: c.customerType,
		Date:         now,
	}, nil
}

type cartState struct {
	Lines        []Line          `json:"lines"`
	Discount     decimal.Decimal `json:"discount"`
	PaymentType  PaymentType     `json:"paymentType"`
	CustomerType CustomerType    `json:"customerType"`
}

// MarshalJSON encodes the cart for the session store.
func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(cartState{
		Lines:        lines,
		Discount:     c.discount,
		PaymentType:  c.paymentType,
		CustomerType: c.customerType,
	})
}

// UnmarshalJSON restores a cart from the session store.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var st cartState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	*c = Cart{
		lines:        st.Lines,
		discount:     st.Discount,
		paymentType:  st.PaymentType,
		customerType: st.CustomerType,
	}
	return nil
}

// View is the cart as rendered to the till.
type View struct {
	Lines         []Line          `json:"lines"`
	ItemCount     int             `json:"itemCount"`
	TotalQuantity int             `json:"totalQuantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentType   PaymentType     `json:"paymentType"`
	CustomerType  CustomerType    `json:"customerType"`
}

// View snapshots the cart with computed totals.
func (c *Cart) View() View {
	lines := c.Lines()
	if lines == nil {
		lines = []Line{}
	}
	return View{
		Lines:         lines,
		ItemCount:     c.Len(),
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      c.Subtotal(),
		Discount:      c.discount,
		Total:         c.Total(),
		PaymentType:   c.paymentType,
		CustomerType:  c.customerType,
	}
}
