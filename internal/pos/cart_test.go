package pos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/chillzone/chillzone-pos/internal/catalog"
	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
)

var (
	tusker = catalog.Product{ID: 1, Name: "Tusker", SellingPrice: 200, Stock: 10}
	soda   = catalog.Product{ID: 2, Name: "Soda", SellingPrice: 50, Stock: 10}
	water  = catalog.Product{ID: 3, Name: "Water", SellingPrice: 0.1, Stock: 10}
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCartScenarioSubtotalAndTotal(t *testing.T) {
	var cart Cart
	cart.Toggle(tusker)
	require.NoError(t, cart.ChangeQuantity(tusker.ID, 1))
	cart.Toggle(soda)
	require.NoError(t, cart.SetDiscount(dec("50")))

	require.True(t, cart.Subtotal().Equal(dec("450")), cart.Subtotal().String())
	require.True(t, cart.Total().Equal(dec("400")), cart.Total().String())
	require.Equal(t, 2, cart.Len())
	require.Equal(t, 3, cart.TotalQuantity())
}

func TestCartSubtotalIsExact(t *testing.T) {
	var cart Cart
	cart.Toggle(water)
	for i := 0; i < 2; i++ {
		require.NoError(t, cart.ChangeQuantity(water.ID, 1))
	}
	require.True(t, cart.Subtotal().Equal(dec("0.3")), cart.Subtotal().String())
}

func TestCartTotalFloorsAtZero(t *testing.T) {
	var cart Cart
	cart.Toggle(soda)
	require.NoError(t, cart.SetDiscount(dec("80")))
	require.True(t, cart.Total().IsZero())

	require.NoError(t, cart.SetDiscount(dec("50")))
	require.True(t, cart.Total().IsZero())
}

func TestCartToggleTwiceRestoresLines(t *testing.T) {
	var cart Cart
	cart.Toggle(tusker)
	before := cart.Lines()

	cart.Toggle(soda)
	cart.Toggle(soda)
	require.Equal(t, before, cart.Lines())
}

func TestCartToggleDropsAccumulatedQuantity(t *testing.T) {
	var cart Cart
	cart.Toggle(tusker)
	require.NoError(t, cart.ChangeQuantity(tusker.ID, 1))
	require.NoError(t, cart.ChangeQuantity(tusker.ID, 1))

	cart.Toggle(tusker)
	require.Zero(t, cart.Len())
	cart.Toggle(tusker)
	require.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestCartToggleSnapshotsPrice(t *testing.T) {
	var cart Cart
	p := tusker
	cart.Toggle(p)
	p.SellingPrice = 999
	require.True(t, cart.Lines()[0].Price.Equal(dec("200")))
}

func TestCartDecrementClampsAtOne(t *testing.T) {
	var cart Cart
	cart.Toggle(tusker)
	for i := 0; i < 3; i++ {
		require.NoError(t, cart.ChangeQuantity(tusker.ID, -1))
	}
	require.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestCartChangeQuantityErrors(t *testing.T) {
	var cart Cart
	cart.Toggle(tusker)
	require.ErrorIs(t, cart.ChangeQuantity(tusker.ID, 2), ErrInvalidDelta)
	require.ErrorIs(t, cart.ChangeQuantity(soda.ID, 1), ErrLineNotFound)
	require.Equal(t, 1, cart.Lines()[0].Quantity)
}

func TestCartRemoveAndReset(t *testing.T) {
	var cart Cart
	cart.Toggle(tusker)
	cart.Toggle(soda)
	cart.Remove(tusker.ID)
	cart.Remove(42)
	require.Equal(t, []int64{2}, []int64{cart.Lines()[0].ProductID})

	require.NoError(t, cart.SetDiscount(dec("5")))
	require.NoError(t, cart.SetPaymentType(PaymentMPESA))
	require.NoError(t, cart.SetCustomerType(CustomerDelivery))
	cart.Reset()
	require.Zero(t, cart.Len())
	require.True(t, cart.Discount().IsZero())
	require.Empty(t, cart.PaymentType())
	require.Empty(t, cart.CustomerType())
}

func TestCartOptionValidation(t *testing.T) {
	var cart Cart
	require.ErrorIs(t, cart.SetDiscount(dec("-1")), httpx.ErrValidation)
	require.ErrorIs(t, cart.SetPaymentType("Card"), httpx.ErrValidation)
	require.ErrorIs(t, cart.SetCustomerType("Online"), httpx.ErrValidation)
	require.NoError(t, cart.SetPaymentType(""))
	require.NoError(t, cart.SetCustomerType(""))
}

func TestBuildCheckoutRequestValidationOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		setup func(c *Cart)
		want  string
	}{
		{name: "empty cart", setup: func(c *Cart) {
			_ = c.SetDiscount(dec("150"))
		}, want: "no items in cart"},
		{name: "discount over subtotal", setup: func(c *Cart) {
			c.Toggle(catalog.Product{ID: 9, Name: "Crate", SellingPrice: 100})
			_ = c.SetDiscount(dec("150"))
		}, want: "discount exceeds subtotal"},
		{name: "payment type unset", setup: func(c *Cart) {
			c.Toggle(tusker)
			_ = c.SetCustomerType(CustomerWalkIn)
		}, want: "payment type is required"},
		{name: "customer type unset", setup: func(c *Cart) {
			c.Toggle(tusker)
			_ = c.SetPaymentType(PaymentCash)
		}, want: "customer type is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var cart Cart
			tc.setup(&cart)
			_, err := cart.BuildCheckoutRequest(now)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tc.want, vErr.Message)
			require.ErrorIs(t, err, httpx.ErrValidation)
		})
	}
}

func TestBuildCheckoutRequestSuccess(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	var cart Cart
	cart.Toggle(tusker)
	require.NoError(t, cart.ChangeQuantity(tusker.ID, 1))
	cart.Toggle(soda)
	require.NoError(t, cart.SetDiscount(dec("450")))
	require.NoError(t, cart.SetPaymentType(PaymentCash))
	require.NoError(t, cart.SetCustomerType(CustomerWalkIn))

	req, err := cart.BuildCheckoutRequest(now)
	require.NoError(t, err)
	require.Len(t, req.Items, 2)
	require.Equal(t, int64(1), req.Items[0].ProductID)
	require.True(t, req.Items[0].Price.Equal(dec("200")))
	require.Equal(t, 2, req.Items[0].Quantity)
	require.True(t, req.Subtotal.Equal(dec("450")))
	require.True(t, req.Total.IsZero(), "discount equal to subtotal is allowed")
	require.Equal(t, now, req.Date)
	require.Equal(t, map[int64]int{1: 2, 2: 1}, req.Sold())
}

func TestCartJSONRoundTripKeepsState(t *testing.T) {
	var cart Cart
	cart.Toggle(tusker)
	require.NoError(t, cart.SetDiscount(dec("12.5")))
	require.NoError(t, cart.SetPaymentType(PaymentMPESA))

	raw, err := json.Marshal(&cart)
	require.NoError(t, err)
	var restored Cart
	require.NoError(t, json.Unmarshal(raw, &restored))

	require.Equal(t, cart.Len(), restored.Len())
	require.True(t, restored.Discount().Equal(dec("12.5")))
	require.Equal(t, PaymentMPESA, restored.PaymentType())
	require.True(t, restored.Subtotal().Equal(cart.Subtotal()))
}
