package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_CalculateTotals(t *testing.T) {
	o := Order{
		LineItems: []OrderItem{
			{Subtotal: decimal.NewFromInt(30)},
			{Subtotal: decimal.RequireFromString("12.5")},
		},
		ShippingLines: []ShippingLine{{Total: decimal.NewFromInt(10)}},
		CouponLines:   []CouponLine{{Discount: decimal.NewFromInt(5)}},
	}
	totals := o.CalculateTotals()

	assert.Equal(t, "42.5", totals.Subtotal.String())
	assert.Equal(t, "10", totals.Shipping.String())
	assert.Equal(t, "5", totals.Discount.String())
	assert.True(t, totals.TotalTax.IsZero())
	assert.Equal(t, "47.5", totals.Total.String())
	assert.Equal(t, totals, o.Totals)
}

func TestOrder_TransitionTo(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	o := Order{ID: "o1", Status: OrderPending}

	note, changed := o.TransitionTo(OrderProcessing, "", t0)
	require.True(t, changed)
	assert.Equal(t, "Order status changed from pending to processing", note.Note)
	assert.Equal(t, "o1", note.OrderID)
	assert.Nil(t, o.DateCompleted)
	assert.Nil(t, o.DatePaid)

	note, changed = o.TransitionTo(OrderCompleted, "shipped via DHL", t0)
	require.True(t, changed)
	assert.Equal(t, "Order status changed from processing to completed. shipped via DHL", note.Note)
	require.NotNil(t, o.DateCompleted)
	assert.Equal(t, t0, *o.DateCompleted)

	_, changed = o.TransitionTo(OrderCompleted, "", t1)
	assert.False(t, changed)

	_, changed = o.TransitionTo(OrderRefunded, "", t1)
	require.True(t, changed)
	_, changed = o.TransitionTo(OrderCompleted, "", t1)
	require.True(t, changed)
	assert.Equal(t, t0, *o.DateCompleted)

	assert.Len(t, o.Notes, 4)
}

func TestOrder_TransitionStampsDatePaidOnce(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	o := Order{Status: OrderPending, SetPaid: true}

	o.TransitionTo(OrderProcessing, "", t0)
	require.NotNil(t, o.DatePaid)
	o.TransitionTo(OrderOnHold, "", t0.Add(time.Hour))
	assert.Equal(t, t0, *o.DatePaid)
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderProcessing, OrderOnHold, OrderCompleted, OrderCancelled, OrderRefunded, OrderFailed} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestNewOrderKey(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	key := NewOrderKey(now)
	assert.Regexp(t, regexp.MustCompile(`^wc_order_1767225600000_[0-9a-z]{9}$`), key)
	assert.NotEqual(t, key, NewOrderKey(now))
}

func TestAggregateRatings(t *testing.T) {
	avg, n := AggregateRatings(nil)
	assert.Zero(t, avg)
	assert.Zero(t, n)

	avg, n = AggregateRatings([]int{5, 4, 4})
	assert.InDelta(t, 4.3, avg, 1e-9)
	assert.Equal(t, 3, n)

	avg, n = AggregateRatings([]int{5, 4})
	assert.InDelta(t, 4.5, avg, 1e-9)
	assert.Equal(t, 2, n)
}
