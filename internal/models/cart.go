package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a line in a cart. Price is snapshotted when the line is added.
type CartItem struct {
	Key       string            `json:"key"`
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	Variation map[string]string `json:"variation,omitempty"`
	Price     decimal.Decimal   `json:"price"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Total     decimal.Decimal   `json:"total"`
}

// CartCoupon is a coupon applied to a cart. Type and Amount are kept so the
// discount follows the subtotal on every recalculation.
type CartCoupon struct {
	Code         string          `json:"code"`
	Type         CouponType      `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Discount     decimal.Decimal `json:"discount"`
	FreeShipping bool            `json:"free_shipping"`
}

type CartTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	SubtotalTax decimal.Decimal `json:"subtotal_tax" gorm:"type:decimal(12,2)"`
	Shipping    decimal.Decimal `json:"shipping_total" gorm:"type:decimal(12,2)"`
	ShippingTax decimal.Decimal `json:"shipping_tax" gorm:"type:decimal(12,2)"`
	Discount    decimal.Decimal `json:"discount_total" gorm:"type:decimal(12,2)"`
	DiscountTax decimal.Decimal `json:"discount_tax" gorm:"type:decimal(12,2)"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	TotalTax    decimal.Decimal `json:"total_tax" gorm:"type:decimal(12,2)"`
}

// Cart is the per-user shopping cart aggregate.
type Cart struct {
	ID        string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string       `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items     []CartItem   `json:"items" gorm:"serializer:json"`
	Coupons   []CartCoupon `json:"coupons" gorm:"serializer:json"`
	Totals    CartTotals   `json:"totals" gorm:"embedded;embeddedPrefix:totals_"`
	ExpiresAt time.Time    `json:"expires_at" gorm:"index"`
	CreatedAt time.Time    `json:"date_created"`
	UpdatedAt time.Time    `json:"date_modified"`
}

// ItemIndex returns the position of the line with the given key, or -1.
func (c *Cart) ItemIndex(key string) int {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return i
		}
	}
	return -1
}

// ProductIndex returns the position of the first line for productID, or -1.
// Variations are not compared.
func (c *Cart) ProductIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// CouponIndex returns the position of the applied coupon with code, or -1.
func (c *Cart) CouponIndex(code string) int {
	for i := range c.Coupons {
		if c.Coupons[i].Code == code {
			return i
		}
	}
	return -1
}

// Recalculate recomputes every line and the cart totals in one pass.
// total = subtotal + shipping - discount.
func (c *Cart) Recalculate() {
	subtotal := decimal.Zero
	for i := range c.Items {
		it := &c.Items[i]
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		it.Total = it.Subtotal
		subtotal = subtotal.Add(it.Subtotal)
	}

	discount := decimal.Zero
	freeShipping := false
	for i := range c.Coupons {
		cp := &c.Coupons[i]
		cp.Discount = CouponDiscount(cp.Type, cp.Amount, subtotal)
		discount = discount.Add(cp.Discount)
		freeShipping = freeShipping || cp.FreeShipping
	}
	discount = decimal.Min(discount, subtotal)

	shipping := c.Totals.Shipping
	if freeShipping {
		shipping = decimal.Zero
	}

	c.Totals = CartTotals{
		Subtotal:    subtotal,
		SubtotalTax: decimal.Zero,
		Shipping:    shipping,
		ShippingTax: decimal.Zero,
		Discount:    discount,
		DiscountTax: decimal.Zero,
		Total:       subtotal.Add(shipping).Sub(discount),
		TotalTax:    decimal.Zero,
	}
}

// Clear empties the cart and resets its totals.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Coupons = []CartCoupon{}
	c.Totals = CartTotals{}
	c.Recalculate()
}
