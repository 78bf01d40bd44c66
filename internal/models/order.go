package models

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderOnHold     OrderStatus = "on-hold"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
	OrderFailed     OrderStatus = "failed"
)

var orderStatuses = map[OrderStatus]bool{
	OrderPending:    true,
	OrderProcessing: true,
	OrderOnHold:     true,
	OrderCompleted:  true,
	OrderCancelled:  true,
	OrderRefunded:   true,
	OrderFailed:     true,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	return orderStatuses[s]
}

// OrderItem is an immutable snapshot of a purchased product.
type OrderItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"-" gorm:"index;type:varchar(36)"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36)"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	SubtotalTax decimal.Decimal `json:"subtotal_tax" gorm:"type:decimal(12,2)"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	TotalTax    decimal.Decimal `json:"total_tax" gorm:"type:decimal(12,2)"`
}

type ShippingLine struct {
	MethodID    string          `json:"method_id"`
	MethodTitle string          `json:"method_title"`
	Total       decimal.Decimal `json:"total"`
	TotalTax    decimal.Decimal `json:"total_tax"`
}

type CouponLine struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	DiscountTax decimal.Decimal `json:"discount_tax"`
}

type OrderTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	SubtotalTax decimal.Decimal `json:"subtotal_tax" gorm:"type:decimal(12,2)"`
	Shipping    decimal.Decimal `json:"shipping_total" gorm:"type:decimal(12,2)"`
	ShippingTax decimal.Decimal `json:"shipping_tax" gorm:"type:decimal(12,2)"`
	Discount    decimal.Decimal `json:"discount_total" gorm:"type:decimal(12,2)"`
	DiscountTax decimal.Decimal `json:"discount_tax" gorm:"type:decimal(12,2)"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(12,2)"`
	TotalTax    decimal.Decimal `json:"total_tax" gorm:"type:decimal(12,2)"`
}

// OrderNote is an append-only audit entry on an order.
type OrderNote struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID      string    `json:"-" gorm:"index;type:varchar(36)"`
	Note         string    `json:"note"`
	AddedBy      string    `json:"added_by" gorm:"type:varchar(50)"`
	CustomerNote bool      `json:"customer_note"`
	CreatedAt    time.Time `json:"date_created"`
}

// Order represents a placed customer order.
type Order struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderKey           string          `json:"order_key" gorm:"uniqueIndex;type:varchar(64)"`
	CustomerID         string          `json:"customer_id" gorm:"index;type:varchar(36)"`
	Status             OrderStatus     `json:"status" gorm:"index;type:varchar(20)"`
	Currency           string          `json:"currency" gorm:"type:varchar(3)"`
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	TransactionID      string          `json:"transaction_id"`
	SetPaid            bool            `json:"set_paid"`
	Billing            Address         `json:"billing" gorm:"embedded;embeddedPrefix:billing_"`
	Shipping           Address         `json:"shipping" gorm:"embedded;embeddedPrefix:shipping_"`
	LineItems          []OrderItem     `json:"line_items" gorm:"foreignKey:OrderID"`
	ShippingLines      []ShippingLine  `json:"shipping_lines" gorm:"serializer:json"`
	CouponLines        []CouponLine    `json:"coupon_lines" gorm:"serializer:json"`
	Totals             OrderTotals     `json:"totals" gorm:"embedded;embeddedPrefix:totals_"`
	CustomerNote       string          `json:"customer_note"`
	Notes              []OrderNote     `json:"order_notes" gorm:"foreignKey:OrderID"`
	DatePaid           *time.Time      `json:"date_paid"`
	DateCompleted      *time.Time      `json:"date_completed"`
	CreatedAt          time.Time       `json:"date_created"`
	UpdatedAt          time.Time       `json:"date_modified"`
}

// CalculateTotals derives the totals block from the item, shipping and
// coupon lines: total = subtotal + shipping - discount + total tax.
func (o *Order) CalculateTotals() OrderTotals {
	var t OrderTotals
	for _, it := range o.LineItems {
		t.Subtotal = t.Subtotal.Add(it.Subtotal)
		t.SubtotalTax = t.SubtotalTax.Add(it.SubtotalTax)
	}
	for _, sl := range o.ShippingLines {
		t.Shipping = t.Shipping.Add(sl.Total)
		t.ShippingTax = t.ShippingTax.Add(sl.TotalTax)
	}
	for _, cl := range o.CouponLines {
		t.Discount = t.Discount.Add(cl.Discount)
		t.DiscountTax = t.DiscountTax.Add(cl.DiscountTax)
	}
	t.TotalTax = t.SubtotalTax.Add(t.ShippingTax).Sub(t.DiscountTax)
	t.Total = t.Subtotal.Add(t.Shipping).Sub(t.Discount).Add(t.TotalTax)
	o.Totals = t
	return t
}

// AddNote appends a note and returns it.
func (o *Order) AddNote(note, addedBy string, customerNote bool, at time.Time) OrderNote {
	n := OrderNote{
		ID:           uuid.New().String(),
		OrderID:      o.ID,
		Note:         note,
		AddedBy:      addedBy,
		CustomerNote: customerNote,
		CreatedAt:    at,
	}
	o.Notes = append(o.Notes, n)
	return n
}

// TransitionTo moves the order to status and records the change as a note.
// It returns false and leaves the order untouched when the status is
// unchanged. dateCompleted and datePaid are stamped at most once.
func (o *Order) TransitionTo(status OrderStatus, annotation string, at time.Time) (OrderNote, bool) {
	if status == o.Status {
		return OrderNote{}, false
	}
	old := o.Status
	o.Status = status

	if status == OrderCompleted && o.DateCompleted == nil {
		o.DateCompleted = &at
	}
	if o.SetPaid && o.DatePaid == nil {
		o.DatePaid = &at
	}

	text := fmt.Sprintf("Order status changed from %s to %s", old, status)
	if annotation != "" {
		text += ". " + annotation
	}
	return o.AddNote(text, "system", false, at), true
}

// NewOrderKey builds a key of the form wc_order_<unix-ms>_<9 base36 chars>.
func NewOrderKey(now time.Time) string {
	var b strings.Builder
	for range 9 {
		b.WriteString(strconv.FormatInt(int64(rand.IntN(36)), 36))
	}
	return fmt.Sprintf("wc_order_%d_%s", now.UnixMilli(), b.String())
}
