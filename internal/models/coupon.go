package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponPercent      CouponType = "percent"
	CouponFixed        CouponType = "fixed"
	CouponFreeShipping CouponType = "free_shipping"
)

var hundred = decimal.NewFromInt(100)

// Coupon is a discount code. Code is stored uppercase.
type Coupon struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code          string          `json:"code" gorm:"uniqueIndex;type:varchar(50);not null"`
	Type          CouponType      `json:"type" gorm:"type:varchar(20)"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Description   string          `json:"description"`
	MinimumAmount decimal.Decimal `json:"minimum_amount" gorm:"type:decimal(12,2)"`
	MaximumAmount decimal.Decimal `json:"maximum_amount" gorm:"type:decimal(12,2)"`
	UsageLimit    int             `json:"usage_limit"`
	UsageCount    int             `json:"usage_count"`
	ExpiryDate    *time.Time      `json:"date_expires"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"date_created"`
	UpdatedAt     time.Time       `json:"date_modified"`
}

// Expired reports whether the coupon expiry date is before now.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}

// LimitReached reports whether a usage limit is set and exhausted.
func (c *Coupon) LimitReached() bool {
	return c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit
}

// CouponDiscount computes the monetary discount of a coupon against total.
// Percent discounts are rounded to cents; free shipping carries no amount.
func CouponDiscount(t CouponType, amount, total decimal.Decimal) decimal.Decimal {
	switch t {
	case CouponPercent:
		return total.Mul(amount).Div(hundred).Round(2)
	case CouponFixed:
		return amount
	default:
		return decimal.Zero
	}
}
