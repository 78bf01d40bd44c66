package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StockInStock     StockStatus = "instock"
	StockOutOfStock  StockStatus = "outofstock"
	StockOnBackorder StockStatus = "onbackorder"
)

type ProductStatus string

const (
	ProductPublish ProductStatus = "publish"
	ProductDraft   ProductStatus = "draft"
	ProductPending ProductStatus = "pending"
	ProductPrivate ProductStatus = "private"
)

// Product represents a catalog item.
type Product struct {
	ID               string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string              `json:"name" gorm:"type:varchar(200);not null"`
	Slug             string              `json:"slug" gorm:"index;type:varchar(220)"`
	SKU              string              `json:"sku" gorm:"type:varchar(100)"`
	Type             string              `json:"type" gorm:"type:varchar(20)"`
	Status           ProductStatus       `json:"status" gorm:"index;type:varchar(20)"`
	Featured         bool                `json:"featured"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"short_description"`
	Price            decimal.Decimal     `json:"price" gorm:"type:decimal(12,2)"`
	RegularPrice     decimal.Decimal     `json:"regular_price" gorm:"type:decimal(12,2)"`
	SalePrice        decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(12,2)"`
	OnSale           bool                `json:"on_sale"`
	Purchasable      bool                `json:"purchasable"`
	ManageStock      bool                `json:"manage_stock"`
	StockQuantity    int                 `json:"stock_quantity"`
	StockStatus      StockStatus         `json:"stock_status" gorm:"type:varchar(20)"`
	Backorders       string              `json:"backorders" gorm:"type:varchar(10)"`
	TotalSales       int                 `json:"total_sales"`
	AverageRating    float64             `json:"average_rating"`
	RatingCount      int                 `json:"rating_count"`
	Categories       []Category          `json:"categories" gorm:"many2many:product_categories"`
	Tags             []Tag               `json:"tags" gorm:"many2many:product_tags"`
	CreatedAt        time.Time           `json:"date_created"`
	UpdatedAt        time.Time           `json:"date_modified"`
}

// Available reports whether the product can be put in a cart or order.
func (p *Product) Available() bool {
	return p.Purchasable && p.StockStatus != StockOutOfStock
}

// DeriveProduct returns p with its computed fields filled in: slug,
// regular price fallback, sale price resolution and stock status.
func DeriveProduct(p Product) Product {
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Type == "" {
		p.Type = "simple"
	}
	if p.Status == "" {
		p.Status = ProductPublish
	}
	if p.Backorders == "" {
		p.Backorders = "no"
	}

	if p.RegularPrice.IsZero() {
		p.RegularPrice = p.Price
	}
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.RegularPrice) {
		p.OnSale = true
		p.Price = p.SalePrice.Decimal
	} else {
		p.OnSale = false
		p.Price = p.RegularPrice
	}

	if p.ManageStock {
		if p.StockQuantity <= 0 {
			p.StockStatus = StockOutOfStock
		} else {
			p.StockStatus = StockInStock
		}
	} else if p.StockStatus == "" {
		p.StockStatus = StockInStock
	}
	return p
}

// Slugify lowercases s and collapses every run of non-alphanumerics into a
// single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r > unicode.MaxASCII {
				continue
			}
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}
