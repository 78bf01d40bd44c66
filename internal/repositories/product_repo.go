package repositories

import (
	"context"

	"wooshop/internal/models"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Status     string
	CategoryID string
	TagID      string
	Search     string
	Featured   *bool
	OnSale     *bool
	OrderBy    string // date, title, price, popularity, rating
	Order      string // asc, desc
	Page
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	// RecordSale unconditionally decrements managed stock and increments
	// total sales by qty.
	RecordSale(ctx context.Context, id string, qty int) error
	// ReserveStock does the same as RecordSale only while the product still
	// has qty units in stock, returning ErrStockConflict otherwise.
	ReserveStock(ctx context.Context, id string, qty int) error
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}

var productOrderColumns = map[string]string{
	"date":       "created_at",
	"title":      "name",
	"price":      "price",
	"popularity": "total_sales",
	"rating":     "average_rating",
}
