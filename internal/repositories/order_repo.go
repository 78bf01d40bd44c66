package repositories

import (
	"context"

	"wooshop/internal/models"
)

type OrderFilter struct {
	CustomerID string
	Status     string
	OrderBy    string // date, total
	Order      string // asc, desc
	Page
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create stores the order with its line items and notes.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	// Update writes the order's own columns. Line items and notes are left
	// alone; notes are appended with AddNote.
	Update(ctx context.Context, order *models.Order) error
	AddNote(ctx context.Context, note *models.OrderNote) error
	Delete(ctx context.Context, id string) error
}

var orderOrderColumns = map[string]string{
	"date":  "created_at",
	"total": "totals_total",
}

func cloneOrder(o models.Order) models.Order {
	o.LineItems = append([]models.OrderItem{}, o.LineItems...)
	o.ShippingLines = append([]models.ShippingLine{}, o.ShippingLines...)
	o.CouponLines = append([]models.CouponLine{}, o.CouponLines...)
	o.Notes = append([]models.OrderNote{}, o.Notes...)
	return o
}
