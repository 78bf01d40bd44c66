package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wooshop/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

var _ OrderRepository = (*GORMOrderRepository)(nil)

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts a new order, its line items and its notes.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.LineItems {
		if order.LineItems[i].ID == "" {
			order.LineItems[i].ID = uuid.New().String()
		}
		order.LineItems[i].OrderID = order.ID
	}
	for i := range order.Notes {
		if order.Notes[i].ID == "" {
			order.Notes[i].ID = uuid.New().String()
		}
		order.Notes[i].OrderID = order.ID
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}
	return nil
}

func withNotes(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// GetByID retrieves an order with its line items and notes.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Preload("Notes", withNotes).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, translate(err))
	}
	return &order, nil
}

// List retrieves a filtered page of orders and the unpaged total.
func (r *GORMOrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	col, ok := orderOrderColumns[f.OrderBy]
	if !ok {
		col = "created_at"
	}
	var orders []models.Order
	err := q.Preload("LineItems").Preload("Notes", withNotes).
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Order != "asc"}).
		Offset(f.Offset()).Limit(f.Limit()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// Update writes every scalar column of the order.
func (r *GORMOrderRepository) Update(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).Model(order).Select("*").Omit(clause.Associations, "created_at").Updates(order)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for update: %w", order.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRepository) AddNote(ctx context.Context, note *models.OrderNote) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("failed to add note to order %s: %w", note.OrderID, err)
	}
	return nil
}

// Delete removes an order together with its items and notes.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		if err := tx.Delete(&models.OrderItem{}, "order_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete items of order %s: %w", id, err)
		}
		if err := tx.Delete(&models.OrderNote{}, "order_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete notes of order %s: %w", id, err)
		}
		return nil
	})
}
