package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wooshop/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

var _ OrderRepository = (*MockOrderRepository)(nil)

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for _, o := range r.orders {
		if o.OrderKey == order.OrderKey {
			return fmt.Errorf("order key %s: %w", order.OrderKey, ErrDuplicate)
		}
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.LineItems {
		if order.LineItems[i].ID == "" {
			order.LineItems[i].ID = uuid.New().String()
		}
		order.LineItems[i].OrderID = order.ID
	}
	for i := range order.Notes {
		order.Notes[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r *MockOrderRepository) List(_ context.Context, f OrderFilter) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Order
	for _, o := range r.orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		list = append(list, cloneOrder(o))
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if f.Order == "asc" {
			a, b = b, a
		}
		if f.OrderBy == "total" {
			return a.Totals.Total.GreaterThan(b.Totals.Total)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return window(list, f.Page), int64(len(list)), nil
}

func (r *MockOrderRepository) Update(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s not found for update: %w", order.ID, ErrNotFound)
	}
	updated := cloneOrder(*order)
	updated.LineItems = existing.LineItems
	updated.Notes = existing.Notes
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.orders[order.ID] = updated
	return nil
}

func (r *MockOrderRepository) AddNote(_ context.Context, note *models.OrderNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[note.OrderID]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", note.OrderID, ErrNotFound)
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	o.Notes = append(append([]models.OrderNote{}, o.Notes...), *note)
	r.orders[note.OrderID] = o
	return nil
}

func (r *MockOrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.orders, id)
	return nil
}
