package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wooshop/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

var _ ProductRepository = (*MockProductRepository)(nil)

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns a filtered, sorted page of products.
func (r *MockProductRepository) List(_ context.Context, f ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	var list []models.Product
	for _, p := range r.products {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.CategoryID != "" && !hasCategory(p, f.CategoryID) {
			continue
		}
		if f.TagID != "" && !hasTag(p, f.TagID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		if f.OnSale != nil && p.OnSale != *f.OnSale {
			continue
		}
		list = append(list, p)
	}

	less := func(a, b models.Product) bool {
		switch f.OrderBy {
		case "title":
			return a.Name < b.Name
		case "price":
			return a.Price.LessThan(b.Price)
		case "popularity":
			return a.TotalSales < b.TotalSales
		case "rating":
			return a.AverageRating < b.AverageRating
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if f.Order == "asc" {
			return less(list[i], list[j])
		}
		return less(list[j], list[i])
	})
	return window(list, f.Page), int64(len(list)), nil
}

func hasCategory(p models.Product, id string) bool {
	for _, c := range p.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasTag(p models.Product, id string) bool {
	for _, t := range p.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func applySale(p *models.Product, qty int) {
	if p.ManageStock {
		p.StockQuantity -= qty
		if p.StockQuantity <= 0 {
			p.StockStatus = models.StockOutOfStock
		}
	}
	p.TotalSales += qty
}

// RecordSale decrements stock and increments sales without checks.
func (r *MockProductRepository) RecordSale(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s not found for sale: %w", id, ErrNotFound)
	}
	applySale(&p, qty)
	r.products[id] = p
	return nil
}

// ReserveStock decrements stock only while enough units remain.
func (r *MockProductRepository) ReserveStock(_ context.Context, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s not found for reservation: %w", id, ErrNotFound)
	}
	if p.ManageStock && p.StockQuantity < qty {
		return fmt.Errorf("product %s: %w", id, ErrStockConflict)
	}
	applySale(&p, qty)
	r.products[id] = p
	return nil
}

// UpdateRating stores the aggregated rating.
func (r *MockProductRepository) UpdateRating(_ context.Context, id string, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s not found for rating: %w", id, ErrNotFound)
	}
	p.AverageRating = average
	p.RatingCount = count
	r.products[id] = p
	return nil
}
