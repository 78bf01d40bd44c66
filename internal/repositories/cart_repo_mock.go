package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"wooshop/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
// Reads and writes copy the cart, like a document store would.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
	now   func() time.Time
}

var _ CartRepository = (*MockCartRepository)(nil)

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: make(map[string]models.Cart), now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (r *MockCartRepository) WithClock(now func() time.Time) *MockCartRepository {
	r.now = now
	return r
}

func (r *MockCartRepository) GetByUser(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart of user %s: %w", userID, ErrNotFound)
	}
	if !cart.ExpiresAt.IsZero() && cart.ExpiresAt.Before(r.now()) {
		delete(r.carts, userID)
		return nil, fmt.Errorf("cart of user %s expired: %w", userID, ErrNotFound)
	}
	c := cloneCart(cart)
	return &c, nil
}

func (r *MockCartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	now := r.now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	r.carts[cart.UserID] = cloneCart(*cart)
	return nil
}

func (r *MockCartRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
