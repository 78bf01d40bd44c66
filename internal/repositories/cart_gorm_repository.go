package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wooshop/internal/models"
)

// GORMCartRepository keeps carts in the relational store. Line items are a
// JSON column, so every save rewrites the whole cart.
type GORMCartRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ CartRepository = (*GORMCartRepository)(nil)

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db, now: time.Now}
}

func (r *GORMCartRepository) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, translate(err))
	}
	if !cart.ExpiresAt.IsZero() && cart.ExpiresAt.Before(r.now()) {
		if err := r.Delete(ctx, userID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("cart of user %s expired: %w", userID, ErrNotFound)
	}
	return &cart, nil
}

func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Save(cart).Error; err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, translate(err))
	}
	return nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Cart{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete cart of user %s: %w", userID, err)
	}
	return nil
}

// PurgeExpired removes every cart whose TTL elapsed and returns the count.
func (r *GORMCartRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Cart{}, "expires_at < ?", r.now())
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge expired carts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
