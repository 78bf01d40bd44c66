package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wooshop/internal/models"
)

// WishlistRepository stores the products a user saved for later.
type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]models.WishlistItem, error)
	// Add fails with ErrDuplicate when the product is already saved.
	Add(ctx context.Context, item *models.WishlistItem) error
	// Remove fails with ErrNotFound when the product is not saved.
	Remove(ctx context.Context, userID, productID string) error
}

type GORMWishlistRepository struct {
	db *gorm.DB
}

var _ WishlistRepository = (*GORMWishlistRepository)(nil)

func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

func (r *GORMWishlistRepository) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist of user %s: %w", userID, err)
	}
	return items, nil
}

func (r *GORMWishlistRepository) Add(ctx context.Context, item *models.WishlistItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return fmt.Errorf("failed to add product %s to wishlist: %w", item.ProductID, translate(err))
	}
	return nil
}

func (r *GORMWishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	res := r.db.WithContext(ctx).Delete(&models.WishlistItem{}, "user_id = ? AND product_id = ?", userID, productID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove product %s from wishlist: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s not in wishlist of user %s: %w", productID, userID, ErrNotFound)
	}
	return nil
}
