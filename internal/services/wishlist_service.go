package services

import (
	"context"

	"github.com/go-faster/errors"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

type WishlistService struct {
	items    repositories.WishlistRepository
	products repositories.ProductRepository
}

func NewWishlistService(items repositories.WishlistRepository, products repositories.ProductRepository) *WishlistService {
	return &WishlistService{items: items, products: products}
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	items, err := s.items.List(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list wishlist")
	}
	return items, nil
}

// Add saves a product to the user's wishlist.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) (*models.WishlistItem, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	item := &models.WishlistItem{UserID: userID, ProductID: p.ID}
	if err := s.items.Add(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyInWishlist
		}
		return nil, errors.Wrap(err, "add to wishlist")
	}
	item.Product = p
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.items.Remove(ctx, userID, productID); err != nil {
		return notFound(err, ErrNotInWishlist, "remove from wishlist")
	}
	return nil
}
