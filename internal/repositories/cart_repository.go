package repositories

import (
	"context"

	"wooshop/internal/models"
)

// CartRepository stores one cart per user. Carts past their ExpiresAt are
// reported as ErrNotFound.
type CartRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, userID string) error
}

func cloneCart(c models.Cart) models.Cart {
	items := make([]models.CartItem, len(c.Items))
	for i, it := range c.Items {
		if it.Variation != nil {
			v := make(map[string]string, len(it.Variation))
			for k, val := range it.Variation {
				v[k] = val
			}
			it.Variation = v
		}
		items[i] = it
	}
	c.Items = items
	c.Coupons = append([]models.CartCoupon{}, c.Coupons...)
	return c
}
