package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

// CartService owns the per-user cart. Every mutation recomputes the cart
// from its snapshotted line prices and extends its expiry by the TTL.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	coupons  *CouponService
	ttl      time.Duration
	now      func() time.Time
}

func NewCartService(
	carts repositories.CartRepository,
	products repositories.ProductRepository,
	coupons *CouponService,
	ttl time.Duration,
) *CartService {
	return &CartService{carts: carts, products: products, coupons: coupons, ttl: ttl, now: time.Now}
}

// WithClock replaces the clock used to stamp cart expiry.
func (s *CartService) WithClock(now func() time.Time) *CartService {
	s.now = now
	return s
}

// GetCart returns the user's cart, creating an empty one if none exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, errors.Wrap(err, "get cart")
	}
	cart = &models.Cart{
		ID:      uuid.New().String(),
		UserID:  userID,
		Items:   []models.CartItem{},
		Coupons: []models.CartCoupon{},
	}
	if err := s.save(ctx, cart); err != nil {
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
		// A concurrent first access created the cart.
		existing, err := s.carts.GetByUser(ctx, userID)
		if err != nil {
			return nil, errors.Wrap(err, "get cart")
		}
		return existing, nil
	}
	return cart, nil
}

// AddItem puts quantity units of a product in the cart. A product already in
// the cart has its line quantity increased; the variation of the existing
// line is kept. New lines snapshot the current product price.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int, variation map[string]string) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrValidation.Withf("Quantity must be at least 1")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, "get product")
	}
	if !product.Available() {
		return nil, ErrProductUnavailable.Withf("Product %s is not available", product.Name)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.ProductIndex(productID); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			Key:       uuid.New().String(),
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  quantity,
			Variation: variation,
			Price:     product.Price,
		})
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the quantity of a cart line. A quantity of zero or less
// removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, key string, quantity int) (*models.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrCartNotFound, "get cart")
	}
	i := cart.ItemIndex(key)
	if i < 0 {
		return nil, ErrCartItemNotFound
	}
	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a cart line. Removing an absent line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, key string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if i := cart.ItemIndex(key); i >= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart discards the cart and returns a fresh empty one.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*models.Cart, error) {
	if err := s.carts.Delete(ctx, userID); err != nil {
		return nil, errors.Wrap(err, "delete cart")
	}
	return s.GetCart(ctx, userID)
}

// ApplyCoupon validates code against the cart subtotal and attaches it.
// Validation does not consume a coupon use.
func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if cart.CouponIndex(code) >= 0 {
		return nil, ErrCouponApplied
	}
	res, err := s.coupons.Validate(ctx, code, cart.Totals.Subtotal)
	if err != nil {
		return nil, err
	}
	cart.Coupons = append(cart.Coupons, models.CartCoupon{
		Code:         res.Coupon.Code,
		Type:         res.Coupon.Type,
		Amount:       res.Coupon.Amount,
		FreeShipping: res.FreeShipping,
	})
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveCoupon(ctx context.Context, userID, code string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.CouponIndex(strings.ToUpper(code))
	if i < 0 {
		return nil, ErrCouponNotFound.Withf("Coupon %s is not applied to the cart", strings.ToUpper(code))
	}
	cart.Coupons = append(cart.Coupons[:i], cart.Coupons[i+1:]...)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	cart.Recalculate()
	cart.ExpiresAt = s.now().Add(s.ttl)
	if err := s.carts.Save(ctx, cart); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
