package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

type cartFixture struct {
	service  *services.CartService
	carts    *repositories.MockCartRepository
	products *repositories.MockProductRepository
	clock    *time.Time
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	now := couponClock
	f := &cartFixture{
		carts:    repositories.NewMockCartRepository(),
		products: repositories.NewMockProductRepository(),
		clock:    &now,
	}
	clock := func() time.Time { return *f.clock }
	f.carts.WithClock(clock)
	coupons, _ := newCouponService(t)
	f.service = services.NewCartService(f.carts, f.products, coupons, time.Hour).WithClock(clock)
	return f
}

// assertTotals checks the cart arithmetic holds.
func assertTotals(t *testing.T, cart *models.Cart) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range cart.Items {
		assert.True(t, it.Subtotal.Equal(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))))
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, cart.Totals.Subtotal.Equal(sum), "subtotal %s != %s", cart.Totals.Subtotal, sum)
	expected := cart.Totals.Subtotal.Add(cart.Totals.Shipping).Sub(cart.Totals.Discount)
	assert.True(t, cart.Totals.Total.Equal(expected), "total %s != %s", cart.Totals.Total, expected)
}

func TestCartService_ItemLifecycle(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	mug := addProduct(t, f.products, stocked("Mug", "10.00", 20))
	pen := addProduct(t, f.products, stocked("Pen", "2.50", 20))

	cart, err := f.service.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Totals.Subtotal.IsZero())
	assert.Equal(t, couponClock.Add(time.Hour), cart.ExpiresAt)

	_, err = f.service.AddItem(ctx, "u1", mug.ID, 2, nil)
	require.NoError(t, err)
	_, err = f.service.AddItem(ctx, "u1", pen.ID, 4, nil)
	require.NoError(t, err)
	cart, err = f.service.AddItem(ctx, "u1", mug.ID, 1, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2, "adding a product already in the cart merges lines")
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Totals.Subtotal.Equal(dec("40.00")))
	assertTotals(t, cart)

	cart, err = f.service.UpdateItem(ctx, "u1", cart.Items[1].Key, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assertTotals(t, cart)

	cart, err = f.service.UpdateItem(ctx, "u1", cart.Items[0].Key, 5)
	require.NoError(t, err)
	assert.True(t, cart.Totals.Total.Equal(dec("50.00")))

	cart, err = f.service.RemoveItem(ctx, "u1", "not-a-line")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	cart, err = f.service.RemoveItem(ctx, "u1", cart.Items[0].Key)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Totals.Subtotal.IsZero())
	assertTotals(t, cart)
}

func TestCartService_PriceIsSnapshotted(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	mug := addProduct(t, f.products, stocked("Mug", "10.00", 20))

	_, err := f.service.AddItem(ctx, "u1", mug.ID, 1, nil)
	require.NoError(t, err)

	mug.RegularPrice = dec("99.00")
	*mug = models.DeriveProduct(*mug)
	require.NoError(t, f.products.Update(ctx, mug))

	cart, err := f.service.AddItem(ctx, "u1", mug.ID, 1, nil)
	require.NoError(t, err)
	assert.True(t, cart.Items[0].Price.Equal(dec("10.00")))
	assert.True(t, cart.Totals.Subtotal.Equal(dec("20.00")))
}

func TestCartService_VariationsShareALine(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	shirt := addProduct(t, f.products, stocked("Shirt", "15.00", 20))

	_, err := f.service.AddItem(ctx, "u1", shirt.ID, 1, map[string]string{"color": "red"})
	require.NoError(t, err)
	cart, err := f.service.AddItem(ctx, "u1", shirt.ID, 1, map[string]string{"color": "blue"})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, map[string]string{"color": "red"}, cart.Items[0].Variation)
}

func TestCartService_AddItemErrors(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	hidden := stocked("Hidden", "1", 5)
	hidden.Purchasable = false
	addProduct(t, f.products, hidden)
	gone := addProduct(t, f.products, stocked("Gone", "1", 0))
	mug := addProduct(t, f.products, stocked("Mug", "1", 5))

	_, err := f.service.AddItem(ctx, "u1", "missing", 1, nil)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	_, err = f.service.AddItem(ctx, "u1", hidden.ID, 1, nil)
	assert.ErrorIs(t, err, services.ErrProductUnavailable)
	_, err = f.service.AddItem(ctx, "u1", gone.ID, 1, nil)
	assert.ErrorIs(t, err, services.ErrProductUnavailable)
	_, err = f.service.AddItem(ctx, "u1", mug.ID, 0, nil)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = f.service.UpdateItem(ctx, "nobody", "k", 1)
	assert.ErrorIs(t, err, services.ErrCartNotFound)
	_, err = f.service.GetCart(ctx, "u1")
	require.NoError(t, err)
	_, err = f.service.UpdateItem(ctx, "u1", "k", 1)
	assert.ErrorIs(t, err, services.ErrCartItemNotFound)
}

func TestCartService_ClearAndExpiry(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	mug := addProduct(t, f.products, stocked("Mug", "10.00", 20))

	before, err := f.service.AddItem(ctx, "u1", mug.ID, 1, nil)
	require.NoError(t, err)

	cleared, err := f.service.ClearCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
	assert.NotEqual(t, before.ID, cleared.ID, "clearing recreates the cart")

	_, err = f.service.AddItem(ctx, "u1", mug.ID, 1, nil)
	require.NoError(t, err)

	*f.clock = f.clock.Add(30 * time.Minute)
	cart, err := f.service.AddItem(ctx, "u1", mug.ID, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity, "activity within the TTL keeps the cart")

	*f.clock = f.clock.Add(2 * time.Hour)
	cart, err = f.service.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items, "an idle cart expires")
}

func TestCartService_Coupons(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	tv := addProduct(t, f.products, stocked("TV", "200.00", 5))

	_, err := f.service.AddItem(ctx, "u1", tv.ID, 1, nil)
	require.NoError(t, err)

	cart, err := f.service.ApplyCoupon(ctx, "u1", " welcome10 ")
	require.NoError(t, err)
	require.Len(t, cart.Coupons, 1)
	assert.True(t, cart.Totals.Discount.Equal(dec("20")))
	assert.True(t, cart.Totals.Total.Equal(dec("180")))
	assertTotals(t, cart)

	_, err = f.service.ApplyCoupon(ctx, "u1", "WELCOME10")
	assert.ErrorIs(t, err, services.ErrCouponApplied)

	cart, err = f.service.AddItem(ctx, "u1", tv.ID, 1, nil)
	require.NoError(t, err)
	assert.True(t, cart.Totals.Discount.Equal(dec("40")), "percent discounts follow the subtotal")

	cart, err = f.service.RemoveCoupon(ctx, "u1", "welcome10")
	require.NoError(t, err)
	assert.Empty(t, cart.Coupons)
	assert.True(t, cart.Totals.Total.Equal(dec("400")))

	_, err = f.service.RemoveCoupon(ctx, "u1", "WELCOME10")
	assert.ErrorIs(t, err, services.ErrCouponNotFound)
	_, err = f.service.ApplyCoupon(ctx, "u1", "NOPE")
	assert.ErrorIs(t, err, services.ErrCouponNotFound)
}

// barrierCarts holds the first two cart reads until both have happened,
// so two read-modify-write sequences see the same cart.
type barrierCarts struct {
	repositories.CartRepository
	arrived sync.WaitGroup
	calls   atomic.Int32
}

func newBarrierCarts(inner repositories.CartRepository) *barrierCarts {
	b := &barrierCarts{CartRepository: inner}
	b.arrived.Add(2)
	return b
}

func (b *barrierCarts) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := b.CartRepository.GetByUser(ctx, userID)
	if b.calls.Add(1) <= 2 {
		b.arrived.Done()
		b.arrived.Wait()
	}
	return cart, err
}

func TestCartService_ConcurrentAddsLoseAnUpdate(t *testing.T) {
	ctx := context.Background()
	inner := repositories.NewMockCartRepository()
	products := repositories.NewMockProductRepository()
	mug := addProduct(t, products, stocked("Mug", "10.00", 20))
	pen := addProduct(t, products, stocked("Pen", "2.00", 20))

	coupons, _ := newCouponService(t)
	setup := services.NewCartService(inner, products, coupons, time.Hour)
	_, err := setup.GetCart(ctx, "u1")
	require.NoError(t, err)

	service := services.NewCartService(newBarrierCarts(inner), products, coupons, time.Hour)
	var wg sync.WaitGroup
	for _, id := range []string{mug.ID, pen.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := service.AddItem(ctx, "u1", id, 1, nil)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	// Carts are read-modify-write without a version check, so the second
	// save overwrites the first.
	cart, err := inner.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assertTotals(t, cart)
}

// missOnceCarts reports the first read as a miss, as seen by a request that
// raced another one creating the cart.
type missOnceCarts struct {
	repositories.CartRepository
	missed atomic.Bool
}

func (m *missOnceCarts) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	if m.missed.CompareAndSwap(false, true) {
		return nil, repositories.ErrNotFound
	}
	return m.CartRepository.GetByUser(ctx, userID)
}

func TestCartService_ConcurrentFirstAccessReusesCart(t *testing.T) {
	ctx := context.Background()
	carts := repositories.NewGORMCartRepository(newTestDB(t))
	products := repositories.NewMockProductRepository()
	coupons, _ := newCouponService(t)

	first, err := services.NewCartService(carts, products, coupons, time.Hour).GetCart(ctx, "u1")
	require.NoError(t, err)

	racing := services.NewCartService(&missOnceCarts{CartRepository: carts}, products, coupons, time.Hour)
	cart, err := racing.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, cart.ID)
}
