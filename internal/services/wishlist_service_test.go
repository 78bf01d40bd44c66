package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

func TestWishlistService(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	products := repositories.NewGORMProductRepository(db)
	service := services.NewWishlistService(repositories.NewGORMWishlistRepository(db), products)
	mug := addProduct(t, products, stocked("Mug", "10.00", 5))

	item, err := service.Add(ctx, "u1", mug.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", item.Product.Name)

	_, err = service.Add(ctx, "u1", mug.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyInWishlist)
	_, err = service.Add(ctx, "u1", "missing")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	items, err := service.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mug.ID, items[0].Product.ID)

	others, err := service.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, service.Remove(ctx, "u1", mug.ID))
	assert.ErrorIs(t, service.Remove(ctx, "u1", mug.ID), services.ErrNotInWishlist)
}
