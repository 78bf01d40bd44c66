package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

func TestSeeder_SeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := repositories.NewGORMUserRepository(db)
	coupons := repositories.NewGORMCouponRepository(db)
	categories := repositories.NewGORMCategoryRepository(db)
	tags := repositories.NewGORMTagRepository(db)
	products := repositories.NewGORMProductRepository(db)

	seeder := services.NewSeeder(
		users,
		coupons,
		services.NewTaxonomyService(categories, tags),
		services.NewProductService(products, categories, tags, nil),
		nil,
	)
	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx), "seeding twice is a no-op")

	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))

	john, err := users.GetByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, john.Role)

	_, total, err := products.List(ctx, repositories.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	_, total, err = categories.List(ctx, repositories.CategoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	codes, err := coupons.Codes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"WELCOME10", "SAVE20", "FREESHIP"}, codes)
}
