package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/internal/services"
)

func newProductService() (*services.ProductService, *MockProductRepository, *MockCategoryRepository, *MockTagRepository) {
	products := new(MockProductRepository)
	categories := new(MockCategoryRepository)
	tags := new(MockTagRepository)
	return services.NewProductService(products, categories, tags, nil), products, categories, tags
}

func ptr[T any](v T) *T {
	return &v
}

func TestProductService_GetProductByID(t *testing.T) {
	service, repo, _, _ := newProductService()
	ctx := context.Background()

	expected := &models.Product{ID: "1", Name: "Mug"}
	repo.On("GetByID", mock.Anything, "1").Return(expected, nil).Once()
	p, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expected, p)

	repo.On("GetByID", mock.Anything, "404").Return(nil, fmt.Errorf("product 404: %w", repositories.ErrNotFound)).Once()
	_, err = service.GetProductByID(ctx, "404")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	repo.On("GetByID", mock.Anything, "boom").Return(nil, fmt.Errorf("connection reset")).Once()
	_, err = service.GetProductByID(ctx, "boom")
	assert.Error(t, err)
	_, typed := services.AsError(err)
	assert.False(t, typed)
	repo.AssertExpectations(t)
}

func TestProductService_CreateProductDerivesFields(t *testing.T) {
	service, repo, categories, tags := newProductService()
	ctx := context.Background()

	cat := models.Category{ID: "c1", Name: "Kitchen"}
	categories.On("GetByIDs", mock.Anything, []string{"c1"}).Return([]models.Category{cat}, nil).Once()
	categories.On("RefreshCount", mock.Anything, "c1").Return(nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	p, err := service.CreateProduct(ctx, services.ProductChanges{
		Name:          ptr("Blue Coffee Mug"),
		RegularPrice:  ptr(dec("12.00")),
		SalePrice:     ptr("9.50"),
		ManageStock:   ptr(true),
		StockQuantity: ptr(0),
		CategoryIDs:   []string{"c1", "c1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "blue-coffee-mug", p.Slug)
	assert.True(t, p.Purchasable)
	assert.True(t, p.OnSale)
	assert.True(t, p.Price.Equal(dec("9.50")))
	assert.Equal(t, models.StockOutOfStock, p.StockStatus)
	assert.Equal(t, []models.Category{cat}, p.Categories)

	repo.AssertExpectations(t)
	categories.AssertExpectations(t)
	tags.AssertNotCalled(t, "RefreshCount", mock.Anything, mock.Anything)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	service, repo, categories, _ := newProductService()
	ctx := context.Background()

	_, err := service.CreateProduct(ctx, services.ProductChanges{})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.CreateProduct(ctx, services.ProductChanges{Name: ptr("Mug"), SalePrice: ptr("cheap")})
	assert.ErrorIs(t, err, services.ErrValidation)

	categories.On("GetByIDs", mock.Anything, []string{"missing"}).Return([]models.Category{}, nil).Once()
	_, err = service.CreateProduct(ctx, services.ProductChanges{Name: ptr("Mug"), CategoryIDs: []string{"missing"}})
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProductRenameRegeneratesSlug(t *testing.T) {
	service, repo, _, _ := newProductService()
	ctx := context.Background()

	existing := models.DeriveProduct(models.Product{ID: "1", Name: "Old Name", RegularPrice: dec("5"), Purchasable: true})
	repo.On("GetByID", mock.Anything, "1").Return(&existing, nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	p, err := service.UpdateProduct(ctx, "1", services.ProductChanges{Name: ptr("New Name"), SalePrice: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "new-name", p.Slug)
	assert.False(t, p.OnSale)
	assert.True(t, p.Price.Equal(dec("5")))
	repo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	service, repo, categories, tags := newProductService()
	ctx := context.Background()

	existing := &models.Product{
		ID:         "1",
		Name:       "Mug",
		Categories: []models.Category{{ID: "c1"}},
		Tags:       []models.Tag{{ID: "t1"}},
	}
	repo.On("GetByID", mock.Anything, "1").Return(existing, nil).Once()
	repo.On("Delete", mock.Anything, "1").Return(nil).Once()
	categories.On("RefreshCount", mock.Anything, "c1").Return(fmt.Errorf("db down")).Once()
	tags.On("RefreshCount", mock.Anything, "t1").Return(nil).Once()

	p, err := service.DeleteProduct(ctx, "1")
	require.NoError(t, err, "count refresh failures do not fail the delete")
	assert.Equal(t, "1", p.ID)

	repo.On("GetByID", mock.Anything, "2").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.DeleteProduct(ctx, "2")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	repo.AssertExpectations(t)
	categories.AssertExpectations(t)
	tags.AssertExpectations(t)
}
