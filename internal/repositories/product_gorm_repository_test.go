package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wooshop/internal/models"
)

func TestGORMProductRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	cats := NewGORMCategoryRepository(db)

	cat := &models.Category{Name: "Clothing", Slug: "clothing"}
	require.NoError(t, cats.Create(ctx, cat))

	p := stockedProduct("Blue Hoodie", "45.00", 10)
	p.Categories = []models.Category{*cat}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEmpty(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Hoodie", got.Name)
	assert.Equal(t, "blue-hoodie", got.Slug)
	assert.True(t, got.Price.Equal(dec("45")))
	require.Len(t, got.Categories, 1)
	assert.Equal(t, cat.ID, got.Categories[0].ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGORMProductRepository_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	cats := NewGORMCategoryRepository(db)

	cat := &models.Category{Name: "Mugs", Slug: "mugs"}
	require.NoError(t, cats.Create(ctx, cat))

	cheap := stockedProduct("Small Mug", "5", 3)
	cheap.Categories = []models.Category{*cat}
	pricey := stockedProduct("Large Mug", "15", 3)
	pricey.Categories = []models.Category{*cat}
	other := stockedProduct("Poster", "10", 3)
	for _, p := range []*models.Product{cheap, pricey, other} {
		require.NoError(t, repo.Create(ctx, p))
	}

	list, total, err := repo.List(ctx, ProductFilter{CategoryID: cat.ID, OrderBy: "price", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, cheap.ID, list[0].ID)
	assert.Equal(t, pricey.ID, list[1].ID)

	list, total, err = repo.List(ctx, ProductFilter{Search: "MUG", Page: Page{Page: 2, PerPage: 1}, OrderBy: "title", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, cheap.ID, list[0].ID)
}

func TestGORMProductRepository_UpdateReplacesLinks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGORMProductRepository(db)
	tags := NewGORMTagRepository(db)

	sale := &models.Tag{Name: "Sale", Slug: "sale"}
	fresh := &models.Tag{Name: "New", Slug: "new"}
	require.NoError(t, tags.Create(ctx, sale))
	require.NoError(t, tags.Create(ctx, fresh))

	p := stockedProduct("Cap", "12", 1)
	p.Tags = []models.Tag{*sale}
	require.NoError(t, repo.Create(ctx, p))

	p.Name = "Red Cap"
	p.Tags = []models.Tag{*fresh}
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red Cap", got.Name)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, fresh.ID, got.Tags[0].ID)

	missing := stockedProduct("Ghost", "1", 1)
	missing.ID = "missing"
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
}

func TestGORMProductRepository_ReserveStock(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMProductRepository(newTestDB(t))

	p := stockedProduct("Last Unit", "20", 1)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.ReserveStock(ctx, p.ID, 1))
	assert.ErrorIs(t, repo.ReserveStock(ctx, p.ID, 1), ErrStockConflict)
	assert.ErrorIs(t, repo.ReserveStock(ctx, "missing", 1), ErrNotFound)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	assert.Equal(t, 1, got.TotalSales)
	assert.Equal(t, models.StockOutOfStock, got.StockStatus)
}

func TestGORMProductRepository_RecordSaleCanOversell(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMProductRepository(newTestDB(t))

	p := stockedProduct("Limited Print", "30", 1)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.RecordSale(ctx, p.ID, 2))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, got.StockQuantity)
	assert.Equal(t, 2, got.TotalSales)
}

func TestGORMProductRepository_UnmanagedStockIsNotReserved(t *testing.T) {
	ctx := context.Background()
	repo := NewGORMProductRepository(newTestDB(t))

	p := stockedProduct("E-book", "9", 0)
	p.ManageStock = false
	p.StockStatus = models.StockInStock
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.ReserveStock(ctx, p.ID, 5))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	assert.Equal(t, 5, got.TotalSales)
	assert.Equal(t, models.StockInStock, got.StockStatus)
}

func TestGORMCategoryRepository_RefreshCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cats := NewGORMCategoryRepository(db)
	products := NewGORMProductRepository(db)

	parent := &models.Category{Name: "Home", Slug: "home"}
	require.NoError(t, cats.Create(ctx, parent))
	child := &models.Category{Name: "Kitchen", Slug: "kitchen", ParentID: &parent.ID}
	require.NoError(t, cats.Create(ctx, child))

	published := stockedProduct("Pan", "25", 2)
	published.Categories = []models.Category{*child}
	draft := stockedProduct("Pot", "30", 2)
	draft.Status = models.ProductDraft
	draft.Categories = []models.Category{*child}
	require.NoError(t, products.Create(ctx, published))
	require.NoError(t, products.Create(ctx, draft))

	require.NoError(t, cats.RefreshCount(ctx, child.ID))
	got, err := cats.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)

	n, err := cats.CountChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	top := ""
	list, total, err := cats.List(ctx, CategoryFilter{ParentID: &top})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, parent.ID, list[0].ID)
}
