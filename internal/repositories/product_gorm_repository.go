package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wooshop/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

var _ ProductRepository = (*GORMProductRepository)(nil)

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// List retrieves a filtered, sorted page of products and the unpaged total.
func (r *GORMProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CategoryID != "" {
		q = q.Where("id IN (?)", r.db.Table("product_categories").Select("product_id").Where("category_id = ?", f.CategoryID))
	}
	if f.TagID != "" {
		q = q.Where("id IN (?)", r.db.Table("product_tags").Select("product_id").Where("tag_id = ?", f.TagID))
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.OnSale != nil {
		q = q.Where("on_sale = ?", *f.OnSale)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	col, ok := productOrderColumns[f.OrderBy]
	if !ok {
		col = "created_at"
	}
	var products []models.Product
	err := q.Preload("Categories").Preload("Tags").
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Order != "asc"}).
		Offset(f.Offset()).Limit(f.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Categories").Preload("Tags").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, translate(err))
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Omit("Categories.*", "Tags.*").Create(product).Error
	if err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

// Update overwrites an existing product and its category and tag links.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(product).Select("*").Omit(clause.Associations).Updates(product)
		if res.Error != nil {
			return fmt.Errorf("failed to update product: %w", translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
		}
		if err := replaceLinks(tx.Model(product).Association("Categories"), product.Categories); err != nil {
			return fmt.Errorf("failed to link product categories: %w", err)
		}
		if err := replaceLinks(tx.Model(product).Association("Tags"), product.Tags); err != nil {
			return fmt.Errorf("failed to link product tags: %w", err)
		}
		return nil
	})
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink product categories: %w", err)
		}
		if err := tx.Exec("DELETE FROM product_tags WHERE product_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink product tags: %w", err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}

func replaceLinks[T any](assoc *gorm.Association, values []T) error {
	if len(values) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}

func saleUpdates(qty int) map[string]any {
	return map[string]any{
		"stock_quantity": gorm.Expr("CASE WHEN manage_stock THEN stock_quantity - ? ELSE stock_quantity END", qty),
		"total_sales":    gorm.Expr("total_sales + ?", qty),
		"stock_status":   gorm.Expr("CASE WHEN manage_stock AND stock_quantity - ? <= 0 THEN ? ELSE stock_status END", qty, string(models.StockOutOfStock)),
	}
}

// RecordSale adjusts stock and sales counters without checking availability.
func (r *GORMProductRepository) RecordSale(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(saleUpdates(qty))
	if res.Error != nil {
		return fmt.Errorf("failed to record sale for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for sale: %w", id, ErrNotFound)
	}
	return nil
}

// ReserveStock adjusts stock and sales counters in a single conditional
// statement so two buyers cannot both take the last unit.
func (r *GORMProductRepository) ReserveStock(ctx context.Context, id string, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND (manage_stock = ? OR stock_quantity >= ?)", id, false, qty).
		Updates(saleUpdates(qty))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check product %s: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("product with ID %s not found for reservation: %w", id, ErrNotFound)
		}
		return fmt.Errorf("product %s: %w", id, ErrStockConflict)
	}
	return nil
}

// UpdateRating stores the aggregated review rating of a product.
func (r *GORMProductRepository) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		Updates(map[string]any{"average_rating": average, "rating_count": count})
	if res.Error != nil {
		return fmt.Errorf("failed to update rating for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for rating: %w", id, ErrNotFound)
	}
	return nil
}
