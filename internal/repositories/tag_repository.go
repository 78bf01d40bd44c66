package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wooshop/internal/models"
)

type TagFilter struct {
	Search    string
	HideEmpty bool
	Page
}

// TagRepository defines the interface for tag data access.
type TagRepository interface {
	List(ctx context.Context, f TagFilter) ([]models.Tag, int64, error)
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id string) error
	RefreshCount(ctx context.Context, id string) error
}

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

var _ TagRepository = (*GORMTagRepository)(nil)

func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{db: db}
}

func (r *GORMTagRepository) List(ctx context.Context, f TagFilter) ([]models.Tag, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Tag{})
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.HideEmpty {
		q = q.Where("count > 0")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tags: %w", err)
	}
	var tags []models.Tag
	if err := q.Order("name ASC").Offset(f.Offset()).Limit(f.Limit()).Find(&tags).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, total, nil
}

func (r *GORMTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get tag by ID %s: %w", id, translate(err))
	}
	return &tag, nil
}

func (r *GORMTagRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	return tags, nil
}

func (r *GORMTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create tag: %w", translate(err))
	}
	return nil
}

func (r *GORMTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	res := r.db.WithContext(ctx).Model(tag).Select("*").Updates(tag)
	if res.Error != nil {
		return fmt.Errorf("failed to update tag: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tag with ID %s not found for update: %w", tag.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMTagRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_tags WHERE tag_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink tag products: %w", err)
		}
		res := tx.Delete(&models.Tag{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete tag: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("tag with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *GORMTagRepository) RefreshCount(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Exec(`UPDATE tags SET count = (
		SELECT COUNT(*) FROM product_tags pt
		JOIN products p ON p.id = pt.product_id
		WHERE pt.tag_id = tags.id AND p.status = ?
	) WHERE id = ?`, string(models.ProductPublish), id).Error
	if err != nil {
		return fmt.Errorf("failed to refresh count of tag %s: %w", id, err)
	}
	return nil
}
