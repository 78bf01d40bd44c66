package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wooshop/internal/models"
)

type ReviewFilter struct {
	ProductID  string
	CustomerID string
	Status     string
	Page
}

// ReviewRepository defines the interface for product review data access.
type ReviewRepository interface {
	List(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
	// Create fails with ErrDuplicate when the customer already reviewed
	// the product.
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
	// ApprovedRatings returns the ratings of every approved review of a product.
	ApprovedRatings(ctx context.Context, productID string) ([]int, error)
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

var _ ReviewRepository = (*GORMReviewRepository)(nil)

func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

func (r *GORMReviewRepository) List(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Review{})
	if f.ProductID != "" {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	var reviews []models.Review
	err := q.Order("created_at DESC").Offset(f.Offset()).Limit(f.Limit()).Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *GORMReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get review by ID %s: %w", id, translate(err))
	}
	return &review, nil
}

func (r *GORMReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translate(err))
	}
	return nil
}

func (r *GORMReviewRepository) Update(ctx context.Context, review *models.Review) error {
	res := r.db.WithContext(ctx).Model(review).Select("*").Omit("created_at").Updates(review)
	if res.Error != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %s not found for update: %w", review.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMReviewRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMReviewRepository) ApprovedRatings(ctx context.Context, productID string) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND status = ?", productID, models.ReviewApproved).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings of product %s: %w", productID, err)
	}
	return ratings, nil
}
