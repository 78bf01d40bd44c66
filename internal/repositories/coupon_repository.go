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

type CouponFilter struct {
	Search string
	Active *bool
	Page
}

// CouponRepository stores coupons keyed by their uppercase code.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	List(ctx context.Context, f CouponFilter) ([]models.Coupon, int64, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id string) error
	// IncrementUsage consumes one use, failing with ErrLimitReached once
	// the usage limit is exhausted.
	IncrementUsage(ctx context.Context, id string) error
	Codes(ctx context.Context) ([]string, error)
}

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

var _ CouponRepository = (*GORMCouponRepository)(nil)

func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{db: db}
}

func (r *GORMCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).First(&coupon, "code = ?", strings.ToUpper(code)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon %s: %w", code, translate(err))
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupon by ID %s: %w", id, translate(err))
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) List(ctx context.Context, f CouponFilter) ([]models.Coupon, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Coupon{})
	if f.Search != "" {
		q = q.Where("code LIKE ?", "%"+strings.ToUpper(f.Search)+"%")
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}
	var coupons []models.Coupon
	err := q.Order("created_at DESC").Offset(f.Offset()).Limit(f.Limit()).Find(&coupons).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, total, nil
}

func (r *GORMCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	coupon.Code = strings.ToUpper(coupon.Code)
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon %s: %w", coupon.Code, translate(err))
	}
	return nil
}

func (r *GORMCouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	coupon.Code = strings.ToUpper(coupon.Code)
	res := r.db.WithContext(ctx).Model(coupon).Select("*").Omit("created_at").Updates(coupon)
	if res.Error != nil {
		return fmt.Errorf("failed to update coupon %s: %w", coupon.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon with ID %s not found for update: %w", coupon.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMCouponRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete coupon %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMCouponRepository) IncrementUsage(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit = 0 OR usage_count < usage_limit)", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment usage of coupon %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("coupon %s: %w", id, ErrLimitReached)
	}
	return nil
}

func (r *GORMCouponRepository) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "code"}}).
		Pluck("code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list coupon codes: %w", err)
	}
	return codes, nil
}
