package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wooshop/internal/models"
)

// MockCouponRepository is an in-memory implementation of CouponRepository.
type MockCouponRepository struct {
	coupons map[string]models.Coupon
	mu      sync.RWMutex
}

var _ CouponRepository = (*MockCouponRepository)(nil)

func NewMockCouponRepository() *MockCouponRepository {
	return &MockCouponRepository{coupons: make(map[string]models.Coupon)}
}

func (r *MockCouponRepository) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code = strings.ToUpper(code)
	for _, c := range r.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("coupon %s: %w", code, ErrNotFound)
}

func (r *MockCouponRepository) GetByID(_ context.Context, id string) (*models.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.coupons[id]
	if !ok {
		return nil, fmt.Errorf("coupon with ID %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (r *MockCouponRepository) List(_ context.Context, f CouponFilter) ([]models.Coupon, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToUpper(f.Search)
	var list []models.Coupon
	for _, c := range r.coupons {
		if search != "" && !strings.Contains(c.Code, search) {
			continue
		}
		if f.Active != nil && c.IsActive != *f.Active {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return window(list, f.Page), int64(len(list)), nil
}

func (r *MockCouponRepository) Create(_ context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon.Code = strings.ToUpper(coupon.Code)
	for _, c := range r.coupons {
		if c.Code == coupon.Code {
			return fmt.Errorf("coupon %s: %w", coupon.Code, ErrDuplicate)
		}
	}
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	now := time.Now()
	coupon.CreatedAt, coupon.UpdatedAt = now, now
	r.coupons[coupon.ID] = *coupon
	return nil
}

func (r *MockCouponRepository) Update(_ context.Context, coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.coupons[coupon.ID]; !ok {
		return fmt.Errorf("coupon with ID %s not found for update: %w", coupon.ID, ErrNotFound)
	}
	coupon.Code = strings.ToUpper(coupon.Code)
	for id, c := range r.coupons {
		if id != coupon.ID && c.Code == coupon.Code {
			return fmt.Errorf("coupon %s: %w", coupon.Code, ErrDuplicate)
		}
	}
	coupon.UpdatedAt = time.Now()
	r.coupons[coupon.ID] = *coupon
	return nil
}

func (r *MockCouponRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.coupons[id]; !ok {
		return fmt.Errorf("coupon with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.coupons, id)
	return nil
}

func (r *MockCouponRepository) IncrementUsage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.coupons[id]
	if !ok {
		return fmt.Errorf("coupon with ID %s: %w", id, ErrNotFound)
	}
	if c.LimitReached() {
		return fmt.Errorf("coupon %s: %w", id, ErrLimitReached)
	}
	c.UsageCount++
	r.coupons[id] = c
	return nil
}

func (r *MockCouponRepository) Codes(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.coupons))
	for _, c := range r.coupons {
		codes = append(codes, c.Code)
	}
	sort.Strings(codes)
	return codes, nil
}
