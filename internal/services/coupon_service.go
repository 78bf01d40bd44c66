package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

const (
	couponFilterCapacity = 10_000
	couponFilterFPR      = 0.01
)

// CouponChanges carries writable coupon fields. DateExpires accepts
// YYYY-MM-DD or RFC 3339; "" removes the expiry.
type CouponChanges struct {
	Code          *string            `json:"code" validate:"omitempty,min=3,max=50,alphanum"`
	Type          *models.CouponType `json:"type" validate:"omitempty,oneof=percent fixed free_shipping"`
	Amount        *decimal.Decimal   `json:"amount"`
	Description   *string            `json:"description"`
	MinimumAmount *decimal.Decimal   `json:"minimum_amount"`
	MaximumAmount *decimal.Decimal   `json:"maximum_amount"`
	UsageLimit    *int               `json:"usage_limit" validate:"omitempty,min=0"`
	DateExpires   *string            `json:"date_expires"`
	IsActive      *bool              `json:"is_active"`
}

// CouponValidation is the outcome of validating a code against a cart total.
type CouponValidation struct {
	Valid        bool            `json:"valid"`
	Coupon       *models.Coupon  `json:"coupon"`
	Discount     decimal.Decimal `json:"discount"`
	FreeShipping bool            `json:"free_shipping"`
}

// CouponService validates, applies and administers discount coupons.
// Known codes are kept in a bloom filter. A code the filter has never seen
// may still have been created by another instance, so misses are confirmed
// against the store, with concurrent misses for one code sharing a lookup.
type CouponService struct {
	repo repositories.CouponRepository
	now  func() time.Time

	mu     sync.RWMutex
	filter *bloom.BloomFilter
	misses singleflight.Group
}

func NewCouponService(repo repositories.CouponRepository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (s *CouponService) WithClock(now func() time.Time) *CouponService {
	s.now = now
	return s
}

// Warm loads every stored code into the filter.
func (s *CouponService) Warm(ctx context.Context) error {
	codes, err := s.repo.Codes(ctx)
	if err != nil {
		return errors.Wrap(err, "load coupon codes")
	}
	n := uint(len(codes))
	if n < couponFilterCapacity {
		n = couponFilterCapacity
	}
	filter := bloom.NewWithEstimates(n, couponFilterFPR)
	for _, code := range codes {
		filter.AddString(code)
	}

	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return nil
}

func (s *CouponService) mightExist(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter == nil || s.filter.TestString(code)
}

func (s *CouponService) remember(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter != nil {
		s.filter.AddString(code)
	}
}

func (s *CouponService) lookup(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCouponNotFound
	}
	if s.mightExist(code) {
		c, err := s.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, notFound(err, ErrCouponNotFound, "get coupon")
		}
		return c, nil
	}

	v, err, _ := s.misses.Do(code, func() (any, error) {
		c, err := s.repo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		s.remember(c.Code)
		return c, nil
	})
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound, "get coupon")
	}
	// Callers sharing a lookup must not share the coupon.
	c := *v.(*models.Coupon)
	return &c, nil
}

// Validate checks code against total without consuming a use. Checks run
// in order: existence, active flag, expiry, usage limit, minimum and
// maximum amount.
func (s *CouponService) Validate(ctx context.Context, code string, total decimal.Decimal) (*CouponValidation, error) {
	c, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	switch {
	case !c.IsActive:
		return nil, ErrCouponInactive
	case c.Expired(s.now()):
		return nil, ErrCouponExpired
	case c.LimitReached():
		return nil, ErrCouponLimitReached
	case c.MinimumAmount.IsPositive() && total.LessThan(c.MinimumAmount):
		return nil, ErrMinimumAmountNotMet.Withf("Minimum order amount of %s required", c.MinimumAmount.StringFixed(2))
	case c.MaximumAmount.IsPositive() && total.GreaterThan(c.MaximumAmount):
		return nil, ErrMaximumAmountExceeded.Withf("Maximum order amount of %s exceeded", c.MaximumAmount.StringFixed(2))
	}

	return &CouponValidation{
		Valid:        true,
		Coupon:       c,
		Discount:     models.CouponDiscount(c.Type, c.Amount, total),
		FreeShipping: c.Type == models.CouponFreeShipping,
	}, nil
}

// Apply consumes one use of the coupon. The increment is conditional in the
// store, so concurrent applications never exceed the usage limit.
func (s *CouponService) Apply(ctx context.Context, id string) (*models.Coupon, error) {
	if err := s.repo.IncrementUsage(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrLimitReached) {
			return nil, ErrCouponLimitReached
		}
		return nil, notFound(err, ErrCouponNotFound, "apply coupon")
	}
	return s.GetCoupon(ctx, id)
}

func (s *CouponService) ListCoupons(ctx context.Context, f repositories.CouponFilter) ([]models.Coupon, int64, error) {
	coupons, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list coupons")
	}
	return coupons, total, nil
}

func (s *CouponService) GetCoupon(ctx context.Context, id string) (*models.Coupon, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCouponNotFound, "get coupon")
	}
	return c, nil
}

func (s *CouponService) CreateCoupon(ctx context.Context, changes CouponChanges) (*models.Coupon, error) {
	if changes.Code == nil || changes.Type == nil {
		return nil, ErrValidation.Withf("Coupon code and type are required")
	}
	c := models.Coupon{IsActive: true}
	if err := applyCoupon(&c, changes); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCouponExists
		}
		return nil, errors.Wrap(err, "create coupon")
	}
	s.remember(c.Code)
	return &c, nil
}

func (s *CouponService) UpdateCoupon(ctx context.Context, id string, changes CouponChanges) (*models.Coupon, error) {
	c, err := s.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCoupon(c, changes); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCouponExists
		}
		return nil, notFound(err, ErrCouponNotFound, "update coupon")
	}
	s.remember(c.Code)
	return c, nil
}

func (s *CouponService) DeleteCoupon(ctx context.Context, id string) (*models.Coupon, error) {
	c, err := s.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, notFound(err, ErrCouponNotFound, "delete coupon")
	}
	return c, nil
}

func applyCoupon(c *models.Coupon, changes CouponChanges) error {
	if changes.Code != nil {
		c.Code = strings.ToUpper(*changes.Code)
	}
	set(&c.Type, changes.Type)
	set(&c.Amount, changes.Amount)
	set(&c.Description, changes.Description)
	set(&c.MinimumAmount, changes.MinimumAmount)
	set(&c.MaximumAmount, changes.MaximumAmount)
	set(&c.UsageLimit, changes.UsageLimit)
	set(&c.IsActive, changes.IsActive)
	if changes.DateExpires != nil {
		expiry, err := parseDate(*changes.DateExpires)
		if err != nil {
			return ErrValidation.Withf("Invalid date_expires %q", *changes.DateExpires)
		}
		c.ExpiryDate = expiry
	}
	if c.Amount.IsNegative() {
		return ErrValidation.Withf("Coupon amount cannot be negative")
	}
	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.Errorf("unrecognised date %q", s)
}
