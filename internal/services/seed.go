package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
)

// DemoCoupons returns the coupons every fresh store starts with.
func DemoCoupons() []models.Coupon {
	date := func(s string) *time.Time {
		t, _ := time.Parse(time.DateOnly, s)
		return &t
	}
	return []models.Coupon{
		{
			Code:        "WELCOME10",
			Type:        models.CouponPercent,
			Amount:      decimal.NewFromInt(10),
			Description: "10% off for new customers",
			ExpiryDate:  date("2026-12-31"),
			IsActive:    true,
		},
		{
			Code:          "SAVE20",
			Type:          models.CouponFixed,
			Amount:        decimal.NewFromInt(20),
			Description:   "$20 off orders over $100",
			MinimumAmount: decimal.NewFromInt(100),
			UsageLimit:    100,
			ExpiryDate:    date("2026-06-30"),
			IsActive:      true,
		},
		{
			Code:          "FREESHIP",
			Type:          models.CouponFreeShipping,
			Description:   "Free shipping on all orders",
			MinimumAmount: decimal.NewFromInt(50),
			ExpiryDate:    date("2026-12-31"),
			IsActive:      true,
		},
	}
}

type demoProduct struct {
	name, sku, short string
	regular, sale    int64
	stock            int
	featured         bool
	categories       []int
	tags             []int
}

var demoCategories = []struct{ name, description string }{
	{"Electronics", "Electronic devices and gadgets"},
	{"Smartphones", "Latest smartphones and accessories"},
	{"Laptops", "High-performance laptops and notebooks"},
	{"Accessories", "Tech accessories and peripherals"},
	{"Clothing", "Fashion and apparel"},
}

var demoTags = []string{"New Arrival", "Best Seller", "On Sale", "Featured", "Premium"}

var demoProducts = []demoProduct{
	{"iPhone 15 Pro", "IP15P-256", "Latest flagship iPhone with pro features", 1099, 999, 50, true, []int{0, 1}, []int{0, 3}},
	{`MacBook Pro 14"`, "MBP14-M3", "Professional laptop for creators", 1999, 0, 30, true, []int{0, 2}, []int{1, 4}},
	{"AirPods Pro (2nd Gen)", "APP-2ND", "Wireless earbuds with ANC", 249, 0, 100, false, []int{0, 3}, []int{1, 3}},
	{"Samsung Galaxy S24 Ultra", "SGS24U-512", "Premium Android smartphone", 1299, 1199, 40, true, []int{0, 1}, []int{0, 2}},
	{"Cotton T-Shirt", "TS-COT-M", "Everyday cotton tee", 25, 0, 200, false, []int{4}, []int{1}},
}

// Seeder fills an empty store with a demo catalog, an admin and a customer
// account and the demo coupons.
type Seeder struct {
	users    repositories.UserRepository
	coupons  repositories.CouponRepository
	taxonomy *TaxonomyService
	products *ProductService
	log      *zap.Logger
}

func NewSeeder(
	users repositories.UserRepository,
	coupons repositories.CouponRepository,
	taxonomy *TaxonomyService,
	products *ProductService,
	log *zap.Logger,
) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{users: users, coupons: coupons, taxonomy: taxonomy, products: products, log: log}
}

// Seed does nothing when the admin account already exists.
func (s *Seeder) Seed(ctx context.Context) error {
	if _, err := s.users.GetByUsername(ctx, "admin"); err == nil {
		s.log.Info("Store already seeded")
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return errors.Wrap(err, "check admin")
	}

	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	categoryIDs := make([]string, 0, len(demoCategories))
	for _, c := range demoCategories {
		name, description := c.name, c.description
		cat, err := s.taxonomy.CreateCategory(ctx, CategoryChanges{Name: &name, Description: &description})
		if err != nil {
			return errors.Wrapf(err, "seed category %s", name)
		}
		categoryIDs = append(categoryIDs, cat.ID)
	}
	tagIDs := make([]string, 0, len(demoTags))
	for _, name := range demoTags {
		name := name
		tag, err := s.taxonomy.CreateTag(ctx, TagChanges{Name: &name})
		if err != nil {
			return errors.Wrapf(err, "seed tag %s", name)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	for _, p := range demoProducts {
		if _, err := s.products.CreateProduct(ctx, p.changes(categoryIDs, tagIDs)); err != nil {
			return errors.Wrapf(err, "seed product %s", p.name)
		}
	}
	for _, c := range DemoCoupons() {
		c := c
		if err := s.coupons.Create(ctx, &c); err != nil && !errors.Is(err, repositories.ErrDuplicate) {
			return errors.Wrapf(err, "seed coupon %s", c.Code)
		}
	}

	s.log.Info("Seeded demo store",
		zap.Int("categories", len(categoryIDs)),
		zap.Int("tags", len(tagIDs)),
		zap.Int("products", len(demoProducts)),
	)
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	home := models.Address{
		FirstName: "John",
		LastName:  "Doe",
		Address1:  "123 Main St",
		City:      "New York",
		State:     "NY",
		Postcode:  "10001",
		Country:   "US",
	}
	billing := home
	billing.Email = "john@example.com"
	billing.Phone = "+1-555-123-4567"

	accounts := []struct {
		user     models.User
		password string
	}{
		{models.User{Username: "admin", Email: "admin@ecommerce.com", FirstName: "Admin", LastName: "User", Role: models.RoleAdmin}, "admin123"},
		{models.User{Username: "johndoe", Email: "john@example.com", FirstName: "John", LastName: "Doe", Role: models.RoleCustomer, Billing: billing, Shipping: home}, "password123"},
	}
	for _, a := range accounts {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hash password")
		}
		u := a.user
		u.Password = string(hashed)
		if err := s.users.Create(ctx, &u); err != nil {
			return errors.Wrapf(err, "seed user %s", u.Username)
		}
	}
	return nil
}

func (p demoProduct) changes(categoryIDs, tagIDs []string) ProductChanges {
	regular := decimal.NewFromInt(p.regular)
	manage := true
	c := ProductChanges{
		Name:             &p.name,
		SKU:              &p.sku,
		ShortDescription: &p.short,
		RegularPrice:     &regular,
		ManageStock:      &manage,
		StockQuantity:    &p.stock,
		Featured:         &p.featured,
	}
	if p.sale > 0 {
		sale := decimal.NewFromInt(p.sale).String()
		c.SalePrice = &sale
	}
	for _, i := range p.categories {
		c.CategoryIDs = append(c.CategoryIDs, categoryIDs[i])
	}
	for _, i := range p.tags {
		c.TagIDs = append(c.TagIDs, tagIDs[i])
	}
	return c
}
